package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/auth"
	"github.com/FleetShare/FleetShare/internal/common/config"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrBadCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrForbidden)

// Store 是服务侧需要的用户存储接口，*Repo 为其 GORM 实现。
type Store interface {
	Create(ctx context.Context, u *User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
}

// Service 封装注册/登录与用户查询。core services only trust the
// userId/roles carried in the JWT it issues.
type Service struct {
	store    Store
	authCfg  config.AuthConfig
	validate *validator.Validate
	log      logger.Logger
}

func NewService(store Store, authCfg config.AuthConfig, validate *validator.Validate, log logger.Logger) *Service {
	return &Service{store: store, authCfg: authCfg, validate: validate, log: log}
}

// RegisterInput 注册入参。
type RegisterInput struct {
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=8"`
	FirstName  string `validate:"required"`
	LastName   string `validate:"required"`
	Department string
	CostCenter string
}

// AuthResult 登录/注册结果。
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	taken, err := s.store.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		PasswordSalt: salt,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Department:   strings.TrimSpace(in.Department),
		CostCenter:   strings.TrimSpace(in.CostCenter),
		Role:         RoleEmployee, // 自助注册一律员工角色，升级由管理员操作
		Enabled:      true,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(map[string]interface{}{"user_id": u.ID, "email": u.Email}).Info("user registered")
	return s.issueToken(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsDomain(err) {
			// 不区分“用户不存在”和“密码错误”
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !u.Enabled {
		return nil, fmt.Errorf("%w: account disabled", apperr.ErrForbidden)
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, ErrBadCredentials
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return s.issueToken(u)
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: user id required", apperr.ErrValidation)
	}
	return s.store.FindByID(ctx, id)
}

// List 管理侧的用户列表，分页。
func (s *Service) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	return s.store.List(ctx, offset, limit)
}

func (s *Service) issueToken(u *User) (*AuthResult, error) {
	ttl := time.Duration(s.authCfg.TokenTTLMin) * time.Minute
	token, exp, err := auth.GenerateAccessToken(s.authCfg, u.ID, []string{string(u.Role)}, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}
