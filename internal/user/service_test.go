package user

import (
	"context"
	"errors"
	"testing"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/config"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]*User{}, byEmail: map[string]*User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, u *User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	out := make([]User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func newTestService(store Store) *Service {
	authCfg := config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret-0123456789",
		Issuer:      "fleet-service",
		Audience:    "fleet-api",
		TokenTTLMin: 30,
	}
	return NewService(store, authCfg, validator.New(), logger.Nop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Email:      "Alice@Corp.example",
		Password:   "s3cretpass",
		FirstName:  "Alice",
		LastName:   "Zhang",
		Department: "sales",
	})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "alice@corp.example", res.User.Email)
	assert.Equal(t, RoleEmployee, res.User.Role)
	assert.NotEmpty(t, res.Token)

	got, err := svc.Login(ctx, "alice@corp.example", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, got.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newFakeUserStore())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "not-an-email",
		Password:  "s3cretpass",
		FirstName: "A",
		LastName:  "B",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:     "a@b.example",
		Password:  "short",
		FirstName: "A",
		LastName:  "B",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	ctx := context.Background()

	in := RegisterInput{Email: "dup@corp.example", Password: "s3cretpass", FirstName: "A", LastName: "B"}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestLoginFailures(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "bob@corp.example", Password: "s3cretpass", FirstName: "Bob", LastName: "Li"})
	require.NoError(t, err)

	// 密码错误和用户不存在返回同一个错误
	_, err = svc.Login(ctx, "bob@corp.example", "wrongpass")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.Login(ctx, "ghost@corp.example", "whatever")
	assert.ErrorIs(t, err, ErrBadCredentials)

	store.byEmail["bob@corp.example"].Enabled = false
	_, err = svc.Login(ctx, "bob@corp.example", "s3cretpass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}
