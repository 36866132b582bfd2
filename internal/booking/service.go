package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/clock"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/FleetShare/FleetShare/internal/user"
	"github.com/FleetShare/FleetShare/internal/vehicle"
	"github.com/google/uuid"
)

// Store 服务侧需要的预订存储接口，*Repo 为其 GORM 实现。
// 写操作自带事务边界，调用方不感知。
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Approve(ctx context.Context, id, approverID string, now time.Time) (*Booking, error)
	Reject(ctx context.Context, id, approverID, reason string, now time.Time) (*Booking, error)
	Cancel(ctx context.Context, id, reason string, now time.Time) (*Booking, error)
	Checkout(ctx context.Context, bookingID string, u *Usage, startMileage *int64) (*Usage, error)
	Checkin(ctx context.Context, bookingID string, upd CheckinUpdate, now time.Time) (*Usage, error)
	FindByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, f ListFilter, offset, limit int) ([]Booking, int64, error)
	FindOverlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]Booking, error)
}

// VehicleStore 预订服务对车辆台账的只读依赖。
type VehicleStore interface {
	FindByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
}

// ApprovalPolicy 决定某个角色的预订是否需要人工审批。
// 结果只写入 approvalRequired 标记，不改变创建后的状态。
type ApprovalPolicy func(role user.Role) bool

// DefaultApprovalPolicy 普通员工需要审批，经理和管理员免审批。
func DefaultApprovalPolicy(role user.Role) bool {
	return role == user.RoleEmployee || role == ""
}

// Service 封装预订领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	store    Store
	vehicles VehicleStore
	policy   ApprovalPolicy
	clk      clock.Clock
	log      logger.Logger
}

func NewService(store Store, vehicles VehicleStore, policy ApprovalPolicy, clk clock.Clock, log logger.Logger) *Service {
	if policy == nil {
		policy = DefaultApprovalPolicy
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{store: store, vehicles: vehicles, policy: policy, clk: clk, log: log}
}

// CreateInput 创建预订的入参。UserID 和 UserRole 来自已验证的
// 访问令牌，不信任请求体。
type CreateInput struct {
	UserID   string
	UserRole user.Role

	VehicleID string
	StartTime time.Time
	EndTime   time.Time

	PickupLocation string
	ReturnLocation string
	Purpose        string
}

// Create 校验顺序固定：车辆存在 → 车辆可用 → 时间窗合法 →
// 起始时间在将来。冲突检查在仓储事务里锁着车辆行做，这里不做。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, fmt.Errorf("%w: user id required", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.VehicleID) == "" {
		return nil, fmt.Errorf("%w: vehicle id required", apperr.ErrValidation)
	}

	veh, err := s.vehicles.FindByID(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if veh.Status != vehicle.StatusAvailable {
		return nil, ErrVehicleUnavailable
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", apperr.ErrValidation)
	}
	now := s.clk.Now()
	if !in.StartTime.After(now) {
		return nil, fmt.Errorf("%w: start time must be in the future", apperr.ErrValidation)
	}

	// 所有预订一律从 PENDING 起步，审批策略只决定 approvalRequired 标记
	b := &Booking{
		ID:               uuid.NewString(),
		VehicleID:        in.VehicleID,
		UserID:           in.UserID,
		Status:           StatusPending,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		PickupLocation:   strings.TrimSpace(in.PickupLocation),
		ReturnLocation:   strings.TrimSpace(in.ReturnLocation),
		Purpose:          strings.TrimSpace(in.Purpose),
		ApprovalRequired: s.policy(in.UserRole),
	}

	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{
		"booking_id": b.ID,
		"vehicle_id": b.VehicleID,
		"user_id":    b.UserID,
		"status":     b.Status,
	}).Info("booking created")
	return b, nil
}

// Approve 审批通过。审批人不能处理自己的预订。
func (s *Service) Approve(ctx context.Context, id, approverID string) (*Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID == approverID {
		return nil, fmt.Errorf("%w: cannot approve own booking", apperr.ErrForbidden)
	}

	b, err = s.store.Approve(ctx, id, approverID, s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{"booking_id": id, "approver_id": approverID}).Info("booking approved")
	return b, nil
}

func (s *Service) Reject(ctx context.Context, id, approverID, reason string) (*Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID == approverID {
		return nil, fmt.Errorf("%w: cannot reject own booking", apperr.ErrForbidden)
	}

	b, err = s.store.Reject(ctx, id, approverID, strings.TrimSpace(reason), s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{"booking_id": id, "approver_id": approverID}).Info("booking rejected")
	return b, nil
}

// Cancel 取消预订。只有预订人本人可以取消。
func (s *Service) Cancel(ctx context.Context, id, requesterID, reason string) (*Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != requesterID {
		return nil, fmt.Errorf("%w: only the booking owner can cancel", apperr.ErrForbidden)
	}

	b, err = s.store.Cancel(ctx, id, strings.TrimSpace(reason), s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.log.WithField("booking_id", id).Info("booking cancelled")
	return b, nil
}

// CheckoutInput 取车入参。StartMileage 不填时取车辆当前里程，
// 填了就以取车读数为准，0 也是合法读数。
type CheckoutInput struct {
	RequesterID    string
	StartMileage   *int64
	StartFuelLevel float64
	PrePhotoRefs   []string
	Comment        string
}

func (s *Service) Checkout(ctx context.Context, bookingID string, in CheckoutInput) (*Usage, error) {
	b, err := s.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != in.RequesterID {
		return nil, fmt.Errorf("%w: only the booking owner can check out", apperr.ErrForbidden)
	}
	if in.StartMileage != nil && *in.StartMileage < 0 {
		return nil, fmt.Errorf("%w: start mileage cannot be negative", apperr.ErrValidation)
	}

	u := &Usage{
		ID:              uuid.NewString(),
		StartFuelLevel:  in.StartFuelLevel,
		PrePhotoRefs:    in.PrePhotoRefs,
		CheckoutComment: strings.TrimSpace(in.Comment),
		CheckoutAt:      s.clk.Now(),
	}
	u, err = s.store.Checkout(ctx, bookingID, u, in.StartMileage)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{"booking_id": bookingID, "usage_id": u.ID}).Info("vehicle checked out")
	return u, nil
}

// CheckinInput 还车入参。
type CheckinInput struct {
	RequesterID    string
	EndMileage     int64
	EndFuelLevel   *float64
	DamageReported bool
	DamageDesc     string
	PostPhotoRefs  []string
	Comment        string
}

// Checkin 还车。终止里程小于起始里程时行驶里程为负，原样记录。
func (s *Service) Checkin(ctx context.Context, bookingID string, in CheckinInput) (*Usage, error) {
	b, err := s.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != in.RequesterID {
		return nil, fmt.Errorf("%w: only the booking owner can check in", apperr.ErrForbidden)
	}
	if in.EndMileage < 0 {
		return nil, fmt.Errorf("%w: end mileage cannot be negative", apperr.ErrValidation)
	}
	if in.DamageReported && strings.TrimSpace(in.DamageDesc) == "" {
		return nil, fmt.Errorf("%w: damage description required when damage is reported", apperr.ErrValidation)
	}

	u, err := s.store.Checkin(ctx, bookingID, CheckinUpdate{
		EndMileage:     in.EndMileage,
		EndFuelLevel:   in.EndFuelLevel,
		DamageReported: in.DamageReported,
		DamageDesc:     strings.TrimSpace(in.DamageDesc),
		PostPhotoRefs:  in.PostPhotoRefs,
		Comment:        strings.TrimSpace(in.Comment),
	}, s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{
		"booking_id": bookingID,
		"distance":   derefInt64(u.DistanceDriven),
		"damage":     u.DamageReported,
	}).Info("vehicle checked in")
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: booking id required", apperr.ErrValidation)
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, offset, limit int) ([]Booking, int64, error) {
	return s.store.List(ctx, f, offset, limit)
}

// Availability 返回时间窗内占用车辆的活跃预订，空结果即可订。
func (s *Service) Availability(ctx context.Context, vehicleID string, start, end time.Time) ([]Booking, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end time must be after start time", apperr.ErrValidation)
	}
	return s.store.FindOverlapping(ctx, vehicleID, start, end)
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
