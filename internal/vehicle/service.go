package vehicle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/cache"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const vehicleCacheTTL = 5 * time.Minute

// Store 服务侧需要的车辆存储接口，*Repo 为其 GORM 实现。
type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*Vehicle, error)
	ExistsByPlate(ctx context.Context, plate string) (bool, error)
	Update(ctx context.Context, v *Vehicle) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]Vehicle, int64, error)
}

// Service 车辆台账。状态流转归预订/维保服务管，这里只提供
// 管理员显式覆盖（SetStatus）。
type Service struct {
	store    Store
	cache    cache.Cache
	validate *validator.Validate
	log      logger.Logger
}

func NewService(store Store, c cache.Cache, validate *validator.Validate, log logger.Logger) *Service {
	return &Service{store: store, cache: c, validate: validate, log: log}
}

// CreateInput 建档入参。
type CreateInput struct {
	LicensePlate string   `validate:"required"`
	Brand        string   `validate:"required"`
	Model        string   `validate:"required"`
	Year         int      `validate:"required,gte=1990,lte=2100"`
	Color        string
	VehicleType  Type     `validate:"required"`
	FuelType     FuelType `validate:"required"`
	SeatCapacity int      `validate:"gte=0,lte=64"`
	VIN          string
	Department   string
	CostCenter   string

	NextServiceDate        *time.Time
	InsuranceExpiryDate    *time.Time
	RegistrationExpiryDate *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Vehicle, error) {
	in.LicensePlate = strings.ToUpper(strings.TrimSpace(in.LicensePlate))
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	taken, err := s.store.ExistsByPlate(ctx, in.LicensePlate)
	if err != nil {
		return nil, fmt.Errorf("check plate: %w", err)
	}
	if taken {
		return nil, ErrPlateTaken
	}

	v := &Vehicle{
		ID:                     uuid.NewString(),
		LicensePlate:           in.LicensePlate,
		Brand:                  in.Brand,
		Model:                  in.Model,
		Year:                   in.Year,
		Color:                  in.Color,
		VehicleType:            in.VehicleType,
		FuelType:               in.FuelType,
		SeatCapacity:           in.SeatCapacity,
		VIN:                    strings.ToUpper(strings.TrimSpace(in.VIN)),
		Department:             in.Department,
		CostCenter:             in.CostCenter,
		Status:                 StatusAvailable,
		NextServiceDate:        in.NextServiceDate,
		InsuranceExpiryDate:    in.InsuranceExpiryDate,
		RegistrationExpiryDate: in.RegistrationExpiryDate,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	s.log.WithFields(map[string]interface{}{"vehicle_id": v.ID, "plate": v.LicensePlate}).Info("vehicle registered")
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Vehicle, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: vehicle id required", apperr.ErrValidation)
	}

	key := cacheKey(id)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var v Vehicle
			if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
				return &v, nil
			}
		}
	}

	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := s.cache.Set(ctx, key, raw, vehicleCacheTTL); err != nil {
				s.log.WithField("vehicle_id", id).Warnf("cache set failed: %v", err)
			}
		}
	}
	return v, nil
}

// UpdateInput 修改档案信息。车牌、状态、里程不走这里。
type UpdateInput struct {
	Brand        *string
	Model        *string
	Color        *string
	SeatCapacity *int
	Department   *string
	CostCenter   *string

	NextServiceDate        *time.Time
	InsuranceExpiryDate    *time.Time
	RegistrationExpiryDate *time.Time
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Vehicle, error) {
	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Brand != nil {
		v.Brand = *in.Brand
	}
	if in.Model != nil {
		v.Model = *in.Model
	}
	if in.Color != nil {
		v.Color = *in.Color
	}
	if in.SeatCapacity != nil {
		v.SeatCapacity = *in.SeatCapacity
	}
	if in.Department != nil {
		v.Department = *in.Department
	}
	if in.CostCenter != nil {
		v.CostCenter = *in.CostCenter
	}
	if in.NextServiceDate != nil {
		v.NextServiceDate = in.NextServiceDate
	}
	if in.InsuranceExpiryDate != nil {
		v.InsuranceExpiryDate = in.InsuranceExpiryDate
	}
	if in.RegistrationExpiryDate != nil {
		v.RegistrationExpiryDate = in.RegistrationExpiryDate
	}

	if err := s.store.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	s.invalidate(ctx, id)
	return v, nil
}

// SetStatus 管理员显式覆盖车辆状态。
func (s *Service) SetStatus(ctx context.Context, id string, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown vehicle status %q", apperr.ErrValidation, status)
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.WithFields(map[string]interface{}{"vehicle_id": id, "status": status}).Info("vehicle status overridden")
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, offset, limit int) ([]Vehicle, int64, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown vehicle status %q", apperr.ErrValidation, filter.Status)
	}
	return s.store.List(ctx, filter, offset, limit)
}

// ListAvailable 员工挑车入口，只看 AVAILABLE，支持按部门和车型过滤。
func (s *Service) ListAvailable(ctx context.Context, department string, vehicleType Type, offset, limit int) ([]Vehicle, int64, error) {
	return s.store.List(ctx, ListFilter{
		Status:      StatusAvailable,
		Department:  department,
		VehicleType: vehicleType,
	}, offset, limit)
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.WithField("vehicle_id", id).Warnf("cache invalidate failed: %v", err)
	}
}

func cacheKey(id string) string {
	return "vehicle:" + id
}
