package vehicle

import (
	"context"
	"errors"
	"fmt"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"gorm.io/gorm"
)

var (
	ErrVehicleNotFound = fmt.Errorf("%w: vehicle not found", apperr.ErrNotFound)
	ErrPlateTaken      = fmt.Errorf("%w: license plate already registered", apperr.ErrConflict)
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *Repo) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	var v Vehicle
	err := r.db.WithContext(ctx).Where("license_plate = ?", plate).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *Repo) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Vehicle{}).
		Where("license_plate = ?", plate).Count(&count).Error
	return count > 0, err
}

func (r *Repo) Update(ctx context.Context, v *Vehicle) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) error {
	res := r.db.WithContext(ctx).Model(&Vehicle{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Vehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// ListFilter 车辆列表过滤条件，零值字段不过滤。
type ListFilter struct {
	Status      Status
	Department  string
	VehicleType Type
}

func (r *Repo) List(ctx context.Context, filter ListFilter, offset, limit int) ([]Vehicle, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Vehicle{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.VehicleType != "" {
		q = q.Where("vehicle_type = ?", filter.VehicleType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vehicles []Vehicle
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}
