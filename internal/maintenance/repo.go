package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/vehicle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTaskNotFound = fmt.Errorf("%w: maintenance task not found", apperr.ErrNotFound)

// AllowTransition 维保任务状态机。施工中的任务可以退回 OPEN
// 重新排期，DONE 是终态。
var AllowTransition = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusDone},
	StatusInProgress: {StatusOpen, StatusDone},
	StatusDone:       {},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Create 登记维保任务。初始即 IN_PROGRESS 的任务在同一事务里
// 把车辆压到 MAINTENANCE。
func (r *Repo) Create(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var veh vehicle.Vehicle
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", t.VehicleID).First(&veh).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return vehicle.ErrVehicleNotFound
			}
			return err
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		if t.Status == StatusInProgress {
			return tx.Model(&vehicle.Vehicle{}).
				Where("id = ?", t.VehicleID).
				Update("status", vehicle.StatusMaintenance).Error
		}
		return nil
	})
}

// UpdateStatus 流转任务状态并联动车辆状态，一个事务：
// IN_PROGRESS 压车辆到 MAINTENANCE，DONE 放回 AVAILABLE 并盖完工
// 时间，退回 OPEN 不动车辆。
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status, now time.Time) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&t).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if !CanTransition(t.Status, to) {
			return fmt.Errorf("%w: maintenance transition %s -> %s not allowed", apperr.ErrInvalidState, t.Status, to)
		}

		t.Status = to
		if to == StatusDone && t.CompletedDate == nil {
			d := now
			t.CompletedDate = &d
		}
		if err := tx.Save(&t).Error; err != nil {
			return err
		}

		switch to {
		case StatusInProgress:
			return tx.Model(&vehicle.Vehicle{}).
				Where("id = ?", t.VehicleID).
				Update("status", vehicle.StatusMaintenance).Error
		case StatusDone:
			return tx.Model(&vehicle.Vehicle{}).
				Where("id = ?", t.VehicleID).
				Update("status", vehicle.StatusAvailable).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List 支持按 vehicle_id / status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, vehicleID string, status Status, offset, limit int) ([]Task, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Task{})
	if vehicleID != "" {
		q = q.Where("vehicle_id = ?", vehicleID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tasks []Task
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
