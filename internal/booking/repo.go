package booking

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

var (
	ErrBookingNotFound    = fmt.Errorf("%w: booking not found", apperr.ErrNotFound)
	ErrTimeConflict       = fmt.Errorf("%w: vehicle already booked for this time window", apperr.ErrConflict)
	ErrVehicleUnavailable = fmt.Errorf("%w: vehicle is not available for booking", apperr.ErrInvalidState)
	ErrAlreadyCheckedOut  = fmt.Errorf("%w: vehicle already checked out for this booking", apperr.ErrConflict)
	ErrNotCheckedOut      = fmt.Errorf("%w: vehicle has not been checked out", apperr.ErrInvalidState)
	ErrAlreadyCheckedIn   = fmt.Errorf("%w: vehicle already checked in", apperr.ErrInvalidState)
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Create 在单个事务里完成“锁车 - 复核 - 查冲突 - 落库”。
// 车辆行上的 FOR UPDATE 锁把并发的同车预订串行化，没有这一步，
// 两个请求可以同时通过冲突检查然后都插入成功。
func (r *Repo) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var veh vehicle.Vehicle
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", b.VehicleID).First(&veh).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return vehicle.ErrVehicleNotFound
			}
			return err
		}
		if veh.Status != vehicle.StatusAvailable {
			return ErrVehicleUnavailable
		}

		var count int64
		err = tx.Model(&Booking{}).
			Where("vehicle_id = ?", b.VehicleID).
			Where("status IN ?", []Status{StatusPending, StatusApproved}).
			Where("start_time < ? AND ? < end_time", b.EndTime, b.StartTime).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrTimeConflict
		}

		return tx.Create(b).Error
	})
}

// Approve 审批通过：预订进入 APPROVED，车辆标记 IN_USE，一个事务。
func (r *Repo) Approve(ctx context.Context, id, approverID string, now time.Time) (*Booking, error) {
	var b *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		b, err = lockBooking(tx, id)
		if err != nil {
			return err
		}
		if err := ApplyTransition(b, StatusApproved, now); err != nil {
			return err
		}
		b.ApproverID = &approverID
		if err := tx.Save(b).Error; err != nil {
			return err
		}
		return tx.Model(&vehicle.Vehicle{}).
			Where("id = ?", b.VehicleID).
			Update("status", vehicle.StatusInUse).Error
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Reject 审批驳回，车辆不受影响。
func (r *Repo) Reject(ctx context.Context, id, approverID, reason string, now time.Time) (*Booking, error) {
	var b *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		b, err = lockBooking(tx, id)
		if err != nil {
			return err
		}
		if err := ApplyTransition(b, StatusRejected, now); err != nil {
			return err
		}
		b.ApproverID = &approverID
		b.RejectionReason = reason
		return tx.Save(b).Error
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel 取消预订。只有 APPROVED 状态的取消需要把车辆放回
// AVAILABLE；PENDING 的取消从未占用过车辆。
func (r *Repo) Cancel(ctx context.Context, id, reason string, now time.Time) (*Booking, error) {
	var b *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		b, err = lockBooking(tx, id)
		if err != nil {
			return err
		}
		wasApproved := b.Status == StatusApproved
		if err := ApplyTransition(b, StatusCancelled, now); err != nil {
			return err
		}
		b.CancellationReason = reason
		if err := tx.Save(b).Error; err != nil {
			return err
		}
		if wasApproved {
			// 只在车辆还处于本预订造成的 IN_USE 时放回，不覆盖维保等状态
			return tx.Model(&vehicle.Vehicle{}).
				Where("id = ? AND status = ?", b.VehicleID, vehicle.StatusInUse).
				Update("status", vehicle.StatusAvailable).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Checkout 取车：创建用车记录并把车辆里程对齐到取车读数，一个事务。
// 车辆状态不动（审批时已是 IN_USE）。startMileage 为 nil 时取车辆
// 当前里程，传了就原样采用，0 读数同样有效。
func (r *Repo) Checkout(ctx context.Context, bookingID string, u *Usage, startMileage *int64) (*Usage, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != StatusApproved {
			return fmt.Errorf("%w: booking must be APPROVED to check out, got %s", apperr.ErrInvalidState, b.Status)
		}

		var count int64
		if err := tx.Model(&Usage{}).Where("booking_id = ?", bookingID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyCheckedOut
		}

		var veh vehicle.Vehicle
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", b.VehicleID).First(&veh).Error
		if err != nil {
			return err
		}
		if startMileage != nil {
			u.StartMileage = *startMileage
		} else {
			u.StartMileage = veh.CurrentMileage
		}
		u.BookingID = bookingID
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		// 取车读数为准，不和历史里程比对
		return tx.Model(&vehicle.Vehicle{}).
			Where("id = ?", veh.ID).
			Update("current_mileage", u.StartMileage).Error
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CheckinUpdate 还车写入的字段。
type CheckinUpdate struct {
	EndMileage     int64
	EndFuelLevel   *float64
	DamageReported bool
	DamageDesc     string
	PostPhotoRefs  []string
	Comment        string
}

// Checkin 还车：用车记录、车辆、预订三者在一个事务里收尾。
// 车辆里程同步为终止里程并回到 AVAILABLE；报损只记录在用车
// 记录上，是否开维保单由管理员决定。
func (r *Repo) Checkin(ctx context.Context, bookingID string, upd CheckinUpdate, now time.Time) (*Usage, error) {
	var u Usage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_id = ?", bookingID).First(&u).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotCheckedOut
			}
			return err
		}
		if u.CheckedIn() {
			return ErrAlreadyCheckedIn
		}

		distance := upd.EndMileage - u.StartMileage
		t := now
		u.EndMileage = &upd.EndMileage
		u.EndFuelLevel = upd.EndFuelLevel
		u.DistanceDriven = &distance
		u.DamageReported = upd.DamageReported
		u.DamageDescription = upd.DamageDesc
		u.PostPhotoRefs = upd.PostPhotoRefs
		u.CheckinComment = upd.Comment
		u.CheckinAt = &t
		if err := tx.Save(&u).Error; err != nil {
			return err
		}

		if err := ApplyTransition(b, StatusCompleted, now); err != nil {
			return err
		}
		if err := tx.Save(b).Error; err != nil {
			return err
		}

		return tx.Model(&vehicle.Vehicle{}).
			Where("id = ?", b.VehicleID).
			Updates(map[string]interface{}{
				"current_mileage": upd.EndMileage,
				"status":          vehicle.StatusAvailable,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func lockBooking(tx *gorm.DB, id string) (*Booking, error) {
	var b Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).Preload("Usage").Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListFilter 支持按 user_id / vehicle_id / status 过滤 + 分页。
type ListFilter struct {
	UserID    string
	VehicleID string
	Status    Status
}

func (r *Repo) List(ctx context.Context, f ListFilter, offset, limit int) ([]Booking, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Booking{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.VehicleID != "" {
		q = q.Where("vehicle_id = ?", f.VehicleID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookings []Booking
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindOverlapping 返回与给定时间窗重叠的活跃预订。
func (r *Repo) FindOverlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Where("status IN ?", []Status{StatusPending, StatusApproved}).
		Where("start_time < ? AND ? < end_time", end, start).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
