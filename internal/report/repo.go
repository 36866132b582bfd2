package report

import (
	"context"
	"time"

	"github.com/FleetShare/FleetShare/internal/booking"
	"github.com/FleetShare/FleetShare/internal/vehicle"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CompletedUsage 某个时间段内完成的行程聚合。
type CompletedUsage struct {
	Bookings      int64
	TotalDistance int64
}

// CompletedUsageInRange 统计 [start, end) 内完成的预订数和总里程。
// 负的行驶里程照常计入，脏数据在报表层不做修正。
func (r *Repo) CompletedUsageInRange(ctx context.Context, start, end time.Time) (*CompletedUsage, error) {
	var out CompletedUsage
	err := r.db.WithContext(ctx).Model(&booking.Booking{}).
		Select("COUNT(*) AS bookings, COALESCE(SUM(usages.distance_driven), 0) AS total_distance").
		Joins("LEFT JOIN usages ON usages.booking_id = bookings.id").
		Where("bookings.status = ?", booking.StatusCompleted).
		Where("bookings.completed_at >= ? AND bookings.completed_at < ?", start, end).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FleetStatusCounts 按状态统计车辆数。
func (r *Repo) FleetStatusCounts(ctx context.Context) (map[vehicle.Status]int64, error) {
	var rows []struct {
		Status vehicle.Status
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&vehicle.Vehicle{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[vehicle.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}
