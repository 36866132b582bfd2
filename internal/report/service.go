package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/cache"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/FleetShare/FleetShare/internal/vehicle"
)

// 油耗估算基准：10L/100km。报表只给量级参考，不做按车型细分。
const fuelLitersPer100Km = 10.0

const reportCacheTTL = time.Minute

// Store 报表侧的只读查询接口，*Repo 为其 GORM 实现。
type Store interface {
	CompletedUsageInRange(ctx context.Context, start, end time.Time) (*CompletedUsage, error)
	FleetStatusCounts(ctx context.Context) (map[vehicle.Status]int64, error)
}

// UsageReport 时间段内的用车报表。
type UsageReport struct {
	PeriodStart        time.Time                `json:"periodStart"`
	PeriodEnd          time.Time                `json:"periodEnd"`
	CompletedBookings  int64                    `json:"completedBookings"`
	TotalDistanceKm    int64                    `json:"totalDistanceKm"`
	EstimatedFuelLiter float64                  `json:"estimatedFuelLiters"`
	FleetByStatus      map[vehicle.Status]int64 `json:"fleetByStatus"`
}

// Service 只读报表，结果进 redis 短缓存。
type Service struct {
	store Store
	cache cache.Cache
	log   logger.Logger
}

func NewService(store Store, c cache.Cache, log logger.Logger) *Service {
	return &Service{store: store, cache: c, log: log}
}

func (s *Service) Usage(ctx context.Context, start, end time.Time) (*UsageReport, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: period end must be after period start", apperr.ErrValidation)
	}

	key := fmt.Sprintf("report:usage:%d:%d", start.Unix(), end.Unix())
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var rep UsageReport
			if jsonErr := json.Unmarshal(raw, &rep); jsonErr == nil {
				return &rep, nil
			}
		}
	}

	usage, err := s.store.CompletedUsageInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	fleet, err := s.store.FleetStatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count fleet: %w", err)
	}

	rep := &UsageReport{
		PeriodStart:        start,
		PeriodEnd:          end,
		CompletedBookings:  usage.Bookings,
		TotalDistanceKm:    usage.TotalDistance,
		EstimatedFuelLiter: float64(usage.TotalDistance) * fuelLitersPer100Km / 100.0,
		FleetByStatus:      fleet,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(rep); err == nil {
			if err := s.cache.Set(ctx, key, raw, reportCacheTTL); err != nil {
				s.log.Warnf("report cache set failed: %v", err)
			}
		}
	}
	return rep, nil
}
