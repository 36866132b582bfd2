package booking

import (
	"fmt"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
)

// AllowTransition 定义预订状态机的允许流转关系。
// 目前采用“有向图”方式进行配置，后续可根据需要抽到配置中心。
var AllowTransition = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCancelled, StatusCompleted},
	// 终态：不允许从 rejected / cancelled / completed 再流转
	StatusRejected:  {},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
// 同态重放（from == to）也视为非法，调用方必须幂等处理。
func CanTransition(from, to Status) bool {
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对预订应用状态变更，并维护关键时间字段。
func ApplyTransition(b *Booking, to Status, now time.Time) error {
	if b == nil {
		return fmt.Errorf("booking is nil")
	}
	from := b.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: booking transition %s -> %s not allowed", apperr.ErrInvalidState, from, to)
	}

	b.Status = to

	switch to {
	case StatusApproved:
		if b.ApprovedAt == nil {
			t := now
			b.ApprovedAt = &t
		}
	case StatusRejected:
		if b.RejectedAt == nil {
			t := now
			b.RejectedAt = &t
		}
	case StatusCancelled:
		if b.CancelledAt == nil {
			t := now
			b.CancelledAt = &t
		}
	case StatusCompleted:
		if b.CompletedAt == nil {
			t := now
			b.CompletedAt = &t
		}
	}
	return nil
}
