package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/clock"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/google/uuid"
)

// Store 服务侧需要的维保存储接口，*Repo 为其 GORM 实现。
type Store interface {
	Create(ctx context.Context, t *Task) error
	UpdateStatus(ctx context.Context, id string, to Status, now time.Time) (*Task, error)
	FindByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, vehicleID string, status Status, offset, limit int) ([]Task, int64, error)
}

// Service 维保任务管理。车辆状态联动在存储事务里完成。
type Service struct {
	store Store
	clk   clock.Clock
	log   logger.Logger
}

func NewService(store Store, clk clock.Clock, log logger.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{store: store, clk: clk, log: log}
}

// CreateInput 登记维保任务的入参。
type CreateInput struct {
	VehicleID   string
	CreatedBy   string
	Title       string
	Description string
	Workshop    string
	Cost        string
	PlannedDate *time.Time
	StartNow    bool // true 时任务直接进入 IN_PROGRESS，车辆立刻下线
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	if strings.TrimSpace(in.VehicleID) == "" {
		return nil, fmt.Errorf("%w: vehicle id required", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title required", apperr.ErrValidation)
	}

	status := StatusOpen
	if in.StartNow {
		status = StatusInProgress
	}
	t := &Task{
		ID:          uuid.NewString(),
		VehicleID:   in.VehicleID,
		CreatedBy:   in.CreatedBy,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Workshop:    strings.TrimSpace(in.Workshop),
		Cost:        strings.TrimSpace(in.Cost),
		PlannedDate: in.PlannedDate,
	}
	if t.Cost == "" {
		t.Cost = "0"
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{
		"task_id":    t.ID,
		"vehicle_id": t.VehicleID,
		"status":     t.Status,
	}).Info("maintenance task created")
	return t, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Task, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown maintenance status %q", apperr.ErrValidation, to)
	}
	t, err := s.store.UpdateStatus(ctx, id, to, s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{"task_id": id, "status": to}).Info("maintenance status updated")
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: task id required", apperr.ErrValidation)
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, vehicleID string, status Status, offset, limit int) ([]Task, int64, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("%w: unknown maintenance status %q", apperr.ErrValidation, status)
	}
	return s.store.List(ctx, vehicleID, status, offset, limit)
}
