package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/clock"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/FleetShare/FleetShare/internal/vehicle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTaskStore 复刻仓储的车辆联动语义。
type fakeTaskStore struct {
	vehicles map[string]*vehicle.Vehicle
	tasks    map[string]*Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{vehicles: map[string]*vehicle.Vehicle{}, tasks: map[string]*Task{}}
}

func (f *fakeTaskStore) Create(ctx context.Context, t *Task) error {
	v, ok := f.vehicles[t.VehicleID]
	if !ok {
		return vehicle.ErrVehicleNotFound
	}
	cp := *t
	f.tasks[t.ID] = &cp
	if t.Status == StatusInProgress {
		v.Status = vehicle.StatusMaintenance
	}
	return nil
}

func (f *fakeTaskStore) UpdateStatus(ctx context.Context, id string, to Status, now time.Time) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if !CanTransition(t.Status, to) {
		return nil, errors.Join(apperr.ErrInvalidState, errors.New("transition not allowed"))
	}
	t.Status = to
	if to == StatusDone && t.CompletedDate == nil {
		d := now
		t.CompletedDate = &d
	}
	switch to {
	case StatusInProgress:
		f.vehicles[t.VehicleID].Status = vehicle.StatusMaintenance
	case StatusDone:
		f.vehicles[t.VehicleID].Status = vehicle.StatusAvailable
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) FindByID(ctx context.Context, id string) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) List(ctx context.Context, vehicleID string, status Status, offset, limit int) ([]Task, int64, error) {
	var out []Task
	for _, t := range f.tasks {
		if vehicleID != "" && t.VehicleID != vehicleID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestMaintenanceService(f *fakeTaskStore) *Service {
	return NewService(f, clock.Fixed{T: testNow}, logger.Nop())
}

func TestCreateTaskVehicleCoupling(t *testing.T) {
	f := newFakeTaskStore()
	svc := newTestMaintenanceService(f)
	ctx := context.Background()
	f.vehicles["v1"] = &vehicle.Vehicle{ID: "v1", Status: vehicle.StatusAvailable}

	// OPEN 登记不影响车辆
	task, err := svc.Create(ctx, CreateInput{VehicleID: "v1", CreatedBy: "admin", Title: "oil change"})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, task.Status)
	assert.Equal(t, "0", task.Cost)
	assert.Equal(t, vehicle.StatusAvailable, f.vehicles["v1"].Status)

	// StartNow 直接开工，车辆下线
	task, err = svc.Create(ctx, CreateInput{VehicleID: "v1", CreatedBy: "admin", Title: "brake pads", StartNow: true})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Equal(t, vehicle.StatusMaintenance, f.vehicles["v1"].Status)
}

func TestUpdateStatusCoupling(t *testing.T) {
	f := newFakeTaskStore()
	svc := newTestMaintenanceService(f)
	ctx := context.Background()
	f.vehicles["v1"] = &vehicle.Vehicle{ID: "v1", Status: vehicle.StatusAvailable}

	task, err := svc.Create(ctx, CreateInput{VehicleID: "v1", CreatedBy: "admin", Title: "inspection"})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(ctx, task.ID, StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, vehicle.StatusMaintenance, f.vehicles["v1"].Status)

	got, err = svc.UpdateStatus(ctx, task.ID, StatusDone)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	require.NotNil(t, got.CompletedDate)
	assert.True(t, got.CompletedDate.Equal(testNow))
	assert.Equal(t, vehicle.StatusAvailable, f.vehicles["v1"].Status)

	// DONE 是终态
	_, err = svc.UpdateStatus(ctx, task.ID, StatusInProgress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
}

func TestRevertInProgressToOpen(t *testing.T) {
	f := newFakeTaskStore()
	svc := newTestMaintenanceService(f)
	ctx := context.Background()
	f.vehicles["v1"] = &vehicle.Vehicle{ID: "v1", Status: vehicle.StatusAvailable}

	task, err := svc.Create(ctx, CreateInput{VehicleID: "v1", CreatedBy: "admin", Title: "engine check", StartNow: true})
	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusMaintenance, f.vehicles["v1"].Status)

	// 施工中退回 OPEN 重新排期，车辆不联动
	got, err := svc.UpdateStatus(ctx, task.ID, StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, got.Status)
	assert.Equal(t, vehicle.StatusMaintenance, f.vehicles["v1"].Status)

	// 退回后还能重新开工直至完工
	_, err = svc.UpdateStatus(ctx, task.ID, StatusInProgress)
	require.NoError(t, err)
	got, err = svc.UpdateStatus(ctx, task.ID, StatusDone)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, vehicle.StatusAvailable, f.vehicles["v1"].Status)
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFakeTaskStore()
	svc := newTestMaintenanceService(f)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "t1", Status("PAUSED"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.UpdateStatus(ctx, "no-such-task", StatusDone)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFakeTaskStore()
	svc := newTestMaintenanceService(f)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "oil change"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, CreateInput{VehicleID: "v1"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, CreateInput{VehicleID: "ghost", Title: "oil change"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
