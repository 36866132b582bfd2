package vehicle

import (
	"context"
	"errors"
	"testing"

	"github.com/FleetShare/FleetShare/internal/common/apperr"
	"github.com/FleetShare/FleetShare/internal/common/logger"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVehicleStore struct {
	byID map[string]*Vehicle
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{byID: map[string]*Vehicle{}}
}

func (f *fakeVehicleStore) Create(ctx context.Context, v *Vehicle) error {
	f.byID[v.ID] = v
	return nil
}

func (f *fakeVehicleStore) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVehicleStore) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	for _, v := range f.byID {
		if v.LicensePlate == plate {
			cp := *v
			return &cp, nil
		}
	}
	return nil, ErrVehicleNotFound
}

func (f *fakeVehicleStore) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	for _, v := range f.byID {
		if v.LicensePlate == plate {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVehicleStore) Update(ctx context.Context, v *Vehicle) error {
	if _, ok := f.byID[v.ID]; !ok {
		return ErrVehicleNotFound
	}
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVehicleStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	v, ok := f.byID[id]
	if !ok {
		return ErrVehicleNotFound
	}
	v.Status = status
	return nil
}

func (f *fakeVehicleStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return ErrVehicleNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeVehicleStore) List(ctx context.Context, filter ListFilter, offset, limit int) ([]Vehicle, int64, error) {
	var out []Vehicle
	for _, v := range f.byID {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Department != "" && v.Department != filter.Department {
			continue
		}
		if filter.VehicleType != "" && v.VehicleType != filter.VehicleType {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func newTestVehicleService(store Store) *Service {
	return NewService(store, nil, validator.New(), logger.Nop())
}

func validInput() CreateInput {
	return CreateInput{
		LicensePlate: "b-fs 1234",
		Brand:        "VW",
		Model:        "Passat",
		Year:         2022,
		VehicleType:  TypeSedan,
		FuelType:     FuelHybrid,
		SeatCapacity: 5,
		Department:   "sales",
	}
}

func TestCreateVehicle(t *testing.T) {
	svc := newTestVehicleService(newFakeVehicleStore())

	v, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "B-FS 1234", v.LicensePlate)
	assert.Equal(t, StatusAvailable, v.Status)
	assert.Zero(t, v.CurrentMileage)
}

func TestCreateVehicleDuplicatePlate(t *testing.T) {
	svc := newTestVehicleService(newFakeVehicleStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestCreateVehicleValidation(t *testing.T) {
	svc := newTestVehicleService(newFakeVehicleStore())

	in := validInput()
	in.Year = 1901
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestSetStatus(t *testing.T) {
	store := newFakeVehicleStore()
	svc := newTestVehicleService(store)
	ctx := context.Background()

	v, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, v.ID, StatusInactive))
	got, err := svc.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, got.Status)

	err = svc.SetStatus(ctx, v.ID, Status("PARKED"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = svc.SetStatus(ctx, "no-such-id", StatusAvailable)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListAvailableFilter(t *testing.T) {
	store := newFakeVehicleStore()
	svc := newTestVehicleService(store)
	ctx := context.Background()

	sedan, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	vanIn := validInput()
	vanIn.LicensePlate = "B-FS 9999"
	vanIn.VehicleType = TypeVan
	vanIn.Department = "logistics"
	van, err := svc.Create(ctx, vanIn)
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, van.ID, StatusMaintenance))

	items, total, err := svc.ListAvailable(ctx, "", "", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, sedan.ID, items[0].ID)

	_, total, err = svc.ListAvailable(ctx, "logistics", TypeVan, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
}
