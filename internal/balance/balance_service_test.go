package balance_test

import (
	"context"
	"testing"

	"leavehub/internal/balance"
	"leavehub/internal/employee"
	"leavehub/internal/leavetype"
	"leavehub/internal/rbac"
	"leavehub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	rows   map[string][]balance.Balance
	seeded []*balance.Balance
	found  *balance.Balance
}

func (f *fakeRepo) WithTx(tx *gorm.DB) balance.Repository { return f }

func (f *fakeRepo) Find(ctx context.Context, employeeID, leaveTypeID string, year int) (*balance.Balance, error) {
	if f.found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.found, nil
}

func (f *fakeRepo) FindAllByEmployee(ctx context.Context, employeeID string) ([]balance.Balance, error) {
	return f.rows[employeeID], nil
}

func (f *fakeRepo) Seed(ctx context.Context, b *balance.Balance) error {
	f.seeded = append(f.seeded, b)
	return nil
}

func (f *fakeRepo) IncrementUsed(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (*balance.Balance, error) {
	return nil, nil
}

type fakeResolver struct {
	employees map[string]*employee.Employee
}

func (f *fakeResolver) ResolveActor(ctx context.Context, actorID string) (*employee.Employee, error) {
	e, ok := f.employees[actorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeResolver) GetAll(ctx context.Context, actorID string) ([]employee.EmployeeResponse, error) {
	return nil, nil
}
func (f *fakeResolver) GetByID(ctx context.Context, actorID, id string) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{}, nil
}
func (f *fakeResolver) UpdateSelf(ctx context.Context, actorID string, req employee.UpdateSelfRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{}, nil
}
func (f *fakeResolver) Update(ctx context.Context, actorID, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{}, nil
}
func (f *fakeResolver) Deactivate(ctx context.Context, actorID, id string) error { return nil }

func setup() (*fakeRepo, *fakeResolver, balance.Service) {
	repo := &fakeRepo{rows: map[string][]balance.Balance{}}
	resolver := &fakeResolver{employees: map[string]*employee.Employee{}}
	svc := balance.NewService(nil, repo, resolver)
	return repo, resolver, svc
}

func addEmployee(r *fakeResolver, role, department string) *employee.Employee {
	e := &employee.Employee{ID: uuid.New(), Role: role, Department: department, IsActive: true}
	r.employees[e.ID.String()] = e
	return e
}

func TestGetAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("missing row reads as zero", func(t *testing.T) {
		_, _, svc := setup()
		got, err := svc.GetAvailable(ctx, uuid.NewString(), uuid.NewString(), 2026)
		assert.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("available is allocated plus carried minus used", func(t *testing.T) {
		repo, _, svc := setup()
		repo.found = &balance.Balance{
			AllocatedDays:      decimal.NewFromInt(12),
			UsedDays:           decimal.NewFromFloat(2.5),
			CarriedForwardDays: decimal.NewFromInt(3),
		}
		got, err := svc.GetAvailable(ctx, uuid.NewString(), uuid.NewString(), 2026)
		assert.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromFloat(12.5)))
	})
}

func TestGetEmployeeBalances_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("own balances need no lookup", func(t *testing.T) {
		repo, _, svc := setup()
		id := uuid.NewString()
		repo.rows[id] = []balance.Balance{{Year: 2026}}

		got, err := svc.GetEmployeeBalances(ctx, id, id)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("same department manager allowed", func(t *testing.T) {
		repo, resolver, svc := setup()
		manager := addEmployee(resolver, rbac.RoleManager, "engineering")
		target := addEmployee(resolver, rbac.RoleEmployee, "engineering")
		repo.rows[target.ID.String()] = []balance.Balance{{Year: 2026}}

		got, err := svc.GetEmployeeBalances(ctx, manager.ID.String(), target.ID.String())
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("cross department manager forbidden", func(t *testing.T) {
		_, resolver, svc := setup()
		manager := addEmployee(resolver, rbac.RoleManager, "sales")
		target := addEmployee(resolver, rbac.RoleEmployee, "engineering")

		_, err := svc.GetEmployeeBalances(ctx, manager.ID.String(), target.ID.String())
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("plain employee forbidden", func(t *testing.T) {
		_, resolver, svc := setup()
		actor := addEmployee(resolver, rbac.RoleEmployee, "engineering")
		target := addEmployee(resolver, rbac.RoleEmployee, "engineering")

		_, err := svc.GetEmployeeBalances(ctx, actor.ID.String(), target.ID.String())
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("hr allowed across departments", func(t *testing.T) {
		repo, resolver, svc := setup()
		hr := addEmployee(resolver, rbac.RoleHR, "people")
		target := addEmployee(resolver, rbac.RoleEmployee, "engineering")
		repo.rows[target.ID.String()] = []balance.Balance{{Year: 2026}}

		got, err := svc.GetEmployeeBalances(ctx, hr.ID.String(), target.ID.String())
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestOnboard(t *testing.T) {
	repo, _, svc := setup()
	employeeID := uuid.New()
	types := []leavetype.LeaveType{
		{ID: uuid.New(), DefaultAllocationDays: decimal.NewFromInt(12)},
		{ID: uuid.New(), DefaultAllocationDays: decimal.NewFromInt(5)},
	}

	err := svc.Onboard(context.Background(), nil, employeeID, types)
	assert.NoError(t, err)
	assert.Len(t, repo.seeded, 2)
	assert.Equal(t, employeeID, repo.seeded[0].EmployeeID)
	assert.True(t, repo.seeded[0].AllocatedDays.Equal(decimal.NewFromInt(12)))
	assert.True(t, repo.seeded[1].AllocatedDays.Equal(decimal.NewFromInt(5)))
}
