package companydoc_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"leavehub/internal/companydoc"
	companydocerrors "leavehub/internal/companydoc/errors"
	"leavehub/internal/employee"
	"leavehub/internal/events"
	"leavehub/internal/messaging/kafka"
	"leavehub/internal/rbac"
	"leavehub/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeRepo struct {
	docs      map[string]*companydoc.CompanyDocument
	createErr error
}

func (f *fakeRepo) WithTx(tx *gorm.DB) companydoc.Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, d *companydoc.CompanyDocument) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.docs[d.ID.String()] = d
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*companydoc.CompanyDocument, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *d
	copied.Targets = append([]companydoc.CompanyDocumentTarget(nil), d.Targets...)
	return &copied, nil
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]companydoc.CompanyDocument, error) {
	var out []companydoc.CompanyDocument
	for _, d := range f.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeRepo) FindVisibleToDepartment(ctx context.Context, department string) ([]companydoc.CompanyDocument, error) {
	var out []companydoc.CompanyDocument
	for _, d := range f.docs {
		if d.AllStaff {
			out = append(out, *d)
			continue
		}
		for _, t := range d.Targets {
			if t.Department == department {
				out = append(out, *d)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) AddTargets(ctx context.Context, targets []companydoc.CompanyDocumentTarget) error {
	for _, t := range targets {
		d := f.docs[t.DocumentID.String()]
		d.Targets = append(d.Targets, t)
	}
	return nil
}

func (f *fakeRepo) SetAllStaff(ctx context.Context, id string) error {
	f.docs[id].AllStaff = true
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(f.docs, id)
	return nil
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

type fakeStore struct {
	objects map[string][]byte
	deletes []string
}

func (f *fakeStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(r)
	f.objects[bucket+"/"+key] = data
	return nil
}

func (f *fakeStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (f *fakeStore) Delete(ctx context.Context, bucket, key string) error {
	f.deletes = append(f.deletes, key)
	delete(f.objects, bucket+"/"+key)
	return nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *gorm.DB) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error                 { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type serviceDeps struct {
	sqlMock  sqlmock.Sqlmock
	service  companydoc.Service
	repo     *fakeRepo
	resolver *fakeResolver
	store    *fakeStore
	outbox   *fakeOutbox
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)},
	)
	assert.NoError(t, err)

	repo := &fakeRepo{docs: map[string]*companydoc.CompanyDocument{}}
	resolver := &fakeResolver{employees: map[string]*employee.Employee{}}
	store := &fakeStore{objects: map[string][]byte{}}
	outbox := &fakeOutbox{}

	svc := companydoc.NewService(gormDB, repo, resolver, store, outbox)
	return &serviceDeps{
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		resolver: resolver,
		store:    store,
		outbox:   outbox,
	}
}

func (d *serviceDeps) addEmployee(role, department string) *employee.Employee {
	e := &employee.Employee{ID: uuid.New(), Role: role, Department: department, IsActive: true}
	d.resolver.employees[e.ID.String()] = e
	return e
}

func (d *serviceDeps) expectTx(commit bool) {
	d.sqlMock.ExpectBegin()
	if commit {
		d.sqlMock.ExpectCommit()
	} else {
		d.sqlMock.ExpectRollback()
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	payload := "%PDF-1.4 handbook"

	t.Run("department targeted publish emits one event", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")
		deps.expectTx(true)

		resp, err := deps.service.Publish(ctx, hr.ID.String(), companydoc.PublishRequest{
			Title:       "Travel Policy",
			Departments: []string{"engineering", "engineering", "sales"},
		}, "travel policy.pdf", "application/pdf", int64(len(payload)), strings.NewReader(payload))
		assert.NoError(t, err)
		assert.Equal(t, "travel_policy.pdf", resp.FileName)
		assert.ElementsMatch(t, []string{"engineering", "sales"}, resp.Departments)

		assert.Len(t, deps.outbox.events, 1)
		evt := deps.outbox.events[0]
		assert.Equal(t, events.CompanyDocumentPublishedTopic, evt.Topic)
		assert.Equal(t, resp.ID, evt.AggregateID)

		var published events.CompanyDocumentPublishedEvent
		assert.NoError(t, json.Unmarshal(evt.Payload, &published))
		assert.ElementsMatch(t, []string{"engineering", "sales"}, published.Departments)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("no audience rejected before any write", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")

		_, err := deps.service.Publish(ctx, hr.ID.String(), companydoc.PublishRequest{
			Title: "Orphan",
		}, "x.pdf", "application/pdf", 4, strings.NewReader("data"))
		assert.ErrorIs(t, err, companydocerrors.ErrNoAudience)
		assert.Empty(t, deps.store.objects)
	})

	t.Run("failed transaction removes the stored object", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")
		deps.repo.createErr = gorm.ErrInvalidData
		deps.expectTx(false)

		_, err := deps.service.Publish(ctx, hr.ID.String(), companydoc.PublishRequest{
			Title:    "Broken",
			AllStaff: true,
		}, "x.pdf", "application/pdf", int64(len(payload)), strings.NewReader(payload))
		assert.Error(t, err)
		assert.Len(t, deps.store.deletes, 1)
		assert.Empty(t, deps.store.objects)
	})
}

func TestAddNotifiers(t *testing.T) {
	ctx := context.Background()
	payload := "%PDF-1.4 handbook"

	publish := func(t *testing.T, deps *serviceDeps, actor *employee.Employee, departments []string) companydoc.CompanyDocumentResponse {
		t.Helper()
		deps.expectTx(true)
		resp, err := deps.service.Publish(ctx, actor.ID.String(), companydoc.PublishRequest{
			Title:       "Handbook",
			Departments: departments,
		}, "handbook.pdf", "application/pdf", int64(len(payload)), strings.NewReader(payload))
		assert.NoError(t, err)
		return resp
	}

	t.Run("new departments notified once", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")
		doc := publish(t, deps, hr, []string{"engineering"})

		deps.expectTx(true)
		resp, err := deps.service.AddNotifiers(ctx, hr.ID.String(), doc.ID, companydoc.AddNotifiersRequest{
			Departments: []string{"engineering", "sales"},
		})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"engineering", "sales"}, resp.Departments)

		// First event from publish, second only carries the widened audience.
		assert.Len(t, deps.outbox.events, 2)
		var widened events.CompanyDocumentPublishedEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.events[1].Payload, &widened))
		assert.Equal(t, []string{"sales"}, widened.Departments)
	})

	t.Run("already targeted departments are a no-op", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")
		doc := publish(t, deps, hr, []string{"engineering"})

		resp, err := deps.service.AddNotifiers(ctx, hr.ID.String(), doc.ID, companydoc.AddNotifiersRequest{
			Departments: []string{"engineering"},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"engineering"}, resp.Departments)
		assert.Len(t, deps.outbox.events, 1)
	})

	t.Run("widening to all staff", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")
		doc := publish(t, deps, hr, []string{"engineering"})

		deps.expectTx(true)
		resp, err := deps.service.AddNotifiers(ctx, hr.ID.String(), doc.ID, companydoc.AddNotifiersRequest{
			AllStaff: true,
		})
		assert.NoError(t, err)
		assert.True(t, resp.AllStaff)
	})

	t.Run("empty request rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")
		doc := publish(t, deps, hr, []string{"engineering"})

		_, err := deps.service.AddNotifiers(ctx, hr.ID.String(), doc.ID, companydoc.AddNotifiersRequest{})
		assert.ErrorIs(t, err, companydocerrors.ErrNoAudience)
	})

	t.Run("unknown document", func(t *testing.T) {
		deps := setupServiceTest(t)
		hr := deps.addEmployee(rbac.RoleHR, "people")

		_, err := deps.service.AddNotifiers(ctx, hr.ID.String(), uuid.NewString(), companydoc.AddNotifiersRequest{AllStaff: true})
		assert.ErrorIs(t, err, companydocerrors.ErrCompanyDocumentNotFound)
	})
}

func TestGetAll_Visibility(t *testing.T) {
	ctx := context.Background()
	payload := "%PDF-1.4 doc"

	deps := setupServiceTest(t)
	hr := deps.addEmployee(rbac.RoleHR, "people")
	engineer := deps.addEmployee(rbac.RoleEmployee, "engineering")
	seller := deps.addEmployee(rbac.RoleEmployee, "sales")

	deps.expectTx(true)
	_, err := deps.service.Publish(ctx, hr.ID.String(), companydoc.PublishRequest{
		Title:       "Engineering Only",
		Departments: []string{"engineering"},
	}, "eng.pdf", "application/pdf", int64(len(payload)), strings.NewReader(payload))
	assert.NoError(t, err)

	deps.expectTx(true)
	_, err = deps.service.Publish(ctx, hr.ID.String(), companydoc.PublishRequest{
		Title:    "Everyone",
		AllStaff: true,
	}, "all.pdf", "application/pdf", int64(len(payload)), strings.NewReader(payload))
	assert.NoError(t, err)

	engineerDocs, err := deps.service.GetAll(ctx, engineer.ID.String())
	assert.NoError(t, err)
	assert.Len(t, engineerDocs, 2)

	sellerDocs, err := deps.service.GetAll(ctx, seller.ID.String())
	assert.NoError(t, err)
	assert.Len(t, sellerDocs, 1)
	assert.Equal(t, "Everyone", sellerDocs[0].Title)

	hrDocs, err := deps.service.GetAll(ctx, hr.ID.String())
	assert.NoError(t, err)
	assert.Len(t, hrDocs, 2)
}
