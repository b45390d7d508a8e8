package leave_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"leavehub/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRepoTestDB(t *testing.T) (leave.Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)},
	)
	assert.NoError(t, err)

	return leave.NewRepository(gormDB), sqlMock
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	assert.NoError(t, err)
	return d
}

// The guard must use a symmetric range predicate over active rows only.
// An asymmetric one (start-in-range checks alone) misses a new request
// that sits fully inside an existing one.
const overlapCountSQL = `SELECT count(*) FROM "leaves" WHERE employee_id = $1 AND status IN ($2,$3) AND NOT (end_date < $4 OR start_date > $5)`

func TestHasOverlappingPeriod_ContainedRange(t *testing.T) {
	repo, sqlMock := newRepoTestDB(t)
	employeeID := uuid.NewString()

	// Existing leave 2025-06-01..05; the new request 06-03..04 sits fully
	// inside it, so neither of its endpoints crosses the stored ones. The
	// symmetric predicate still matches that row.
	sqlMock.ExpectQuery(regexp.QuoteMeta(overlapCountSQL)).
		WithArgs(employeeID, leave.StatusPending, leave.StatusApproved, day(t, "2025-06-03"), day(t, "2025-06-04")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	overlaps, err := repo.HasOverlappingPeriod(context.Background(), employeeID, day(t, "2025-06-03"), day(t, "2025-06-04"), nil)
	assert.NoError(t, err)
	assert.True(t, overlaps)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHasOverlappingPeriod_ClearPeriod(t *testing.T) {
	repo, sqlMock := newRepoTestDB(t)
	employeeID := uuid.NewString()

	sqlMock.ExpectQuery(regexp.QuoteMeta(overlapCountSQL)).
		WithArgs(employeeID, leave.StatusPending, leave.StatusApproved, day(t, "2025-07-01"), day(t, "2025-07-02")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	overlaps, err := repo.HasOverlappingPeriod(context.Background(), employeeID, day(t, "2025-07-01"), day(t, "2025-07-02"), nil)
	assert.NoError(t, err)
	assert.False(t, overlaps)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHasOverlappingPeriod_ExcludesOwnRow(t *testing.T) {
	repo, sqlMock := newRepoTestDB(t)
	employeeID := uuid.NewString()
	excludeID := uuid.NewString()

	// Editing a pending request must not collide with the row being edited.
	sqlMock.ExpectQuery(regexp.QuoteMeta(overlapCountSQL+` AND id <> $6`)).
		WithArgs(employeeID, leave.StatusPending, leave.StatusApproved, day(t, "2025-06-03"), day(t, "2025-06-04"), excludeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	overlaps, err := repo.HasOverlappingPeriod(context.Background(), employeeID, day(t, "2025-06-03"), day(t, "2025-06-04"), &excludeID)
	assert.NoError(t, err)
	assert.False(t, overlaps)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHasOverlappingPeriod_EmptyExcludeIDIgnored(t *testing.T) {
	repo, sqlMock := newRepoTestDB(t)
	employeeID := uuid.NewString()
	empty := ""

	sqlMock.ExpectQuery(regexp.QuoteMeta(overlapCountSQL)).
		WithArgs(employeeID, leave.StatusPending, leave.StatusApproved, day(t, "2025-06-03"), day(t, "2025-06-04")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	overlaps, err := repo.HasOverlappingPeriod(context.Background(), employeeID, day(t, "2025-06-03"), day(t, "2025-06-04"), &empty)
	assert.NoError(t, err)
	assert.True(t, overlaps)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
