package stats_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"leavehub/internal/stats"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

const summaryKey = "stats:summary"

type fakeStatsRepo struct {
	summary  *stats.Summary
	err      error
	calls    int
	computed chan struct{}
}

func (f *fakeStatsRepo) ComputeSummary(ctx context.Context) (*stats.Summary, error) {
	f.calls++
	if f.computed != nil {
		select {
		case f.computed <- struct{}{}:
		default:
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func sampleSummary() *stats.Summary {
	return &stats.Summary{
		EmployeesByRole: []stats.CountByKey{
			{Key: "employee", Count: 40},
			{Key: "manager", Count: 5},
		},
		LeavesByType: []stats.CountByKey{
			{Key: "Annual Leave", Count: 120},
		},
		TotalApproved:            120,
		TotalDaysTaken:           340,
		MeanApprovalLatencyHours: 17.5,
		PendingOver48h:           3,
		GeneratedAt:              "2026-08-31T10:00:00Z",
	}
}

func TestGetSummary_CacheHit(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeStatsRepo{summary: sampleSummary()}
	svc := stats.NewService(repo, rdb)

	payload, err := json.Marshal(sampleSummary())
	assert.NoError(t, err)
	redisMock.ExpectGet(summaryKey).SetVal(string(payload))

	got, err := svc.GetSummary(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(120), got.TotalApproved)
	assert.Equal(t, 0, repo.calls, "cache hit must not touch the database")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestGetSummary_CacheMissComputesAndStores(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	summary := sampleSummary()
	repo := &fakeStatsRepo{summary: summary}
	svc := stats.NewService(repo, rdb)

	payload, err := json.Marshal(summary)
	assert.NoError(t, err)
	redisMock.ExpectGet(summaryKey).RedisNil()
	redisMock.ExpectSet(summaryKey, payload, 5*time.Minute).SetVal("OK")

	got, err := svc.GetSummary(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), got.PendingOver48h)
	assert.Equal(t, 1, repo.calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestGetSummary_CorruptCacheEntryRecomputes(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	summary := sampleSummary()
	repo := &fakeStatsRepo{summary: summary}
	svc := stats.NewService(repo, rdb)

	payload, err := json.Marshal(summary)
	assert.NoError(t, err)
	redisMock.ExpectGet(summaryKey).SetVal("{not json")
	redisMock.ExpectSet(summaryKey, payload, 5*time.Minute).SetVal("OK")

	got, err := svc.GetSummary(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(340), got.TotalDaysTaken)
	assert.Equal(t, 1, repo.calls)
}

func TestGetSummary_CacheWriteFailureStillServes(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	summary := sampleSummary()
	repo := &fakeStatsRepo{summary: summary}
	svc := stats.NewService(repo, rdb)

	payload, err := json.Marshal(summary)
	assert.NoError(t, err)
	redisMock.ExpectGet(summaryKey).RedisNil()
	redisMock.ExpectSet(summaryKey, payload, 5*time.Minute).SetErr(errors.New("redis down"))

	got, err := svc.GetSummary(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(120), got.TotalApproved)
}

func TestGetSummary_RepositoryErrorPropagates(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeStatsRepo{err: errors.New("query failed")}
	svc := stats.NewService(repo, rdb)

	redisMock.ExpectGet(summaryKey).RedisNil()

	_, err := svc.GetSummary(context.Background())
	assert.Error(t, err)
}

func TestMarkDirty_DoesNotBlock(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	svc := stats.NewService(&fakeStatsRepo{summary: sampleSummary()}, rdb)

	// Nothing is draining the channel here. Repeated signals coalesce
	// instead of blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			svc.MarkDirty()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("MarkDirty blocked")
	}
}

func TestRunRefresher_RecomputesOnDirtySignal(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	summary := sampleSummary()
	repo := &fakeStatsRepo{summary: summary, computed: make(chan struct{}, 1)}
	svc := stats.NewService(repo, rdb)

	payload, err := json.Marshal(summary)
	assert.NoError(t, err)
	redisMock.ExpectSet(summaryKey, payload, 5*time.Minute).SetVal("OK")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.RunRefresher(ctx)

	svc.MarkDirty()

	select {
	case <-repo.computed:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher never recomputed")
	}
}
