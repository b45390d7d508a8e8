package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	summaryCacheKey = "stats:summary"
	summaryCacheTTL = 5 * time.Minute
)

type Service interface {
	GetSummary(ctx context.Context) (*Summary, error)
	// MarkDirty signals that the underlying tables changed and the cached
	// summary should be recomputed soon.
	MarkDirty()
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	group  singleflight.Group
	dirty  chan struct{}
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) *service {
	l := zap.L().Named("stats.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("stats.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		dirty:  make(chan struct{}, 1),
		logger: l,
	}
}

// GetSummary serves from redis when possible. Concurrent misses collapse into
// one database pass via singleflight.
func (s *service) GetSummary(ctx context.Context) (*Summary, error) {
	cached, err := s.rdb.Get(ctx, summaryCacheKey).Bytes()
	if err == nil {
		var summary Summary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return &summary, nil
		}
		// Corrupt cache entry falls through to a recompute.
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("summary cache read failed", zap.Error(err))
	}

	v, err, _ := s.group.Do(summaryCacheKey, func() (interface{}, error) {
		return s.computeAndCache(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}

func (s *service) computeAndCache(ctx context.Context) (*Summary, error) {
	summary, err := s.repo.ComputeSummary(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, summaryCacheKey, payload, summaryCacheTTL).Err(); err != nil {
		// A failed cache write only costs the next reader a recompute.
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *service) MarkDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// RunRefresher recomputes the summary in the background whenever a write
// marks it dirty. Signals arriving during a recompute coalesce into one more
// pass, so the channel never backs up.
func (s *service) RunRefresher(ctx context.Context) {
	s.logger.Info("stats refresher started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stats refresher stopped")
			return
		case <-s.dirty:
			if _, err := s.computeAndCache(ctx); err != nil {
				s.logger.Error("summary refresh failed", zap.Error(err))
			} else {
				s.logger.Debug("summary refreshed")
			}
		}
	}
}
