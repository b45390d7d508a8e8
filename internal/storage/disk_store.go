package storage

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxPutAttempts = 3
	baseRetryDelay = 50 * time.Millisecond
)

// DiskStore keeps objects on the local filesystem under
// {baseDir}/{bucket}/{key}. It is the default backend; swapping in an object
// store only requires another ObjectStore implementation.
type DiskStore struct {
	baseDir string
	logger  *zap.Logger
}

func NewDiskStore(baseDir string, logger ...*zap.Logger) (*DiskStore, error) {
	l := zap.L().Named("storage.disk")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("storage.disk")
	}
	for bucket := range bucketPolicies {
		if err := os.MkdirAll(filepath.Join(baseDir, bucket), 0o755); err != nil {
			return nil, err
		}
	}
	return &DiskStore{baseDir: baseDir, logger: l}, nil
}

func (s *DiskStore) objectPath(bucket, key string) (string, error) {
	if _, ok := bucketPolicies[bucket]; !ok {
		return "", ErrBucketMissing
	}
	p := filepath.Join(s.baseDir, bucket, filepath.FromSlash(key))
	// Reject keys that escape the bucket directory.
	root := filepath.Join(s.baseDir, bucket) + string(os.PathSeparator)
	if !strings.HasPrefix(p, root) {
		return "", ErrObjectNotFound
	}
	return p, nil
}

func (s *DiskStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if err := ValidateObject(bucket, size, contentType); err != nil {
		return err
	}
	target, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxPutAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = s.writeObject(target, r, size)
		if lastErr == nil {
			s.logger.Debug("object stored",
				zap.String("bucket", bucket),
				zap.String("key", key),
				zap.Int64("size", size),
			)
			return nil
		}
		// Readers are single-use; only the first attempt can stream, so a
		// failed write retries purely for transient filesystem errors on
		// the seekable case.
		seeker, ok := r.(io.Seeker)
		if !ok {
			break
		}
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			break
		}
		delay := backoffDelay(attempt)
		s.logger.Warn("object write failed, retrying",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (s *DiskStore) writeObject(target string, r io.Reader, size int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.CopyN(tmp, r, size); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (s *DiskStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	target, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete is best effort for callers doing cleanup: a missing object is not an
// error.
func (s *DiskStore) Delete(ctx context.Context, bucket, key string) error {
	target, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// backoffDelay doubles the base per attempt with up to 50% jitter.
func backoffDelay(attempt int) time.Duration {
	d := baseRetryDelay << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	return d + jitter
}
