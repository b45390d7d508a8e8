package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"leavehub/internal/storage"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *storage.DiskStore {
	t.Helper()
	store, err := storage.NewDiskStore(t.TempDir())
	assert.NoError(t, err)
	return store
}

func TestDiskStore_PutGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	content := []byte("%PDF-1.4 test payload")
	key := storage.ObjectKey("emp-1", "leave-1", "evidence.pdf")

	err := store.Put(ctx, storage.BucketLeaveDocuments, key, bytes.NewReader(content), int64(len(content)), "application/pdf")
	assert.NoError(t, err)

	rc, err := store.Get(ctx, storage.BucketLeaveDocuments, key)
	assert.NoError(t, err)
	got, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.NoError(t, rc.Close())
	assert.Equal(t, content, got)

	assert.NoError(t, store.Delete(ctx, storage.BucketLeaveDocuments, key))

	_, err = store.Get(ctx, storage.BucketLeaveDocuments, key)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestDiskStore_Put_EnforcesBucketPolicy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, storage.BucketLeaveDocuments, "k", strings.NewReader("x"), 1, "application/x-sh")
	assert.ErrorIs(t, err, storage.ErrUnsupportedMediaType)

	err = store.Put(ctx, storage.BucketLeaveDocuments, "k", strings.NewReader(""), 0, "application/pdf")
	assert.ErrorIs(t, err, storage.ErrObjectEmpty)

	err = store.Put(ctx, "unknown", "k", strings.NewReader("x"), 1, "application/pdf")
	assert.ErrorIs(t, err, storage.ErrBucketMissing)
}

func TestDiskStore_Get_RejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), storage.BucketLeaveDocuments, "../../etc/passwd")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestDiskStore_Delete_MissingObjectIsNoop(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), storage.BucketLeaveDocuments, "never/stored/file.pdf")
	assert.NoError(t, err)
}

func TestDiskStore_Put_TruncatesToDeclaredSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// The store writes exactly the declared size, never trailing reader bytes.
	err := store.Put(ctx, storage.BucketLeaveDocuments, "emp/leave/doc.pdf", strings.NewReader("1234567890"), 4, "application/pdf")
	assert.NoError(t, err)

	rc, err := store.Get(ctx, storage.BucketLeaveDocuments, "emp/leave/doc.pdf")
	assert.NoError(t, err)
	got, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "1234", string(got))
}
