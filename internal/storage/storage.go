package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"leavehub/internal/shared/apperror"
)

// Bucket names are fixed at compile time; objects never move between them.
const (
	BucketLeaveDocuments   = "leave-documents"
	BucketCompanyDocuments = "company-documents"
	BucketProfilePhotos    = "profile-photos"
)

var (
	ErrBucketMissing = apperror.New(
		apperror.CodeStorageBucketMissing,
		"storage bucket does not exist",
		http.StatusNotFound,
	)
	ErrObjectNotFound = apperror.New(
		apperror.CodeNotFound,
		"stored object not found",
		http.StatusNotFound,
	)
	ErrObjectTooLarge = apperror.New(
		apperror.CodeStorageQuotaExceeded,
		"object exceeds the bucket size limit",
		http.StatusRequestEntityTooLarge,
	)
	ErrObjectEmpty = apperror.New(
		apperror.CodeInvalidInput,
		"object must not be empty",
		http.StatusBadRequest,
	)
	ErrUnsupportedMediaType = apperror.New(
		apperror.CodeInvalidInput,
		"content type is not allowed in this bucket",
		http.StatusUnsupportedMediaType,
	)
)

type BucketPolicy struct {
	Name      string
	MaxSize   int64
	Public    bool
	MIMETypes []string // empty slice means any type is accepted
}

var bucketPolicies = map[string]BucketPolicy{
	BucketLeaveDocuments: {
		Name:    BucketLeaveDocuments,
		MaxSize: 5 << 20,
		MIMETypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"image/jpeg",
			"image/png",
		},
	},
	BucketCompanyDocuments: {
		Name:    BucketCompanyDocuments,
		MaxSize: 50 << 20,
		MIMETypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"image/jpeg",
			"image/png",
		},
	},
	BucketProfilePhotos: {
		Name:    BucketProfilePhotos,
		MaxSize: 2 << 20,
		Public:  true,
		MIMETypes: []string{
			"image/jpeg",
			"image/png",
			"image/webp",
		},
	},
}

func Policy(bucket string) (BucketPolicy, error) {
	p, ok := bucketPolicies[bucket]
	if !ok {
		return BucketPolicy{}, ErrBucketMissing
	}
	return p, nil
}

// ValidateObject enforces a bucket's size and content-type rules before any
// bytes are written.
func ValidateObject(bucket string, size int64, contentType string) error {
	p, err := Policy(bucket)
	if err != nil {
		return err
	}
	if size < 1 {
		return ErrObjectEmpty
	}
	if size > p.MaxSize {
		return ErrObjectTooLarge
	}
	if len(p.MIMETypes) == 0 {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, mt := range p.MIMETypes {
		if normalized == mt {
			return nil
		}
	}
	return ErrUnsupportedMediaType
}

// ObjectKey builds "{ownerID}/{contextID}/{unixNano}_{sanitizedName}". The
// timestamp prefix keeps repeated uploads of the same file name distinct.
func ObjectKey(ownerID, contextID, fileName string) string {
	return fmt.Sprintf("%s/%s/%d_%s", ownerID, contextID, time.Now().UnixNano(), SanitizeFileName(fileName))
}

// SanitizeFileName strips any path component and replaces characters outside
// [A-Za-z0-9._-] so keys stay safe on every backend.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
}
