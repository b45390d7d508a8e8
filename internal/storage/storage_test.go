package storage_test

import (
	"regexp"
	"testing"

	"leavehub/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestValidateObject(t *testing.T) {
	t.Run("accepts pdf within leave document limit", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketLeaveDocuments, 1024, "application/pdf")
		assert.NoError(t, err)
	})

	t.Run("accepts content type with charset suffix", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketLeaveDocuments, 1024, "application/pdf; charset=binary")
		assert.NoError(t, err)
	})

	t.Run("rejects empty object", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketLeaveDocuments, 0, "application/pdf")
		assert.ErrorIs(t, err, storage.ErrObjectEmpty)
	})

	t.Run("rejects object over bucket limit", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketLeaveDocuments, 5<<20+1, "application/pdf")
		assert.ErrorIs(t, err, storage.ErrObjectTooLarge)
	})

	t.Run("limit boundary is inclusive", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketLeaveDocuments, 5<<20, "application/pdf")
		assert.NoError(t, err)
	})

	t.Run("rejects disallowed content type", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketLeaveDocuments, 1024, "application/x-msdownload")
		assert.ErrorIs(t, err, storage.ErrUnsupportedMediaType)
	})

	t.Run("rejects unknown bucket", func(t *testing.T) {
		err := storage.ValidateObject("no-such-bucket", 1024, "application/pdf")
		assert.ErrorIs(t, err, storage.ErrBucketMissing)
	})

	t.Run("company bucket allows larger files", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketCompanyDocuments, 40<<20, "application/pdf")
		assert.NoError(t, err)
	})

	t.Run("profile photos only accept images", func(t *testing.T) {
		err := storage.ValidateObject(storage.BucketProfilePhotos, 1024, "application/pdf")
		assert.ErrorIs(t, err, storage.ErrUnsupportedMediaType)

		err = storage.ValidateObject(storage.BucketProfilePhotos, 1024, "image/png")
		assert.NoError(t, err)
	})
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":              "report.pdf",
		"my doc (final).pdf":      "my_doc__final_.pdf",
		"../../../etc/passwd":     "passwd",
		`..\..\windows\cmd.exe`:   "cmd.exe",
		"":                        "file",
		"...":                     "file",
		"résumé.pdf":              "r_sum_.pdf",
		"UPPER-case_ok.12.docx":   "UPPER-case_ok.12.docx",
		"/absolute/path/file.png": "file.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, storage.SanitizeFileName(in), "input %q", in)
	}
}

func TestObjectKey(t *testing.T) {
	key := storage.ObjectKey("owner-1", "ctx-2", "report final.pdf")
	assert.Regexp(t, regexp.MustCompile(`^owner-1/ctx-2/\d+_report_final\.pdf$`), key)

	// Two keys for the same name must not collide.
	other := storage.ObjectKey("owner-1", "ctx-2", "report final.pdf")
	assert.NotEqual(t, key, other)
}

func TestPolicy(t *testing.T) {
	p, err := storage.Policy(storage.BucketProfilePhotos)
	assert.NoError(t, err)
	assert.True(t, p.Public)
	assert.Equal(t, int64(2<<20), p.MaxSize)

	_, err = storage.Policy("missing")
	assert.ErrorIs(t, err, storage.ErrBucketMissing)
}
