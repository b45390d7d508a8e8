package documenterrors

import (
	"net/http"

	"leavehub/internal/shared/apperror"
)

var (
	ErrDocumentNotFound = apperror.New(
		apperror.CodeNotFound,
		"document not found",
		http.StatusNotFound,
	)
	ErrNotUploader = apperror.New(
		apperror.CodeForbidden,
		"only the uploader may delete this document",
		http.StatusForbidden,
	)
	ErrLeaveNotPending = apperror.New(
		apperror.CodeInvalidState,
		"documents can only be changed while the leave request is pending",
		http.StatusConflict,
	)
	ErrMissingFile = apperror.New(
		apperror.CodeInvalidInput,
		"multipart field 'file' is required",
		http.StatusBadRequest,
	)
)
