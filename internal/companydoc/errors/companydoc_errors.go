package companydocerrors

import (
	"net/http"

	"leavehub/internal/shared/apperror"
)

var (
	ErrCompanyDocumentNotFound = apperror.New(
		apperror.CodeNotFound,
		"company document not found",
		http.StatusNotFound,
	)
	ErrNoAudience = apperror.New(
		apperror.CodeInvalidInput,
		"a company document must target all staff or at least one department",
		http.StatusBadRequest,
	)
	ErrMissingFile = apperror.New(
		apperror.CodeInvalidInput,
		"multipart field 'file' is required",
		http.StatusBadRequest,
	)
)
