package leaveerrors

import (
	"net/http"

	"leavehub/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"an active leave request already covers part of this period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be modified",
		http.StatusConflict,
	)
	ErrNotRequester = apperror.New(
		apperror.CodeForbidden,
		"only the requester may modify this leave request",
		http.StatusForbidden,
	)
	ErrNotAuthorizedToDecide = apperror.New(
		apperror.CodeForbidden,
		"only a manager in the requester's department or HR/admin may decide this request",
		http.StatusForbidden,
	)
	ErrCommentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"comment is required when rejecting",
		http.StatusBadRequest,
	)
)
