package employeeerrors

import (
	"net/http"

	"leavehub/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeInactive = apperror.New(
		apperror.CodeInvalidState,
		"employee account is deactivated",
		http.StatusForbidden,
	)
	ErrSelfRoleChange = apperror.New(
		apperror.CodeForbidden,
		"you cannot change your own role",
		http.StatusForbidden,
	)
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"invalid role",
		http.StatusBadRequest,
	)
)
