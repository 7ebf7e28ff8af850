package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidScope     ErrorCode = "INVALID_SCOPE"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"

	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodeRoleNotFound        ErrorCode = "ROLE_NOT_FOUND"
	ErrCodePermissionNotFound  ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeMemberNotFound      ErrorCode = "MEMBER_NOT_FOUND"
	ErrCodeEventNotFound       ErrorCode = "EVENT_NOT_FOUND"
	ErrCodeDesignationNotFound ErrorCode = "DESIGNATION_NOT_FOUND"
	ErrCodeAssignmentNotFound  ErrorCode = "ASSIGNMENT_NOT_FOUND"
	ErrCodeEntityNotFound      ErrorCode = "ENTITY_NOT_FOUND"

	ErrCodeNoScopeAssigned     ErrorCode = "NO_SCOPE_ASSIGNED"
	ErrCodeScopeEntityNotFound ErrorCode = "SCOPE_ENTITY_NOT_FOUND"
	ErrCodeScopeViolation      ErrorCode = "SCOPE_VIOLATION"
	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"

	ErrCodeAlreadyAssigned      ErrorCode = "ALREADY_ASSIGNED"
	ErrCodeDuplicateName        ErrorCode = "DUPLICATE_NAME"
	ErrCodeDuplicateAttendance  ErrorCode = "DUPLICATE_ATTENDANCE"
	ErrCodeHasActiveAssignments ErrorCode = "HAS_ACTIVE_ASSIGNMENTS"
	ErrCodeHasChildren          ErrorCode = "HAS_CHILDREN"
	ErrCodeDesignationInUse     ErrorCode = "DESIGNATION_IN_USE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	// Authorization failures. These must surface as-is; the gate and
	// resolver never downgrade them to generic errors.
	ErrNoScopeAssigned     = NewUnauthorizedError("no scope assigned to user", ErrCodeNoScopeAssigned)
	ErrScopeEntityNotFound = NewNotFoundError("scope references an entity that no longer exists", ErrCodeScopeEntityNotFound)
	ErrScopeViolation      = NewForbiddenError("operation targets entities outside the caller scope", ErrCodeScopeViolation)
	ErrPermissionDenied    = NewForbiddenError("permission denied", ErrCodePermissionDenied)

	ErrRoleNotFound        = NewNotFoundError("role not found", ErrCodeRoleNotFound)
	ErrPermissionNotFound  = NewNotFoundError("permission not found", ErrCodePermissionNotFound)
	ErrAssignmentNotFound  = NewNotFoundError("role permission assignment not found", ErrCodeAssignmentNotFound)
	ErrAlreadyAssigned     = NewConflictError("permission already assigned to role", ErrCodeAlreadyAssigned)
	ErrHasActiveAssignment = NewConflictError("target still has active assignments", ErrCodeHasActiveAssignments)

	ErrRegionNotFound      = NewNotFoundError("region not found", ErrCodeEntityNotFound)
	ErrUniversityNotFound  = NewNotFoundError("university not found", ErrCodeEntityNotFound)
	ErrSmallGroupNotFound  = NewNotFoundError("small group not found", ErrCodeEntityNotFound)
	ErrAlumniGroupNotFound = NewNotFoundError("alumni small group not found", ErrCodeEntityNotFound)
	ErrHasChildren         = NewConflictError("entity still has child entities", ErrCodeHasChildren)

	ErrMemberNotFound      = NewNotFoundError("member not found", ErrCodeMemberNotFound)
	ErrEventNotFound       = NewNotFoundError("event not found", ErrCodeEventNotFound)
	ErrDesignationNotFound = NewNotFoundError("designation not found", ErrCodeDesignationNotFound)
	ErrDesignationInUse    = NewConflictError("designation has contributions referencing it", ErrCodeDesignationInUse)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
