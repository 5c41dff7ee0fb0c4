package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security & Authentication (SEC) ----
//
// Every inbound-auth rejection carries the same generic 401 body so a
// probing client cannot tell which check failed. The Code distinguishes
// them in server logs only.

func ErrUnauthenticated() *AppError {
	return New("SEC_001", "Unauthorized", http.StatusUnauthorized)
}

func ErrStaleTimestamp() *AppError {
	return New("SEC_002", "Unauthorized", http.StatusUnauthorized)
}

func ErrBadSignature() *AppError {
	return New("SEC_003", "Unauthorized", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("SEC_004", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidCredentials() *AppError {
	return New("SEC_005", "Invalid credentials", http.StatusUnauthorized)
}

// ---- Field configuration (VAL) ----

func ErrFieldNotFound(id string) *AppError {
	return New("VAL_001", fmt.Sprintf("field %s not found", id), http.StatusNotFound)
}

func ErrDuplicateFieldName(name string) *AppError {
	return New("VAL_002", fmt.Sprintf("duplicate sanitized field name %q", name), http.StatusConflict)
}

// Validation returns a generic field-configuration validation error.
func Validation(message string) *AppError {
	return New("VAL_003", message, http.StatusBadRequest)
}

func ErrPresetNotFound(name string) *AppError {
	return New("VAL_004", fmt.Sprintf("preset %q not found", name), http.StatusNotFound)
}

// ---- Capture events (CAP) ----

func ErrStructuralMismatch(detail string) *AppError {
	return New("CAP_001", fmt.Sprintf("evaluator payload malformed: %s", detail), http.StatusBadRequest)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorage(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_000 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_000", "Internal server error", http.StatusInternalServerError, err)
}
