package application

import "errors"

// Error codes carried across process boundaries, e.g. as Temporal application
// error types, so callers can rebuild the sentinel.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeDuplicateRequest    = "DUPLICATE_REQUEST"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
)

var codes = []struct {
	code string
	err  error
}{
	{CodeNotFound, ErrNotFound},
	{CodeInvalidState, ErrInvalidState},
	{CodeDuplicateRequest, ErrDuplicateRequest},
	{CodeForbidden, ErrForbidden},
	{CodeConflict, ErrConflict},
	{CodeInvalidInput, ErrInvalidInput},
	{CodeIdempotencyConflict, ErrIdempotencyConflict},
}

// ErrorCode returns the code for a taxonomy error, or "" for anything else.
func ErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// ErrorFromCode returns the sentinel for code, or nil when unknown.
func ErrorFromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
