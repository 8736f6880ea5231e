package dashboard

import (
	"errors"
	"maps"
	"slices"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/validate"
)

// ResultError describes why an authentication attempt failed. Fields is set
// when the failure is tied to specific form fields.
type ResultError struct {
	Message string
	Fields  map[string]string
}

func (e *ResultError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		field := slices.Sorted(maps.Keys(e.Fields))[0]
		return field + " " + e.Fields[field]
	}
	return "request failed"
}

// Result is the outcome of Login and Register. Data holds the identity on
// success.
type Result struct {
	Success bool
	Data    auth.Identity
	Error   *ResultError
}

func failed(err error) Result {
	return Result{Error: resultError(err)}
}

func resultError(err error) *ResultError {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return &ResultError{
			Message: "Please correct the highlighted fields",
			Fields:  validate.FieldMap(err),
		}
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return &ResultError{Message: api.Message(err), Fields: apiErr.Fields}
	}

	return &ResultError{Message: api.Message(err)}
}
