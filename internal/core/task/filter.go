package task

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
)

// Sort fields accepted by the task list endpoint.
const (
	SortDueDate   = "dueDate"
	SortPriority  = "priority"
	SortStatus    = "status"
	SortCreatedAt = "createdAt"
	SortTitle     = "title"
)

// SortFields lists every accepted sort field.
var SortFields = []string{SortDueDate, SortPriority, SortStatus, SortCreatedAt, SortTitle}

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPageSize = 10
)

// Filter is the complete query sent to the task list endpoint. An empty
// Status or Priority means "any".
type Filter struct {
	Search   string
	Status   Status
	Priority Priority
	SortBy   string
	SortDir  string
	Page     int
	Size     int
}

// DefaultFilter returns the filter the dashboard starts with.
func DefaultFilter() Filter {
	return Filter{
		SortBy:  SortDueDate,
		SortDir: SortAsc,
		Page:    0,
		Size:    DefaultPageSize,
	}
}

// Query encodes the filter as URL query parameters.
func (f Filter) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("size", strconv.Itoa(f.Size))
	q.Set("sortBy", f.SortBy)
	q.Set("sortDir", f.SortDir)

	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}

	return q
}

// Validate rejects sort options and sizes the backend would not accept.
func (f Filter) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if !slices.Contains(SortFields, f.SortBy) {
		errs = errs.Append("sortBy", fmt.Errorf("must be one of %s", strings.Join(SortFields, ", ")))
	}
	if f.SortDir != SortAsc && f.SortDir != SortDesc {
		errs = errs.Append("sortDir", fmt.Errorf("must be asc or desc"))
	}
	if f.Size < 1 || f.Size > 100 {
		errs = errs.Append("size", fmt.Errorf("must be between 1 and 100"))
	}
	if f.Page < 0 {
		errs = errs.Append("page", fmt.Errorf("must not be negative"))
	}

	return errs.ToError()
}

// FilterPatch is a partial filter change. Nil fields are left untouched.
type FilterPatch struct {
	Search   *string
	Status   *Status
	Priority *Priority
	SortBy   *string
	SortDir  *string
	Size     *int
}

// Apply merges the patch into f and resets the page to the first one.
func (p FilterPatch) Apply(f Filter) Filter {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	if p.SortDir != nil {
		f.SortDir = *p.SortDir
	}
	if p.Size != nil {
		f.Size = *p.Size
	}
	f.Page = 0
	return f
}

// Ptr returns a pointer to v. It keeps FilterPatch literals short.
func Ptr[T any](v T) *T { return &v }
