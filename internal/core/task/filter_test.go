package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFilter_Query(t *testing.T) {
	q := DefaultFilter().Query()

	assert.Equal(t, "0", q.Get("page"))
	assert.Equal(t, "10", q.Get("size"))
	assert.Equal(t, "dueDate", q.Get("sortBy"))
	assert.Equal(t, "asc", q.Get("sortDir"))
	assert.False(t, q.Has("status"))
	assert.False(t, q.Has("priority"))
	assert.False(t, q.Has("search"))
}

func TestFilter_QueryWithCriteria(t *testing.T) {
	f := DefaultFilter()
	f.Search = "  report "
	f.Status = StatusInProgress
	f.Priority = PriorityHigh

	q := f.Query()
	assert.Equal(t, "report", q.Get("search"))
	assert.Equal(t, "IN_PROGRESS", q.Get("status"))
	assert.Equal(t, "HIGH", q.Get("priority"))
}

func TestFilterPatch_ApplyResetsPage(t *testing.T) {
	f := DefaultFilter()
	f.Page = 4
	f.Search = "keep"

	got := FilterPatch{Status: Ptr(StatusDone)}.Apply(f)

	assert.Equal(t, 0, got.Page)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, "keep", got.Search, "nil patch fields are untouched")
	assert.Equal(t, SortDueDate, got.SortBy)
}

func TestFilterPatch_ClearStatus(t *testing.T) {
	f := DefaultFilter()
	f.Status = StatusDone

	got := FilterPatch{Status: Ptr(Status(""))}.Apply(f)
	assert.Equal(t, Status(""), got.Status)
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, DefaultFilter().Validate())

	bad := DefaultFilter()
	bad.SortBy = "owner"
	bad.SortDir = "up"
	bad.Size = 0
	assert.Error(t, bad.Validate())
}

func TestPagination_Controls(t *testing.T) {
	tests := []struct {
		name     string
		p        Pagination
		wantPrev bool
		wantNext bool
	}{
		{"first of three", Pagination{CurrentPage: 0, TotalPages: 3, Enabled: true}, false, true},
		{"middle", Pagination{CurrentPage: 1, TotalPages: 3, Enabled: true}, true, true},
		{"last", Pagination{CurrentPage: 2, TotalPages: 3, Enabled: true}, true, false},
		{"single page", Pagination{CurrentPage: 0, TotalPages: 1, Enabled: true}, false, false},
		{"empty", Pagination{TotalPages: 0, Enabled: true}, false, false},
		{"disabled", Unpaged(25), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPrev, tt.p.HasPrev())
			assert.Equal(t, tt.wantNext, tt.p.HasNext())
		})
	}
}

func TestPagination_Clamp(t *testing.T) {
	assert.Equal(t, 2, Pagination{CurrentPage: 9, TotalPages: 3}.Clamp().CurrentPage)
	assert.Equal(t, 0, Pagination{CurrentPage: -1, TotalPages: 3}.Clamp().CurrentPage)
	assert.Equal(t, 0, Pagination{CurrentPage: 5}.Clamp().CurrentPage)
}
