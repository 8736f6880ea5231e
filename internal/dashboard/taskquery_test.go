package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/eventbus/testbus"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

func newTestTaskQuery(t *testing.T) (*TaskQuery, *fakeBackend, *testbus.Bus) {
	t.Helper()
	fb := &fakeBackend{}
	tb := testbus.New(t)
	q := NewTaskQuery(fb, tb.EventBus, zerolog.Nop(), task.DefaultFilter())
	return q, fb, tb
}

func pageOf(current, total int, tasks ...task.Task) api.TaskPage {
	return api.TaskPage{
		Tasks: tasks,
		Pagination: task.Pagination{
			CurrentPage: current,
			TotalPages:  total,
			TotalItems:  total * task.DefaultPageSize,
			PageSize:    task.DefaultPageSize,
			Enabled:     true,
		},
	}
}

func mkTask(id, title string, status task.Status) task.Task {
	return task.Task{
		ID:          jsonx.ID(id),
		Title:       title,
		Description: "a description that is long enough",
		Status:      status,
		Priority:    task.PriorityMedium,
		DueDate:     due,
	}
}

func TestTaskQuery_Fetch(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)

	var got task.Filter
	fb.listTasks = func(_ context.Context, f task.Filter) (api.TaskPage, error) {
		got = f
		return pageOf(0, 3, mkTask("1", "Write docs", task.StatusTodo)), nil
	}

	require.NoError(t, q.Fetch(ctx))
	assert.Equal(t, task.DefaultFilter(), got)
	assert.Len(t, q.Tasks(), 1)
	assert.Equal(t, 3, q.Pagination().TotalPages)
	assert.Empty(t, q.Err())
	assert.False(t, q.Loading())
}

func TestTaskQuery_SetFilterResetsPage(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)

	var filters []task.Filter
	fb.listTasks = func(_ context.Context, f task.Filter) (api.TaskPage, error) {
		filters = append(filters, f)
		return pageOf(f.Page, 3), nil
	}

	require.NoError(t, q.Fetch(ctx))
	require.NoError(t, q.SetPage(ctx, 2))
	assert.Equal(t, 2, q.Filter().Page)

	require.NoError(t, q.SetFilter(ctx, task.FilterPatch{Status: task.Ptr(task.StatusDone)}))

	require.Len(t, filters, 3)
	last := filters[2]
	assert.Equal(t, 0, last.Page)
	assert.Equal(t, task.StatusDone, last.Status)
	assert.Equal(t, task.SortDueDate, last.SortBy, "untouched fields are kept")
}

func TestTaskQuery_PageControls(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)
	fb.listTasks = func(_ context.Context, f task.Filter) (api.TaskPage, error) {
		return pageOf(f.Page, 2), nil
	}

	require.NoError(t, q.Fetch(ctx))
	require.Equal(t, 1, fb.count("ListTasks"))

	require.NoError(t, q.PrevPage(ctx))
	require.NoError(t, q.SetPage(ctx, 5))
	require.NoError(t, q.SetPage(ctx, -1))
	assert.Equal(t, 1, fb.count("ListTasks"), "out of range pages are no-ops")

	require.NoError(t, q.NextPage(ctx))
	assert.Equal(t, 1, q.Pagination().CurrentPage)

	require.NoError(t, q.NextPage(ctx))
	assert.Equal(t, 2, fb.count("ListTasks"), "next on the last page is a no-op")

	require.NoError(t, q.PrevPage(ctx))
	assert.Equal(t, 0, q.Pagination().CurrentPage)
}

func TestTaskQuery_UnpagedListHidesControls(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)
	fb.listTasks = func(context.Context, task.Filter) (api.TaskPage, error) {
		return api.TaskPage{
			Tasks:      []task.Task{mkTask("1", "One", task.StatusTodo), mkTask("2", "Two", task.StatusDone)},
			Pagination: task.Unpaged(2),
		}, nil
	}

	require.NoError(t, q.Fetch(ctx))
	p := q.Pagination()
	assert.False(t, p.Enabled)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())

	require.NoError(t, q.SetPage(ctx, 0))
	assert.Equal(t, 1, fb.count("ListTasks"))
}

func TestTaskQuery_StaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	fb.listTasks = func(_ context.Context, f task.Filter) (api.TaskPage, error) {
		if f.Search == "old" {
			close(slowStarted)
			<-releaseSlow
			return pageOf(0, 1, mkTask("1", "Old result", task.StatusTodo)), nil
		}
		return pageOf(0, 1, mkTask("2", "New result", task.StatusTodo)), nil
	}

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowErr = q.SetFilter(ctx, task.FilterPatch{Search: task.Ptr("old")})
	}()

	<-slowStarted
	assert.True(t, q.Loading())
	require.NoError(t, q.SetFilter(ctx, task.FilterPatch{Search: task.Ptr("new")}))
	close(releaseSlow)
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrStale)
	tasks := q.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "New result", tasks[0].Title)
	assert.Equal(t, "new", q.Filter().Search)
	assert.False(t, q.Loading())
}

func TestTaskQuery_StaleFailureIgnored(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	fb.listTasks = func(_ context.Context, f task.Filter) (api.TaskPage, error) {
		if f.Search == "old" {
			close(slowStarted)
			<-releaseSlow
			return api.TaskPage{}, fmt.Errorf("read: %w", api.ErrNetwork)
		}
		return pageOf(0, 1), nil
	}

	done := make(chan error, 1)
	go func() { done <- q.SetFilter(ctx, task.FilterPatch{Search: task.Ptr("old")}) }()
	<-slowStarted
	require.NoError(t, q.SetFilter(ctx, task.FilterPatch{Search: task.Ptr("new")}))
	close(releaseSlow)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Empty(t, q.Err(), "an old failure never overwrites a newer success")
}

func TestTaskQuery_FailureKeepsList(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)

	fb.listTasks = func(context.Context, task.Filter) (api.TaskPage, error) {
		return pageOf(0, 1, mkTask("1", "Keep me", task.StatusTodo)), nil
	}
	require.NoError(t, q.Fetch(ctx))

	fb.listTasks = func(context.Context, task.Filter) (api.TaskPage, error) {
		return api.TaskPage{}, &api.Error{Status: 500, Message: "Internal server error"}
	}
	err := q.Fetch(ctx)
	require.Error(t, err)

	assert.Equal(t, "Internal server error", q.Err())
	assert.Len(t, q.Tasks(), 1)

	fb.listTasks = func(context.Context, task.Filter) (api.TaskPage, error) {
		return pageOf(0, 1), nil
	}
	require.NoError(t, q.Fetch(ctx))
	assert.Empty(t, q.Err(), "success clears the error")
}

func TestTaskQuery_Mutations(t *testing.T) {
	ctx := context.Background()
	q, fb, tb := newTestTaskQuery(t)

	fb.listTasks = func(context.Context, task.Filter) (api.TaskPage, error) {
		return pageOf(0, 1, mkTask("1", "First", task.StatusTodo), mkTask("2", "Second", task.StatusTodo)), nil
	}
	require.NoError(t, q.Fetch(ctx))

	t.Run("create validates before any request", func(t *testing.T) {
		_, err := q.CreateTask(ctx, task.Draft{Title: "ab", Description: "short"})
		require.Error(t, err)
		assert.Zero(t, fb.count("CreateTask"))
	})

	t.Run("create prepends", func(t *testing.T) {
		fb.createTask = func(d task.Draft) (task.Task, error) {
			assert.Equal(t, task.StatusTodo, d.Status, "defaults are applied")
			assert.Equal(t, task.PriorityMedium, d.Priority)
			return mkTask("3", d.Title, d.Status), nil
		}

		created, err := q.CreateTask(ctx, task.Draft{
			Title:       "  Third  ",
			Description: "a description that is long enough",
			DueDate:     due,
		})
		require.NoError(t, err)
		assert.Equal(t, "Third", created.Title)

		tasks := q.Tasks()
		require.Len(t, tasks, 3)
		assert.Equal(t, jsonx.ID("3"), tasks[0].ID)
		tb.AssertPublished(t, eventbus.EventTaskCreated)
	})

	t.Run("update replaces in place", func(t *testing.T) {
		fb.updateTask = func(id jsonx.ID, d task.Draft) (task.Task, error) {
			return mkTask(string(id), d.Title, d.Status), nil
		}

		d := task.DraftOf(mkTask("2", "Second, edited", task.StatusDone))
		_, err := q.UpdateTask(ctx, "2", d)
		require.NoError(t, err)

		got, ok := q.Find("2")
		require.True(t, ok)
		assert.Equal(t, "Second, edited", got.Title)
		assert.Equal(t, task.StatusDone, got.Status)
		assert.Len(t, q.Tasks(), 3)
		tb.AssertPublished(t, eventbus.EventTaskUpdated)
	})

	t.Run("failed delete keeps the task", func(t *testing.T) {
		fb.deleteTask = func(jsonx.ID) error { return &api.Error{Status: 403, Message: "Forbidden"} }
		require.Error(t, q.DeleteTask(ctx, "1"))
		_, ok := q.Find("1")
		assert.True(t, ok)
	})

	t.Run("delete removes", func(t *testing.T) {
		fb.deleteTask = nil
		require.NoError(t, q.DeleteTask(ctx, "1"))
		_, ok := q.Find("1")
		assert.False(t, ok)
		assert.Len(t, q.Tasks(), 2)
		tb.AssertPublished(t, eventbus.EventTaskDeleted)
	})
}

func TestTaskQuery_StatsFromLoadedPage(t *testing.T) {
	ctx := context.Background()
	q, fb, _ := newTestTaskQuery(t)
	now := time.Date(2026, 10, 25, 9, 0, 0, 0, time.UTC)

	fb.listTasks = func(context.Context, task.Filter) (api.TaskPage, error) {
		return pageOf(0, 4,
			mkTask("1", "Overdue", task.StatusTodo),
			mkTask("2", "Busy", task.StatusInProgress),
			mkTask("3", "Finished", task.StatusDone),
		), nil
	}
	require.NoError(t, q.Fetch(ctx))

	stats := q.Stats(now)
	assert.Equal(t, task.Stats{Total: 3, Pending: 1, InProgress: 1, Completed: 1, Overdue: 2}, stats,
		"only the loaded page is counted")
}

func TestTaskQuery_GetTaskLeavesList(t *testing.T) {
	q, fb, _ := newTestTaskQuery(t)
	got, err := q.GetTask(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, jsonx.ID("9"), got.ID)
	assert.Empty(t, q.Tasks())
	assert.Equal(t, 1, fb.count("GetTask"))
	assert.False(t, errors.Is(err, ErrStale))
}
