package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

// TaskQuery keeps the visible task list in step with the filter and page
// the user selected. Every fetch is stamped with a sequence number and only
// the response to the most recent dispatch may change state, so responses
// arriving out of order never show results for an old filter.
type TaskQuery struct {
	client TaskAPI
	bus    *eventbus.EventBus
	log    zerolog.Logger

	mu         sync.Mutex
	filter     task.Filter
	tasks      []task.Task
	pagination task.Pagination
	err        string
	dispatched uint64
	settled    uint64
}

// NewTaskQuery creates a coordinator starting from filter. Nothing is
// fetched until Fetch, SetFilter or SetPage is called.
func NewTaskQuery(client TaskAPI, bus *eventbus.EventBus, log zerolog.Logger, filter task.Filter) *TaskQuery {
	return &TaskQuery{
		client: client,
		bus:    bus,
		log:    log.With().Str("component", "task-query").Logger(),
		filter: filter,
	}
}

// SetFilter merges patch into the filter, returns to the first page and
// fetches.
func (q *TaskQuery) SetFilter(ctx context.Context, patch task.FilterPatch) error {
	q.mu.Lock()
	q.filter = patch.Apply(q.filter)
	q.mu.Unlock()
	return q.Fetch(ctx)
}

// SetPage selects page n and fetches. Pages outside the loaded pagination
// are ignored, matching a disabled page control.
func (q *TaskQuery) SetPage(ctx context.Context, n int) error {
	q.mu.Lock()
	if !q.pagination.Contains(n) {
		q.mu.Unlock()
		return nil
	}
	q.filter.Page = n
	q.mu.Unlock()
	return q.Fetch(ctx)
}

// NextPage advances one page when the next-page control is enabled.
func (q *TaskQuery) NextPage(ctx context.Context) error {
	p := q.Pagination()
	if !p.HasNext() {
		return nil
	}
	return q.SetPage(ctx, p.CurrentPage+1)
}

// PrevPage goes back one page when the previous-page control is enabled.
func (q *TaskQuery) PrevPage(ctx context.Context) error {
	p := q.Pagination()
	if !p.HasPrev() {
		return nil
	}
	return q.SetPage(ctx, p.CurrentPage-1)
}

// Fetch loads the page described by the current filter. It returns ErrStale
// when a newer fetch was dispatched before this one completed; the stale
// result is dropped. On failure the previous list is kept and Err is set.
func (q *TaskQuery) Fetch(ctx context.Context) error {
	q.mu.Lock()
	q.dispatched++
	seq := q.dispatched
	filter := q.filter
	q.mu.Unlock()

	page, err := q.client.ListTasks(ctx, filter)

	q.mu.Lock()
	defer q.mu.Unlock()

	if seq != q.dispatched {
		q.log.Debug().Uint64("seq", seq).Uint64("latest", q.dispatched).Msg("discarding stale task page")
		return ErrStale
	}
	q.settled = seq

	if err != nil {
		q.err = api.Message(err)
		q.log.Debug().Err(err).Msg("task fetch failed")
		return err
	}

	q.tasks = page.Tasks
	q.pagination = page.Pagination
	if q.pagination.Enabled {
		q.filter.Page = q.pagination.CurrentPage
	}
	q.err = ""
	return nil
}

// GetTask loads a single task for the detail view. The list is unchanged.
func (q *TaskQuery) GetTask(ctx context.Context, id jsonx.ID) (task.Task, error) {
	return q.client.GetTask(ctx, id)
}

// CreateTask validates d, saves it and prepends the saved task to the list.
func (q *TaskQuery) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}

	created, err := q.client.CreateTask(ctx, d)
	if err != nil {
		return task.Task{}, err
	}

	q.mu.Lock()
	q.tasks = slices.Insert(slices.Clone(q.tasks), 0, created)
	q.mu.Unlock()

	q.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: created})
	return created, nil
}

// UpdateTask validates d, saves it and replaces the task with the same id.
func (q *TaskQuery) UpdateTask(ctx context.Context, id jsonx.ID, d task.Draft) (task.Task, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}

	updated, err := q.client.UpdateTask(ctx, id, d)
	if err != nil {
		return task.Task{}, err
	}

	q.mu.Lock()
	tasks := slices.Clone(q.tasks)
	if i := slices.IndexFunc(tasks, func(t task.Task) bool { return t.ID == id }); i >= 0 {
		tasks[i] = updated
	}
	q.tasks = tasks
	q.mu.Unlock()

	q.bus.PublishTaskUpdated(eventbus.TaskUpdatedPayload{Task: updated})
	return updated, nil
}

// DeleteTask deletes the task and removes it from the list.
func (q *TaskQuery) DeleteTask(ctx context.Context, id jsonx.ID) error {
	if err := q.client.DeleteTask(ctx, id); err != nil {
		return err
	}

	q.mu.Lock()
	q.tasks = slices.DeleteFunc(slices.Clone(q.tasks), func(t task.Task) bool { return t.ID == id })
	q.mu.Unlock()

	q.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: id})
	return nil
}

// Stats summarises the loaded page only.
func (q *TaskQuery) Stats(now time.Time) task.Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return task.ComputeStats(q.tasks, now)
}

// Tasks returns a copy of the loaded tasks.
func (q *TaskQuery) Tasks() []task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.tasks)
}

// Find returns the loaded task with the given id.
func (q *TaskQuery) Find(id jsonx.ID) (task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := slices.IndexFunc(q.tasks, func(t task.Task) bool { return t.ID == id })
	if i < 0 {
		return task.Task{}, false
	}
	return q.tasks[i], true
}

func (q *TaskQuery) Pagination() task.Pagination {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pagination
}

func (q *TaskQuery) Filter() task.Filter {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.filter
}

// Err returns the message of the last failed fetch, or "".
func (q *TaskQuery) Err() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Loading reports whether the most recently dispatched fetch is pending.
func (q *TaskQuery) Loading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.settled != q.dispatched
}
