package dashboard

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/api"
	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt. It is meant for non-interactive use
// where the operator already confirmed, e.g. with a --yes flag.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// UserAdmin is the administrator's user table: the list held client side
// plus the add, edit and delete mutations.
type UserAdmin struct {
	client UserAPI
	bus    *eventbus.EventBus
	log    zerolog.Logger

	mu    sync.Mutex
	users []user.User
	err   string
}

// NewUserAdmin creates an empty user table.
func NewUserAdmin(client UserAPI, bus *eventbus.EventBus, log zerolog.Logger) *UserAdmin {
	return &UserAdmin{
		client: client,
		bus:    bus,
		log:    log.With().Str("component", "user-admin").Logger(),
	}
}

// Refresh replaces the list with the backend's.
func (a *UserAdmin) Refresh(ctx context.Context) error {
	users, err := a.client.ListUsers(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.err = api.Message(err)
		return err
	}
	a.users = users
	a.err = ""
	return nil
}

// Add validates n, creates the account and appends it to the list.
func (a *UserAdmin) Add(ctx context.Context, n user.NewUser) (user.User, error) {
	if err := n.Validate(); err != nil {
		return user.User{}, err
	}

	created, err := a.client.CreateUser(ctx, n)
	if err != nil {
		return user.User{}, err
	}

	a.mu.Lock()
	a.users = append(slices.Clone(a.users), created)
	a.mu.Unlock()

	a.log.Info().Str("user", created.DisplayName()).Msg("user added")
	a.bus.PublishUserCreated(eventbus.UserCreatedPayload{User: created})
	return created, nil
}

// Edit validates upd, saves it and replaces the account with the same id.
func (a *UserAdmin) Edit(ctx context.Context, id jsonx.ID, upd user.Update) (user.User, error) {
	if err := upd.Validate(); err != nil {
		return user.User{}, err
	}

	updated, err := a.client.UpdateUser(ctx, id, upd)
	if err != nil {
		return user.User{}, err
	}

	a.mu.Lock()
	users := slices.Clone(a.users)
	if i := slices.IndexFunc(users, func(u user.User) bool { return u.ID == id }); i >= 0 {
		users[i] = updated
	}
	a.users = users
	a.mu.Unlock()

	a.bus.PublishUserUpdated(eventbus.UserUpdatedPayload{User: updated})
	return updated, nil
}

// Delete asks confirm for approval and deletes the account. A declined
// confirmation returns false without contacting the backend.
func (a *UserAdmin) Delete(ctx context.Context, id jsonx.ID, confirm Confirmer) (bool, error) {
	if confirm == nil {
		return false, fmt.Errorf("delete user: confirmation is required")
	}

	name := id.String()
	if u, ok := a.Find(id); ok {
		name = u.DisplayName()
	}

	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Delete user %q? This cannot be undone.", name))
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := a.client.DeleteUser(ctx, id); err != nil {
		return false, err
	}

	a.mu.Lock()
	a.users = slices.DeleteFunc(slices.Clone(a.users), func(u user.User) bool { return u.ID == id })
	a.mu.Unlock()

	a.log.Info().Str("user", name).Msg("user deleted")
	a.bus.PublishUserDeleted(eventbus.UserDeletedPayload{UserID: id})
	return true, nil
}

// Users returns a copy of the list.
func (a *UserAdmin) Users() []user.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.users)
}

// Find returns the listed account with the given id.
func (a *UserAdmin) Find(id jsonx.ID) (user.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := slices.IndexFunc(a.users, func(u user.User) bool { return u.ID == id })
	if i < 0 {
		return user.User{}, false
	}
	return a.users[i], true
}

// Search filters the list by name, username or email.
func (a *UserAdmin) Search(query string) []user.User {
	return user.Search(a.Users(), query)
}

// Page returns one page of the search results and the page count.
func (a *UserAdmin) Page(query string, page int) ([]user.User, int) {
	return user.Page(a.Search(query), page)
}

// Err returns the message of the last failed refresh, or "".
func (a *UserAdmin) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Stats loads the system wide dashboard figures.
func (a *UserAdmin) Stats(ctx context.Context) (user.AdminStats, error) {
	return a.client.AdminStats(ctx)
}

// DownloadReport writes the CSV task report to w.
func (a *UserAdmin) DownloadReport(ctx context.Context, w io.Writer) (int64, error) {
	return a.client.DownloadReport(ctx, w)
}
