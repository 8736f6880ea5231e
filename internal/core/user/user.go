// Package user defines the administrator's view of user accounts, the
// user management forms and per-user settings.
package user

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/validate"
)

// PageSize is the number of rows shown per page in the user table.
const PageSize = 8

// User is an account as listed in the admin panel.
type User struct {
	ID             jsonx.ID   `json:"id"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           auth.Role  `json:"role"`
	TasksCompleted int        `json:"tasksCompleted"`
	CreatedAt      jsonx.Time `json:"createdAt,omitzero"`
}

// DisplayName returns Name, falling back to Username.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Username
}

// WithDefaults fills the display name and role when the backend omits them.
func (u User) WithDefaults() User {
	u.Name = u.DisplayName()
	if u.Role == "" {
		u.Role = auth.RoleUser
	}
	return u
}

// NewUser is the add-user form.
type NewUser struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role,omitempty"`
}

// Validate requires a name, a well formed email and a password of at least
// six characters.
func (n NewUser) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("name", n.Name, validate.Required),
		criterio.Run("email", n.Email, validate.Email),
		criterio.Run("password", n.Password, validate.Password),
		validateRole(n.Role),
	)
}

// Update is the edit-user form. The password is not editable here.
type Update struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role,omitempty"`
}

// UpdateOf prefills the edit form from u.
func UpdateOf(u User) Update {
	return Update{Name: u.DisplayName(), Email: u.Email, Role: u.Role}
}

// Validate requires a name and a well formed email.
func (u Update) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("name", u.Name, validate.Required),
		criterio.Run("email", u.Email, validate.Email),
		validateRole(u.Role),
	)
}

func validateRole(r auth.Role) error {
	if r == "" || r == auth.RoleUser || r == auth.RoleAdmin {
		return nil
	}
	return criterio.NewFieldErrors("role", fmt.Errorf("must be USER or ADMIN"))
}

// Search returns the users whose display name, username or email contains
// query, ignoring case. An empty query returns all users.
func Search(users []User, query string) []User {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return users
	}

	out := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.DisplayName()), query) ||
			strings.Contains(strings.ToLower(u.Username), query) ||
			strings.Contains(strings.ToLower(u.Email), query) {
			out = append(out, u)
		}
	}
	return out
}

// Page returns the zero-based page of users and the total page count. The
// page index is clamped into range.
func Page(users []User, page int) ([]User, int) {
	total := (len(users) + PageSize - 1) / PageSize
	if total == 0 {
		return nil, 0
	}

	page = min(max(page, 0), total-1)
	start := page * PageSize
	end := min(start+PageSize, len(users))
	return users[start:end], total
}
