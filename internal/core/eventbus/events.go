// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within taskdeck.
package eventbus

import (
	"github.com/hay-kot/taskdeck/internal/core/auth"
	"github.com/hay-kot/taskdeck/internal/core/jsonx"
	"github.com/hay-kot/taskdeck/internal/core/task"
	"github.com/hay-kot/taskdeck/internal/core/user"
)

// Event names a published event.
type Event string

// Events defines all event types and their payload structs.
var Events = map[string]any{
	// Keep list sorted A-Z
	"notification.published": NotificationPublishedPayload{},
	"session.changed":        SessionChangedPayload{},
	"session.expired":        SessionExpiredPayload{},
	"settings.changed":       SettingsChangedPayload{},
	"task.created":           TaskCreatedPayload{},
	"task.deleted":           TaskDeletedPayload{},
	"task.updated":           TaskUpdatedPayload{},
	"user.created":           UserCreatedPayload{},
	"user.deleted":           UserDeletedPayload{},
	"user.updated":           UserUpdatedPayload{},
}

const (
	EventNotificationPublished Event = "notification.published"
	EventSessionChanged        Event = "session.changed"
	EventSessionExpired        Event = "session.expired"
	EventSettingsChanged       Event = "settings.changed"
	EventTaskCreated           Event = "task.created"
	EventTaskDeleted           Event = "task.deleted"
	EventTaskUpdated           Event = "task.updated"
	EventUserCreated           Event = "user.created"
	EventUserDeleted           Event = "user.deleted"
	EventUserUpdated           Event = "user.updated"
)

// SessionChangedPayload is emitted on every session phase transition.
type SessionChangedPayload struct {
	Phase    auth.Phase
	Previous auth.Phase
	Identity auth.Identity
}

// SessionExpiredPayload is emitted when the backend rejects the credential.
type SessionExpiredPayload struct {
	Reason string
}

// SettingsChangedPayload is emitted after settings were saved.
type SettingsChangedPayload struct {
	Settings user.Settings
}

// TaskCreatedPayload is emitted after a task was created.
type TaskCreatedPayload struct {
	Task task.Task
}

// TaskUpdatedPayload is emitted after a task was replaced.
type TaskUpdatedPayload struct {
	Task task.Task
}

// TaskDeletedPayload is emitted after a task was deleted.
type TaskDeletedPayload struct {
	TaskID jsonx.ID
}

// UserCreatedPayload is emitted after an administrator added a user.
type UserCreatedPayload struct {
	User user.User
}

// UserUpdatedPayload is emitted after an administrator edited a user.
type UserUpdatedPayload struct {
	User user.User
}

// UserDeletedPayload is emitted after an administrator deleted a user.
type UserDeletedPayload struct {
	UserID jsonx.ID
}

// NotificationPublishedPayload carries a user-facing message.
type NotificationPublishedPayload struct {
	Level   Level
	Message string
}
