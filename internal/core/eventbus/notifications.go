package eventbus

import "fmt"

// Level is the severity of a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeSessionExpired(func(p SessionExpiredPayload) {
		r.notifyf(LevelWarning, "session expired: %s", p.Reason)
	})

	r.bus.SubscribeTaskCreated(func(p TaskCreatedPayload) {
		r.notifyf(LevelSuccess, "task %q created", p.Task.Title)
	})

	r.bus.SubscribeTaskUpdated(func(p TaskUpdatedPayload) {
		r.notifyf(LevelSuccess, "task %q updated", p.Task.Title)
	})

	r.bus.SubscribeTaskDeleted(func(p TaskDeletedPayload) {
		r.notifyf(LevelInfo, "task %s deleted", p.TaskID)
	})

	r.bus.SubscribeUserCreated(func(p UserCreatedPayload) {
		r.notifyf(LevelSuccess, "user %q added", p.User.DisplayName())
	})

	r.bus.SubscribeUserUpdated(func(p UserUpdatedPayload) {
		r.notifyf(LevelSuccess, "user %q updated", p.User.DisplayName())
	})

	r.bus.SubscribeUserDeleted(func(p UserDeletedPayload) {
		r.notifyf(LevelInfo, "user %s deleted", p.UserID)
	})

	r.bus.SubscribeSettingsChanged(func(p SettingsChangedPayload) {
		state := "off"
		if p.Settings.EmailNotifications {
			state = "on"
		}
		r.notifyf(LevelSuccess, "email notifications turned %s", state)
	})
}

func (r *NotificationRouter) notifyf(level Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
