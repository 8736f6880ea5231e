package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger writes bus traffic to logger. Drops and subscriber
// panics are always visible; the rest only at debug and trace level.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	withEvent := func(e *zerolog.Event, event Event) *zerolog.Event {
		return e.Str("event", string(event))
	}

	bus.OnPublish(func(event Event, payload any) {
		withEvent(logger.Debug(), event).Str("payload", fmt.Sprintf("%T", payload)).Msg("published")
	})
	bus.OnSubscribe(func(event Event) {
		withEvent(logger.Trace(), event).Msg("subscribed")
	})
	bus.OnDrop(func(event Event, _ any) {
		withEvent(logger.Warn(), event).Msg("dropped, buffer full")
	})
	bus.OnPanic(func(event Event, _ any, recovered any) {
		withEvent(logger.Error(), event).Str("panic", fmt.Sprint(recovered)).Msg("subscriber panicked")
	})
}
