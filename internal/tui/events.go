package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/taskdeck/internal/core/eventbus"
)

// busBridge forwards bus events into the Bubble Tea loop. Handlers run on
// the bus goroutine and must never block, so a full buffer drops events.
type busBridge struct {
	ch chan tea.Msg
}

func newBusBridge(bus *eventbus.EventBus) *busBridge {
	b := &busBridge{ch: make(chan tea.Msg, 32)}
	if bus == nil {
		return b
	}

	bus.SubscribeSessionExpired(func(p eventbus.SessionExpiredPayload) {
		b.send(sessionExpiredMsg{reason: p.Reason})
	})
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		b.send(p)
	})
	return b
}

func (b *busBridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// wait blocks until the next event. Update re-issues it after every event.
func (b *busBridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}
