package tui

import (
	"time"

	"github.com/hay-kot/taskdeck/internal/core/eventbus"
)

const (
	toastTTL          = 4 * time.Second
	toastErrorTTL     = 8 * time.Second
	maxToasts         = 3
	toastTickInterval = 250 * time.Millisecond
	toastWidth        = 44
)

type toast struct {
	notification eventbus.NotificationPublishedPayload
	repeats      int
	remaining    time.Duration
}

func ttlFor(level eventbus.Level) time.Duration {
	if level == eventbus.LevelError || level == eventbus.LevelWarning {
		return toastErrorTTL
	}
	return toastTTL
}

// ToastController holds the notifications shown in the corner of the
// dashboard. Repeated messages collapse into the newest toast.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push shows n. A message equal to the newest toast refreshes that toast
// instead of stacking a copy. The oldest toast is evicted past maxToasts.
func (c *ToastController) Push(n eventbus.NotificationPublishedPayload) {
	if last := len(c.toasts) - 1; last >= 0 && c.toasts[last].notification == n {
		c.toasts[last].repeats++
		c.toasts[last].remaining = ttlFor(n.Level)
		return
	}

	c.toasts = append(c.toasts, toast{notification: n, remaining: ttlFor(n.Level)})
	if len(c.toasts) > maxToasts {
		c.toasts = c.toasts[len(c.toasts)-maxToasts:]
	}
}

// Tick ages every toast by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking reports whether a tick is scheduled.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
