package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

func TestRegisterDebugLogger(t *testing.T) {
	var buf bytes.Buffer
	bus := eventbus.New(1)
	eventbus.RegisterDebugLogger(bus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: task.Task{ID: "1"}})
	// Nothing drains the bus, so the second event overflows the buffer.
	bus.PublishSessionExpired(eventbus.SessionExpiredPayload{Reason: "test"})

	out := buf.String()
	assert.Contains(t, out, `"event":"task.created"`)
	assert.Contains(t, out, `"payload":"eventbus.TaskCreatedPayload"`)
	assert.Contains(t, out, `"message":"dropped, buffer full"`)
}
