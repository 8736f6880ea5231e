package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestWithUsername(t *testing.T) {
	ctx := WithUsername(context.Background(), "alice")
	assert.Equal(t, "alice", GetUsername(ctx))
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUsername(ctx))
}
