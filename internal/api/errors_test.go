package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantFields map[string]string
	}{
		{
			name:    "admin envelope",
			status:  400,
			body:    `{"success":false,"message":"Failed to create user","error":"Email already in use"}`,
			wantMsg: "Failed to create user: Email already in use",
		},
		{
			name:    "message only",
			status:  401,
			body:    `{"id":null,"username":null,"message":"Invalid username or password","token":null}`,
			wantMsg: "Invalid username or password",
		},
		{
			name:    "error only",
			status:  403,
			body:    `{"error":"Access Denied"}`,
			wantMsg: "Access Denied",
		},
		{
			name:       "errors map",
			status:     400,
			body:       `{"message":"Validation failed","errors":{"title":"Title is required"}}`,
			wantMsg:    "Validation failed",
			wantFields: map[string]string{"title": "Title is required"},
		},
		{
			name:       "bare field map",
			status:     400,
			body:       `{"title":"must not be blank","dueDate":"must be a future date"}`,
			wantMsg:    "Validation failed",
			wantFields: map[string]string{"title": "must not be blank", "dueDate": "must be a future date"},
		},
		{
			name:    "plain text",
			status:  500,
			body:    "upstream exploded\n",
			wantMsg: "upstream exploded",
		},
		{
			name:    "json string",
			status:  409,
			body:    `"Username already taken"`,
			wantMsg: "Username already taken",
		},
		{
			name:    "empty",
			status:  404,
			body:    "",
			wantMsg: "Not Found",
		},
		{
			name:    "unhelpful object",
			status:  502,
			body:    `{"success":false}`,
			wantMsg: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, tt.wantFields, got.Fields)
		})
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("load tasks: %w", &Error{Status: http.StatusUnauthorized})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, &Error{Status: http.StatusForbidden}, ErrForbidden)
	assert.ErrorIs(t, &Error{Status: http.StatusNotFound}, ErrNotFound)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Access Denied", Message(&Error{Status: 403, Message: "Access Denied"}))
	assert.Equal(t, "Internal Server Error", Message(&Error{Status: 500}))
	assert.Contains(t, Message(fmt.Errorf("%w: dial tcp", ErrNetwork)), "Unable to reach the server")
	assert.Equal(t, "plain", Message(errors.New("plain")))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("x: %w", ErrNetwork)))
	assert.True(t, IsTransient(&Error{Status: 503}))
	assert.False(t, IsTransient(&Error{Status: 401}))
	assert.False(t, IsTransient(errors.New("other")))
}

func TestRejected(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"success":false,"message":"nope"}`, true},
		{`{"success":true,"data":[]}`, false},
		{`{"id":1,"title":"Plan"}`, false},
		{`[{"success":false}]`, false},
		{`ID,Title\n1,Plan`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rejected([]byte(tt.body)), tt.body)
	}

	assert.Equal(t, http.StatusBadRequest, rejectedStatus(http.StatusOK))
	assert.Equal(t, http.StatusConflict, rejectedStatus(http.StatusConflict))
}

func TestParseError_PlainTextKeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("a", maxPlainErrorLen-1) + "é and more"

	e := parseError(502, []byte(body))
	assert.True(t, utf8.ValidString(e.Message))
	assert.Equal(t, strings.Repeat("a", maxPlainErrorLen-1), e.Message)
	assert.LessOrEqual(t, len(e.Message), maxPlainErrorLen)
}
