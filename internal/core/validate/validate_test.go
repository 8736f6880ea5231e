package validate

import (
	"errors"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"value", "alice", false},
		{"empty", "", true},
		{"spaces", "   ", true},
		{"tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Required(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Required(%q) error = %v", tt.input, err)
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"subdomain", "bob@mail.example.org", false},
		{"missing at", "alice.example.com", true},
		{"missing tld", "alice@example", true},
		{"space", "alice @example.com", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Email(%q) error = %v", tt.input, err)
		})
	}
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("secret"))
	assert.Error(t, Password("short"))
	assert.Error(t, Password(""))
}

func TestMinLength(t *testing.T) {
	check := MinLength(MinTitleLength)
	assert.NoError(t, check("abc"))
	assert.ErrorContains(t, check("ab"), "at least 3")
	assert.ErrorContains(t, check(" "), "required")
}

func TestUsername(t *testing.T) {
	assert.NoError(t, Username("bob"))
	assert.Error(t, Username("bo"))
}

func TestFieldMap(t *testing.T) {
	err := criterio.ValidateStruct(
		criterio.Run("title", "", Required),
		criterio.Run("email", "nope", Email),
		criterio.Run("name", "ok", Required),
	)

	got := FieldMap(err)
	assert.Len(t, got, 2)
	assert.Contains(t, got["title"], "is required")
	assert.Contains(t, got["email"], "valid email")

	assert.Nil(t, FieldMap(errors.New("boom")))
	assert.Nil(t, FieldMap(nil))
}
