package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(exp)}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
		{"ROLE_ADMIN", RoleAdmin},
		{" role_admin ", RoleAdmin},
		{"USER", RoleUser},
		{"ROLE_USER", RoleUser},
		{"", RoleUser},
		{"superuser", RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestRole_Satisfies(t *testing.T) {
	assert.True(t, RoleUser.Satisfies(RoleUser))
	assert.True(t, RoleAdmin.Satisfies(RoleUser))
	assert.True(t, RoleAdmin.Satisfies(RoleAdmin))
	assert.False(t, RoleUser.Satisfies(RoleAdmin))
	assert.True(t, RoleUser.Satisfies(""))
}

func TestCredential_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	past := Credential{Token: signed(t, now.Add(-time.Minute))}
	assert.True(t, past.Expired(now))

	future := Credential{Token: signed(t, now.Add(time.Hour))}
	assert.False(t, future.Expired(now))

	opaque := Credential{Token: "not-a-jwt"}
	assert.False(t, opaque.Expired(now), "unreadable tokens are left for the backend to judge")
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got, ok := TokenExpiry(signed(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("")
	assert.False(t, ok)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "initializing", PhaseInitializing.String())
	assert.Equal(t, "confirmed", PhaseConfirmed.String())
	assert.Equal(t, "unknown", Phase(42).String())

	assert.False(t, PhaseTentative.Settled())
	assert.True(t, PhaseUnauthenticated.Settled())
}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, Credentials{Username: "alice", Password: "x"}.Validate())

	err := Credentials{Username: "al", Password: ""}.Validate()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
}

func TestNewUser_Validate(t *testing.T) {
	valid := NewUser{Username: "alice", Email: "alice@example.com", Password: "secret", ConfirmPassword: "secret"}
	assert.NoError(t, valid.Validate())

	noConfirm := valid
	noConfirm.ConfirmPassword = ""
	assert.NoError(t, noConfirm.Validate())

	mismatch := valid
	mismatch.ConfirmPassword = "secreT"
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, mismatch.Validate(), &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "confirmPassword", fieldErrs[0].Field)

	bad := NewUser{Username: "al", Email: "x", Password: "123"}
	require.ErrorAs(t, bad.Validate(), &fieldErrs)
	assert.Len(t, fieldErrs, 3)
}
