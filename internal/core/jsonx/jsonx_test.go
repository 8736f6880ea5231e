package jsonx

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `42`, "42"},
		{"string", `"abc-1"`, "abc-1"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestID_Marshal(t *testing.T) {
	b, err := json.Marshal(ID("7"))
	require.NoError(t, err)
	assert.JSONEq(t, `7`, string(b))

	b, err = json.Marshal(ID("u-7"))
	require.NoError(t, err)
	assert.JSONEq(t, `"u-7"`, string(b))
}

func TestTime_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"local datetime", `"2026-05-01T09:30:00"`, time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local)},
		{"fractional", `"2026-05-01T09:30:00.123"`, time.Date(2026, 5, 1, 9, 30, 0, 123000000, time.Local)},
		{"minutes", `"2026-05-01T09:30"`, time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local)},
		{"date", `"2026-05-01"`, time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local)},
		{"rfc3339", `"2026-05-01T09:30:00Z"`, time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.True(t, tt.want.Equal(got.Time), "got %v want %v", got.Time, tt.want)
		})
	}
}

func TestTime_UnmarshalEpochAndNull(t *testing.T) {
	var got Time
	require.NoError(t, json.Unmarshal([]byte(`1700000000000`), &got))
	assert.Equal(t, int64(1700000000000), got.UnixMilli())

	require.NoError(t, json.Unmarshal([]byte(`null`), &got))
	assert.True(t, got.IsZero())
}

func TestTime_UnmarshalInvalid(t *testing.T) {
	var got Time
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &got))
}

func TestTime_Marshal(t *testing.T) {
	b, err := json.Marshal(At(time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local)))
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-05-01T09:30:00"`, string(b))

	b, err = json.Marshal(Time{})
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(b))
}
