// Package jsonx holds the lenient JSON scalar types used to decode backend
// payloads whose identifiers and timestamps vary in shape.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is an identifier that may arrive as a JSON number or string.
type ID string

// Int returns the identifier as an integer when it is numeric.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

func (id ID) String() string { return string(id) }

// MarshalJSON emits numeric identifiers as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, ok := id.Int(); ok {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

// LocalLayout is the zone-less timestamp format the backend writes.
const LocalLayout = "2006-01-02T15:04:05"

var layouts = []string{
	time.RFC3339Nano,
	LocalLayout + ".999999999",
	LocalLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Time is a timestamp decoded from any of the layouts the backend or a user
// may supply. Zone-less values are interpreted in local time.
type Time struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Time { return Time{Time: t} }

// ParseTime parses s with the first matching layout.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Time{}, nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Time{Time: t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognised time %q", s)
}

// MarshalJSON writes the zone-less layout so Spring style backends accept it.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Local().Format(LocalLayout))
}

func (t *Time) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = Time{}
		return nil
	}

	// Epoch milliseconds.
	if len(b) > 0 && b[0] != '"' {
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("decode time: %w", err)
		}
		*t = Time{Time: time.UnixMilli(ms)}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
