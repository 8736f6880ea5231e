package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrNetwork      = errors.New("network error")
)

// Error is a non-2xx response from the backend with its body normalized.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.Status, msg)
	}

	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%d: %s (%s)", e.Status, msg, strings.Join(parts, ", "))
}

// Is matches the status sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	default:
		return false
	}
}

// Message returns the text to show a user for err. Backend errors show the
// normalized message and everything else its error string.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.Status)
	}
	if errors.Is(err, ErrNetwork) {
		return "Unable to reach the server. Check your connection and try again."
	}
	return err.Error()
}

const maxPlainErrorLen = 512

// parseError normalizes the error bodies produced by the backend:
// {success,message,error,data}, {message}, {error}, {errors:{field:msg}},
// a bare {field:msg} map, or plain text.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		e.Message = http.StatusText(status)
		return e
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		var s string
		if json.Unmarshal([]byte(trimmed), &s) == nil {
			trimmed = s
		}
		e.Message = truncate(trimmed, maxPlainErrorLen)
		return e
	}

	message := rawString(obj["message"])
	detail := rawString(obj["error"])

	switch {
	case message != "" && detail != "" && detail != message:
		e.Message = message + ": " + detail
	case message != "":
		e.Message = message
	default:
		e.Message = detail
	}

	if raw, ok := obj["errors"]; ok {
		e.Fields = stringMap(raw)
	}
	if raw, ok := obj["data"]; ok && len(e.Fields) == 0 {
		e.Fields = stringMap(raw)
	}

	// Spring validation handlers answer with a bare field map.
	if e.Message == "" && len(e.Fields) == 0 {
		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			if s := rawString(v); s != "" {
				fields[k] = s
			}
		}
		if len(fields) == len(obj) {
			e.Fields = fields
		}
	}

	if len(e.Fields) == 0 {
		e.Fields = nil
	}
	if e.Message == "" {
		if e.Fields != nil {
			e.Message = "Validation failed"
		} else {
			e.Message = http.StatusText(status)
		}
	}

	return e
}

// rejected reports whether a 2xx body is the {success:false} envelope.
func rejected(body []byte) bool {
	var env struct {
		Success *bool `json:"success"`
	}
	if json.Unmarshal(body, &env) != nil || env.Success == nil {
		return false
	}
	return !*env.Success
}

// rejectedStatus is the status reported for a rejection that arrived with a
// success code.
func rejectedStatus(status int) int {
	if status >= http.StatusBadRequest {
		return status
	}
	return http.StatusBadRequest
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func stringMap(raw json.RawMessage) map[string]string {
	var m map[string]json.RawMessage
	if json.Unmarshal(raw, &m) != nil {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		if s := rawString(v); s != "" {
			out[k] = s
		}
	}
	return out
}
