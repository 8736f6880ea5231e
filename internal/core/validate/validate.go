// Package validate provides the field validators shared by the login,
// registration, task and user forms.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/criterio"
)

// emailPattern is deliberately loose: something@something.tld with no spaces.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	MinUsernameLength    = 3
	MinPasswordLength    = 6
	MinTitleLength       = 3
	MinDescriptionLength = 10
)

// Required fails for empty or whitespace-only values.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// MinLength returns a validator requiring a non-empty value of at least n runes.
func MinLength(n int) func(string) error {
	return func(s string) error {
		if err := Required(s); err != nil {
			return err
		}
		if utf8.RuneCountInString(strings.TrimSpace(s)) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

// Email validates a required email address.
func Email(s string) error {
	if err := Required(s); err != nil {
		return err
	}
	if !emailPattern.MatchString(s) {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// Username validates a login name.
func Username(s string) error {
	return MinLength(MinUsernameLength)(s)
}

// Password validates a new password. Whitespace counts toward the length.
func Password(s string) error {
	if s == "" {
		return fmt.Errorf("is required")
	}
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return fmt.Errorf("must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// FieldMap flattens criterio field errors into field -> message. Errors that
// are not field errors yield nil.
func FieldMap(err error) map[string]string {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, ok := out[fe.Field]; ok {
			continue
		}
		out[fe.Field] = fe.Err.Error()
	}
	return out
}
