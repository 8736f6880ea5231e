package auth

import (
	"fmt"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskdeck/internal/core/validate"
)

// Credentials are submitted by the login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the login form before any request is made.
func (c Credentials) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("username", c.Username, validate.Username),
		criterio.Run("password", c.Password, validate.Required),
	)
}

// NewUser is submitted by the registration form. ConfirmPassword is only
// checked when set and never sent to the backend.
type NewUser struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// Validate checks the registration form before any request is made.
func (u NewUser) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.Username(u.Username); err != nil {
		errs = errs.Append("username", err)
	}
	if err := validate.Email(u.Email); err != nil {
		errs = errs.Append("email", err)
	}
	if err := validate.Password(u.Password); err != nil {
		errs = errs.Append("password", err)
	}
	if u.ConfirmPassword != "" && u.ConfirmPassword != u.Password {
		errs = errs.Append("confirmPassword", fmt.Errorf("passwords do not match"))
	}

	return errs.ToError()
}
