package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hay-kot/taskdeck/internal/core/user"
)

// Settings returns the current user's settings.
func (c *Client) Settings(ctx context.Context) (user.Settings, error) {
	s := user.DefaultSettings()
	err := c.do(ctx, request{method: http.MethodGet, path: "/user/settings"}, func(b []byte) error {
		return decodeObject(b, &s)
	})
	return s, err
}

// SetEmailNotifications toggles email notifications and returns the saved
// settings.
func (c *Client) SetEmailNotifications(ctx context.Context, enabled bool) (user.Settings, error) {
	s := user.DefaultSettings()
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/user/settings/email-notifications",
		query:  url.Values{"enabled": {strconv.FormatBool(enabled)}},
	}, func(b []byte) error { return decodeObject(b, &s) })
	return s, err
}
