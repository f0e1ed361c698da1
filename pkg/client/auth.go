package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Login authenticates with username and password and returns a session key
// for use as the token argument of the job methods.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/services/auth/login",
		form:   url.Values{"username": {username}, "password": {password}},
		expect: http.StatusOK,
	})
	if err != nil {
		return "", fmt.Errorf("logging in as %q: %w", username, err)
	}

	key, err := xmlText(body, "//sessionKey")
	if err != nil {
		return "", fmt.Errorf("logging in as %q: %w", username, err)
	}
	return key, nil
}
