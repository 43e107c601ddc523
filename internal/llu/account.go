package llu

import (
	"context"
	"encoding/json"
	"net/http"
)

// GetCurrentUser fetches the authenticated user's profile.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status int `json:"status"`
		Data   struct {
			User User `json:"user"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/user", headers, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// GetAccount fetches account metadata (creation and last-login times).
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status int     `json:"status"`
		Data   Account `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/account", headers, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetNotificationSettings fetches the alarm/notification settings for a
// connection. The shape is server-defined, so the payload is returned raw.
func (c *Client) GetNotificationSettings(ctx context.Context, connectionID string) (json.RawMessage, error) {
	if connectionID == "" {
		return nil, &ValidationError{Field: "connectionID", Reason: "must not be empty"}
	}
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	var resp envelope
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/llu/notifications/settings/"+connectionID, headers, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
