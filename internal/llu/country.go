package llu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// GetCountryConfig fetches the regional service configuration for a
// two-letter ISO 3166-1 country code. This endpoint does not require
// authentication.
func (c *Client) GetCountryConfig(ctx context.Context, countryCode string) (json.RawMessage, error) {
	if len(countryCode) != 2 {
		return nil, &ValidationError{Field: "countryCode", Reason: "must be a 2-letter ISO country code"}
	}
	query := url.Values{"country": {countryCode}}
	var resp envelope
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/llu/config/country", c.defaultHeaders(), nil, query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
