// Package llu is a client for the LibreView/LibreLinkUp CGM cloud API.
//
// A Client owns one authenticated session: Authenticate walks the
// login/redirect/terms-of-use exchange and stores the resulting bearer
// token; the query methods each issue a single request with it. The
// client is synchronous and keeps no data beyond the session itself.
package llu

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults match the published LibreLinkUp client identity. The API
// rejects requests without a recognized version/product pair.
const (
	DefaultBaseURL = "https://libreview-proxy.onrender.com"
	DefaultRegion  = "us"
	DefaultVersion = "4.7"
	DefaultProduct = "llu.ios"

	defaultTimeout = 30 * time.Second
)

// Config parameterizes a Client. Zero values fall back to the defaults
// above.
type Config struct {
	// BaseURL is the API host without a region segment.
	BaseURL string
	// Region is the initial regional path segment; the server may
	// redirect to another during login.
	Region  string
	Version string
	Product string
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Product == "" {
		c.Product = DefaultProduct
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Client is a LibreLinkUp API session. It is not safe for concurrent use
// while Authenticate is in flight; queries after authentication only read
// session state.
type Client struct {
	http *http.Client
	log  zerolog.Logger

	// baseURL includes the region segment and is rewritten when the
	// server redirects the login to another region.
	baseURL string
	version string
	product string

	email    string
	password string

	ticket *AuthTicket
	token  string
}

// NewClient creates a client for the given credentials. The logger is an
// explicit dependency; pass zerolog.Nop() to disable request logging.
func NewClient(email, password string, cfg Config, log zerolog.Logger) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Region,
		version:  cfg.Version,
		product:  cfg.Product,
		email:    email,
		password: password,
	}
}

// Token returns the session bearer token, empty until authentication
// reaches a terminal success.
func (c *Client) Token() string { return c.token }

// Ticket returns the stored auth ticket, nil before authentication.
func (c *Client) Ticket() *AuthTicket { return c.ticket }

// Authenticated reports whether the session holds a usable token.
func (c *Client) Authenticated() bool { return c.token != "" }

// BaseURL returns the current regional base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// RestoreSession primes the client with a previously issued ticket, e.g.
// one persisted by a caller across restarts. baseURL must be the regional
// base URL the ticket was issued against; empty keeps the current one.
func (c *Client) RestoreSession(ticket AuthTicket, baseURL string) {
	c.ticket = &ticket
	c.token = ticket.Token
	if baseURL != "" {
		c.baseURL = baseURL
	}
}

func (c *Client) defaultHeaders() map[string]string {
	return map[string]string{
		"version": c.version,
		"product": c.product,
	}
}

func (c *Client) authHeaders() (map[string]string, error) {
	if c.token == "" {
		return nil, &PreconditionError{Reason: "client is not authenticated, call Authenticate first"}
	}
	h := c.defaultHeaders()
	h["Authorization"] = "Bearer " + c.token
	return h, nil
}

// do issues one request and decodes the JSON response into dst. Non-2xx
// statuses become *HTTPError, network failures *TransportError, and
// undecodable success bodies *DecodeError.
func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, body any, query url.Values, dst any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &ValidationError{Field: "body", Reason: err.Error()}
		}
	}
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return &TransportError{URL: rawURL, Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logRequest(method, rawURL, headers, payload)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: rawURL, Err: err}
	}

	c.logResponse(rawURL, resp.StatusCode, raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &DecodeError{URL: rawURL, Err: err}
	}
	return nil
}

func (c *Client) logRequest(method, url string, headers map[string]string, body []byte) {
	if c.log.GetLevel() > zerolog.DebugLevel {
		return
	}
	ev := c.log.Debug().
		Str("method", method).
		Str("url", url).
		Interface("headers", MaskHeaders(headers))
	if body != nil {
		ev = ev.RawJSON("body", maskJSON(body))
	}
	ev.Msg("http request")
}

func (c *Client) logResponse(url string, status int, body []byte) {
	if c.log.GetLevel() > zerolog.DebugLevel {
		return
	}
	ev := c.log.Debug().
		Str("url", url).
		Int("status", status)
	if json.Valid(body) {
		ev = ev.RawJSON("body", maskJSON(body))
	} else {
		ev = ev.Int("body_len", len(body))
	}
	ev.Msg("http response")
}
