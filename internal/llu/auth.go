package llu

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// statusTermsRequired is the sentinel status the login endpoint returns
// when the account must accept the terms of use before a usable token is
// issued.
const statusTermsRequired = 4

// maxRedirectHops bounds the login redirect chase. The server announces
// at most one regional move per login attempt; more than a few hops means
// it is misbehaving.
const maxRedirectHops = 3

// Authenticate logs in and stores the session token. It follows regional
// redirects (up to maxRedirectHops) and completes the terms-of-use step
// when the server demands it. On any error the session is left
// unauthenticated.
func (c *Client) Authenticate(ctx context.Context) (*AuthTicket, error) {
	payload := map[string]string{
		"email":    c.email,
		"password": c.password,
	}

	for hop := 0; ; hop++ {
		var resp loginResponse
		err := c.do(ctx, http.MethodPost, c.baseURL+"/llu/auth/login", c.defaultHeaders(), payload, nil, &resp)
		if err != nil {
			return nil, err
		}

		if resp.Data.Redirect && resp.Data.Region != "" {
			if hop >= maxRedirectHops {
				return nil, fmt.Errorf("login redirected more than %d times, giving up", maxRedirectHops)
			}
			c.baseURL = replaceRegion(c.baseURL, resp.Data.Region)
			c.log.Info().Str("region", resp.Data.Region).Str("base_url", c.baseURL).Msg("login redirected to region")
			continue
		}

		if resp.Status == statusTermsRequired {
			if resp.Data.AuthTicket == nil {
				return nil, fmt.Errorf("terms-of-use response carried no auth ticket")
			}
			c.ticket = resp.Data.AuthTicket
			c.log.Info().Msg("terms of use acceptance required")
			return c.AcceptTerms(ctx)
		}

		if resp.Data.AuthTicket == nil {
			return nil, fmt.Errorf("login failed with status %d", resp.Status)
		}
		c.ticket = resp.Data.AuthTicket
		c.token = c.ticket.Token
		return c.ticket, nil
	}
}

// AcceptTerms completes the terms-of-use gate using the ticket from the
// preceding login, replacing it with the usable one from the response.
// Authenticate calls this automatically; it is exported for callers that
// drive the two steps separately.
func (c *Client) AcceptTerms(ctx context.Context) (*AuthTicket, error) {
	if c.ticket == nil {
		return nil, &PreconditionError{Reason: "no auth ticket available, must authenticate first"}
	}

	headers := c.defaultHeaders()
	headers["Authorization"] = "Bearer " + c.ticket.Token

	var resp loginResponse
	err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/continue/tou", headers, nil, nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data.AuthTicket == nil {
		return nil, fmt.Errorf("terms acceptance response carried no auth ticket")
	}
	c.ticket = resp.Data.AuthTicket
	c.token = c.ticket.Token
	return c.ticket, nil
}

// replaceRegion swaps the trailing region segment of a regional base URL
// for the server-supplied one.
func replaceRegion(baseURL, region string) string {
	i := strings.LastIndex(baseURL, "/")
	return baseURL[:i+1] + region
}
