package llu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("user@example.com", "hunter2", Config{
		BaseURL: srv.URL,
		Region:  "us",
	}, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestAuthenticateSuccess(t *testing.T) {
	var gotBody map[string]string
	var gotVersion, gotProduct string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/us/llu/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		gotVersion = r.Header.Get("version")
		gotProduct = r.Header.Get("product")
		json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, map[string]any{
			"status": 0,
			"data": map[string]any{
				"authTicket": map[string]any{
					"token":    "tok-immediate-success",
					"expires":  1717171717,
					"duration": 15552000,
				},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ticket, err := c.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if ticket.Token != "tok-immediate-success" {
		t.Fatalf("unexpected ticket token: %q", ticket.Token)
	}
	if c.Token() != ticket.Token {
		t.Fatalf("session token %q does not match ticket token %q", c.Token(), ticket.Token)
	}
	if !c.Authenticated() {
		t.Fatal("expected client to be authenticated")
	}
	if gotBody["email"] != "user@example.com" || gotBody["password"] != "hunter2" {
		t.Fatalf("unexpected login payload: %v", gotBody)
	}
	if gotVersion != DefaultVersion || gotProduct != DefaultProduct {
		t.Fatalf("missing default headers: version=%q product=%q", gotVersion, gotProduct)
	}
}

func TestAuthenticateRegionRedirect(t *testing.T) {
	var usHits, euHits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/us/llu/auth/login":
			atomic.AddInt32(&usHits, 1)
			writeJSON(w, map[string]any{
				"status": 0,
				"data":   map[string]any{"redirect": true, "region": "eu"},
			})
		case "/eu/llu/auth/login":
			atomic.AddInt32(&euHits, 1)
			writeJSON(w, map[string]any{
				"status": 0,
				"data": map[string]any{
					"authTicket": map[string]any{"token": "tok-from-eu-host"},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	if _, err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if usHits != 1 || euHits != 1 {
		t.Fatalf("expected exactly one hop, got us=%d eu=%d", usHits, euHits)
	}
	if !strings.HasSuffix(c.BaseURL(), "/eu") {
		t.Fatalf("base URL not rewritten to eu region: %s", c.BaseURL())
	}
	if c.Token() != "tok-from-eu-host" {
		t.Fatalf("unexpected token after redirect: %q", c.Token())
	}
}

func TestAuthenticateRedirectLoopCapped(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		// Bounce between regions forever.
		region := "eu"
		if strings.HasPrefix(r.URL.Path, "/eu/") {
			region = "us"
		}
		writeJSON(w, map[string]any{
			"status": 0,
			"data":   map[string]any{"redirect": true, "region": region},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected error from redirect loop")
	}
	if c.Authenticated() {
		t.Fatal("session must stay unauthenticated after redirect loop")
	}
	if want := int32(maxRedirectHops + 1); hits != want {
		t.Fatalf("expected %d login attempts, got %d", want, hits)
	}
}

func TestAuthenticateTermsOfUse(t *testing.T) {
	var touAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/us/llu/auth/login":
			writeJSON(w, map[string]any{
				"status": 4,
				"data": map[string]any{
					"authTicket": map[string]any{"token": "T1"},
				},
			})
		case "/us/auth/continue/tou":
			if r.Method != http.MethodPost {
				t.Errorf("terms continuation used %s, want POST", r.Method)
			}
			touAuth = r.Header.Get("Authorization")
			writeJSON(w, map[string]any{
				"status": 0,
				"data": map[string]any{
					"authTicket": map[string]any{"token": "T2"},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ticket, err := c.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if touAuth != "Bearer T1" {
		t.Fatalf("terms continuation sent %q, want the interim ticket", touAuth)
	}
	if ticket.Token != "T2" || c.Token() != "T2" {
		t.Fatalf("final token must come from terms response, got ticket=%q session=%q", ticket.Token, c.Token())
	}
}

func TestAcceptTermsRequiresTicket(t *testing.T) {
	c := NewClient("user@example.com", "hunter2", Config{BaseURL: "http://127.0.0.1:0"}, zerolog.Nop())
	_, err := c.AcceptTerms(context.Background())
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}

func TestAuthenticateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.Authenticate(context.Background())
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", he.Status)
	}
	if c.Authenticated() {
		t.Fatal("session must stay unauthenticated after HTTP error")
	}
}

func TestAuthenticateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.Authenticate(context.Background())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if c.Authenticated() {
		t.Fatal("session must stay unauthenticated after decode error")
	}
}

func TestAuthenticateFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": 2, "data": map[string]any{}})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected error for login failure status")
	}
	if !strings.Contains(err.Error(), "status 2") {
		t.Fatalf("error should name the status: %v", err)
	}
	if c.Authenticated() {
		t.Fatal("session must stay unauthenticated")
	}
}
