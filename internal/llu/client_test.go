package llu

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// countingServer records how many requests reach it, so tests can prove
// that validation and precondition failures never touch the network.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if handler != nil {
			handler(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func restoredClient(srv *httptest.Server) *Client {
	c := newTestClient(srv)
	c.RestoreSession(AuthTicket{Token: "restored-session-token"}, srv.URL+"/us")
	return c
}

func TestQueriesRequireAuthentication(t *testing.T) {
	srv, hits := countingServer(t, nil)
	c := newTestClient(srv)
	ctx := context.Background()

	ops := map[string]func() error{
		"GetCurrentUser": func() error { _, err := c.GetCurrentUser(ctx); return err },
		"GetAccount":     func() error { _, err := c.GetAccount(ctx); return err },
		"ListConnections": func() error {
			_, err := c.ListConnections(ctx)
			return err
		},
		"GetPatientGraph": func() error {
			_, err := c.GetPatientGraph(ctx, "p1")
			return err
		},
		"GetPatientLogbook": func() error {
			_, err := c.GetPatientLogbook(ctx, "p1")
			return err
		},
		"GetNotificationSettings": func() error {
			_, err := c.GetNotificationSettings(ctx, "c1")
			return err
		},
	}

	for name, op := range ops {
		var pe *PreconditionError
		if err := op(); !errors.As(err, &pe) {
			t.Errorf("%s before authentication: want PreconditionError, got %v", name, err)
		}
	}
	if *hits != 0 {
		t.Fatalf("unauthenticated queries issued %d network calls", *hits)
	}
}

func TestQueryValidation(t *testing.T) {
	srv, hits := countingServer(t, nil)
	c := restoredClient(srv)
	ctx := context.Background()

	cases := map[string]func() error{
		"empty patient graph id": func() error {
			_, err := c.GetPatientGraph(ctx, "")
			return err
		},
		"empty logbook id": func() error {
			_, err := c.GetPatientLogbook(ctx, "")
			return err
		},
		"empty connection id": func() error {
			_, err := c.GetNotificationSettings(ctx, "")
			return err
		},
		"3-letter country code": func() error {
			_, err := c.GetCountryConfig(ctx, "usa")
			return err
		},
		"empty country code": func() error {
			_, err := c.GetCountryConfig(ctx, "")
			return err
		},
	}

	for name, op := range cases {
		var ve *ValidationError
		if err := op(); !errors.As(err, &ve) {
			t.Errorf("%s: want ValidationError, got %v", name, err)
		}
	}
	if *hits != 0 {
		t.Fatalf("invalid arguments issued %d network calls", *hits)
	}
}

func TestListConnectionsIdempotent(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/us/llu/connections" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer restored-session-token" {
			t.Errorf("missing bearer header, got %q", got)
		}
		writeJSON(w, map[string]any{
			"status": 0,
			"data": []map[string]any{
				{"id": "c1", "patientId": "p1", "firstName": "Ada", "lastName": "L"},
			},
		})
	})
	c := restoredClient(srv)

	for i := 0; i < 2; i++ {
		conns, err := c.ListConnections(context.Background())
		if err != nil {
			t.Fatalf("ListConnections call %d: %v", i+1, err)
		}
		if len(conns) != 1 || conns[0].PatientID != "p1" {
			t.Fatalf("unexpected connections: %+v", conns)
		}
	}
	if *hits != 2 {
		t.Fatalf("expected 2 independent requests, got %d", *hits)
	}
}

func TestGetPatientGraph(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/us/llu/connections/p1/graph" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, map[string]any{
			"status": 0,
			"data": map[string]any{
				"connection": map[string]any{
					"patientId": "p1", "targetLow": 70, "targetHigh": 180,
				},
				"glucoseMeasurement": map[string]any{
					"Timestamp": "10/2/2023 11:55:58 AM",
					"Value":     5.8, "ValueInMgPerDl": 104,
					"TrendArrow": 3, "GlucoseUnits": 0,
				},
				"graphData": []map[string]any{
					{"Timestamp": "10/2/2023 11:40:58 AM", "Value": 5.6},
					{"Timestamp": "10/2/2023 11:45:58 AM", "Value": 5.7},
				},
			},
		})
	})
	c := restoredClient(srv)

	g, err := c.GetPatientGraph(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPatientGraph: %v", err)
	}
	if g.Connection.TargetHigh != 180 {
		t.Fatalf("unexpected target range: %+v", g.Connection)
	}
	if g.Current == nil || g.Current.Value != 5.8 {
		t.Fatalf("unexpected current measurement: %+v", g.Current)
	}
	if len(g.GraphData) != 2 {
		t.Fatalf("expected 2 graph points, got %d", len(g.GraphData))
	}
	if got := g.Current.Time(); got.IsZero() {
		t.Fatal("current measurement timestamp did not parse")
	}
}

func TestGetPatientGraphNestedReading(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status": 0,
			"data": map[string]any{
				"connection": map[string]any{
					"patientId": "p1",
					"glucoseMeasurement": map[string]any{
						"Timestamp": "10/2/2023 11:55:58 AM",
						"Value":     104, "GlucoseUnits": 1,
					},
				},
				"graphData": []map[string]any{},
			},
		})
	})
	c := restoredClient(srv)

	g, err := c.GetPatientGraph(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPatientGraph: %v", err)
	}
	if g.Current == nil || g.Current.Value != 104 {
		t.Fatalf("latest reading not taken from connection record: %+v", g.Current)
	}
}

func TestGetCountryConfigUnauthenticated(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/us/llu/config/country" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("country"); got != "de" {
			t.Errorf("country query = %q, want de", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("country config must be unauthenticated, got Authorization %q", got)
		}
		writeJSON(w, map[string]any{
			"status": 0,
			"data":   map[string]any{"lslApi": "https://api.eu.libreview.io"},
		})
	})
	// No authentication at all: this endpoint must still work.
	c := newTestClient(srv)

	raw, err := c.GetCountryConfig(context.Background(), "de")
	if err != nil {
		t.Fatalf("GetCountryConfig: %v", err)
	}
	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("config payload not JSON: %v", err)
	}
	if data["lslApi"] == "" {
		t.Fatalf("unexpected payload: %v", data)
	}
	if *hits != 1 {
		t.Fatalf("expected 1 request, got %d", *hits)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close() // nothing listens anymore

	c := NewClient("user@example.com", "hunter2", Config{BaseURL: url, Region: "us"}, zerolog.Nop())
	_, err := c.Authenticate(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestRestoreSession(t *testing.T) {
	c := NewClient("user@example.com", "hunter2", Config{BaseURL: "https://example.invalid", Region: "us"}, zerolog.Nop())
	c.RestoreSession(AuthTicket{Token: "persisted-token-value", Expires: 42}, "https://example.invalid/eu")
	if !c.Authenticated() {
		t.Fatal("restored session should be authenticated")
	}
	if c.BaseURL() != "https://example.invalid/eu" {
		t.Fatalf("base URL not restored: %s", c.BaseURL())
	}
	if c.Ticket().Expires != 42 {
		t.Fatalf("ticket not restored: %+v", c.Ticket())
	}
}
