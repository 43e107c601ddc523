package llu

import (
	"context"
	"net/http"
)

// ListConnections fetches the linked patient records. Every call issues a
// fresh request; nothing is cached.
func (c *Client) ListConnections(ctx context.Context) ([]Connection, error) {
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status int          `json:"status"`
		Data   []Connection `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/llu/connections", headers, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetPatientGraph fetches the recent CGM history and latest reading for a
// patient.
func (c *Client) GetPatientGraph(ctx context.Context, patientID string) (*Graph, error) {
	if patientID == "" {
		return nil, &ValidationError{Field: "patientID", Reason: "must not be empty"}
	}
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status int   `json:"status"`
		Data   Graph `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/llu/connections/"+patientID+"/graph", headers, nil, nil, &resp); err != nil {
		return nil, err
	}
	// Some server versions only nest the latest reading inside the
	// connection record.
	if resp.Data.Current == nil {
		resp.Data.Current = resp.Data.Connection.GlucoseMeasurement
	}
	return &resp.Data, nil
}

// GetPatientLogbook fetches the event log (alarms, notes, scans) for a
// patient.
func (c *Client) GetPatientLogbook(ctx context.Context, patientID string) ([]LogbookEntry, error) {
	if patientID == "" {
		return nil, &ValidationError{Field: "patientID", Reason: "must not be empty"}
	}
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Status int            `json:"status"`
		Data   []LogbookEntry `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/llu/connections/"+patientID+"/logbook", headers, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
