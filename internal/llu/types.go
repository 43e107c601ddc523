package llu

import (
	"encoding/json"
	"time"
)

// AuthTicket is the server-issued bearer token plus expiry metadata.
type AuthTicket struct {
	Token    string `json:"token"`
	Expires  int64  `json:"expires"`
	Duration int64  `json:"duration"`
}

// ExpiresAt returns the ticket expiry as a time.
func (t AuthTicket) ExpiresAt() time.Time {
	return time.Unix(t.Expires, 0)
}

// envelope is the common response wrapper: a numeric status plus a
// payload whose shape depends on the endpoint.
type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// loginData is the payload of the login and terms-continuation responses.
type loginData struct {
	Redirect   bool        `json:"redirect"`
	Region     string      `json:"region"`
	AuthTicket *AuthTicket `json:"authTicket"`
	User       *User       `json:"user"`
}

type loginResponse struct {
	Status int       `json:"status"`
	Data   loginData `json:"data"`
}

// User is the profile returned by GET /user and embedded in login
// responses.
type User struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	AccountType string `json:"accountType"`
}

// Account is the payload of GET /account.
type Account struct {
	User struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		LastLogin int64  `json:"lastLogin"`
		Created   int64  `json:"created"`
	} `json:"user"`
}

// Connection is a linked patient record from GET /llu/connections.
type Connection struct {
	ID          string  `json:"id"`
	PatientID   string  `json:"patientId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Country     string  `json:"country"`
	DateOfBirth int64   `json:"dateOfBirth"`
	TargetLow   float64 `json:"targetLow"`
	TargetHigh  float64 `json:"targetHigh"`

	GlucoseMeasurement *GlucoseMeasurement `json:"glucoseMeasurement"`
}

// Name returns the patient's display name.
func (c Connection) Name() string {
	if c.FirstName == "" && c.LastName == "" {
		return c.PatientID
	}
	return c.FirstName + " " + c.LastName
}

// GlucoseMeasurement is a single CGM reading. Field casing follows the
// wire format, which capitalizes measurement keys.
type GlucoseMeasurement struct {
	Timestamp        string  `json:"Timestamp"`
	FactoryTimestamp string  `json:"FactoryTimestamp"`
	Value            float64 `json:"Value"`
	ValueInMgPerDl   float64 `json:"ValueInMgPerDl"`
	GlucoseUnits     int     `json:"GlucoseUnits"`
	TrendArrow       int     `json:"TrendArrow"`
	TrendMessage     string  `json:"TrendMessage"`
	MeasurementColor int     `json:"MeasurementColor"`
	IsHigh           bool    `json:"isHigh"`
	IsLow            bool    `json:"isLow"`
}

// timestampLayout matches the wire format, e.g. "10/2/2023 11:55:58 AM".
const timestampLayout = "1/2/2006 3:04:05 PM"

// Time parses the measurement timestamp. Returns the zero time when the
// timestamp is absent or malformed.
func (m GlucoseMeasurement) Time() time.Time {
	t, err := time.Parse(timestampLayout, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Graph is the payload of GET /llu/connections/{id}/graph: the connection
// record, its latest reading, and the recent history used for charting.
type Graph struct {
	Connection Connection           `json:"connection"`
	Current    *GlucoseMeasurement  `json:"glucoseMeasurement"`
	GraphData  []GlucoseMeasurement `json:"graphData"`
	ActiveSensors []struct {
		Sensor struct {
			DeviceID     string `json:"deviceId"`
			SerialNumber string `json:"sn"`
			Activated    int64  `json:"a"`
		} `json:"sensor"`
	} `json:"activeSensors"`
}

// LogbookEntry is one event from GET /llu/connections/{id}/logbook.
// Entries share the measurement shape plus an event type discriminator.
type LogbookEntry struct {
	GlucoseMeasurement
	Type  int    `json:"type"`
	Alarm string `json:"alarmType"`
}
