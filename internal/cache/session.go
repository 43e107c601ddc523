package cache

import (
	"database/sql"
	"time"

	"lluview/internal/llu"
)

// SavedSession is a persisted auth ticket plus the regional base URL it
// was issued against.
type SavedSession struct {
	Ticket  llu.AuthTicket
	BaseURL string
	SavedAt time.Time
}

// Valid reports whether the ticket is still usable (with a small margin
// so we never hand the client a token about to expire).
func (s SavedSession) Valid() bool {
	return time.Until(s.Ticket.ExpiresAt()) > time.Minute
}

// SaveSession stores the session, replacing any previous one.
func (d *DB) SaveSession(ticket llu.AuthTicket, baseURL string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO session
		(id, token, expires, duration, base_url, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)`,
		ticket.Token, ticket.Expires, ticket.Duration, baseURL, time.Now().Unix())
	return err
}

// GetSession returns the stored session, or nil when none exists.
func (d *DB) GetSession() (*SavedSession, error) {
	row := d.db.QueryRow(`SELECT token, expires, duration, base_url, saved_at FROM session WHERE id = 1`)

	var s SavedSession
	var savedAt int64
	err := row.Scan(&s.Ticket.Token, &s.Ticket.Expires, &s.Ticket.Duration, &s.BaseURL, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.SavedAt = time.Unix(savedAt, 0)
	return &s, nil
}

// ClearSession removes the stored session.
func (d *DB) ClearSession() error {
	_, err := d.db.Exec(`DELETE FROM session WHERE id = 1`)
	return err
}
