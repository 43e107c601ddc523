package cache

import (
	"time"

	"lluview/internal/llu"
)

// PutReadings upserts graph points for a patient. Points with
// unparseable timestamps are skipped; duplicates replace in place.
func (d *DB) PutReadings(patientID string, readings []llu.GlucoseMeasurement) error {
	now := time.Now().Unix()
	for _, r := range readings {
		ts := r.Time()
		if ts.IsZero() {
			continue
		}
		_, err := d.db.Exec(`INSERT OR REPLACE INTO readings
			(patient_id, ts_unix, timestamp, value, value_mgdl, units, trend_arrow, is_high, is_low, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			patientID, ts.Unix(), r.Timestamp, r.Value, r.ValueInMgPerDl,
			r.GlucoseUnits, r.TrendArrow, boolInt(r.IsHigh), boolInt(r.IsLow), now)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetReadings returns up to limit readings for a patient, oldest first.
func (d *DB) GetReadings(patientID string, limit int) ([]llu.GlucoseMeasurement, error) {
	rows, err := d.db.Query(`SELECT timestamp, value, value_mgdl, units, trend_arrow, is_high, is_low
		FROM (SELECT * FROM readings WHERE patient_id = ? ORDER BY ts_unix DESC LIMIT ?)
		ORDER BY ts_unix ASC`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []llu.GlucoseMeasurement
	for rows.Next() {
		var m llu.GlucoseMeasurement
		var isHigh, isLow int
		if err := rows.Scan(&m.Timestamp, &m.Value, &m.ValueInMgPerDl,
			&m.GlucoseUnits, &m.TrendArrow, &isHigh, &isLow); err != nil {
			return nil, err
		}
		m.IsHigh = isHigh != 0
		m.IsLow = isLow != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

// PruneReadings drops readings older than the cutoff.
func (d *DB) PruneReadings(olderThan time.Time) error {
	_, err := d.db.Exec(`DELETE FROM readings WHERE ts_unix < ?`, olderThan.Unix())
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
