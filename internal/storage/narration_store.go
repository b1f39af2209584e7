package storage

import (
	"encoding/json"
	"time"
)

// NarrationRecord is one spoken announcement, kept so a caregiver can
// check what the user was told and when.
type NarrationRecord struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Kind      string    `json:"kind"`
	SlotID    string    `json:"slot_id,omitempty"`
	Task      string    `json:"task,omitempty"`
	Lines     []string  `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
}

// NarrationStore handles narration log persistence
type NarrationStore struct {
	db *DB
}

// NewNarrationStore creates a new narration store
func NewNarrationStore(db *DB) *NarrationStore {
	return &NarrationStore{db: db}
}

// Record appends one narration to the log.
func (s *NarrationStore) Record(rec NarrationRecord) error {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return err
	}

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO narration_log (date, time, kind, slot_id, task, lines, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Date, rec.Time, rec.Kind, rec.SlotID, rec.Task, string(lines), created)

	return err
}

// ListByDate returns the day's narrations in spoken order.
func (s *NarrationStore) ListByDate(date string) ([]NarrationRecord, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, date, time, kind, slot_id, task, lines, created_at
		FROM narration_log
		WHERE date = ?
		ORDER BY id ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []NarrationRecord
	for rows.Next() {
		var rec NarrationRecord
		var lines string
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Time, &rec.Kind, &rec.SlotID, &rec.Task, &lines, &rec.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(lines), &rec.Lines)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneBefore removes log rows older than the cutoff date (exclusive).
func (s *NarrationStore) PruneBefore(cutoffDate string) (int64, error) {
	res, err := s.db.conn.Exec(
		"DELETE FROM narration_log WHERE date < ?", cutoffDate,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
