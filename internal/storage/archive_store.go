package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibuddy/hibuddy/internal/core"
)

// ArchiveStore keeps daily schedule snapshots so a caregiver can look
// back at past days after the current-day file rolls over.
type ArchiveStore struct {
	db *DB
}

// NewArchiveStore creates a new archive store
func NewArchiveStore(db *DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// SaveSnapshot stores the document for its date, replacing any earlier
// snapshot of the same day.
func (s *ArchiveStore) SaveSnapshot(doc core.ScheduleDocument) error {
	if doc.Date == "" {
		return fmt.Errorf("%w: snapshot date", core.ErrMissingRequired)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO schedule_archive (date, document, slot_count, archived_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
		    document = excluded.document,
		    slot_count = excluded.slot_count,
		    archived_at = excluded.archived_at
	`, doc.Date, string(data), len(doc.Slots), time.Now().UTC())

	return err
}

// GetSnapshot returns the archived document for a date.
func (s *ArchiveStore) GetSnapshot(date string) (*core.ScheduleDocument, error) {
	var data string
	err := s.db.conn.QueryRow(
		"SELECT document FROM schedule_archive WHERE date = ?", date,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc core.ScheduleDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", date, err)
	}
	return &doc, nil
}

// ListDates returns archived dates, newest first.
func (s *ArchiveStore) ListDates(limit int) ([]string, error) {
	if limit < 1 {
		limit = 30
	}

	rows, err := s.db.conn.Query(
		"SELECT date FROM schedule_archive ORDER BY date DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Prune removes snapshots older than the cutoff date (exclusive).
// Dates are YYYY-MM-DD strings, so string comparison orders them.
func (s *ArchiveStore) Prune(cutoffDate string) (int64, error) {
	res, err := s.db.conn.Exec(
		"DELETE FROM schedule_archive WHERE date < ?", cutoffDate,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
