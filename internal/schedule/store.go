// Package schedule persists the day's schedule document.
// One JSON file, overwritten wholesale on every save; the last writer
// wins and that is the intended model for a single coordinator.
package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/timeline"
)

// Store reads and writes the single schedule document.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the current document. Slots come back sorted by start time
// no matter what order the file holds them in. A missing file is
// core.ErrScheduleNotFound.
func (s *Store) Load() (*core.ScheduleDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	var doc core.ScheduleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	timeline.SortSlots(doc.Slots)
	return &doc, nil
}

// Save replaces the document on disk. The write goes through a temp
// file and a rename so a crash mid-write never leaves a torn document.
func (s *Store) Save(doc *core.ScheduleDocument) error {
	timeline.SortSlots(doc.Slots)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create schedule dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".schedule-*.json")
	if err != nil {
		return fmt.Errorf("create temp schedule: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write schedule: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close schedule: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace schedule: %w", err)
	}
	return nil
}

// UpdateSlot applies fn to the slot with the given id and saves.
func (s *Store) UpdateSlot(id string, fn func(*core.Slot)) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	slot := doc.SlotByID(id)
	if slot == nil {
		return core.ErrSlotNotFound
	}
	fn(slot)
	return s.Save(doc)
}

// DeleteSlot removes the slot with the given id and saves.
func (s *Store) DeleteSlot(id string) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	kept := doc.Slots[:0]
	found := false
	for _, slot := range doc.Slots {
		if slot.ID == id {
			found = true
			continue
		}
		kept = append(kept, slot)
	}
	if !found {
		return core.ErrSlotNotFound
	}
	doc.Slots = kept
	return s.Save(doc)
}
