package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/narration"
	"github.com/hibuddy/hibuddy/internal/storage"
	"github.com/hibuddy/hibuddy/internal/timeline"
)

func (s *Server) now() (string, core.TimeOfDay) {
	t := time.Now().In(s.location)
	return t.Format("2006-01-02"), core.MinutesOfDay(t.Hour(), t.Minute())
}

// handleGetToday returns the follow-along view of the day. A missing
// document and an empty schedule are different situations and the
// screen shows them differently.
func (s *Server) handleGetToday(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load()
	if errors.Is(err, core.ErrScheduleNotFound) {
		s.respondError(w, http.StatusNotFound, "schedule not ready")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	date, now := s.now()

	if len(doc.Slots) == 0 {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"date":   doc.Date,
			"now":    now.String(),
			"empty":  true,
			"slots":  []timeline.AnnotatedSlot{},
			"active": nil,
			"next":   nil,
		})
		return
	}

	pos := timeline.Locate(doc.Slots, now)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   doc.Date,
		"today":  date,
		"now":    now.String(),
		"empty":  false,
		"slots":  timeline.Annotate(doc.Slots, now),
		"active": pos.Active,
		"next":   pos.Next,
	})
}

// handleTick advances the narration session one step. The server holds
// the session, so external ticks and the internal loop share state and
// the at-most-once guarantee holds across both.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	event, err := s.Tick(r.Context())
	if errors.Is(err, core.ErrScheduleNotFound) {
		s.respondError(w, http.StatusNotFound, "schedule not ready")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"narration": event})
}

// Tick evaluates the narration session against the stored schedule.
// It returns nil when this tick has nothing to say. The scheduler's
// interval task calls this too.
func (s *Server) Tick(ctx context.Context) (*narration.Narration, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	date, now := s.now()
	pos := timeline.Locate(doc.Slots, now)

	s.mu.Lock()
	event := s.session.Evaluate(date, pos, now)
	s.mu.Unlock()

	if event == nil {
		return nil, nil
	}

	if s.narrationLog != nil {
		rec := storage.NarrationRecord{
			Date:  date,
			Time:  now.String(),
			Kind:  string(event.Kind),
			Lines: event.Lines,
		}
		if event.Slot != nil {
			rec.SlotID = event.Slot.ID
			rec.Task = event.Slot.Task
		}
		if err := s.narrationLog.Record(rec); err != nil {
			s.logger.Warn("narration log failed: %v", err)
		}
	}

	s.Broadcast("narration", event)
	return event, nil
}

func (s *Server) handleGetNarrations(w http.ResponseWriter, r *http.Request) {
	if s.narrationLog == nil {
		s.respondError(w, http.StatusServiceUnavailable, "narration log not configured")
		return
	}

	date := chi.URLParam(r, "date")
	records, err := s.narrationLog.ListByDate(date)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []storage.NarrationRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"narrations": records})
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil {
		s.respondError(w, http.StatusServiceUnavailable, "speech synthesis not configured")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := s.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("speech synthesis failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}
