package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/guardrail"
	"github.com/hibuddy/hibuddy/internal/timeline"
)

// handleGenerateSchedule turns free text into a draft slot list. The
// draft is not saved; the coordinator reviews it first.
func (s *Server) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	if s.planner == nil {
		s.respondError(w, http.StatusServiceUnavailable, "schedule generation not configured")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	slots, err := s.planner.GenerateSchedule(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("schedule generation failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "schedule generation failed")
		return
	}

	slots = guardrail.Apply(r.Context(), slots, s.extractor)

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":     core.Today(s.location),
		"schedule": slots,
	})
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load()
	if errors.Is(err, core.ErrScheduleNotFound) {
		s.respondError(w, http.StatusNotFound, "no schedule saved yet")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

// handleSaveSchedule overwrites the whole document. Guardrails run on
// every save so hand-edited slots get ids, categories and menus too.
func (s *Server) handleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	var doc core.ScheduleDocument
	if !s.decodeJSON(w, r, &doc) {
		return
	}

	if doc.Date == "" {
		doc.Date = core.Today(s.location)
	}
	doc.Slots = guardrail.Apply(r.Context(), doc.Slots, s.extractor)

	if err := s.store.Save(&doc); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.archive != nil {
		if err := s.archive.SaveSnapshot(doc); err != nil {
			s.logger.Warn("archive snapshot failed: %v", err)
		}
	}

	s.Broadcast("schedule.updated", doc)
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slotID")

	var req struct {
		Time        *string  `json:"time"`
		Type        *string  `json:"type"`
		Task        *string  `json:"task"`
		GuideScript []string `json:"guide_script"`
		VideoURL    *string  `json:"video_url"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	err := s.store.UpdateSlot(slotID, func(slot *core.Slot) {
		if req.Time != nil {
			slot.Time = *req.Time
		}
		if req.Type != nil {
			slot.Category = core.ParseCategory(*req.Type)
		}
		if req.Task != nil {
			slot.Task = *req.Task
			// task changed, menus no longer trusted
			slot.Menus = nil
		}
		if req.GuideScript != nil {
			slot.GuideScript = req.GuideScript
		}
		if req.VideoURL != nil {
			slot.VideoURL = *req.VideoURL
		}
	})
	if errors.Is(err, core.ErrScheduleNotFound) || errors.Is(err, core.ErrSlotNotFound) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// re-run guardrails over the stored document
	doc, err := s.store.Load()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc.Slots = guardrail.Apply(r.Context(), doc.Slots, s.extractor)
	if err := s.store.Save(doc); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Broadcast("schedule.updated", doc)

	if slot := doc.SlotByID(slotID); slot != nil {
		s.respondJSON(w, http.StatusOK, slot)
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slotID")

	err := s.store.DeleteSlot(slotID)
	if errors.Is(err, core.ErrScheduleNotFound) || errors.Is(err, core.ErrSlotNotFound) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc, err := s.store.Load()
	if err == nil {
		s.Broadcast("schedule.updated", doc)
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"deleted": slotID})
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.respondError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	dates, err := s.archive.ListDates(30)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if dates == nil {
		dates = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

func (s *Server) handleGetArchived(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.respondError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	date := chi.URLParam(r, "date")
	doc, err := s.archive.GetSnapshot(date)
	if errors.Is(err, core.ErrRecordNotFound) {
		s.respondError(w, http.StatusNotFound, "no snapshot for "+date)
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	timeline.SortSlots(doc.Slots)
	s.respondJSON(w, http.StatusOK, doc)
}
