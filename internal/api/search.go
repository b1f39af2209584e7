package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hibuddy/hibuddy/internal/media"
	"github.com/hibuddy/hibuddy/internal/recipes"
)

func (s *Server) handleSearchImages(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		s.respondError(w, http.StatusServiceUnavailable, "image search not configured")
		return
	}

	var req struct {
		Query string `json:"query"`
		Max   int    `json:"max"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Max == 0 {
		req.Max = 8
	}

	results, err := s.images.SearchFoodImages(r.Context(), req.Query, req.Max)
	if err != nil {
		s.logger.Error("image search failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "image search failed")
		return
	}

	if s.imageFilter != nil {
		results = s.imageFilter.Filter(r.Context(), req.Query, results)
	}
	if results == nil {
		results = []media.ImageResult{}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// handleCacheImage saves a chosen photo locally so the follow-along
// screen keeps working if the remote host goes away.
func (s *Server) handleCacheImage(w http.ResponseWriter, r *http.Request) {
	if s.imageCache == nil {
		s.respondError(w, http.StatusServiceUnavailable, "image cache not configured")
		return
	}

	var req struct {
		URL  string `json:"url"`
		Menu string `json:"menu"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" || strings.TrimSpace(req.Menu) == "" {
		s.respondError(w, http.StatusBadRequest, "url and menu are required")
		return
	}

	path, err := s.imageCache.Download(req.URL, req.Menu)
	if err != nil {
		s.logger.Error("image cache failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "image download failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"path": path})
}

func (s *Server) handleSearchVideos(w http.ResponseWriter, r *http.Request) {
	if s.videos == nil {
		s.respondError(w, http.StatusServiceUnavailable, "video search not configured")
		return
	}

	var req struct {
		Kind  string `json:"kind"` // cooking, exercise, clothing or empty for raw
		Query string `json:"query"`
		Max   int    `json:"max"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Max == 0 {
		req.Max = 6
	}

	query := req.Query
	switch req.Kind {
	case "cooking":
		query = media.CookingVideoQuery(req.Query)
	case "exercise":
		query = media.ExerciseVideoQuery(req.Query)
	case "clothing":
		query = media.ClothingVideoQuery(req.Query)
	}

	results, err := s.videos.Search(r.Context(), query, req.Max)
	if err != nil {
		s.logger.Error("video search failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "video search failed")
		return
	}
	if results == nil {
		results = []media.VideoResult{}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleClothingAdvice(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		s.respondError(w, http.StatusServiceUnavailable, "weather advice not configured")
		return
	}

	var req struct {
		Location string `json:"location"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		s.respondError(w, http.StatusBadRequest, "location is required")
		return
	}

	s.respondJSON(w, http.StatusOK, s.advisor.Advise(r.Context(), req.Location))
}

func (s *Server) handleGetRecipes(w http.ResponseWriter, r *http.Request) {
	names := recipes.AllNames()
	all := make([]recipes.Recipe, 0, len(names))
	for _, name := range names {
		if rec, ok := recipes.Get(name); ok {
			all = append(all, rec)
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"recipes": all})
}

func (s *Server) handleGetHealthModes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"modes": recipes.HealthModes()})
}

func (s *Server) handleGetHealthRoutine(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")
	routine, ok := recipes.GetHealthRoutine(mode)
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown health mode: "+mode)
		return
	}
	s.respondJSON(w, http.StatusOK, routine)
}
