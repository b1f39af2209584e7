// Package api provides the HTTP API server for HiBuddy: the
// coordinator editing surface and the follow-along surface, plus a
// websocket feed pushing narration and schedule events to screens.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hibuddy/hibuddy/internal/core"
	"github.com/hibuddy/hibuddy/internal/guardrail"
	"github.com/hibuddy/hibuddy/internal/logging"
	"github.com/hibuddy/hibuddy/internal/media"
	"github.com/hibuddy/hibuddy/internal/narration"
	"github.com/hibuddy/hibuddy/internal/schedule"
	"github.com/hibuddy/hibuddy/internal/storage"
	"github.com/hibuddy/hibuddy/internal/weather"
)

// SchedulePlanner turns a caregiver's day description into slots.
type SchedulePlanner interface {
	GenerateSchedule(ctx context.Context, text string) ([]core.Slot, error)
}

// VideoSearchService finds guide video candidates.
type VideoSearchService interface {
	Search(ctx context.Context, query string, maxResults int) ([]media.VideoResult, error)
}

// ImageSearchService finds food photo candidates.
type ImageSearchService interface {
	SearchFoodImages(ctx context.Context, menuName string, maxResults int) ([]media.ImageResult, error)
}

// ImageFilterService scores photo candidates against a menu name.
type ImageFilterService interface {
	Filter(ctx context.Context, menuName string, images []media.ImageResult) []media.ImageResult
}

// ImageCache saves a chosen photo to local storage.
type ImageCache interface {
	Download(url, menuName string) (string, error)
}

// ClothingAdvisor builds the weather-based dressing guide.
type ClothingAdvisor interface {
	Advise(ctx context.Context, location string) weather.Advice
}

// SpeechSynthesizer turns narration text into mp3 bytes.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	logger     *logging.Logger

	// Components. Collaborators may be nil when their API keys are
	// missing; the matching endpoints answer 503 instead of failing
	// at startup.
	store        *schedule.Store
	archive      *storage.ArchiveStore
	narrationLog *storage.NarrationStore
	planner      SchedulePlanner
	extractor    guardrail.MenuExtractor
	videos       VideoSearchService
	images       ImageSearchService
	imageFilter  ImageFilterService
	imageCache   ImageCache
	advisor      ClothingAdvisor
	speech       SpeechSynthesizer
	wsHub        *WebSocketHub

	// Follow-along session. One per deployment: the device on the
	// user's desk is the only listener.
	session  *narration.Session
	location *time.Location
	mu       sync.Mutex
}

// Config for the server
type Config struct {
	Host             string
	Port             int
	Timezone         *time.Location
	PreNoticeMinutes int

	Store        *schedule.Store
	Archive      *storage.ArchiveStore
	NarrationLog *storage.NarrationStore
	Planner      SchedulePlanner
	Extractor    guardrail.MenuExtractor
	Videos       VideoSearchService
	Images       ImageSearchService
	ImageFilter  ImageFilterService
	ImageCache   ImageCache
	Advisor      ClothingAdvisor
	Speech       SpeechSynthesizer
}

// New creates a new API server
func New(cfg Config) *Server {
	loc := cfg.Timezone
	if loc == nil {
		loc = time.Local
	}

	session := narration.NewSession()
	if cfg.PreNoticeMinutes > 0 {
		session.PreNoticeMinutes = cfg.PreNoticeMinutes
	}

	s := &Server{
		logger:       logging.WithField("component", "api"),
		store:        cfg.Store,
		archive:      cfg.Archive,
		narrationLog: cfg.NarrationLog,
		planner:      cfg.Planner,
		extractor:    cfg.Extractor,
		videos:       cfg.Videos,
		images:       cfg.Images,
		imageFilter:  cfg.ImageFilter,
		imageCache:   cfg.ImageCache,
		advisor:      cfg.Advisor,
		speech:       cfg.Speech,
		wsHub:        NewWebSocketHub(),
		session:      session,
		location:     loc,
	}

	s.setupRouter()

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Coordinator
		r.Post("/schedule/generate", s.handleGenerateSchedule)
		r.Get("/schedule", s.handleGetSchedule)
		r.Put("/schedule", s.handleSaveSchedule)
		r.Put("/schedule/slots/{slotID}", s.handleUpdateSlot)
		r.Delete("/schedule/slots/{slotID}", s.handleDeleteSlot)

		r.Post("/search/images", s.handleSearchImages)
		r.Post("/search/images/cache", s.handleCacheImage)
		r.Post("/search/videos", s.handleSearchVideos)
		r.Post("/weather/clothing", s.handleClothingAdvice)

		r.Get("/recipes", s.handleGetRecipes)
		r.Get("/health/modes", s.handleGetHealthModes)
		r.Get("/health/routines/{mode}", s.handleGetHealthRoutine)

		// Follow-along
		r.Get("/today", s.handleGetToday)
		r.Post("/today/tick", s.handleTick)
		r.Post("/tts", s.handleTTS)
		r.Get("/narrations/{date}", s.handleGetNarrations)

		// Archive
		r.Get("/archive", s.handleListArchive)
		r.Get("/archive/{date}", s.handleGetArchived)
	})

	// WebSocket
	r.Get("/ws", s.wsHub.handleWebSocket)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	s.router = r
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.logger.Info("API server starting on http://%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.wsHub.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Broadcast sends a message to all WebSocket clients
func (s *Server) Broadcast(msgType string, data interface{}) {
	s.wsHub.Broadcast(WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
