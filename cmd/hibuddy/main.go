// HiBuddy Daemon - schedule assistant service for the home device
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hibuddy/hibuddy/internal/api"
	"github.com/hibuddy/hibuddy/internal/config"
	"github.com/hibuddy/hibuddy/internal/llm"
	"github.com/hibuddy/hibuddy/internal/logging"
	"github.com/hibuddy/hibuddy/internal/media"
	"github.com/hibuddy/hibuddy/internal/planner"
	"github.com/hibuddy/hibuddy/internal/schedule"
	"github.com/hibuddy/hibuddy/internal/scheduler"
	"github.com/hibuddy/hibuddy/internal/storage"
	"github.com/hibuddy/hibuddy/internal/tts"
	"github.com/hibuddy/hibuddy/internal/weather"
)

var (
	configPath string
	dataDir    string
	port       int
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hibuddy",
		Short: "HiBuddy Daemon - daily schedule assistant",
		Long: `HiBuddy runs the schedule assistant for one home: the caregiver
edits the day's plan, the follow-along screen reads it out step by
step. All state lives in the data directory on this machine.`,
		RunE: runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path (default <data-dir>/config.json)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.hibuddy)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logging.SetLevel(logging.ParseLevel(logLevel))
	logger := logging.WithField("component", "daemon")

	cfg := loadConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone %q, using local", cfg.Timezone)
		loc = time.Local
	}

	logger.Info("starting HiBuddy daemon, data dir %s", cfg.DataDir)

	// History database
	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	archive := storage.NewArchiveStore(db)
	narrationLog := storage.NewNarrationStore(db)
	store := schedule.NewStore(cfg.SchedulePath())

	// Chat provider: OpenAI first, Ollama as the offline fallback
	router := llm.NewRouter(llm.RouterConfig{
		OpenAI: llm.NewClient(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ScheduleModel,
		}),
		Ollama:         llm.NewOllamaClient(llm.DefaultOllamaConfig()),
		EnableFallback: true,
	})

	plan := planner.New(router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverCfg := api.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		Timezone:         loc,
		PreNoticeMinutes: cfg.Narration.PreNoticeMinutes,
		Store:            store,
		Archive:          archive,
		NarrationLog:     narrationLog,
		Planner:          plan,
		Extractor:        plan,
		ImageCache:       media.NewDownloader(cfg.AssetsDir()),
	}

	if cfg.OpenAI.APIKey != "" {
		serverCfg.Speech = tts.NewClient(tts.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.TTSModel,
			Voice:   cfg.OpenAI.TTSVoice,
		})
		visionClient := llm.NewClient(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.VisionModel,
		})
		serverCfg.ImageFilter = media.NewVisionFilter(visionClient, cfg.OpenAI.VisionModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, speech and image scoring disabled")
	}

	if cfg.Google.APIKey != "" {
		videos, err := media.NewVideoSearcher(ctx, cfg.Google.APIKey)
		if err != nil {
			logger.Warn("video search unavailable: %v", err)
		} else {
			serverCfg.Videos = videos
		}

		if cfg.Google.SearchEngineID != "" {
			images, err := media.NewImageSearcher(ctx, cfg.Google.APIKey, cfg.Google.SearchEngineID)
			if err != nil {
				logger.Warn("image search unavailable: %v", err)
			} else {
				serverCfg.Images = images
			}

			source, err := weather.NewGoogleSnippetSource(ctx, cfg.Google.APIKey, cfg.Google.SearchEngineID)
			if err != nil {
				logger.Warn("weather search unavailable: %v", err)
			} else {
				serverCfg.Advisor = weather.NewAdvisor(source, router)
			}
		} else {
			logger.Warn("GOOGLE_CSE_ID not set, image and weather search disabled")
		}
	} else {
		logger.Warn("GOOGLE_API_KEY not set, search features disabled")
	}

	server := api.New(serverCfg)

	// Background loops: the follow-along tick and nightly history upkeep
	sched, err := scheduler.NewScheduler(scheduler.Config{Timezone: cfg.Timezone})
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	tick := time.Duration(cfg.Narration.TickSeconds) * time.Second
	if tick <= 0 {
		tick = 10 * time.Second
	}
	sched.Register(scheduler.IntervalTask("followalong-tick", "follow-along narration tick", tick,
		func(ctx context.Context) error {
			_, err := server.Tick(ctx)
			if err != nil {
				// no schedule yet is normal, stay quiet
				return nil
			}
			return nil
		}))

	sched.Register(scheduler.DailyTask("history-prune", "prune old archive rows", "03:30",
		func(ctx context.Context) error {
			cutoff := time.Now().In(loc).AddDate(0, 0, -90).Format("2006-01-02")
			if _, err := archive.Prune(cutoff); err != nil {
				return err
			}
			_, err := narrationLog.PruneBefore(cutoff)
			return err
		}))

	if err := sched.Start(); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		sched.Stop()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Stop(shutdownCtx)
		cancel()
	}()

	logger.Info("coordinator API on http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	return server.Start()
}

func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		base := dataDir
		if base == "" {
			base = config.Default().DataDir
		}
		path = base + "/config.json"
	}

	cfg, err := config.Load(path)
	if err != nil {
		logging.WithField("component", "daemon").Warn("config load failed, using defaults: %v", err)
		return config.Default()
	}
	return cfg
}
