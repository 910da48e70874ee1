package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stationbook/internal/api"
	"stationbook/internal/cache"
	"stationbook/internal/config"
	"stationbook/internal/database"
	"stationbook/internal/events"
	"stationbook/internal/metrics"
	"stationbook/internal/models"
	"stationbook/internal/notify"
	"stationbook/internal/service"
	"stationbook/internal/sheets"
	"stationbook/internal/syncworker"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("STATIONBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	if err := db.SeedStations(ctx, stationSeed(cfg)); err != nil {
		logger.Fatal().Err(err).Msg("seed stations error")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	statusCache := cache.NewStatusCache(rdb, cfg.StatusCacheTTL(), &logger)

	sheetsSvc, err := sheets.NewSheetsService(ctx,
		cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create sheets mirror error")
	}

	worker := syncworker.NewWorker(db, sheetsSvc, syncworker.Config{
		Interval:      cfg.SyncInterval(),
		RatePerSecond: cfg.Sync.RatePerSecond,
		Burst:         cfg.Sync.Burst,
		MaxRetries:    cfg.Sync.MaxRetries,
	}, &logger)
	go worker.Start(ctx)

	var notifier service.Notifier
	if tn, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, &logger); err != nil {
		logger.Fatal().Err(err).Msg("create telegram notifier error")
	} else if tn != nil {
		notifier = tn
		reminder := notify.NewSessionReminder(db, tn, 0, &logger)
		go reminder.Start(ctx)
	}

	bus := events.NewEventBus()
	bus.Subscribe(events.TypeBookingCreated, func(e events.Event) error {
		logger.Debug().RawJSON("payload", e.Payload).Msg("booking.created")
		return nil
	})
	bus.Subscribe(events.TypeBookingCompleted, func(e events.Event) error {
		logger.Debug().RawJSON("payload", e.Payload).Msg("booking.completed")
		return nil
	})

	svc := service.NewBookingService(db, bus, worker, notifier, &logger)
	server := api.NewHTTPServer(svc, statusCache, &logger)

	backup := database.NewBackupService(db, cfg.Backup, &logger)
	go backup.Start(ctx)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Routes(),
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("Station booking service started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

func stationSeed(cfg *config.Config) []models.Station {
	stations := make([]models.Station, 0, len(cfg.Stations))
	for _, st := range cfg.Stations {
		stations = append(stations, models.Station{
			ID:          st.ID,
			Name:        st.Name,
			Specs:       st.Specs,
			RatePerHour: st.RatePerHour,
		})
	}
	return stations
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
