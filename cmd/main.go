package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/api/option"

	"github.com/okian/shortlist/internal/adapters/google"
	"github.com/okian/shortlist/internal/adapters/http/api"
	"github.com/okian/shortlist/internal/adapters/http/site"
	"github.com/okian/shortlist/internal/adapters/http/swagger"
	app "github.com/okian/shortlist/internal/app"
	"github.com/okian/shortlist/internal/config"
	"github.com/okian/shortlist/pkg/logger"
	"github.com/okian/shortlist/pkg/metrics"
)

// HTTP server timeout constants. Screening a batch of CVs can take a while,
// so the write timeout is longer than the read timeout.
const (
	readTimeout               = 30 * time.Second
	writeTimeout              = 2 * time.Minute
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
	bytesPerMB                = 1 << 20
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to set log format: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	integrations, err := googleOptions(ctx, cfg, clientOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to set up google integration: %w", err)
	}

	svc := app.New(append(serviceOptions(cfg, log), integrations...)...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr),
			logger.Bool("sheet", cfg.Google.SheetsEnabled()), logger.Bool("drive", cfg.Google.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config, log logger.Logger) []app.Option {
	return []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithRequiredSkills(cfg.RequiredSkills),
		app.WithPolicy(cfg.ShortlistThreshold, cfg.TopN),
		app.WithMaxShortlistLimit(cfg.MaxShortlistLimit),
		app.WithShortlistDir(cfg.ShortlistDir),
	}
}

// clientOptions authenticates Google API clients with the configured
// service account file.
func clientOptions(cfg *config.Config) []option.ClientOption {
	if !cfg.Google.Enabled() {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.Google.CredentialsPath)}
}

// googleOptions builds the Sheets and Drive adapters. Nothing is built while
// no credentials are configured.
func googleOptions(ctx context.Context, cfg *config.Config, clientOpts []option.ClientOption) ([]app.Option, error) {
	g := cfg.Google
	if !g.Enabled() {
		return nil, nil
	}

	var opts []app.Option
	if g.SheetsEnabled() {
		sheets, err := google.NewSheets(ctx, g.SheetID, clientOpts,
			google.WithResponsesRange(g.ResponsesRange),
			google.WithResultsRange(g.ResultsRange),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithCandidateSource(sheets), app.WithResultSink(sheets))
	}

	drive, err := google.NewDrive(ctx, clientOpts, google.WithFolder(g.DriveFolderID))
	if err != nil {
		return nil, err
	}
	return append(opts, app.WithDrive(drive, g.UploadToDrive)), nil
}

// newRouter registers the upload page, API docs and business routes.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *mux.Router {
	r := mux.NewRouter()
	site.Register(ctx, r)
	swagger.Register(ctx, r)
	api.NewServer(svc, svc,
		api.WithMaxUploadBytes(int64(cfg.MaxUploadMB)*bytesPerMB),
		api.WithLogger(log.Named("api")),
	).Register(ctx, r)
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges from the service stats. GetStats
// already sets queue size and stored candidates.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
