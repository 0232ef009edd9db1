package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	mediainadapter "tdrill/internal/modules/media/adapter/in"
	mediaoutadapter "tdrill/internal/modules/media/adapter/out"
	mediaservice "tdrill/internal/modules/media/service"
	mediausecase "tdrill/internal/modules/media/usecase"
	prefsinadapter "tdrill/internal/modules/prefs/adapter/in"
	prefsoutadapter "tdrill/internal/modules/prefs/adapter/out"
	prefsservice "tdrill/internal/modules/prefs/service"
	prefsusecase "tdrill/internal/modules/prefs/usecase"
	sessioninadapter "tdrill/internal/modules/session/adapter/in"
	sessionoutadapter "tdrill/internal/modules/session/adapter/out"
	sessionservice "tdrill/internal/modules/session/service"
	sessionusecase "tdrill/internal/modules/session/usecase"
	statsinadapter "tdrill/internal/modules/stats/adapter/in"
	statsoutadapter "tdrill/internal/modules/stats/adapter/out"
	statsservice "tdrill/internal/modules/stats/service"
	statsusecase "tdrill/internal/modules/stats/usecase"
	"tdrill/internal/platform/clock"
	"tdrill/internal/platform/config"
	"tdrill/internal/platform/id"
	"tdrill/internal/platform/logging"
	"tdrill/internal/platform/metrics"
	"tdrill/internal/platform/timer"
	uiapp "tdrill/internal/ui/app"
)

type Options struct {
	// Verbose mirrors logs to stderr. Ignored by the TUI, which owns the terminal.
	Verbose bool
}

type App struct {
	Config   config.Config
	Logger   zerolog.Logger
	Registry *prometheus.Registry

	SessionTUI sessioninadapter.TUIHandler
	MediaCLI   mediainadapter.CLIHandler
	MediaTUI   mediainadapter.TUIHandler
	StatsCLI   statsinadapter.CLIHandler
	StatsTUI   statsinadapter.TUIHandler
	PrefsCLI   prefsinadapter.CLIHandler
	PrefsTUI   prefsinadapter.TUIHandler

	closers []io.Closer
}

func New(cfg config.Config, opts Options) (app *App, err error) {
	logger, logCloser, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: opts.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	app = &App{Config: cfg, Logger: logger, closers: []io.Closer{logCloser}}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	clk := clock.SystemClock{}
	reg := metrics.NewRegistry()
	app.Registry = reg

	statsStore, err := statsoutadapter.NewSQLiteStatsStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new stats store: %w", err)
	}
	app.closers = append(app.closers, statsStore)
	statsUC := statsusecase.NewInteractor(statsservice.NewStatsService(clk, statsStore, logging.Component(logger, "stats")))

	boltDB, err := mediaoutadapter.OpenBolt(cfg.BoltPath)
	if err != nil {
		return nil, fmt.Errorf("open media store: %w", err)
	}
	app.closers = append(app.closers, boltDB)
	mediaUC := mediausecase.NewInteractor(mediaservice.NewCatalogService(
		clk,
		id.UUID{},
		mediaoutadapter.NewYAMLManifestStore(cfg.ManifestPath),
		mediaoutadapter.NewFSScanner(cfg.MediaRoot),
		mediaoutadapter.NewBoltUserMediaStore(boltDB),
		mediaoutadapter.NewBoltOverrideStore(boltDB),
		mediaoutadapter.NewFileDisplayCache(cfg.CacheDir),
		mediaoutadapter.NewOSLauncher(),
		logging.Component(logger, "media"),
	))

	prefsUC := prefsusecase.NewInteractor(prefsservice.NewPrefsService(
		prefsoutadapter.NewYAMLPrefsStore(cfg.PrefsPath),
	))

	observer, err := sessionoutadapter.NewPrometheusObserver(reg)
	if err != nil {
		return nil, fmt.Errorf("register session metrics: %w", err)
	}
	engine := sessionservice.NewEngine(
		sessionoutadapter.NewMediaCatalogAdapter(mediaUC),
		sessionoutadapter.NewStatsSinkAdapter(statsUC),
		clock.MonotonicClock{},
		timer.SystemScheduler{},
		sessionservice.WithObserver(observer),
		sessionservice.WithLogger(logging.Component(logger, "session")),
	)
	sessionUC := sessionusecase.NewInteractor(engine)

	app.SessionTUI = sessioninadapter.NewTUIHandler(sessionUC)
	app.MediaCLI = mediainadapter.NewCLIHandler(mediaUC)
	app.MediaTUI = mediainadapter.NewTUIHandler(mediaUC)
	app.StatsCLI = statsinadapter.NewCLIHandler(statsUC)
	app.StatsTUI = statsinadapter.NewTUIHandler(statsUC)
	app.PrefsCLI = prefsinadapter.NewCLIHandler(prefsUC)
	app.PrefsTUI = prefsinadapter.NewTUIHandler(prefsUC)
	return app, nil
}

// ServeMetrics runs the metrics endpoint in the background when an address is
// configured. It stops with ctx.
func (a *App) ServeMetrics(ctx context.Context) {
	if a.Config.MetricsAddr == "" {
		return
	}
	log := logging.Component(a.Logger, "metrics")
	go func() {
		if err := metrics.Serve(ctx, a.Config.MetricsAddr, a.Registry, log); err != nil {
			log.Error().Err(err).Msg("metrics endpoint stopped")
		}
	}()
}

// Close releases stores in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(ctx context.Context, app *App) error {
	app.ServeMetrics(ctx)
	model := uiapp.NewModel(app.SessionTUI, app.MediaTUI, app.StatsTUI, app.PrefsTUI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	app.Logger.Info().Str("data_dir", app.Config.DataDir).Msg("tui started")
	final, err := program.Run()
	stopActive(final)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// stopActive finalizes a run the program left open, which happens when the
// context is cancelled before the quit key is handled.
func stopActive(final tea.Model) {
	if s, ok := final.(interface{ Shutdown() }); ok {
		s.Shutdown()
	}
}
