// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/openlearn/coursegate/adapters/clock"
	"github.com/openlearn/coursegate/adapters/events"
	"github.com/openlearn/coursegate/adapters/idgen"
	"github.com/openlearn/coursegate/adapters/memory"
	"github.com/openlearn/coursegate/adapters/metrics"
	"github.com/openlearn/coursegate/adapters/remote"
	"github.com/openlearn/coursegate/adapters/sqlite"
	"github.com/openlearn/coursegate/app"
	"github.com/openlearn/coursegate/config"
	"github.com/openlearn/coursegate/domain/access"
	"github.com/openlearn/coursegate/ports"
	"github.com/openlearn/coursegate/web"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Holder     *config.Holder
	DB         *sqlite.DB // nil when the memory driver is configured
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	// Services
	Access    *app.AccessService
	Purchases *app.PurchaseService
	Offers    *app.OfferService
	Grants    *app.GrantService

	// Stores (exposed for seeding)
	Courses ports.CourseStore
	Lessons ports.LessonStore

	grantsStore   ports.EntitlementStore
	purchaseStore ports.PurchaseStore
	events        ports.EventPublisher
	clk           ports.Clock
}

// New creates and initializes the application from a config holder.
func New(holder *config.Holder) (*App, error) {
	cfg := holder.Get()
	logger := SetupLogger(cfg.Logging)

	logger.Info().Msg("initializing coursegate")

	a := &App{
		Logger: logger,
		Holder: holder,
	}

	// Log level follows config reloads.
	holder.OnChange(func(c *config.Config) {
		if level, err := zerolog.ParseLevel(c.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	})

	if err := a.initStores(cfg); err != nil {
		return nil, fmt.Errorf("init stores: %w", err)
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	if cfg.Events.Enabled {
		a.events = events.NewPublisher(logger, cfg.Events.Buffer, events.LogHandler(logger))
	} else {
		a.events = events.Noop{}
	}

	a.initServices(cfg)
	a.initHTTPServer(cfg)

	return a, nil
}

func (a *App) initStores(cfg *config.Config) error {
	switch cfg.Database.Driver {
	case "memory":
		grants := memory.NewEntitlementStore()
		a.Courses = memory.NewCourseStore()
		a.Lessons = memory.NewLessonStore()
		a.grantsStore = grants
		a.purchaseStore = memory.NewPurchaseStore(grants)
		a.Logger.Info().Msg("using in-memory storage")

	default:
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Courses = sqlite.NewCourseStore(db)
		a.Lessons = sqlite.NewLessonStore(db)
		a.grantsStore = sqlite.NewEntitlementStore(db)
		a.purchaseStore = sqlite.NewPurchaseStore(db)
		a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("sqlite storage ready")
	}
	return nil
}

func (a *App) initServices(cfg *config.Config) {
	clk := clock.Real{}
	ids := idgen.UUID{}
	a.clk = clk
	plans := a.planProvider(cfg)

	a.Access = app.NewAccessService(a.Courses, a.Lessons, a.grantsStore, plans, clk, a.Logger)
	a.Purchases = app.NewPurchaseService(a.Courses, a.grantsStore, a.purchaseStore, plans, clk, ids, a.events, a.Logger)
	a.Offers = app.NewOfferService(a.Courses, a.grantsStore, clk, a.Logger)
	a.Grants = app.NewGrantService(a.Courses, a.grantsStore, clk, ids, a.events, a.Logger)
}

// planProvider selects the plan lookup backend. Static mode reads the pro
// user list through the config holder, so hot reloads take effect on the
// next access decision.
func (a *App) planProvider(cfg *config.Config) ports.PlanProvider {
	if cfg.Plans.Mode == "remote" {
		client := remote.NewClient(remote.ClientConfig{
			BaseURL: cfg.Plans.Remote.URL,
			APIKey:  cfg.Plans.Remote.APIKey,
			Timeout: cfg.Plans.Remote.Timeout,
		})
		a.Logger.Info().Str("url", cfg.Plans.Remote.URL).Msg("using remote plan provider")
		return remote.NewPlanProvider(client)
	}
	return &configPlanProvider{holder: a.Holder}
}

func (a *App) initHTTPServer(cfg *config.Config) {
	handler := web.NewHandler(web.Deps{
		Access:    a.Access,
		Purchases: a.Purchases,
		Offers:    a.Offers,
		Grants:    a.Grants,
		Logger:    a.Logger,
		Metrics:   a.Metrics,
	})

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler.Router(web.RouterConfig{MetricsPath: metricsPath}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("event publisher close error")
		}
	}

	if a.Holder != nil {
		a.Holder.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func (a *App) nowUTC() time.Time {
	return a.clk.Now().UTC()
}

// SetupLogger builds the root logger from logging config.
func SetupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// configPlanProvider resolves plans from the static pro user list in config.
type configPlanProvider struct {
	holder *config.Holder
}

func (p *configPlanProvider) Plan(ctx context.Context, userID string) (access.Plan, error) {
	for _, u := range p.holder.Get().Plans.ProUsers {
		if u == userID {
			return access.PlanPro, nil
		}
	}
	return access.PlanFree, nil
}

// Ensure interface compliance.
var _ ports.PlanProvider = (*configPlanProvider)(nil)
