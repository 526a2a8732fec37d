package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/oakmart/shopfront"
	"github.com/oakmart/shopfront/api"
	"github.com/oakmart/shopfront/bus"
	"github.com/oakmart/shopfront/config"
	"github.com/oakmart/shopfront/credstore"
	shopotel "github.com/oakmart/shopfront/otel"
)

// app bundles the wired client state for one CLI invocation: config,
// credential store, API client, and the session/cart/notifier trio sharing
// one event bus.
type app struct {
	cfg      config.Config
	store    credstore.Store
	bus      *bus.MemBus
	client   *api.Client
	session  *shopfront.Session
	cart     *shopfront.Cart
	notifier *shopfront.Notifier
	logger   *slog.Logger

	detachMetrics func()
}

// newApp loads configuration and wires the full client stack. Callers must
// Close the returned app.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd)
	store, err := openStore(cfg)
	if err != nil {
		return nil, exitError(exitRuntime, "opening credential store: %v", err)
	}

	eb := bus.NewMemBus(bus.MemBusConfig{})

	client, err := api.NewClient(api.Config{
		BaseURL:     cfg.API.BaseURL,
		HTTPClient:  &http.Client{Timeout: cfg.API.TimeoutDuration()},
		TokenSource: shopfront.StoreTokenSource(store),
		Tracer:      otelapi.GetTracerProvider().Tracer("shopfront/api"),
		Logger:      logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, exitError(exitValidation, "invalid API configuration: %v", err)
	}

	session := shopfront.NewSession(shopfront.SessionConfig{
		Store:   store,
		Client:  client,
		Emitter: eb.Emitter(),
		Logger:  logger,
	})
	cart := shopfront.NewCart(shopfront.CartConfig{
		Client:  client,
		Emitter: eb.Emitter(),
		Logger:  logger,
	})
	notifier := shopfront.NewNotifier(shopfront.NotifierConfig{
		TTL:     cfg.Notice.TTLDuration(),
		Emitter: eb.Emitter(),
	})

	a := &app{
		cfg:      cfg,
		store:    store,
		bus:      eb,
		client:   client,
		session:  session,
		cart:     cart,
		notifier: notifier,
		logger:   logger,
	}

	metrics, err := shopotel.NewMetricsHandler(otelapi.GetMeterProvider().Meter("shopfront/state"))
	if err != nil {
		a.Close()
		return nil, exitError(exitRuntime, "initializing metrics: %v", err)
	}
	a.detachMetrics = metrics.Attach(eb)

	return a, nil
}

// Close releases the app's resources in reverse wiring order.
func (a *app) Close() {
	if a.detachMetrics != nil {
		a.detachMetrics()
	}
	_ = a.bus.Close()
	_ = a.store.Close()
}

// restore loads persisted credentials into the session. Store read errors
// are fatal; a missing token is not.
func (a *app) restore(ctx context.Context) error {
	if err := a.session.Restore(ctx); err != nil {
		return exitError(exitRuntime, "restoring session: %v", err)
	}
	return nil
}

// requireAuth restores the session and fails when no token is present.
func (a *app) requireAuth(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	if !a.session.Authenticated() {
		return exitError(exitAuth, "not logged in (run `shopfront login`)")
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")

	path, found, err := config.Discover(explicit)
	if err != nil {
		return config.Config{}, exitError(exitValidation, "%v", err)
	}
	if !found {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, exitError(exitValidation, "%v", err)
	}
	return cfg, nil
}

func openStore(cfg config.Config) (credstore.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return credstore.NewMemStore(), nil
	case config.StoreBackendSQLite:
		path := cfg.Store.Path
		if path == "" {
			defaultPath, err := credstore.DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		return credstore.NewSQLiteStore(credstore.SQLiteStoreConfig{DSN: path})
	case config.StoreBackendFile, "":
		if cfg.Store.Path != "" {
			return credstore.NewFileStore(cfg.Store.Path), nil
		}
		return credstore.NewDefaultFileStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// printJSON writes v as indented JSON for --output json.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return exitError(exitRuntime, "encoding output: %v", err)
	}
	return nil
}

func outputJSON(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("output")
	return format == "json"
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}
