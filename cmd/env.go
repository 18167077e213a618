package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/config"
	"github.com/papapumpkin/syllabus/internal/logger"
	"github.com/papapumpkin/syllabus/internal/planner"
	"github.com/papapumpkin/syllabus/internal/store"
	"github.com/papapumpkin/syllabus/internal/telemetry"
	"github.com/papapumpkin/syllabus/internal/ui"
)

// env bundles what a planning command needs: configuration, the printer,
// a logger and an optional telemetry emitter.
type env struct {
	cfg     config.Config
	printer *ui.Printer
	log     *logger.Logger
	emitter *telemetry.Emitter
}

// newEnv loads configuration and builds the logger and emitter.
func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, printer: ui.New(), log: log}
	if cfg.TelemetryPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TelemetryPath), 0o755); err != nil {
			return nil, fmt.Errorf("telemetry: create dir: %w", err)
		}
		em, err := telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, err
		}
		e.emitter = em
	}
	return e, nil
}

// close flushes the logger and closes the emitter.
func (e *env) close() {
	e.log.Sync()
	if err := e.emitter.Close(); err != nil {
		e.log.Warn("closing telemetry", "error", err)
	}
}

// loadCatalog reads the catalog from the store when db is configured and
// from the catalog file otherwise.
func (e *env) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if e.cfg.DB != "" {
		s, err := store.Open(ctx, e.cfg.DB)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		c, err := s.Load(ctx)
		if errors.Is(err, store.ErrEmpty) {
			return nil, fmt.Errorf("%s holds no catalog; run syllabus import first", e.cfg.DB)
		}
		if err != nil {
			return nil, err
		}
		e.log.Debug("catalog loaded", "db", e.cfg.DB, "skills", len(c.Skills()), "units", len(c.Units()))
		return c, nil
	}

	c, err := catalog.Load(e.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	e.log.Debug("catalog loaded", "file", e.cfg.Catalog, "skills", len(c.Skills()), "units", len(c.Units()))
	return c, nil
}

// newPlanner builds a planner over c from the configuration plus extra
// options, which take precedence.
func (e *env) newPlanner(c *catalog.Catalog, extra ...planner.Option) (*planner.Planner, error) {
	opts, err := e.cfg.PlannerOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, planner.WithLogger(e.log), planner.WithEmitter(e.emitter))
	opts = append(opts, extra...)
	return planner.New(c, opts...)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// splitIDs flattens comma-separated flag values into trimmed, non-empty ids.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
