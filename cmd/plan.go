package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/planner"
	"github.com/papapumpkin/syllabus/internal/store"
	"github.com/papapumpkin/syllabus/internal/telemetry"
	"github.com/papapumpkin/syllabus/internal/ui"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Find the cheapest learning paths to a goal",
	Long: `Searches the catalog for the cheapest sequences of units that take the
learner from --know to --goal.

With --batch, plans every request in a YAML file concurrently.
With --watch, re-plans whenever the catalog file changes.`,
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringSlice("goal", nil, "goal skill ids (comma-separated or repeated)")
	f.StringSlice("know", nil, "skill ids the learner already knows")
	f.StringSlice("exclude", nil, "unit ids that must not be used")
	f.IntP("alternatives", "k", 1, "number of distinct paths to return")
	f.String("cost", "", "cost function: count, media_time, word_count")
	f.Int("max-expansions", 0, "stop after this many search expansions (0 = unbounded)")
	f.String("batch", "", "YAML file listing requests to plan concurrently")
	f.Bool("json", false, "print paths as JSON")
	f.Bool("watch", false, "re-plan when the catalog file changes")

	bindFlag("alternatives", f.Lookup("alternatives"))
	bindFlag("cost", f.Lookup("cost"))
	bindFlag("max_expansions", f.Lookup("max-expansions"))

	rootCmd.AddCommand(planCmd)
}

// planJSON is the machine-readable result of one request.
type planJSON struct {
	Goal      []string       `json:"goal"`
	Knowledge []string       `json:"knowledge,omitempty"`
	Paths     []planner.Path `json:"paths"`
}

func runPlan(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := signalContext(cmd.Context(), e.printer)
	defer cancel()

	asJSON, _ := cmd.Flags().GetBool("json")
	out := &ui.Printer{Out: cmd.OutOrStdout()}

	if batchFile, _ := cmd.Flags().GetString("batch"); batchFile != "" {
		return runPlanBatch(ctx, e, batchFile, asJSON, cmd.OutOrStdout())
	}

	goalFlag, _ := cmd.Flags().GetStringSlice("goal")
	knowFlag, _ := cmd.Flags().GetStringSlice("know")
	excludeFlag, _ := cmd.Flags().GetStringSlice("exclude")
	req := planner.Request{
		Goal:      splitIDs(goalFlag),
		Knowledge: splitIDs(knowFlag),
		Exclude:   splitIDs(excludeFlag),
	}
	if len(req.Goal) == 0 {
		return errors.New("plan: --goal is required")
	}

	once := func(c *catalog.Catalog) error {
		p, err := e.newPlanner(c)
		if err != nil {
			return err
		}
		paths, err := p.Plan(ctx, req)
		if err != nil && !errors.Is(err, planner.ErrExpansionLimit) {
			return err
		}
		if errors.Is(err, planner.ErrExpansionLimit) {
			e.printer.Warn(fmt.Sprintf("search stopped after %d expansions; results may be incomplete", e.cfg.MaxExpansions))
		}
		if recErr := e.recordRun(ctx, req, paths); recErr != nil {
			e.log.Warn("recording run", "error", recErr)
		}
		if asJSON {
			return writePlanJSON(cmd.OutOrStdout(), []planJSON{{Goal: req.Goal, Knowledge: req.Knowledge, Paths: paths}})
		}
		printPaths(out, req.Goal, paths)
		if len(paths) == 0 && err != nil {
			return err
		}
		return nil
	}

	c, err := e.loadCatalog(ctx)
	if err != nil {
		e.printer.Error(err.Error())
		return err
	}
	if err := once(c); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if e.cfg.DB != "" {
			return errors.New("plan: --watch needs a catalog file, not --db")
		}
		return watchCatalog(ctx, e, once)
	}
	return nil
}

// printPaths prints paths, calling out a goal that is already satisfied.
func printPaths(out *ui.Printer, goal []string, paths []planner.Path) {
	if len(paths) == 1 && paths[0].Len() == 0 {
		out.AlreadyKnown(goal)
		return
	}
	out.Paths(goal, paths)
}

// writePlanJSON writes results as indented JSON.
func writePlanJSON(w io.Writer, results []planJSON) error {
	for i := range results {
		if results[i].Paths == nil {
			results[i].Paths = []planner.Path{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

// watchCatalog re-runs fn with the reloaded catalog after every change to
// the catalog file until ctx is cancelled.
func watchCatalog(ctx context.Context, e *env, fn func(*catalog.Catalog) error) error {
	w, err := catalog.NewWatcher(e.cfg.Catalog)
	if err != nil {
		return fmt.Errorf("plan: watch catalog: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("plan: watch catalog: %w", err)
	}
	defer w.Stop()

	e.printer.Info("watching " + w.File + " (ctrl-c to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if ch.Kind == catalog.ChangeRemoved {
				e.printer.Warn(ch.File + " was removed; waiting for it to return")
				continue
			}
			c, err := catalog.Load(ch.File)
			if err != nil {
				e.printer.Error(err.Error())
				continue
			}
			e.printer.Reloaded(ch.File)
			e.emitter.Record(telemetry.KindCatalogReloaded, "", "", map[string]any{
				"file": ch.File, "skills": len(c.Skills()), "units": len(c.Units()),
			})
			if err := fn(c); err != nil {
				e.printer.Error(err.Error())
			}
		}
	}
}

// runPlanBatch plans every request listed in file concurrently.
func runPlanBatch(ctx context.Context, e *env, file string, asJSON bool, w io.Writer) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("plan: read batch: %w", err)
	}
	var reqs []planner.Request
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("plan: parse batch %s: %w", file, err)
	}

	c, err := e.loadCatalog(ctx)
	if err != nil {
		return err
	}
	p, err := e.newPlanner(c)
	if err != nil {
		return err
	}
	results, err := planner.PlanBatch(ctx, p, reqs, e.cfg.BatchLimit)
	if err != nil && !errors.Is(err, planner.ErrExpansionLimit) {
		return err
	}
	if err != nil {
		e.printer.Warn(fmt.Sprintf("%v; results may be incomplete", err))
	}

	if asJSON {
		out := make([]planJSON, len(reqs))
		for i, req := range reqs {
			out[i] = planJSON{Goal: req.Goal, Knowledge: req.Knowledge, Paths: results[i]}
		}
		return writePlanJSON(w, out)
	}
	printer := &ui.Printer{Out: w}
	for i, req := range reqs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printPaths(printer, req.Goal, results[i])
	}
	return nil
}

// recordRun stores the request and its paths when a database is configured.
func (e *env) recordRun(ctx context.Context, req planner.Request, paths []planner.Path) error {
	if e.cfg.DB == "" {
		return nil
	}
	if paths == nil {
		paths = []planner.Path{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	s, err := store.Open(ctx, e.cfg.DB)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.RecordRun(ctx, store.Run{
		ID:        telemetry.NewRunID(),
		Goal:      req.Goal,
		Knowledge: req.Knowledge,
		Paths:     data,
	})
}
