package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/config"
	"github.com/papapumpkin/syllabus/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry [file]",
	Short: "View the JSONL planning event stream",
	Long: `Reads and formats a telemetry file written by plan --telemetry.

Without an argument, reads the configured telemetry_path.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")

	path, err := resolveTelemetryPath(args)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	// Print all existing events.
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		printEvent(cmd.OutOrStdout(), line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		return nil
	}

	return tailFollow(cmd.Context(), cmd.OutOrStdout(), f, path)
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(ctx context.Context, w io.Writer, f *os.File, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	for {
		var event fsnotify.Event
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			event = ev
		}
		if event.Op&fsnotify.Write == 0 {
			continue
		}
		// Read all new lines available.
		for {
			line, err := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line != "" {
				printEvent(w, line)
			}
			if err != nil {
				break
			}
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	ts := evt.Timestamp.Format(time.TimeOnly)
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", ts))
	parts = append(parts, evt.Kind)

	if evt.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", shortID(evt.RunID)))
	}
	if evt.UnitID != "" {
		parts = append(parts, fmt.Sprintf("unit=%s", evt.UnitID))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}

// resolveTelemetryPath returns the file named in args, or the configured
// telemetry path.
func resolveTelemetryPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.TelemetryPath == "" {
		return "", fmt.Errorf("telemetry: no file given and telemetry_path is not configured")
	}
	return cfg.TelemetryPath, nil
}

// shortID abbreviates a run id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
