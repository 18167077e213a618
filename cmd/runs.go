package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List planning runs recorded in the --db store",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "maximum number of runs to list (0 = all)")
	runsCmd.Flags().Bool("json", false, "print runs as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()
	if e.cfg.DB == "" {
		return errors.New("runs: --db is required")
	}

	s, err := store.Open(cmd.Context(), e.cfg.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := s.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if runs == nil {
			runs = []store.Run{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	for _, r := range runs {
		var paths []json.RawMessage
		_ = json.Unmarshal(r.Paths, &paths)
		fmt.Fprintf(w, "%s  %s  goal=%s know=%s paths=%d\n",
			r.CreatedAt.Local().Format(time.DateTime), r.ID,
			strings.Join(r.Goal, ","), strings.Join(r.Knowledge, ","), len(paths))
	}
	return nil
}
