package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/diagnose"
	"github.com/papapumpkin/syllabus/internal/graph"
	"github.com/papapumpkin/syllabus/internal/skill"
	"github.com/papapumpkin/syllabus/internal/ui"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Explain why a goal cannot be planned",
}

var diagnoseCyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List dependency cycles and the skills they corrupt",
	Args:  cobra.NoArgs,
	RunE:  runDiagnoseCycles,
}

var diagnoseMissingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Trace a goal back to the first skill nothing teaches",
	Args:  cobra.NoArgs,
	RunE:  runDiagnoseMissing,
}

func init() {
	diagnoseCmd.PersistentFlags().Bool("json", false, "print the result as JSON")
	diagnoseMissingCmd.Flags().StringSlice("goal", nil, "goal skill ids")
	diagnoseMissingCmd.Flags().StringSlice("know", nil, "skill ids the learner already knows")
	_ = diagnoseMissingCmd.MarkFlagRequired("goal")

	diagnoseCmd.AddCommand(diagnoseCyclesCmd, diagnoseMissingCmd)
	rootCmd.AddCommand(diagnoseCmd)
}

// cyclesJSON is the machine-readable cycle report.
type cyclesJSON struct {
	Cycles    [][]string `json:"cycles"`
	Corrupted []string   `json:"corrupted_ancestors"`
}

func runDiagnoseCycles(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	c, err := e.loadCatalog(cmd.Context())
	if err != nil {
		e.printer.Error(err.Error())
		return err
	}

	cycles := diagnose.Cycles(c)
	corrupted := diagnose.CorruptedAncestors(c.Hierarchy(), diagnose.NestingCycles(c.Hierarchy()))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out := cyclesJSON{Cycles: make([][]string, len(cycles)), Corrupted: corrupted}
		for i, cyc := range cycles {
			out.Cycles[i] = refStrings(cyc)
		}
		if out.Corrupted == nil {
			out.Corrupted = []string{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	(&ui.Printer{Out: cmd.OutOrStdout()}).Cycles(cycles, corrupted)
	return nil
}

func runDiagnoseMissing(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	goalFlag, _ := cmd.Flags().GetStringSlice("goal")
	knowFlag, _ := cmd.Flags().GetStringSlice("know")
	goal := splitIDs(goalFlag)
	if len(goal) == 0 {
		return errors.New("diagnose: --goal is required")
	}

	c, err := e.loadCatalog(cmd.Context())
	if err != nil {
		e.printer.Error(err.Error())
		return err
	}
	known := skill.NewState(c.Hierarchy(), splitIDs(knowFlag)...)
	miss, found := diagnose.MissingSkill(c, goal, known)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out := struct {
			Missing string   `json:"missing,omitempty"`
			Trace   []string `json:"trace"`
		}{Missing: miss.Skill, Trace: refStrings(miss.Trace)}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	(&ui.Printer{Out: cmd.OutOrStdout()}).Missing(miss, found)
	return nil
}

func refStrings(refs []graph.Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}
