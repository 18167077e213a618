package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/lint"
	"github.com/papapumpkin/syllabus/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [catalog]",
	Short: "Check a catalog file for structural errors, nesting loops and cycles",
	Long: `Runs the catalog check chain: structure, build and nesting checks
must pass; cycles and unteachable skills are reported as warnings.
With --strict, warnings fail the command too.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "treat warnings as errors")
	validateCmd.Flags().Bool("json", false, "print the check results as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	path, err := catalogArg(args)
	if err != nil {
		return err
	}

	f, err := catalog.LoadFile(path)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), printer)
	defer cancel()
	result, err := lint.DefaultChain().Run(ctx, f)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printer.LintResult(filepath.Base(path), len(f.Skills), len(f.Units), result)
	}

	if ff := result.FirstFailure(); ff != nil {
		return fmt.Errorf("validation failed: %s check reported %d problem(s)", ff.Name, len(ff.Findings))
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict && result.Warnings() > 0 {
		return fmt.Errorf("validation failed: %d warning(s) in strict mode", result.Warnings())
	}
	return nil
}

// catalogArg returns the catalog path from args, falling back to the
// configured catalog.
func catalogArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	e, err := newEnv()
	if err != nil {
		return "", err
	}
	defer e.close()
	return e.cfg.Catalog, nil
}
