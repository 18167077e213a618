package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/expr"
	"github.com/papapumpkin/syllabus/internal/skill"
)

var exprCmd = &cobra.Command{
	Use:   "expr",
	Short: "Work with serialized precondition expressions",
}

var exprFmtCmd = &cobra.Command{
	Use:   "fmt <expression>",
	Short: "Parse an expression and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := expr.Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), expr.Format(e))
		return nil
	},
}

var exprEvalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression against known skills",
	Long: `Evaluates the expression against the closure of --know under the
catalog's skill hierarchy. Each --without expression removes the nested
skills it covers from consideration.`,
	Args: cobra.ExactArgs(1),
	RunE: runExprEval,
}

func init() {
	exprEvalCmd.Flags().StringSlice("know", nil, "skill ids that are known")
	exprEvalCmd.Flags().StringArray("without", nil, "expression whose covered skills are ignored (repeatable)")

	exprCmd.AddCommand(exprFmtCmd, exprEvalCmd)
	rootCmd.AddCommand(exprCmd)
}

func runExprEval(cmd *cobra.Command, args []string) error {
	e, err := expr.Parse(args[0])
	if err != nil {
		return err
	}
	withoutFlag, _ := cmd.Flags().GetStringArray("without")
	var without []expr.Expr
	for _, w := range withoutFlag {
		we, err := expr.Parse(w)
		if err != nil {
			return fmt.Errorf("--without: %w", err)
		}
		without = append(without, we)
	}

	h, err := evalHierarchy(cmd)
	if err != nil {
		return err
	}
	knowFlag, _ := cmd.Flags().GetStringSlice("know")
	known := skill.NewState(h, splitIDs(knowFlag)...)

	fmt.Fprintln(cmd.OutOrStdout(), e.Evaluate(known, h, without))
	return nil
}

// evalHierarchy returns the configured catalog's hierarchy, or an empty
// one when no catalog is available.
func evalHierarchy(cmd *cobra.Command) (*skill.Hierarchy, error) {
	env, err := newEnv()
	if err != nil {
		return nil, err
	}
	defer env.close()

	if env.cfg.DB == "" {
		if _, err := os.Stat(env.cfg.Catalog); err != nil {
			return skill.NewHierarchy(nil), nil
		}
	}
	c, err := env.loadCatalog(cmd.Context())
	if err != nil {
		return nil, err
	}
	return c.Hierarchy(), nil
}
