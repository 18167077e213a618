package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog>",
	Short: "Validate a catalog file and save it to the --db store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()
	if e.cfg.DB == "" {
		return errors.New("import: --db is required")
	}

	path := args[0]
	f, err := catalog.LoadFile(path)
	if err != nil {
		e.printer.Error(err.Error())
		return err
	}
	if errs := catalog.Validate(f); len(errs) > 0 {
		e.printer.ValidateResult(filepath.Base(path), len(f.Skills), len(f.Units), errs)
		return fmt.Errorf("import: validation failed with %d error(s)", len(errs))
	}
	c, err := f.Build()
	if err != nil {
		return err
	}

	s, err := store.Open(cmd.Context(), e.cfg.DB)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Save(cmd.Context(), c); err != nil {
		return err
	}
	e.log.Info("catalog imported", "file", path, "db", e.cfg.DB)
	e.printer.Info(fmt.Sprintf("imported %d skills and %d units into %s", len(c.Skills()), len(c.Units()), e.cfg.DB))
	return nil
}
