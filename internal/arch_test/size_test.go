package arch_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxFilesPerPackage = 20
	maxLinesPerFile    = 400
)

func TestPackageFileCount(t *testing.T) {
	t.Parallel()
	for _, p := range append(internalPkgs(t), cmdPkg(t)) {
		if n := len(p.files); n > maxFilesPerPackage {
			t.Errorf("package %s has %d non-test files, max %d; split it", p.name, n, maxFilesPerPackage)
		}
	}
}

// TestFileLineCount covers test files too.
func TestFileLineCount(t *testing.T) {
	t.Parallel()
	root := repoRoot(t)
	for _, dir := range []string{"cmd", "internal"} {
		err := filepath.WalkDir(filepath.Join(root, dir), func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || filepath.Ext(path) != ".go" {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if n := bytes.Count(data, []byte("\n")); n > maxLinesPerFile {
				rel, _ := filepath.Rel(root, path)
				t.Errorf("%s has %d lines, max %d", rel, n, maxLinesPerFile)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("walking %s: %v", dir, err)
		}
	}
}
