// Package arch_test enforces the package structure of the planner: which
// packages may depend on which, which stay free of I/O, and the shape of
// their exported API.
package arch_test

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const modulePath = "github.com/papapumpkin/syllabus"

// pkg is one parsed package under internal/ or cmd/, test files excluded.
type pkg struct {
	name  string // directory name, e.g. "planner"
	dir   string
	fset  *token.FileSet
	files map[string]*ast.File // keyed by path
}

// repoRoot returns the module root; tests run from internal/arch_test.
func repoRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("resolving repo root: %v", err)
	}
	return root
}

// internalPkgs parses every package under internal/ except this one.
func internalPkgs(t *testing.T) []*pkg {
	t.Helper()
	dir := filepath.Join(repoRoot(t), "internal")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading internal/: %v", err)
	}
	var pkgs []*pkg
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		if p := parsePkg(t, e.Name(), filepath.Join(dir, e.Name())); len(p.files) > 0 {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}

// cmdPkg parses the cli package.
func cmdPkg(t *testing.T) *pkg {
	t.Helper()
	return parsePkg(t, "cmd", filepath.Join(repoRoot(t), "cmd"))
}

func parsePkg(t *testing.T, name, dir string) *pkg {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		t.Fatalf("listing %s: %v", dir, err)
	}
	p := &pkg{name: name, dir: dir, fset: token.NewFileSet(), files: make(map[string]*ast.File)}
	for _, path := range matches {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(p.fset, path, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			t.Fatalf("parsing %s: %v", path, err)
		}
		p.files[path] = f
	}
	return p
}

// imports returns every import path of the package, sorted.
func (p *pkg) imports() []string {
	seen := make(map[string]bool)
	for _, f := range p.files {
		for _, imp := range f.Imports {
			seen[strings.Trim(imp.Path.Value, `"`)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// internalImports returns the internal package names the package imports.
func (p *pkg) internalImports() []string {
	prefix := modulePath + "/internal/"
	var out []string
	for _, path := range p.imports() {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			out = append(out, strings.SplitN(rest, "/", 2)[0])
		}
	}
	return out
}

// pos renders a node position relative to the repo root.
func (p *pkg) pos(t *testing.T, n ast.Node) string {
	t.Helper()
	position := p.fset.Position(n.Pos())
	rel, err := filepath.Rel(repoRoot(t), position.Filename)
	if err != nil {
		rel = position.Filename
	}
	return fmt.Sprintf("%s:%d", rel, position.Line)
}

// byName indexes pkgs by directory name.
func byName(pkgs []*pkg) map[string]*pkg {
	m := make(map[string]*pkg, len(pkgs))
	for _, p := range pkgs {
		m[p.name] = p
	}
	return m
}
