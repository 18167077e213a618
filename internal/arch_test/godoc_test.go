package arch_test

import (
	"go/ast"
	"go/token"
	"strings"
	"testing"
)

// TestExportedSymbolsHaveGoDoc requires a doc comment starting with the
// symbol name on every exported type, func, method, var and const. Values
// in a grouped block may rely on the block comment or an inline comment.
func TestExportedSymbolsHaveGoDoc(t *testing.T) {
	t.Parallel()
	for _, p := range internalPkgs(t) {
		for _, f := range p.files {
			for _, decl := range f.Decls {
				switch d := decl.(type) {
				case *ast.FuncDecl:
					if !d.Name.IsExported() || !exportedReceiver(d.Recv) {
						continue
					}
					if !startsWith(d.Doc, d.Name.Name) {
						t.Errorf("%s: %s has no GoDoc comment", p.pos(t, d), d.Name.Name)
					}
				case *ast.GenDecl:
					checkGenDoc(t, p, d)
				}
			}
		}
	}
}

func checkGenDoc(t *testing.T, p *pkg, d *ast.GenDecl) {
	t.Helper()
	grouped := d.Lparen.IsValid()
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if s.Name.IsExported() && !startsWith(s.Doc, s.Name.Name) && !startsWith(d.Doc, s.Name.Name) {
				t.Errorf("%s: type %s has no GoDoc comment", p.pos(t, s), s.Name.Name)
			}
		case *ast.ValueSpec:
			for _, name := range s.Names {
				if !name.IsExported() {
					continue
				}
				if grouped && (d.Doc != nil || s.Comment != nil || startsWith(s.Doc, name.Name)) {
					continue
				}
				if !grouped && (startsWith(s.Doc, name.Name) || startsWith(d.Doc, name.Name)) {
					continue
				}
				kind := "var"
				if d.Tok == token.CONST {
					kind = "const"
				}
				t.Errorf("%s: %s %s has no GoDoc comment", p.pos(t, name), kind, name.Name)
			}
		}
	}
}

func startsWith(doc *ast.CommentGroup, name string) bool {
	return doc != nil && strings.HasPrefix(strings.TrimSpace(doc.Text()), name)
}

// exportedReceiver reports whether a method's receiver type is exported.
// Plain functions count as exported receivers.
func exportedReceiver(recv *ast.FieldList) bool {
	if recv == nil || len(recv.List) == 0 {
		return true
	}
	typ := recv.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	switch x := typ.(type) {
	case *ast.Ident:
		return x.IsExported()
	case *ast.IndexExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.IsExported()
		}
	}
	return false
}
