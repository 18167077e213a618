package arch_test

import (
	"go/ast"
	"slices"
	"testing"
)

// sumTypes lists interfaces that are closed sum types: their variants live
// beside them by construction.
var sumTypes = map[string][]string{
	"expr": {"Expr", "Known"},
}

// TestInterfacesLiveWithConsumers flags an interface declared in the same
// package as a type that implements it, unless it is a sum type.
func TestInterfacesLiveWithConsumers(t *testing.T) {
	t.Parallel()
	for _, p := range internalPkgs(t) {
		methods := methodSets(p)
		for _, iface := range interfaces(p) {
			if slices.Contains(sumTypes[p.name], iface.name) || len(iface.methods) == 0 {
				continue
			}
			for typ, have := range methods {
				if containsAll(have, iface.methods) {
					t.Errorf("interface %s.%s is implemented by %s in the same package; declare it where it is consumed",
						p.name, iface.name, typ)
				}
			}
		}
	}
}

// TestExprVariantsAreComplete requires every exported struct in expr to be
// a full Expr variant, so Format and Parse can switch over them.
func TestExprVariantsAreComplete(t *testing.T) {
	t.Parallel()
	p, ok := byName(internalPkgs(t))["expr"]
	if !ok {
		t.Fatal("package expr not found")
	}
	var want []string
	for _, iface := range interfaces(p) {
		if iface.name == "Expr" {
			want = iface.methods
		}
	}
	if len(want) == 0 {
		t.Fatal("interface Expr not found in expr")
	}

	methods := methodSets(p)
	variants := 0
	for _, f := range p.files {
		ast.Inspect(f, func(n ast.Node) bool {
			ts, ok := n.(*ast.TypeSpec)
			if !ok || !ts.Name.IsExported() {
				return true
			}
			if _, isStruct := ts.Type.(*ast.StructType); !isStruct || ts.Name.Name == "ParseError" {
				return true
			}
			variants++
			if !containsAll(methods[ts.Name.Name], want) {
				t.Errorf("%s: %s does not implement every Expr method %v", p.pos(t, ts), ts.Name.Name, want)
			}
			return true
		})
	}
	if variants < 5 {
		t.Errorf("found %d Expr variants, want at least 5 (Empty, Variable, And, Or, NOf)", variants)
	}
}

type ifaceDecl struct {
	name    string
	methods []string
}

func interfaces(p *pkg) []ifaceDecl {
	var out []ifaceDecl
	for _, f := range p.files {
		ast.Inspect(f, func(n ast.Node) bool {
			ts, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			it, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				return true
			}
			d := ifaceDecl{name: ts.Name.Name}
			for _, m := range it.Methods.List {
				for _, name := range m.Names {
					d.methods = append(d.methods, name.Name)
				}
			}
			out = append(out, d)
			return true
		})
	}
	return out
}

// methodSets maps each receiver type name to its method names.
func methodSets(p *pkg) map[string][]string {
	out := make(map[string][]string)
	for _, f := range p.files {
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 {
				continue
			}
			typ := fd.Recv.List[0].Type
			if star, ok := typ.(*ast.StarExpr); ok {
				typ = star.X
			}
			if id, ok := typ.(*ast.Ident); ok {
				out[id.Name] = append(out[id.Name], fd.Name.Name)
			}
		}
	}
	return out
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}
