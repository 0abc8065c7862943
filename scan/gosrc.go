package scan

import (
	"go/ast"
	"go/token"
	"strconv"
)

// FileUnit wraps a parsed Go file as a code [Unit]. The file's directly
// referenced names are every identifier outside of function bodies;
// each function body becomes a nested unit.
func FileUnit(f *ast.File) Unit {
	return &nodeUnit{node: f}
}

type nodeUnit struct {
	node ast.Node
}

func (u *nodeUnit) ReferencedNames() []string {
	var names []string
	walkDirect(u.node, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.Ident:
			names = append(names, n.Name)
		case *ast.BasicLit:
			if n.Kind != token.STRING {
				return
			}
			s, err := strconv.Unquote(n.Value)
			if err != nil {
				return
			}
			if token.IsIdentifier(s) {
				names = append(names, s)
			}
		}
	})
	return names
}

func (u *nodeUnit) Nested() []Unit {
	var nested []Unit
	walkDirect(u.node, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.FuncDecl:
			if n.Body != nil {
				nested = append(nested, &nodeUnit{node: n.Body})
			}
		case *ast.FuncLit:
			nested = append(nested, &nodeUnit{node: n.Body})
		}
	})
	return nested
}

// walkDirect visits every node belonging directly to root, stopping at
// function body boundaries (those are separate units).
func walkDirect(root ast.Node, visit func(ast.Node)) {
	ast.Inspect(root, func(n ast.Node) bool {
		if n == nil {
			return false
		}
		visit(n)
		switch n := n.(type) {
		case *ast.FuncDecl:
			if n != root {
				// Name and signature idents still belong to this unit.
				walkDirect(n.Name, visit)
				if n.Recv != nil {
					walkDirect(n.Recv, visit)
				}
				walkDirect(n.Type, visit)
				return false
			}
		case *ast.FuncLit:
			if n != root {
				walkDirect(n.Type, visit)
				return false
			}
		}
		return true
	})
}
