package server

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func TestExportedAPIHasDocComments(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "server.go", nil, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse server.go: %v", err)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Name.IsExported() && d.Doc == nil {
				t.Errorf("exported func %s has no doc comment", d.Name.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if ok && ts.Name.IsExported() && d.Doc == nil && ts.Doc == nil {
					t.Errorf("exported type %s has no doc comment", ts.Name.Name)
				}
			}
		}
	}
}
