// Package morphgen scans Go source for schema structs and generates their
// registration code.
package morphgen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"reflect"
	"sort"
	"strings"

	"github.com/SamHutchings/structmorph/schema"
)

// SchemaDecl describes one schema struct found in the scanned source.
type SchemaDecl struct {
	// TypeName is the Go name of the struct type.
	TypeName string
	// Source is the external source name: the Base tag override if present,
	// otherwise the pluralized snake_case of TypeName.
	Source string
	// Fields lists the declared field keys, in struct order.
	Fields []FieldDecl
}

// FieldDecl pairs a Go field name with its external key.
type FieldDecl struct {
	GoName string
	Key    string
}

// Package holds the scan result for one directory.
type Package struct {
	// Name is the Go package name of the scanned directory.
	Name string
	// Schemas lists every struct embedding schema.Base, sorted by type name.
	Schemas []SchemaDecl
}

// ScanDir parses the Go package in dir (tests excluded) and collects every
// exported struct type that embeds schema.Base.
func ScanDir(dir string) (*Package, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(fi fs.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", dir, err)
	}

	for name, pkg := range pkgs {
		if strings.HasSuffix(name, "_test") {
			continue
		}
		result := &Package{Name: name}
		for _, file := range pkg.Files {
			collectSchemas(file, result)
		}
		sort.Slice(result.Schemas, func(i, j int) bool {
			return result.Schemas[i].TypeName < result.Schemas[j].TypeName
		})
		return result, nil
	}

	return nil, fmt.Errorf("no Go package found in %s", dir)
}

func collectSchemas(file *ast.File, result *Package) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || !ts.Name.IsExported() {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			if decl, ok := schemaDeclFrom(ts.Name.Name, st); ok {
				result.Schemas = append(result.Schemas, decl)
			}
		}
	}
}

func schemaDeclFrom(typeName string, st *ast.StructType) (SchemaDecl, bool) {
	decl := SchemaDecl{
		TypeName: typeName,
		Source:   schema.SourceName(typeName),
	}
	embedsBase := false

	for _, field := range st.Fields.List {
		tag := fieldTag(field)

		if len(field.Names) == 0 {
			// Anonymous field: look for schema.Base (or dot-imported Base).
			if isBaseType(field.Type) {
				embedsBase = true
				if parsed, err := schema.ParseTag(tag); err == nil && parsed.Source != "" {
					decl.Source = parsed.Source
				}
			}
			continue
		}

		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			parsed, err := schema.ParseTag(tag)
			if err != nil || parsed.Skip {
				continue
			}
			key := parsed.Name
			if key == "" {
				key = schema.KeyName(name.Name)
			}
			decl.Fields = append(decl.Fields, FieldDecl{GoName: name.Name, Key: key})
		}
	}

	return decl, embedsBase
}

func fieldTag(field *ast.Field) string {
	if field.Tag == nil {
		return ""
	}
	raw := strings.Trim(field.Tag.Value, "`")
	return reflect.StructTag(raw).Get("morph")
}

func isBaseType(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name == "schema" && t.Sel.Name == "Base"
		}
	case *ast.Ident:
		return t.Name == "Base"
	}
	return false
}
