package morphgen

import (
	"fmt"
	"io"
	"text/template"
)

// RenderConfig controls the generated registration file.
type RenderConfig struct {
	// PackageName is the package the generated file belongs to. Defaults to
	// the scanned package's name.
	PackageName string
	// Version is an optional version string included in the header comment.
	Version string
}

const registrationTemplate = `// Code generated by morphgen{{if .Version}} {{.Version}}{{end}}. DO NOT EDIT.

package {{.PackageName}}

import (
	"github.com/SamHutchings/structmorph/schema"
)

// Source names of the schemas declared in this package.
const (
{{- range .Schemas}}
	{{.TypeName}}Source = "{{.Source}}"
{{- end}}
)

func init() {
{{- range .Schemas}}
	schema.MustRegister[{{.TypeName}}]()
{{- end}}
}
`

var registrationTmpl = template.Must(template.New("registration").Parse(registrationTemplate))

// Render writes the registration file for the scanned package to w.
func Render(w io.Writer, pkg *Package, cfg RenderConfig) error {
	if len(pkg.Schemas) == 0 {
		return fmt.Errorf("no schema structs found in package %s", pkg.Name)
	}

	name := cfg.PackageName
	if name == "" {
		name = pkg.Name
	}

	data := struct {
		PackageName string
		Version     string
		Schemas     []SchemaDecl
	}{
		PackageName: name,
		Version:     cfg.Version,
		Schemas:     pkg.Schemas,
	}

	return registrationTmpl.Execute(w, data)
}
