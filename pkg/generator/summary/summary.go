// Package summary renders a client model as markdown: an overview of the
// clients and their methods, and a reference of the models and enums.
package summary

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/generrors"
)

//go:embed templates/*
var templatesFS embed.FS

// files maps each template to the file it renders.
var files = []struct{ template, target string }{
	{"README.md.gotmpl", "README.md"},
	{"models.md.gotmpl", "models.md"},
}

// Emitter implements the markdown summary output
type Emitter struct{}

// New creates a new summary emitter
func New() *Emitter {
	return &Emitter{}
}

// GetType returns the emitter type identifier
func (e *Emitter) GetType() string {
	return "summary"
}

// Emit renders README.md and models.md into output.OutDir
func (e *Emitter) Emit(output config.Output, model *clientmodel.Model) error {
	switch output.Format {
	case "", "markdown", "md":
	default:
		return &generrors.ConfigError{Option: "outputs.format", Message: fmt.Sprintf("summary output does not support format %q", output.Format)}
	}
	if err := os.MkdirAll(output.OutDir, 0o755); err != nil {
		return err
	}

	funcMap := template.FuncMap{
		"typeName":  typeName,
		"signature": signature,
		"visible":   func(m *clientmodel.ClientMethod) bool { return m.Visibility == clientmodel.Visible },
		"yesNo":     yesNo,
		"mdEscape":  mdEscape,
	}
	// Merge sprig functions
	for k, v := range sprig.TxtFuncMap() {
		if _, ok := funcMap[k]; !ok {
			funcMap[k] = v
		}
	}

	data := map[string]any{"Model": model, "Output": output}
	for _, f := range files {
		if err := renderFile(output, f.template, filepath.Join(output.OutDir, f.target), funcMap, data); err != nil {
			return err
		}
	}
	return nil
}

// renderFile renders a template file to the target path
func renderFile(output config.Output, templateName, targetPath string, funcMap template.FuncMap, data map[string]any) error {
	if output.ShouldExcludeFile(targetPath) {
		return nil
	}

	tmplContent, err := templatesFS.ReadFile("templates/" + templateName)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", templateName, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	file, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", targetPath, err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return nil
}

func typeName(t clientmodel.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// signature renders a method the way callers see it. Constant and
// client-level parameters are left out.
func signature(m *clientmodel.ClientMethod) string {
	params := make([]string, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		if p.Constant || p.FromClient {
			continue
		}
		params = append(params, p.Name+" "+typeName(p.Type))
	}
	sig := m.Name + "(" + strings.Join(params, ", ") + ")"
	if rt := typeName(m.ReturnType); rt != "" {
		sig += " " + rt
	}
	return sig
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// mdEscape keeps s inside one table cell.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
