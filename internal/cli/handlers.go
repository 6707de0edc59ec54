package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/exampledata"
	"github.com/blimu-dev/clientgen/pkg/generator"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/logging"
	"github.com/blimu-dev/clientgen/pkg/openapi"
)

// NewLogger returns a text logger writing to w, at debug level when verbose.
func NewLogger(w io.Writer, verbose bool) logging.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logging.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

type RunImportParams struct {
	Input       string
	ClientName  string
	IncludeTags []string
	ExcludeTags []string
}

// RunImport imports an OpenAPI document and writes an overview of the
// resulting code model to w.
func RunImport(p RunImportParams, w io.Writer, logger logging.Logger) error {
	opts := []openapi.Option{
		openapi.WithLogger(logger),
		openapi.WithIncludeTags(p.IncludeTags...),
		openapi.WithExcludeTags(p.ExcludeTags...),
	}
	if p.ClientName != "" {
		opts = append(opts, openapi.WithClientName(p.ClientName))
	}
	cm, err := generator.ImportOpenAPI(p.Input, opts...)
	if err != nil {
		return err
	}
	return writeOverview(w, cm)
}

func writeOverview(w io.Writer, cm *codemodel.CodeModel) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range cm.Clients {
		var versions []string
		for _, v := range c.APIVersions {
			versions = append(versions, v.Version)
		}
		fmt.Fprintf(tw, "client %s", c.Language.Name())
		if len(versions) > 0 {
			fmt.Fprintf(tw, " (api versions: %s)", strings.Join(versions, ", "))
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "GROUP\tOPERATION\tMETHOD\tPATH")
		for _, g := range c.OperationGroups {
			group := g.Key
			if group == "" {
				group = "-"
			}
			for _, op := range g.Operations {
				method, path := "", ""
				if len(op.Requests) > 0 {
					if h := op.Requests[0].HTTP(); h != nil {
						method, path = strings.ToUpper(h.Method), h.Path
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", group, op.OperationID, method, path)
			}
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintln(tw, "BUCKET\tSCHEMAS")
	for _, name := range codemodel.BucketNames {
		if n := len(cm.Schemas.Bucket(name)); n > 0 {
			fmt.Fprintf(tw, "%s\t%d\n", name, n)
		}
	}
	return tw.Flush()
}

type RunExamplesParams struct {
	ConfigPath  string
	CodeModel   string
	PackageName string
	Seed        int64
	// Models restricts the output to the named models.
	Models []string
	// Literals prints the Go literal of every scalar field instead of JSON.
	Literals bool
}

// RunExamples builds the client model with example generation on and
// writes the seeded examples of its models to w.
func RunExamples(p RunExamplesParams, w io.Writer, logger logging.Logger) error {
	var cfg *config.Config
	var err error
	switch {
	case p.ConfigPath != "":
		cfg, err = config.Load(p.ConfigPath)
		if err != nil {
			return err
		}
	case p.CodeModel != "":
		cfg = &config.Config{CodeModel: absPath(p.CodeModel), Settings: config.Settings{PackageName: p.PackageName}}
		if err := cfg.Settings.ApplyEnv(); err != nil {
			return err
		}
		cfg.Settings.ApplyDefaults()
	default:
		return &generrors.ConfigError{Message: "either --config or --input must be provided"}
	}
	cfg.Settings.GenerateExamples = true
	if p.Seed != 0 {
		cfg.Settings.ExampleSeed = p.Seed
	}

	model, err := generator.Build(cfg, logger)
	if err != nil {
		return err
	}

	only := make(map[string]bool, len(p.Models))
	for _, name := range p.Models {
		only[name] = true
	}
	examples := make(map[string]any)
	literals := make(map[string]map[string]string)
	for _, m := range model.Models {
		if len(only) > 0 && !only[m.Name] {
			continue
		}
		example, ok := m.Example.(map[string]any)
		if !ok {
			logger.Debug("model has no example", "model", m.Name)
			continue
		}
		examples[m.Name] = example
		literals[m.Name] = exampledata.Literals(m, example)
	}

	if p.Literals {
		for _, name := range sortedKeys(literals) {
			fmt.Fprintf(w, "%s\n", name)
			for _, field := range sortedKeys(literals[name]) {
				fmt.Fprintf(w, "  %s = %s\n", field, literals[name][field])
			}
		}
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(examples)
}

// utility
func absPath(p string) string {
	if config.IsURL(p) || filepath.IsAbs(p) {
		return p
	}
	abs, _ := filepath.Abs(p)
	return abs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
