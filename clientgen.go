// Package clientgen turns REST API descriptions into client models: the
// clients, method groups, methods, models and enums a Go client library
// for the API consists of.
//
// The input is a code model document, or an OpenAPI 3 document which is
// imported into a code model first. The pipeline resolves the operations of
// the code model, maps its schemas to Go types and assembles the client
// model, which the configured outputs then render.
//
// Quick Start:
//
//	import "github.com/blimu-dev/clientgen"
//
//	// Write a markdown summary of the generated client
//	err := clientgen.Generate(clientgen.Options{
//		CodeModel:   "./openapi.yaml",
//		Type:        "summary",
//		OutDir:      "./docs",
//		PackageName: "github.com/acme/petstore",
//	})
//
// For more advanced usage, see the generator package.
package clientgen

import (
	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/generator"
	"github.com/blimu-dev/clientgen/pkg/openapi"
)

// Generate builds the client model and runs the outputs the options
// describe, either from a configuration file or from the single-output
// fallback options.
//
// Example:
//
//	err := clientgen.Generate(clientgen.Options{
//		CodeModel:   "./openapi.yaml",
//		Type:        "dump",
//		Format:      "yaml",
//		OutDir:      "./out",
//		PackageName: "github.com/acme/petstore",
//		IncludeTags: []string{"pets", "owners"},
//		ExcludeTags: []string{"internal"},
//	})
func Generate(opts Options) error {
	return generator.GenerateClients(generator.GenerateClientsOptions{
		ConfigPath:   opts.ConfigPath,
		SingleOutput: opts.SingleOutput,
		CodeModel:    opts.CodeModel,
		Type:         opts.Type,
		OutDir:       opts.OutDir,
		Format:       opts.Format,
		PackageName:  opts.PackageName,
		Name:         opts.Name,
		IncludeTags:  opts.IncludeTags,
		ExcludeTags:  opts.ExcludeTags,
	})
}

// GenerateFromConfig runs the outputs of a YAML configuration file.
// Optionally, you can name an output type to run only those outputs.
//
// Example:
//
//	// Run every output
//	err := clientgen.GenerateFromConfig("./clientgen.yaml")
//
//	// Run only the summary outputs
//	err := clientgen.GenerateFromConfig("./clientgen.yaml", "summary")
func GenerateFromConfig(configPath string, singleOutput ...string) error {
	return generator.GenerateFromConfig(configPath, singleOutput...)
}

// Build loads the configuration file and returns the assembled client model
// without running any output.
func Build(configPath string) (*clientmodel.Model, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return generator.Build(cfg, nil)
}

// ValidateCodeModel checks a code model or OpenAPI document.
// This is useful for checking an input before attempting to generate from it.
//
// Example:
//
//	err := clientgen.ValidateCodeModel("./code-model.yaml")
//	if err != nil {
//		log.Fatalf("Invalid code model: %v", err)
//	}
func ValidateCodeModel(path string) error {
	return generator.ValidateCodeModel(path)
}

// ImportOpenAPI imports the OpenAPI document at path, a file or an HTTP(S)
// URL, as a code model.
func ImportOpenAPI(path string, opts ...openapi.Option) (*codemodel.CodeModel, error) {
	return generator.ImportOpenAPI(path, opts...)
}

// Options contains options for Generate
type Options struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleOutput runs only the outputs of this type from config (optional)
	SingleOutput string

	// Fallback options when no config file is provided
	CodeModel   string   // Code model or OpenAPI document, file or URL
	Type        string   // Output type (e.g., "summary")
	OutDir      string   // Output directory
	Format      string   // Output format, emitter specific
	PackageName string   // Package name of the generated client
	Name        string   // Service name
	IncludeTags []string // Regex patterns for tags to include
	ExcludeTags []string // Regex patterns for tags to exclude
}
