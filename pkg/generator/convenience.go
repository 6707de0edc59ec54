package generator

import (
	"fmt"
	"os"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/openapi"
	"github.com/blimu-dev/clientgen/pkg/resolver"
)

// GenerateClients is a convenience function for generating with minimal configuration
func GenerateClients(opts GenerateClientsOptions) error {
	service := NewService()

	genOpts := GenerateOptions{
		ConfigPath:   opts.ConfigPath,
		SingleOutput: opts.SingleOutput,
		Fallback: FallbackOptions{
			CodeModel:   opts.CodeModel,
			Type:        opts.Type,
			OutDir:      opts.OutDir,
			Format:      opts.Format,
			PackageName: opts.PackageName,
			Name:        opts.Name,
			IncludeTags: opts.IncludeTags,
			ExcludeTags: opts.ExcludeTags,
		},
	}

	return service.Generate(genOpts)
}

// GenerateClientsOptions contains options for the convenience GenerateClients function
type GenerateClientsOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleOutput runs only the outputs of this type (optional)
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

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(configPath string, singleOutput ...string) error {
	service := NewService()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	onlyType := ""
	if len(singleOutput) > 0 {
		onlyType = singleOutput[0]
	}

	return service.GenerateFromConfig(cfg, onlyType)
}

// ValidateCodeModel checks that a code model decodes and resolves. OpenAPI
// documents are validated against the OpenAPI 3 schema instead.
func ValidateCodeModel(path string) error {
	if config.IsURL(path) {
		return openapi.ValidateDocument(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read code model: %w", err)
	}
	if openapi.IsDocument(data) {
		return openapi.ValidateDocument(path)
	}
	cm, err := codemodel.Parse(data, codemodel.WithSourceName(path))
	if err != nil {
		return err
	}
	return resolver.New().Resolve(cm)
}

// ImportOpenAPI loads the OpenAPI document at path, a file or URL, and
// imports it as a code model.
func ImportOpenAPI(path string, opts ...openapi.Option) (*codemodel.CodeModel, error) {
	doc, err := openapi.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return openapi.NewImporter(opts...).Import(doc)
}
