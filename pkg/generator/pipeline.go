package generator

import (
	"fmt"
	"os"

	"github.com/blimu-dev/clientgen/pkg/assembler"
	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/logging"
	"github.com/blimu-dev/clientgen/pkg/openapi"
	"github.com/blimu-dev/clientgen/pkg/resolver"
)

// Build loads the code model named by cfg, resolves it and assembles the
// client model.
func Build(cfg *config.Config, logger logging.Logger) (*clientmodel.Model, error) {
	logger = logging.OrNop(logger)
	cm, err := LoadCodeModel(cfg, logger)
	if err != nil {
		return nil, err
	}

	res := resolver.New(resolver.WithSettings(cfg.Settings), resolver.WithLogger(logger))
	if err := res.Resolve(cm); err != nil {
		return nil, fmt.Errorf("resolving code model: %w", err)
	}

	asm := assembler.New(
		assembler.WithSettings(cfg.Settings),
		assembler.WithLogger(logger),
		assembler.WithResolver(res),
	)
	return asm.Assemble(cm)
}

// LoadCodeModel reads cfg.CodeModel. OpenAPI 3 documents, local or remote,
// are imported with the tag filters of cfg; anything else is decoded as a
// code model.
func LoadCodeModel(cfg *config.Config, logger logging.Logger) (*codemodel.CodeModel, error) {
	logger = logging.OrNop(logger)
	if config.IsURL(cfg.CodeModel) {
		return importOpenAPI(cfg, logger)
	}

	data, err := os.ReadFile(cfg.CodeModel)
	if err != nil {
		return nil, fmt.Errorf("failed to read code model: %w", err)
	}
	if openapi.IsDocument(data) {
		return importOpenAPI(cfg, logger)
	}
	return codemodel.Parse(data, codemodel.WithSourceName(cfg.CodeModel), codemodel.WithLogger(logger))
}

func importOpenAPI(cfg *config.Config, logger logging.Logger) (*codemodel.CodeModel, error) {
	doc, err := openapi.LoadDocument(cfg.CodeModel)
	if err != nil {
		return nil, err
	}
	opts := []openapi.Option{
		openapi.WithLogger(logger),
		openapi.WithIncludeTags(cfg.IncludeTags...),
		openapi.WithExcludeTags(cfg.ExcludeTags...),
	}
	if cfg.Name != "" {
		opts = append(opts, openapi.WithClientName(cfg.Name))
	}
	logger.Debug("importing OpenAPI document", "source", cfg.CodeModel)
	return openapi.NewImporter(opts...).Import(doc)
}
