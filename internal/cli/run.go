package cli

import (
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/generator"
	"github.com/blimu-dev/clientgen/pkg/logging"
)

type FallbackParams struct {
	CodeModel   string
	Type        string
	OutDir      string
	Format      string
	PackageName string
	Name        string
	IncludeTags []string
	ExcludeTags []string
}

type RunGenerateParams struct {
	ConfigPath   string
	SingleOutput string
	// Options is a JSON object overlaid on the settings, e.g.
	// {"isDataPlaneClient": true}.
	Options  string
	Fallback FallbackParams
}

func RunValidate(input string, logger logging.Logger) error {
	if err := generator.ValidateCodeModel(input); err != nil {
		return err
	}
	logger.Info("code model is valid", "input", input)
	return nil
}

func RunGenerate(p RunGenerateParams, logger logging.Logger) error {
	var cfg *config.Config
	var err error
	if p.ConfigPath == "" {
		cfg, err = generator.FallbackOptions{
			CodeModel:   p.Fallback.CodeModel,
			Type:        p.Fallback.Type,
			OutDir:      p.Fallback.OutDir,
			Format:      p.Fallback.Format,
			PackageName: p.Fallback.PackageName,
			Name:        p.Fallback.Name,
			IncludeTags: p.Fallback.IncludeTags,
			ExcludeTags: p.Fallback.ExcludeTags,
		}.Config()
	} else {
		cfg, err = config.Load(p.ConfigPath)
	}
	if err != nil {
		return err
	}
	if err := applyOptions(cfg, p.Options, logger); err != nil {
		return err
	}

	return generator.NewService(generator.WithLogger(logger)).GenerateFromConfig(cfg, p.SingleOutput)
}

// applyOptions overlays JSON options on the settings of cfg. Unknown keys
// are logged and otherwise ignored.
func applyOptions(cfg *config.Config, options string, logger logging.Logger) error {
	unknown, err := cfg.Settings.ParseOptions([]byte(options))
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(unknown) {
		logger.Warn("ignoring unknown option", "option", key)
	}
	return nil
}
