package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/clientgen/pkg/generrors"
)

// Config represents the complete configuration for client generation
type Config struct {
	// CodeModel is the path to the code model document. An OpenAPI 3 document
	// is accepted too and imported first.
	CodeModel string   `yaml:"codeModel"`
	Name      string   `yaml:"name"`
	// IncludeTags and ExcludeTags are regular expressions selecting the
	// operations of an imported OpenAPI document by tag. They are ignored
	// for code models.
	IncludeTags []string `yaml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags"`
	Settings    Settings `yaml:"settings"`
	Outputs     []Output `yaml:"outputs"`
}

// Output represents one emitter run over the assembled client model
type Output struct {
	// Type selects the emitter, e.g. "summary" or "dump".
	Type   string `yaml:"type"`
	OutDir string `yaml:"outDir"`
	// Format is emitter specific; the dump emitter accepts "json" and "yaml".
	Format string `yaml:"format"`
	// PreCommand is an optional command to run before the emitter starts.
	// Uses Docker Compose array format: ["mkdir", "-p", "docs"]
	// The command will be executed in the output directory.
	PreCommand []string `yaml:"preCommand"`
	// PostCommand is an optional command to run after the emitter completes.
	// The command will be executed in the output directory.
	PostCommand []string `yaml:"postCommand"`
	// ExcludeFiles is a list of file paths (relative to outDir) that should not be written
	ExcludeFiles []string `yaml:"exclude"`
}

// ShouldExcludeFile checks if a file path should be excluded based on the ExcludeFiles list.
// targetPath should be an absolute path, and the comparison is done relative to OutDir.
func (o *Output) ShouldExcludeFile(targetPath string) bool {
	if len(o.ExcludeFiles) == 0 {
		return false
	}

	relPath, err := filepath.Rel(o.OutDir, targetPath)
	if err != nil {
		// not under OutDir
		return false
	}

	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		relPath = ""
	}

	for _, excludePattern := range o.ExcludeFiles {
		normalizedExclude := filepath.ToSlash(excludePattern)

		if relPath == normalizedExclude {
			return true
		}

		// "docs/" excludes everything below docs
		normalizedExclude = strings.TrimSuffix(normalizedExclude, "/")
		if normalizedExclude != "" && strings.HasPrefix(relPath, normalizedExclude+"/") {
			return true
		}
	}

	return false
}

// Load loads configuration from a YAML file. Settings get the environment
// overlay and the defaults applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &generrors.ConfigError{Message: "cannot parse " + path, Cause: err}
	}
	if cfg.CodeModel == "" {
		return nil, &generrors.ConfigError{Option: "codeModel", Message: "is required"}
	}
	for i := range cfg.Outputs {
		o := &cfg.Outputs[i]
		if o.Type == "" || o.OutDir == "" {
			return nil, &generrors.ConfigError{
				Option:  fmt.Sprintf("outputs[%d]", i),
				Message: "missing required fields (type, outDir)",
			}
		}
		if !filepath.IsAbs(o.OutDir) {
			abs, _ := filepath.Abs(o.OutDir)
			o.OutDir = abs
		}
	}
	// Do not absolutize when the code model is an HTTP(S) URL
	if !IsURL(cfg.CodeModel) && !filepath.IsAbs(cfg.CodeModel) {
		abs, _ := filepath.Abs(cfg.CodeModel)
		cfg.CodeModel = abs
	}

	if err := cfg.Settings.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Settings.ApplyDefaults()
	if cfg.Settings.ServiceName == "" {
		cfg.Settings.ServiceName = cfg.Name
	}
	return &cfg, nil
}

// IsURL reports whether s is an HTTP(S) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
