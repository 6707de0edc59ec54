package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/imdario/mergo"
	"github.com/mitchellh/copystructure"
	"github.com/perimeterx/marshmallow"

	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

// EnvPrefix prefixes every environment variable read into Settings.
const EnvPrefix = "CLIENTGEN_"

// Settings are the generation policies read by the mapper and assembler.
//
// Options that default to true are pointers, so an explicit false in YAML,
// JSON options or the environment survives ApplyDefaults.
type Settings struct {
	DataPlaneClient                  bool  `yaml:"isDataPlaneClient" json:"isDataPlaneClient" env:"DATA_PLANE"`
	GenerateSyncMethods              *bool `yaml:"isGenerateSyncMethods" json:"isGenerateSyncMethods" env:"GENERATE_SYNC_METHODS"`
	GenerateAsyncMethods             *bool `yaml:"isGenerateAsyncMethods" json:"isGenerateAsyncMethods" env:"GENERATE_ASYNC_METHODS"`
	Fluent                           bool  `yaml:"isFluent" json:"isFluent" env:"FLUENT"`
	RequiredFieldsAsConstructorArgs  *bool `yaml:"isRequiredFieldsAsConstructorArgs" json:"isRequiredFieldsAsConstructorArgs" env:"REQUIRED_FIELDS_AS_CTOR_ARGS"`
	IncludeReadOnlyInConstructorArgs bool  `yaml:"isIncludeReadOnlyInConstructorArgs" json:"isIncludeReadOnlyInConstructorArgs" env:"INCLUDE_READ_ONLY_IN_CTOR_ARGS"`

	ServiceName      string `yaml:"serviceName" json:"serviceName" env:"SERVICE_NAME"`
	PackageName      string `yaml:"packageName" json:"packageName" env:"PACKAGE_NAME"`
	ClientTypePrefix string `yaml:"clientTypePrefix" json:"clientTypePrefix" env:"CLIENT_TYPE_PREFIX"`
	// TargetLanguage selects the language overlay of the code model.
	TargetLanguage string `yaml:"targetLanguage" json:"targetLanguage" env:"TARGET_LANGUAGE"`

	SDKOutputDir       string `yaml:"sdkOutputDir" json:"sdkOutputDir" env:"SDK_OUTPUT_DIR"`
	MaxPathLength      int    `yaml:"maxPathLength" json:"maxPathLength" env:"MAX_PATH_LENGTH"`
	MinClassNameLength int    `yaml:"minClassNameLength" json:"minClassNameLength" env:"MIN_CLASS_NAME_LENGTH"`

	GenerateExamples bool  `yaml:"generateExamples" json:"generateExamples" env:"GENERATE_EXAMPLES"`
	ExampleSeed      int64 `yaml:"exampleSeed" json:"exampleSeed" env:"EXAMPLE_SEED"`
}

func boolPtr(b bool) *bool { return &b }

// Defaults returns the default settings.
func Defaults() Settings {
	return Settings{
		GenerateSyncMethods:             boolPtr(true),
		GenerateAsyncMethods:            boolPtr(true),
		RequiredFieldsAsConstructorArgs: boolPtr(true),
		TargetLanguage:                  "go",
		MaxPathLength:                   naming.DefaultMaxPathLength,
		MinClassNameLength:              naming.DefaultMinClassNameLength,
	}
}

// ApplyDefaults fills every unset option from Defaults.
func (s *Settings) ApplyDefaults() {
	// both sides are Settings, so Merge cannot fail
	_ = mergo.Merge(s, Defaults())
}

// ApplyEnv overrides options from CLIENTGEN_* environment variables.
// Unset variables leave the option alone.
func (s *Settings) ApplyEnv() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return &generrors.ConfigError{Message: "environment", Cause: err}
	}
	return nil
}

// ParseOptions overlays JSON-encoded options on s, e.g. from --options. It
// returns the keys it did not recognize, so the caller can report them.
func (s *Settings) ParseOptions(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	unknown, err := marshmallow.Unmarshal(data, s, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return nil, &generrors.ConfigError{Option: "options", Message: "invalid JSON options", Cause: err}
	}
	return unknown, nil
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	c, err := copystructure.Copy(s)
	if err != nil {
		panic(fmt.Sprintf("config: copying settings: %v", err))
	}
	return c.(Settings)
}

// IsDataPlaneClient reports whether data-plane policies apply.
func (s Settings) IsDataPlaneClient() bool { return s.DataPlaneClient }

// IsGenerateSyncMethods reports whether sync method variants are generated.
func (s Settings) IsGenerateSyncMethods() bool { return isTrue(s.GenerateSyncMethods, true) }

// IsGenerateAsyncMethods reports whether async method variants are generated.
func (s Settings) IsGenerateAsyncMethods() bool { return isTrue(s.GenerateAsyncMethods, true) }

// IsFluent reports whether the fluent (management plane) style is on.
func (s Settings) IsFluent() bool { return s.Fluent }

// IsRequiredFieldsAsConstructorArgs reports whether required properties
// become constructor arguments.
func (s Settings) IsRequiredFieldsAsConstructorArgs() bool {
	return isTrue(s.RequiredFieldsAsConstructorArgs, true)
}

// IsIncludeReadOnlyInConstructorArgs reports whether required read-only
// properties are constructor arguments as well.
func (s Settings) IsIncludeReadOnlyInConstructorArgs() bool {
	return s.IncludeReadOnlyInConstructorArgs
}

// PathBudget returns the class name truncation budget.
func (s Settings) PathBudget() naming.PathBudget {
	return naming.PathBudget{MaxPathLength: s.MaxPathLength, MinClassNameLength: s.MinClassNameLength}
}

func isTrue(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
