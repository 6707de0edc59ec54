package generator

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/generator/dump"
	"github.com/blimu-dev/clientgen/pkg/generator/summary"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/logging"
)

// Emitter writes an assembled client model to an output directory
type Emitter interface {
	// Emit writes the files of model below output.OutDir
	Emit(output config.Output, model *clientmodel.Model) error
	// GetType returns the type identifier outputs select this emitter by (e.g., "summary")
	GetType() string
}

// Registry manages available emitters
type Registry struct {
	emitters map[string]Emitter
}

// NewRegistry creates a new emitter registry
func NewRegistry() *Registry {
	return &Registry{
		emitters: make(map[string]Emitter),
	}
}

// Register adds an emitter to the registry
func (r *Registry) Register(e Emitter) {
	r.emitters[e.GetType()] = e
}

// Get retrieves an emitter by type
func (r *Registry) Get(emitterType string) (Emitter, bool) {
	e, exists := r.emitters[emitterType]
	return e, exists
}

// GetAvailableTypes returns all registered emitter types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.emitters))
	for t := range r.emitters {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// GenerateOptions contains options for client generation
type GenerateOptions struct {
	ConfigPath string
	// SingleOutput runs only the outputs of this type
	SingleOutput string
	Fallback     FallbackOptions
}

// FallbackOptions contains fallback options when no config file is provided
type FallbackOptions struct {
	CodeModel   string
	Type        string
	OutDir      string
	Format      string
	PackageName string
	Name        string
	IncludeTags []string
	ExcludeTags []string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger the whole pipeline logs to.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

// Service provides high-level client generation functionality
type Service struct {
	registry *Registry
	logger   logging.Logger
}

// NewService creates a new generator service with the default emitters
func NewService(opts ...Option) *Service {
	registry := NewRegistry()
	// Register default emitters
	registry.Register(summary.New())
	registry.Register(dump.New())
	return NewServiceWithRegistry(registry, opts...)
}

// NewServiceWithRegistry creates a new generator service with a custom registry
func NewServiceWithRegistry(registry *Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate generates client outputs based on the provided options
func (s *Service) Generate(opts GenerateOptions) error {
	var cfg *config.Config
	var err error

	if opts.ConfigPath == "" {
		cfg, err = opts.Fallback.Config()
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}
	if err != nil {
		return err
	}

	return s.GenerateFromConfig(cfg, opts.SingleOutput)
}

// Config builds the single-output configuration the options describe.
// Settings get the environment overlay and the defaults applied, as
// config.Load does.
func (f FallbackOptions) Config() (*config.Config, error) {
	if f.CodeModel == "" || f.Type == "" || f.OutDir == "" {
		return nil, &generrors.ConfigError{Message: "either config path or the code model, type and output directory must be provided"}
	}
	outDir, err := filepath.Abs(f.OutDir)
	if err != nil {
		return nil, err
	}
	cfg := &config.Config{
		CodeModel:   f.CodeModel,
		Name:        f.Name,
		IncludeTags: f.IncludeTags,
		ExcludeTags: f.ExcludeTags,
		Settings:    config.Settings{PackageName: f.PackageName, ServiceName: f.Name},
		Outputs:     []config.Output{{Type: f.Type, OutDir: outDir, Format: f.Format}},
	}
	if err := cfg.Settings.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Settings.ApplyDefaults()
	return cfg, nil
}

// GenerateFromConfig builds the client model once and runs every output of
// cfg against it. A non-empty onlyType restricts the run to outputs of that type.
func (s *Service) GenerateFromConfig(cfg *config.Config, onlyType string) error {
	var outputs []config.Output
	var emitters []Emitter
	for _, out := range cfg.Outputs {
		if onlyType != "" && out.Type != onlyType {
			continue
		}
		emitter, exists := s.registry.Get(out.Type)
		if !exists {
			return &generrors.ConfigError{
				Option:  "outputs.type",
				Message: fmt.Sprintf("unsupported output type %q (available: %s)", out.Type, strings.Join(s.registry.GetAvailableTypes(), ", ")),
			}
		}
		outputs = append(outputs, out)
		emitters = append(emitters, emitter)
	}
	if len(outputs) == 0 {
		s.logger.Warn("no outputs to generate", "only", onlyType)
		return nil
	}

	model, err := Build(cfg, s.logger)
	if err != nil {
		return err
	}

	for i, out := range outputs {
		// Ensure output directory exists before pre-commands
		if err := os.MkdirAll(out.OutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory for %s output: %w", out.Type, err)
		}

		if err := s.executePreCommands(out); err != nil {
			return fmt.Errorf("pre-generation commands failed for %s output: %w", out.Type, err)
		}

		if err := emitters[i].Emit(out, model); err != nil {
			return fmt.Errorf("%s output: %w", out.Type, err)
		}

		if err := s.executePostGenCommands(out); err != nil {
			return fmt.Errorf("post-generation commands failed for %s output: %w", out.Type, err)
		}
		s.logger.Info("generated output", "type", out.Type, "outDir", out.OutDir)
	}

	return nil
}

// GetRegistry returns the emitter registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// executePreCommands executes the pre-generation command for an output
func (s *Service) executePreCommands(out config.Output) error {
	if len(out.PreCommand) == 0 {
		return nil
	}

	return s.executeCommand(out.PreCommand, out.OutDir, "pre-command")
}

// executePostGenCommands executes the post-generation command for an output
func (s *Service) executePostGenCommands(out config.Output) error {
	if len(out.PostCommand) == 0 {
		return nil
	}

	return s.executeCommand(out.PostCommand, out.OutDir, "post-command")
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmdDescription := strings.Join(command, " ")
	s.logger.Debug("running command", "label", commandLabel, "command", cmdDescription, "dir", workDir)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, cmdDescription, err)
	}

	return nil
}
