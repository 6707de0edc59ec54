// Package dump writes the assembled client model as a single JSON or YAML
// document, for inspection and for downstream tools that render code.
package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/generrors"
)

// baseName is the file name of the dump without its extension.
const baseName = "client-model"

// Emitter implements the client model dump output
type Emitter struct{}

// New creates a new dump emitter
func New() *Emitter {
	return &Emitter{}
}

// GetType returns the emitter type identifier
func (e *Emitter) GetType() string {
	return "dump"
}

// Emit writes client-model.json, or client-model.yaml when output.Format is
// "yaml".
func (e *Emitter) Emit(output config.Output, model *clientmodel.Model) error {
	data, ext, err := Marshal(model, output.Format)
	if err != nil {
		return err
	}

	targetPath := filepath.Join(output.OutDir, baseName+ext)
	if output.ShouldExcludeFile(targetPath) {
		return nil
	}
	if err := os.MkdirAll(output.OutDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(targetPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", targetPath, err)
	}
	return nil
}

// Marshal encodes model in format ("json", the default, or "yaml") and
// returns the file extension that goes with it.
func Marshal(model *clientmodel.Model, format string) ([]byte, string, error) {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode client model: %w", err)
		}
		return append(data, '\n'), ".json", nil
	case "yaml", "yml":
		// sigs.k8s.io/yaml goes through the json tags, so both formats
		// carry the same keys.
		data, err := yaml.Marshal(model)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode client model: %w", err)
		}
		return data, ".yaml", nil
	}
	return nil, "", &generrors.ConfigError{Option: "outputs.format", Message: fmt.Sprintf("dump output does not support format %q", format)}
}
