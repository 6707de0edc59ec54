package assembler

import (
	"errors"
	"fmt"

	"github.com/blimu-dev/clientgen/pkg/exampledata"
	"github.com/blimu-dev/clientgen/pkg/generrors"
)

// examples attaches a seeded JSON example to every model. Models whose
// example would carry a credential-like property get none.
func (r *run) examples() error {
	gen := exampledata.New(r.mapper.Registry(),
		exampledata.WithSeed(r.settings.ExampleSeed),
		exampledata.WithLogger(r.logger))

	for _, m := range r.model.Models {
		example, err := gen.ModelJSON(m)
		var credErr *generrors.CredentialError
		switch {
		case errors.As(err, &credErr):
			r.logger.Debug("skipping example of model with a possible credential", "model", m.Name, "property", credErr.Name)
			continue
		case err != nil:
			return fmt.Errorf("example of %s: %w", m.Name, err)
		}
		m.Example = example
	}
	return nil
}
