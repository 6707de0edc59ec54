// Package resolver normalizes the operations of a code model before client
// assembly. Resolve rewrites the model in place:
//
//   - operation-level parameters are merged into every request
//   - binary request bodies get a Content-Length header (non data-plane only)
//   - OData query parameters get idiomatic client names
//   - colliding parameter names are de-duplicated
//   - groupedBy/originalParameter chains are checked for cycles
//   - request variants are merged by content type into a single request
//   - pageable operations get a synthesized next-page operation
//   - schemas reached through client-flattened properties are marked
//
// Every pass is idempotent, so resolving a model twice is harmless.
package resolver

import (
	"fmt"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/logging"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Resolver) { r.logger = logging.OrNop(l) }
}

// WithSettings sets the generation settings.
func WithSettings(s config.Settings) Option {
	return func(r *Resolver) { r.settings = s }
}

// Resolver runs the normalization passes.
type Resolver struct {
	settings config.Settings
	logger   logging.Logger
}

// New returns a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		settings: config.Defaults(),
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run holds the state of one Resolve call: the schema registry synthesized
// nodes are added to, and the shared primitive schemas they use.
type run struct {
	*Resolver
	schemas *codemodel.Schemas
	int64s  *codemodel.PrimitiveSchema
	strs    *codemodel.PrimitiveSchema
}

// Resolve normalizes cm in place. The first error aborts the run.
func (r *Resolver) Resolve(cm *codemodel.CodeModel) error {
	if cm.Schemas == nil {
		cm.Schemas = codemodel.NewSchemas()
	}
	rn := &run{Resolver: r, schemas: cm.Schemas}
	for _, c := range cm.Clients {
		if err := rn.client(c); err != nil {
			return err
		}
	}
	rn.markFlattenedSchemas()
	return nil
}

func (rn *run) client(c *codemodel.Client) error {
	for _, g := range c.OperationGroups {
		var pageable []*codemodel.Operation
		for _, op := range g.Operations {
			if op.Group == nil {
				op.Group = g
			}
			if err := rn.operation(op); err != nil {
				return fmt.Errorf("client %s: %w", c.Name(), err)
			}
			if op.IsPageable() {
				pageable = append(pageable, op)
			}
		}
		for _, op := range pageable {
			rn.addNextOperation(c, g, op)
		}
	}
	for _, sub := range c.SubClients {
		if err := rn.client(sub); err != nil {
			return err
		}
	}
	return nil
}

func (rn *run) operation(op *codemodel.Operation) error {
	for _, req := range op.Requests {
		mergeOperationParameters(op, req)
		contentTypeAsHeader(req)
		if !rn.settings.IsDataPlaneClient() {
			rn.addContentLength(req)
		}
		rn.renameODataParameters(req)
		rn.deduplicateParameterNames(req)
	}
	if err := checkGroupingCycles(op); err != nil {
		return err
	}
	rn.mergeRequestsByContentType(op)
	return nil
}

// int64Schema returns the int64 schema synthesized headers use, registering
// it on first use.
func (rn *run) int64Schema() *codemodel.PrimitiveSchema {
	if rn.int64s == nil {
		rn.int64s = &codemodel.PrimitiveSchema{
			SchemaBase: codemodel.SchemaBase{Type: codemodel.SchemaTypeInteger, Language: codemodel.NewLanguages("Int64", "")},
			Precision:  64,
		}
		rn.schemas.Add("numbers", rn.int64s)
	}
	return rn.int64s
}

// stringSchema returns the string schema synthesized parameters use.
func (rn *run) stringSchema() *codemodel.PrimitiveSchema {
	if rn.strs == nil {
		rn.strs = &codemodel.PrimitiveSchema{
			SchemaBase: codemodel.SchemaBase{Type: codemodel.SchemaTypeString, Language: codemodel.NewLanguages("String", "")},
		}
		rn.schemas.Add("strings", rn.strs)
	}
	return rn.strs
}

// clientName returns the name of v in the target language.
func (r *Resolver) clientName(l codemodel.Languages) string {
	return l.For(r.settings.TargetLanguage).Name
}

// setClientName renames v for the target language only, leaving the default
// entry and other overlays untouched.
func (r *Resolver) setClientName(l *codemodel.Languages, name string) {
	target := r.settings.TargetLanguage
	if target == "" || target == codemodel.DefaultLanguage {
		if l.Default == nil {
			l.Default = &codemodel.Language{}
		}
		l.Default.Name = name
		return
	}
	if l.Overlays == nil {
		l.Overlays = make(map[string]*codemodel.Language)
	}
	overlay, ok := l.Overlays[target]
	if !ok || overlay == nil {
		overlay = &codemodel.Language{}
		l.Overlays[target] = overlay
	}
	overlay.Name = name
}
