// Package assembler builds the client model of a resolved code model.
//
// Every code-model client becomes a ServiceClient whose operation groups
// become method groups. Each operation yields a proxy method and the method
// variants the visibility policy allows. Data-plane operations with a
// convenience API also get convenience methods, paired with the protocol
// methods they call. Finally the public async and sync wrapper clients are
// named, and class names that would not fit the path budget are truncated.
package assembler

import (
	"fmt"
	"path"
	"strconv"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/logging"
	"github.com/blimu-dev/clientgen/pkg/mapper"
	"github.com/blimu-dev/clientgen/pkg/naming"
	"github.com/blimu-dev/clientgen/pkg/resolver"
)

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Assembler) { a.logger = logging.OrNop(l) }
}

// WithSettings sets the generation settings.
func WithSettings(s config.Settings) Option {
	return func(a *Assembler) { a.settings = s }
}

// WithMapper sets the schema mapper. By default the Assembler creates one
// with its own settings and logger.
func WithMapper(m *mapper.Mapper) Option {
	return func(a *Assembler) { a.mapper = m }
}

// WithResolver sets the resolver whose predicates the Assembler consults.
func WithResolver(r *resolver.Resolver) Option {
	return func(a *Assembler) { a.resolver = r }
}

// Assembler turns a resolved code model into a client model.
type Assembler struct {
	settings config.Settings
	logger   logging.Logger
	mapper   *mapper.Mapper
	resolver *resolver.Resolver
}

// New returns an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		settings: config.Defaults(),
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.mapper == nil {
		a.mapper = mapper.New(mapper.WithSettings(a.settings), mapper.WithLogger(a.logger))
	}
	if a.resolver == nil {
		a.resolver = resolver.New(resolver.WithSettings(a.settings), resolver.WithLogger(a.logger))
	}
	return a
}

// Mapper returns the schema mapper the Assembler maps types with.
func (a *Assembler) Mapper() *mapper.Mapper { return a.mapper }

// run is the state of one Assemble call.
type run struct {
	*Assembler
	cm     *codemodel.CodeModel
	model  *clientmodel.Model
	groups map[*codemodel.OperationGroup]*clientmodel.MethodGroupClient
	enums  []*clientmodel.EnumType
	// classDir is the directory generated class files land in, for the
	// path budget.
	classDir string
	// classes maps each issued class name to the name it was derived from.
	classes map[string]string
}

// Assemble builds the client model of cm. cm is expected to be resolved
// already; Assemble does not modify it.
func (a *Assembler) Assemble(cm *codemodel.CodeModel) (*clientmodel.Model, error) {
	if cm.Schemas == nil {
		cm.Schemas = codemodel.NewSchemas()
	}
	if err := a.mapper.MapAll(cm.Schemas); err != nil {
		return nil, fmt.Errorf("mapping schemas: %w", err)
	}

	r := &run{
		Assembler: a,
		cm:        cm,
		groups:    make(map[*codemodel.OperationGroup]*clientmodel.MethodGroupClient),
		classes:   make(map[string]string),
		classDir:  path.Join(a.settings.SDKOutputDir, path.Base(a.settings.PackageName)),
		model: &clientmodel.Model{
			Name:        a.serviceName(cm),
			Package:     a.settings.PackageName,
			Description: codemodel.MergeSummaryWithDescription(cm.Info.Description, cm.Language.Description()),
		},
	}
	for _, c := range cm.Clients {
		sc, err := r.serviceClient(c)
		if err != nil {
			return nil, err
		}
		r.model.Clients = append(r.model.Clients, sc)
	}

	r.model.Models = a.mapper.Registry().Models()
	r.model.Enums = append(a.mapper.Enums(), r.enums...)
	if a.settings.GenerateExamples {
		if err := r.examples(); err != nil {
			return nil, err
		}
	}
	a.logger.Debug("assembled client model",
		"clients", len(r.model.Clients), "models", len(r.model.Models), "enums", len(r.model.Enums))
	return r.model, nil
}

// serviceName is the configured service name, else the name of the code
// model, else its title.
func (a *Assembler) serviceName(cm *codemodel.CodeModel) string {
	for _, name := range []string{a.settings.ServiceName, cm.Language.For(a.settings.TargetLanguage).Name, cm.Info.Title} {
		if id := naming.GoIdentifier(name); id != "" {
			return id
		}
	}
	return "Service"
}

// clientName returns the target-language name of l.
func (a *Assembler) clientName(l codemodel.Languages) string {
	return l.For(a.settings.TargetLanguage).Name
}

// className returns name, truncated when its file would not fit the path
// budget. Truncations are recorded on the model.
func (r *run) className(name string) string {
	short, truncated := r.settings.PathBudget().Truncate(r.classDir, name, ".go")
	if !truncated {
		r.classes[name] = name
		return name
	}
	short = r.unique(short, name)
	r.logger.Debug("truncated class name to fit the path budget", "class", name, "to", short)
	if r.model.Truncated == nil {
		r.model.Truncated = make(map[string]string)
	}
	r.model.Truncated[short] = name
	return short
}

// unique returns short, or short with its tail replaced by a counter when
// short is already the class name of another name.
func (r *run) unique(short, name string) string {
	candidate := short
	for n := 2; ; n++ {
		if owner, taken := r.classes[candidate]; !taken || owner == name {
			r.classes[candidate] = name
			return candidate
		}
		suffix := strconv.Itoa(n)
		if len(suffix) < len(short) {
			candidate = short[:len(short)-len(suffix)] + suffix
		} else {
			candidate = short + suffix
		}
	}
}
