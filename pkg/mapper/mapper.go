// Package mapper translates schema graph nodes into client model types.
//
// Mapping is memoized by schema identity: mapping one node twice returns the
// very same clientmodel.Type, and every object schema yields exactly one
// ClientModel. Two nodes with equal fields are still mapped separately.
package mapper

import (
	"fmt"
	"sync"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/convert"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/logging"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Mapper) { m.logger = logging.OrNop(l) }
}

// WithSettings sets the generation settings.
func WithSettings(s config.Settings) Option {
	return func(m *Mapper) { m.settings = s }
}

// WithRegistry sets the registry models are added to. By default the Mapper
// creates its own.
func WithRegistry(r *clientmodel.Registry) Option {
	return func(m *Mapper) { m.registry = r }
}

// Mapper maps schemas to client types. It is safe for concurrent use; the
// cache is filled under a single lock so that a node is only mapped once.
type Mapper struct {
	settings config.Settings
	logger   logging.Logger
	registry *clientmodel.Registry

	mu     sync.Mutex
	types  map[codemodel.Schema]clientmodel.Type
	models map[*codemodel.ObjectSchema]*clientmodel.ClientModel
	enums  []*clientmodel.EnumType
}

// New returns a Mapper.
func New(opts ...Option) *Mapper {
	m := &Mapper{
		settings: config.Defaults(),
		logger:   logging.NopLogger{},
		types:    make(map[codemodel.Schema]clientmodel.Type),
		models:   make(map[*codemodel.ObjectSchema]*clientmodel.ClientModel),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = clientmodel.NewRegistry()
	}
	return m
}

// Registry returns the registry holding the mapped models.
func (m *Mapper) Registry() *clientmodel.Registry { return m.registry }

// Settings returns the settings the mapper applies.
func (m *Mapper) Settings() config.Settings { return m.settings }

// MapSchema returns the client type of s. A nil schema maps to Void.
func (m *Mapper) MapSchema(s codemodel.Schema) (clientmodel.Type, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mapSchema(s)
}

// MapAll maps every schema of the registry in bucket order, so models and
// enums come out in a stable order.
func (m *Mapper) MapAll(schemas *codemodel.Schemas) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range schemas.All() {
		if _, err := m.mapSchema(s); err != nil {
			return fmt.Errorf("schema %s: %w", codemodel.SchemaName(s), err)
		}
	}
	return nil
}

// Enums returns the enums mapped so far, in mapping order.
func (m *Mapper) Enums() []*clientmodel.EnumType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*clientmodel.EnumType(nil), m.enums...)
}

func (m *Mapper) mapSchema(s codemodel.Schema) (clientmodel.Type, error) {
	if s == nil {
		return clientmodel.Void, nil
	}
	if t, ok := m.types[s]; ok {
		return t, nil
	}

	var (
		t   clientmodel.Type
		err error
	)
	switch v := s.(type) {
	case *codemodel.PrimitiveSchema:
		t, err = m.primitive(v)
	case *codemodel.ArraySchema:
		t, err = m.array(v)
	case *codemodel.DictionarySchema:
		t, err = m.dictionary(v)
	case *codemodel.ChoiceSchema:
		t, err = m.choice(v)
	case *codemodel.FlagSchema:
		t = m.flag(v)
	case *codemodel.ConstantSchema:
		t, err = m.mapSchema(v.ValueType)
	case *codemodel.ObjectSchema:
		// the reference is cached before the model is built, so
		// self-referencing objects terminate
		ref := &clientmodel.ModelType{
			Name:        m.typeName(&v.SchemaBase),
			Package:     m.settings.PackageName,
			Polymorphic: isPolymorphicBase(v),
		}
		m.types[s] = ref
		if _, err := m.model(v); err != nil {
			delete(m.types, s)
			return nil, err
		}
		return ref, nil
	case *codemodel.ParameterGroupSchema:
		t = &clientmodel.ModelType{Name: m.typeName(&v.SchemaBase), Package: m.settings.PackageName}
	case *codemodel.CompositeSchema:
		t = clientmodel.Any
	case *codemodel.GenericSchema:
		return nil, &generrors.UnknownValueError{Vocabulary: "schema type", Value: v.RawType, Path: v.Name()}
	default:
		return nil, &generrors.UnknownValueError{Vocabulary: "schema type", Value: fmt.Sprintf("%T", s)}
	}
	if err != nil {
		return nil, err
	}
	m.types[s] = t
	return t, nil
}

func (m *Mapper) primitive(p *codemodel.PrimitiveSchema) (clientmodel.Type, error) {
	if enc := convert.EncodingFor(string(p.Type), p.Format); enc != convert.EncodingNone {
		return converted(enc), nil
	}
	switch p.Type {
	case codemodel.SchemaTypeAny, codemodel.SchemaTypeUnknown:
		return clientmodel.Any, nil
	case codemodel.SchemaTypeAnyObject:
		return clientmodel.AnyObject, nil
	case codemodel.SchemaTypeBoolean:
		return clientmodel.Bool, nil
	case codemodel.SchemaTypeInteger:
		if p.Precision == 64 {
			return clientmodel.Int64, nil
		}
		return clientmodel.Int32, nil
	case codemodel.SchemaTypeNumber:
		switch {
		case p.Format == "decimal":
			return clientmodel.Decimal, nil
		case p.Precision == 32:
			return clientmodel.Float32, nil
		}
		return clientmodel.Float64, nil
	case codemodel.SchemaTypeString, codemodel.SchemaTypeURI, codemodel.SchemaTypeArmID,
		codemodel.SchemaTypeODataQuery, codemodel.SchemaTypeCredential, codemodel.SchemaTypeTime:
		return clientmodel.String, nil
	case codemodel.SchemaTypeChar:
		return clientmodel.Rune, nil
	case codemodel.SchemaTypeUUID:
		return clientmodel.UUID, nil
	case codemodel.SchemaTypeDate, codemodel.SchemaTypeDateTime:
		return clientmodel.Time, nil
	case codemodel.SchemaTypeByteArray:
		return clientmodel.Bytes, nil
	case codemodel.SchemaTypeBinary:
		return clientmodel.ReadCloser, nil
	}
	return nil, &generrors.UnknownValueError{Vocabulary: "primitive schema type", Value: string(p.Type), Path: p.Name()}
}

// converted returns the client type of an encoded primitive.
func converted(enc convert.Encoding) *clientmodel.ConvertedType {
	t := &clientmodel.ConvertedType{Encoding: enc}
	switch enc.ClientType() {
	case "time.Duration":
		t.Client = clientmodel.Duration
	case "time.Time":
		t.Client = clientmodel.Time
	default:
		t.Client = clientmodel.Bytes
	}
	switch enc.WireType() {
	case "int32":
		t.Wire = clientmodel.Int32
	case "int64":
		t.Wire = clientmodel.Int64
	case "float64":
		t.Wire = clientmodel.Float64
	default:
		t.Wire = clientmodel.String
	}
	return t
}

func (m *Mapper) array(a *codemodel.ArraySchema) (clientmodel.Type, error) {
	elem, err := m.mapSchema(a.ElementType)
	if err != nil {
		return nil, err
	}
	if a.NullableItems {
		elem = clientmodel.Optional(elem)
	}
	return &clientmodel.ListType{Elem: elem}, nil
}

func (m *Mapper) dictionary(d *codemodel.DictionarySchema) (clientmodel.Type, error) {
	elem, err := m.mapSchema(d.ElementType)
	if err != nil {
		return nil, err
	}
	if d.NullableItems {
		elem = clientmodel.Optional(elem)
	}
	return &clientmodel.MapType{Elem: elem}, nil
}

func (m *Mapper) choice(c *codemodel.ChoiceSchema) (clientmodel.Type, error) {
	elem, err := m.mapSchema(c.ChoiceType)
	if err != nil {
		return nil, err
	}
	e := &clientmodel.EnumType{
		Name:        m.typeName(&c.SchemaBase),
		Package:     m.settings.PackageName,
		Description: m.description(&c.SchemaBase),
		ElementType: elem,
		Expandable:  !c.Sealed(),
	}
	for _, v := range c.Choices {
		name := v.Language.For(m.settings.TargetLanguage).Name
		if name == "" {
			name = fmt.Sprint(v.Value)
		}
		e.Values = append(e.Values, &clientmodel.EnumValue{
			Name:        naming.EnumMemberName(e.Name, name),
			Value:       fmt.Sprint(v.Value),
			Description: v.Description,
		})
	}
	m.enums = append(m.enums, e)
	return e, nil
}

func (m *Mapper) flag(f *codemodel.FlagSchema) clientmodel.Type {
	e := &clientmodel.EnumType{
		Name:        m.typeName(&f.SchemaBase),
		Package:     m.settings.PackageName,
		Description: m.description(&f.SchemaBase),
		ElementType: clientmodel.Int32,
		Flag:        true,
	}
	for _, v := range f.Choices {
		e.Values = append(e.Values, &clientmodel.EnumValue{
			Name:  naming.EnumMemberName(e.Name, v.Language.For(m.settings.TargetLanguage).Name),
			Value: fmt.Sprint(v.Value),
		})
	}
	m.enums = append(m.enums, e)
	return e
}

// TypeName returns the Go type name generated for a named schema.
func (m *Mapper) TypeName(s codemodel.Schema) string {
	return m.typeName(s.Base())
}

func (m *Mapper) typeName(b *codemodel.SchemaBase) string {
	return m.settings.ClientTypePrefix + naming.GoIdentifier(b.Language.For(m.settings.TargetLanguage).Name)
}

func (m *Mapper) description(b *codemodel.SchemaBase) string {
	lang := b.Language.For(m.settings.TargetLanguage)
	summary := b.Summary
	if summary == "" {
		summary = lang.Summary
	}
	return codemodel.MergeSummaryWithDescription(summary, lang.Description)
}

// isPolymorphicBase reports whether references to o are interfaces: o is in
// a discriminated hierarchy and has subtypes.
func isPolymorphicBase(o *codemodel.ObjectSchema) bool {
	return o.IsPolymorphic() && o.Children != nil && len(o.Children.Immediate) > 0
}
