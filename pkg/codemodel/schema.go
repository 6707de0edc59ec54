package codemodel

// Schema is a node of the schema graph. The set of implementations is closed:
//
//	*PrimitiveSchema      any, any-object, boolean, integer, number, string, char, date,
//	                      date-time, duration, uuid, uri, binary, byte-array, unixtime,
//	                      arm-id, odata-query, credential, time
//	*ArraySchema          array
//	*DictionarySchema     dictionary
//	*ChoiceSchema         choice, sealed-choice
//	*FlagSchema           flag
//	*ConstantSchema       constant
//	*ObjectSchema         object, group
//	*CompositeSchema      and, or, xor, not
//	*ParameterGroupSchema parameter-group
//	*GenericSchema        any tag the loader could not classify
//
// Schemas are compared by identity. Two nodes with equal fields are still
// different schemas unless they are the same pointer.
type Schema interface {
	// Base returns the fields shared by every schema kind.
	Base() *SchemaBase
	sealed()
}

// SchemaBase holds the fields common to every schema.
type SchemaBase struct {
	Type         SchemaType
	Key          string
	UID          string
	Summary      string
	Description  string
	DefaultValue any
	Example      any
	Usage        []SchemaContext
	APIVersions  []APIVersion
	Deprecated   *Deprecation
	Language     Languages
	Extensions   *Extensions
}

// Base implements Schema.
func (b *SchemaBase) Base() *SchemaBase { return b }

// Name returns the default-language name of the schema.
func (b *SchemaBase) Name() string { return b.Language.Name() }

// HasUsage reports whether the schema is used in context c.
func (b *SchemaBase) HasUsage(c SchemaContext) bool {
	for _, u := range b.Usage {
		if u == c {
			return true
		}
	}
	return false
}

// Deprecation carries deprecation info of a schema or operation.
type Deprecation struct {
	Message string
}

// APIVersion is an api version a node applies to.
type APIVersion struct {
	Version string
	Range   string
}

// PrimitiveSchema covers every leaf schema kind. Type tells them apart; Format
// refines the wire encoding (e.g. "int32-seconds" for durations, "base64url"
// for byte arrays, "date-time-rfc1123" for date-times).
type PrimitiveSchema struct {
	SchemaBase
	Format    string
	Precision int
	Minimum   *float64
	Maximum   *float64
	MinLength *int
	MaxLength *int
	Pattern   string
}

// ArraySchema is a list of ElementType.
type ArraySchema struct {
	SchemaBase
	ElementType   Schema
	MinItems      *int
	MaxItems      *int
	UniqueItems   bool
	NullableItems bool
}

// DictionarySchema is a string-keyed map of ElementType.
type DictionarySchema struct {
	SchemaBase
	ElementType   Schema
	NullableItems bool
}

// ChoiceValue is one member of a choice or sealed-choice.
type ChoiceValue struct {
	Value       any
	Description string
	Language    Languages
}

// ChoiceSchema is an enum over ChoiceType. A sealed choice rejects values
// outside Choices; a plain choice is expandable.
type ChoiceSchema struct {
	SchemaBase
	ChoiceType Schema
	Choices    []ChoiceValue
}

// Sealed reports whether the choice is closed.
func (c *ChoiceSchema) Sealed() bool { return c.Type == SchemaTypeSealedChoice }

// FlagValue is one bit of a flag schema.
type FlagValue struct {
	Value    int
	Language Languages
}

// FlagSchema is a bitset-like enum.
type FlagSchema struct {
	SchemaBase
	Choices []FlagValue
}

// ConstantSchema is a single fixed value of ValueType.
type ConstantSchema struct {
	SchemaBase
	ValueType Schema
	Value     any
	ValueLang Languages
}

// Relations lists related objects: immediate ones and the transitive closure.
type Relations struct {
	Immediate []Schema
	All       []Schema
}

// Discriminator describes the polymorphic switch of a base object.
type Discriminator struct {
	Property  *Property
	Immediate map[string]Schema
	All       map[string]Schema
}

// ObjectSchema is a complex type with properties. Parents and Children are
// non-owning links into the same graph and may form arbitrary shapes; code
// walking them must guard against revisits.
type ObjectSchema struct {
	SchemaBase
	Properties         []*Property
	Discriminator      *Discriminator
	DiscriminatorValue string
	Parents            *Relations
	Children           *Relations
	MinProperties      *int
	MaxProperties      *int

	// FlattenedSchema and StronglyTypedHeader are the only fields written
	// after load, by the resolver.
	FlattenedSchema     bool
	StronglyTypedHeader bool
}

// ImmediateParent returns the first immediate parent, the one the single
// inheritance chain follows, or nil.
func (o *ObjectSchema) ImmediateParent() Schema {
	if o.Parents == nil || len(o.Parents.Immediate) == 0 {
		return nil
	}
	return o.Parents.Immediate[0]
}

// IsPolymorphic reports whether the object takes part in a discriminated hierarchy.
func (o *ObjectSchema) IsPolymorphic() bool {
	return o.Discriminator != nil || o.DiscriminatorValue != ""
}

// CompositeSchema combines member schemas: and (allOf), or (anyOf), xor
// (oneOf) and not (a single member).
type CompositeSchema struct {
	SchemaBase
	Members []Schema
}

// ParameterGroupSchema is the synthetic type of a parameter group.
type ParameterGroupSchema struct {
	SchemaBase
	Parameters []*Parameter
}

// GenericSchema is produced when the loader meets a type tag it cannot
// classify. Mapping it is an error.
type GenericSchema struct {
	SchemaBase
	RawType string
}

func (*PrimitiveSchema) sealed()      {}
func (*ArraySchema) sealed()          {}
func (*DictionarySchema) sealed()     {}
func (*ChoiceSchema) sealed()         {}
func (*FlagSchema) sealed()           {}
func (*ConstantSchema) sealed()       {}
func (*ObjectSchema) sealed()         {}
func (*CompositeSchema) sealed()      {}
func (*ParameterGroupSchema) sealed() {}
func (*GenericSchema) sealed()        {}

// NewAnySchema returns a fresh synthetic "any" schema.
func NewAnySchema() *PrimitiveSchema {
	return &PrimitiveSchema{SchemaBase: SchemaBase{
		Type:     SchemaTypeAny,
		Language: NewLanguages("any", ""),
	}}
}

// SchemaName returns the default-language name of s, or "" for nil.
func SchemaName(s Schema) string {
	if s == nil {
		return ""
	}
	return s.Base().Name()
}

// IsAny reports whether s is the any schema.
func IsAny(s Schema) bool {
	p, ok := s.(*PrimitiveSchema)
	return ok && p.Type == SchemaTypeAny
}
