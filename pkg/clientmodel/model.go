package clientmodel

// ClientModel is a generated struct for an object schema.
type ClientModel struct {
	Name        string `json:"name"`
	Package     string `json:"package,omitempty"`
	Description string `json:"description,omitempty"`
	// ParentName is the model this one embeds, or "".
	ParentName string      `json:"parentName,omitempty"`
	Properties []*Property `json:"properties"`

	// PolymorphicDiscriminator is the serialized name of the discriminator
	// property shared by the hierarchy.
	PolymorphicDiscriminator string   `json:"polymorphicDiscriminator,omitempty"`
	SerializedName           string   `json:"serializedName,omitempty"`
	DerivedModels            []string `json:"derivedModels,omitempty"`
	IsPolymorphic            bool     `json:"isPolymorphic,omitempty"`

	// NeedsFlatten is set when a property's serialized name is a dotted path.
	NeedsFlatten        bool     `json:"needsFlatten,omitempty"`
	StronglyTypedHeader bool     `json:"stronglyTypedHeader,omitempty"`
	Usage               []string `json:"usage,omitempty"`
	Deprecated          bool     `json:"deprecated,omitempty"`

	// Example is a seeded JSON example, filled when example generation is on.
	Example any `json:"example,omitempty"`
}

// Type returns the reference type of the model. Polymorphic models with
// subtypes are referenced through their interface.
func (m *ClientModel) Type() *ModelType {
	return &ModelType{Name: m.Name, Package: m.Package, Polymorphic: m.IsPolymorphic && len(m.DerivedModels) > 0}
}

// Property looks up a property by its Go field name.
func (m *ClientModel) Property(name string) (*Property, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Property is a field of a ClientModel.
type Property struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// SerializedName is the wire name. For flattened properties it is the
	// dotted path; FlattenedNames holds the unescaped segments.
	SerializedName string   `json:"serializedName"`
	FlattenedNames []string `json:"flattenedNames,omitempty"`

	Type     Type `json:"type"`
	WireType Type `json:"wireType"`

	Required        bool   `json:"required,omitempty"`
	ReadOnly        bool   `json:"readOnly,omitempty"`
	IsDiscriminator bool   `json:"isDiscriminator,omitempty"`
	ClientFlatten   bool   `json:"clientFlatten,omitempty"`
	Constant        bool   `json:"constant,omitempty"`
	DefaultValue    string `json:"defaultValue,omitempty"`
	// AdditionalProperties marks the catch-all map of an open model.
	AdditionalProperties bool `json:"additionalProperties,omitempty"`

	// CtorArg is set when the property is a parameter of the model constructor.
	CtorArg bool `json:"ctorArg,omitempty"`
	// PublicSetter is set when a setter is generated.
	PublicSetter bool `json:"publicSetter,omitempty"`
}

// Flattened reports whether the property maps to a nested wire path.
func (p *Property) Flattened() bool { return len(p.FlattenedNames) > 1 }
