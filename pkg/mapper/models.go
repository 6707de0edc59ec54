package mapper

import (
	"fmt"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/convert"
)

// Model returns the client model of o, building it on first use.
func (m *Mapper) Model(o *codemodel.ObjectSchema) (*clientmodel.ClientModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.mapSchema(o); err != nil {
		return nil, err
	}
	return m.models[o], nil
}

func (m *Mapper) model(o *codemodel.ObjectSchema) (*clientmodel.ClientModel, error) {
	if cm, ok := m.models[o]; ok {
		return cm, nil
	}
	cm := &clientmodel.ClientModel{
		Name:                m.typeName(&o.SchemaBase),
		Package:             m.settings.PackageName,
		Description:         m.description(&o.SchemaBase),
		SerializedName:      o.DiscriminatorValue,
		IsPolymorphic:       o.IsPolymorphic(),
		StronglyTypedHeader: o.StronglyTypedHeader,
		Deprecated:          o.Deprecated != nil,
	}
	for _, u := range o.Usage {
		cm.Usage = append(cm.Usage, string(u))
	}
	// registered before properties are mapped, so cycles see the model
	m.models[o] = cm
	if prev := m.registry.Add(cm); prev != nil && prev != cm {
		m.logger.Debug("model name registered by another schema, replacing it", "model", cm.Name)
	}

	if cm.IsPolymorphic {
		d, err := DiscriminatorProperty(o)
		if err != nil {
			return nil, err
		}
		cm.PolymorphicDiscriminator = d.Serialized
	}

	var additional codemodel.Schema
	if o.Parents != nil {
		for _, p := range o.Parents.Immediate {
			switch parent := p.(type) {
			case *codemodel.ObjectSchema:
				if cm.ParentName != "" {
					continue
				}
				if _, err := m.mapSchema(parent); err != nil {
					return nil, fmt.Errorf("parent of %s: %w", cm.Name, err)
				}
				cm.ParentName = m.models[parent].Name
			case *codemodel.DictionarySchema:
				additional = parent.ElementType
			}
		}
	}
	if o.Children != nil {
		for _, c := range o.Children.Immediate {
			cm.DerivedModels = append(cm.DerivedModels, m.TypeName(c))
		}
	}

	for _, p := range o.Properties {
		prop, err := m.property(o, p)
		if err != nil {
			return nil, fmt.Errorf("property %s.%s: %w", cm.Name, p.Name(), err)
		}
		if prop.Flattened() {
			cm.NeedsFlatten = true
		}
		cm.Properties = append(cm.Properties, prop)
	}

	if additional != nil {
		elem, err := m.mapSchema(additional)
		if err != nil {
			return nil, fmt.Errorf("additional properties of %s: %w", cm.Name, err)
		}
		cm.Properties = append(cm.Properties, &clientmodel.Property{
			Name:                 "AdditionalProperties",
			Description:          "Additional properties not declared by the model.",
			Type:                 &clientmodel.MapType{Elem: elem},
			WireType:             clientmodel.WireType(&clientmodel.MapType{Elem: elem}),
			AdditionalProperties: true,
			PublicSetter:         true,
		})
	}
	return cm, nil
}

func (m *Mapper) property(owner *codemodel.ObjectSchema, p *codemodel.Property) (*clientmodel.Property, error) {
	t, err := m.mapSchema(p.Schema)
	if err != nil {
		return nil, err
	}
	_, isConstant := p.Schema.(*codemodel.ConstantSchema)
	if (!p.Required || p.Nullable) && !isConstant {
		t = clientmodel.Optional(t)
	}

	lang := p.Language.For(m.settings.TargetLanguage)
	prop := &clientmodel.Property{
		Name:            goFieldName(lang.Name),
		Description:     codemodel.MergeSummaryWithDescription(p.Summary, lang.Description),
		SerializedName:  p.Serialized,
		FlattenedNames:  p.FlattenedNames,
		Type:            t,
		WireType:        clientmodel.WireType(t),
		Required:        p.Required,
		ReadOnly:        p.ReadOnly || readOnlyByMutability(p.Extensions),
		IsDiscriminator: p.IsDiscriminator,
		ClientFlatten:   p.Extensions != nil && p.Extensions.ClientFlatten,
		Constant:        isConstant,
	}

	switch {
	case isConstant:
		c := p.Schema.(*codemodel.ConstantSchema)
		if prop.DefaultValue, err = m.literal(t, c.Value); err != nil {
			return nil, err
		}
	case p.ClientDefaultValue != nil:
		if prop.DefaultValue, err = m.literal(t, p.ClientDefaultValue); err != nil {
			return nil, err
		}
	case p.Schema.Base().DefaultValue != nil:
		if prop.DefaultValue, err = m.literal(t, p.Schema.Base().DefaultValue); err != nil {
			return nil, err
		}
	}

	s := m.settings
	prop.CtorArg = !isConstant && p.Required && s.IsRequiredFieldsAsConstructorArgs() &&
		(!prop.ReadOnly || s.IsIncludeReadOnlyInConstructorArgs() || (p.IsDiscriminator && owner.IsPolymorphic()))
	prop.PublicSetter = !isConstant && !prop.ReadOnly && !prop.CtorArg && !prop.ClientFlatten
	return prop, nil
}

// literal renders value as a Go expression of the client type t.
func (m *Mapper) literal(t clientmodel.Type, value any) (string, error) {
	switch v := clientmodel.Underlying(t).(type) {
	case *clientmodel.ConvertedType:
		return convert.Literal(v.Client.String(), v.Encoding, value)
	case *clientmodel.EnumType:
		for _, ev := range v.Values {
			if ev.Value == fmt.Sprint(value) {
				return ev.Name, nil
			}
		}
		lit, err := convert.DefaultValueExpression(v.ElementType.String(), value)
		if err != nil {
			return "", err
		}
		return v.Name + "(" + lit + ")", nil
	case *clientmodel.BuiltinType, *clientmodel.NamedType:
		return convert.DefaultValueExpression(v.String(), value)
	}
	return "", fmt.Errorf("no literal form for %s", t)
}

// ConstructorProperties returns the constructor arguments of cm: those of its
// ancestors, root first, followed by its own.
func (m *Mapper) ConstructorProperties(cm *clientmodel.ClientModel) []*clientmodel.Property {
	var out []*clientmodel.Property
	for _, p := range append(m.registry.ParentProperties(cm), cm.Properties...) {
		if p.CtorArg {
			out = append(out, p)
		}
	}
	return out
}

func readOnlyByMutability(ext *codemodel.Extensions) bool {
	return ext != nil && len(ext.Mutability) == 1 && ext.Mutability[0] == "read"
}
