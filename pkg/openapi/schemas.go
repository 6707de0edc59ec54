package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/jsonpointer"
	"github.com/spf13/cast"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

const componentSchemasPrefix = "#/components/schemas/"

// buckets files primitive schemas by type.
var buckets = map[codemodel.SchemaType]string{
	codemodel.SchemaTypeAny:       "anys",
	codemodel.SchemaTypeAnyObject: "anyObjects",
	codemodel.SchemaTypeBinary:    "binaries",
	codemodel.SchemaTypeBoolean:   "booleans",
	codemodel.SchemaTypeByteArray: "byteArrays",
	codemodel.SchemaTypeChar:      "chars",
	codemodel.SchemaTypeDate:      "dates",
	codemodel.SchemaTypeDateTime:  "dateTimes",
	codemodel.SchemaTypeDuration:  "durations",
	codemodel.SchemaTypeInteger:   "numbers",
	codemodel.SchemaTypeNumber:    "numbers",
	codemodel.SchemaTypeString:    "strings",
	codemodel.SchemaTypeTime:      "times",
	codemodel.SchemaTypeUnixTime:  "unixtimes",
	codemodel.SchemaTypeURI:       "uris",
	codemodel.SchemaTypeUUID:      "uuids",
}

// componentName returns the component a local schema reference points at.
func componentName(ref string) (string, error) {
	if !strings.HasPrefix(ref, componentSchemasPrefix) {
		return "", &generrors.MalformedInputError{Path: ref, Message: "only #/components/schemas references are supported"}
	}
	ptr, err := jsonpointer.New(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return "", &generrors.MalformedInputError{Path: ref, Message: "bad schema reference", Cause: err}
	}
	tokens := ptr.DecodedTokens()
	if len(tokens) != 3 || tokens[2] == "" {
		return "", &generrors.MalformedInputError{Path: ref, Message: "bad schema reference"}
	}
	return tokens[2], nil
}

// component converts the named component schema once. Objects are
// registered before their properties are converted, so recursive models
// terminate.
func (r *run) component(name string) (codemodel.Schema, error) {
	if s, ok := r.named[name]; ok {
		return s, nil
	}
	if r.resolving[name] {
		return nil, &generrors.MalformedInputError{Path: componentSchemasPrefix + name, Message: "schema refers to itself outside of an object"}
	}
	var sr *openapi3.SchemaRef
	if r.doc.Components != nil {
		sr = r.doc.Components.Schemas[name]
	}
	if sr == nil {
		return nil, &generrors.MalformedInputError{Path: componentSchemasPrefix + name, Message: "unknown schema"}
	}

	r.resolving[name] = true
	defer delete(r.resolving, name)

	if sr.Ref != "" {
		target, err := componentName(sr.Ref)
		if err != nil {
			return nil, err
		}
		s, err := r.component(target)
		if err != nil {
			return nil, err
		}
		r.named[name] = s
		return s, nil
	}
	if sr.Value == nil {
		return nil, &generrors.MalformedInputError{Path: componentSchemasPrefix + name, Message: "empty schema"}
	}

	s, err := r.schema(sr.Value, name, true)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	r.named[name] = s
	return s, nil
}

// schemaRef converts a schema reference. hint names inline enums and
// objects that have no name of their own.
func (r *run) schemaRef(sr *openapi3.SchemaRef, hint string) (codemodel.Schema, error) {
	if sr == nil {
		return r.primitive(codemodel.SchemaTypeAny, "", 0), nil
	}
	if sr.Ref != "" {
		name, err := componentName(sr.Ref)
		if err != nil {
			return nil, err
		}
		return r.component(name)
	}
	if sr.Value == nil {
		return r.primitive(codemodel.SchemaTypeAny, "", 0), nil
	}
	return r.schema(sr.Value, hint, false)
}

func (r *run) schema(s *openapi3.Schema, name string, named bool) (codemodel.Schema, error) {
	switch {
	case len(s.Enum) > 0:
		return r.choice(s, name)
	case isObject(s):
		o := &codemodel.ObjectSchema{SchemaBase: r.base(s, codemodel.SchemaTypeObject, name)}
		r.add("objects", o)
		if named {
			// visible to references made while the properties convert
			r.named[name] = o
		}
		r.objects = append(r.objects, o)
		if err := r.object(o, s); err != nil {
			return nil, err
		}
		return o, nil
	case len(s.OneOf) > 0:
		return r.composite(s, name, codemodel.SchemaTypeXor, "xors", s.OneOf)
	case len(s.AnyOf) > 0:
		return r.composite(s, name, codemodel.SchemaTypeOr, "ors", s.AnyOf)
	case s.Not != nil:
		return r.composite(s, name, codemodel.SchemaTypeNot, "nots", openapi3.SchemaRefs{s.Not})
	case s.Type.Is(openapi3.TypeArray):
		return r.array(s, name)
	case isDictionary(s):
		return r.dictionary(s, name)
	case s.Type.Is(openapi3.TypeObject):
		return r.primitive(codemodel.SchemaTypeAnyObject, "", 0), nil
	}

	typ, format, precision := primitiveType(s)
	if !named && !hasConstraints(s) {
		return r.primitive(typ, format, precision), nil
	}
	p := &codemodel.PrimitiveSchema{
		SchemaBase: r.base(s, typ, name),
		Format:     format,
		Precision:  precision,
		Minimum:    s.Min,
		Maximum:    s.Max,
		MaxLength:  intPtr(s.MaxLength),
		Pattern:    s.Pattern,
	}
	if s.MinLength > 0 {
		p.MinLength = intPtr(&s.MinLength)
	}
	if !named {
		p.Language = codemodel.NewLanguages(primitiveName(typ, precision), s.Description)
	}
	r.add(buckets[typ], p)
	return p, nil
}

func (r *run) base(s *openapi3.Schema, typ codemodel.SchemaType, name string) codemodel.SchemaBase {
	b := codemodel.SchemaBase{
		Type:         typ,
		Summary:      s.Title,
		Description:  s.Description,
		DefaultValue: s.Default,
		Example:      s.Example,
		Language:     codemodel.NewLanguages(name, s.Description),
		Extensions:   decodeExtensions(s.Extensions),
	}
	if s.Deprecated {
		b.Deprecated = &codemodel.Deprecation{}
	}
	return b
}

func isObject(s *openapi3.Schema) bool {
	return len(s.Properties) > 0 || len(s.AllOf) > 0 || s.Discriminator != nil
}

func isDictionary(s *openapi3.Schema) bool {
	ap := s.AdditionalProperties
	return (s.Type == nil || s.Type.Is(openapi3.TypeObject)) &&
		(ap.Schema != nil || (ap.Has != nil && *ap.Has))
}

func hasConstraints(s *openapi3.Schema) bool {
	return s.Min != nil || s.Max != nil || s.MinLength > 0 || s.MaxLength != nil || s.Pattern != ""
}

// primitiveType classifies a leaf schema by its type and format.
func primitiveType(s *openapi3.Schema) (codemodel.SchemaType, string, int) {
	format := strings.ToLower(s.Format)
	switch {
	case s.Type.Is(openapi3.TypeBoolean):
		return codemodel.SchemaTypeBoolean, "", 0
	case s.Type.Is(openapi3.TypeInteger):
		switch format {
		case "unixtime":
			return codemodel.SchemaTypeUnixTime, "", 0
		case "int64":
			return codemodel.SchemaTypeInteger, "", 64
		}
		return codemodel.SchemaTypeInteger, "", 32
	case s.Type.Is(openapi3.TypeNumber):
		switch format {
		case "float":
			return codemodel.SchemaTypeNumber, "", 32
		case "decimal":
			return codemodel.SchemaTypeNumber, "decimal", 128
		}
		return codemodel.SchemaTypeNumber, "", 64
	case s.Type.Is(openapi3.TypeString):
		switch format {
		case "date-time":
			return codemodel.SchemaTypeDateTime, "", 0
		case "date-time-rfc1123":
			return codemodel.SchemaTypeDateTime, "date-time-rfc1123", 0
		case "date":
			return codemodel.SchemaTypeDate, "", 0
		case "time":
			return codemodel.SchemaTypeTime, "", 0
		case "duration":
			return codemodel.SchemaTypeDuration, "", 0
		case "uuid":
			return codemodel.SchemaTypeUUID, "", 0
		case "uri", "url":
			return codemodel.SchemaTypeURI, "", 0
		case "byte":
			return codemodel.SchemaTypeByteArray, "", 0
		case "base64url":
			return codemodel.SchemaTypeByteArray, "base64url", 0
		case "binary":
			return codemodel.SchemaTypeBinary, "", 0
		case "char":
			return codemodel.SchemaTypeChar, "", 0
		}
		return codemodel.SchemaTypeString, "", 0
	}
	return codemodel.SchemaTypeAny, "", 0
}

func primitiveName(typ codemodel.SchemaType, precision int) string {
	switch typ {
	case codemodel.SchemaTypeInteger:
		return fmt.Sprintf("int%d", precision)
	case codemodel.SchemaTypeNumber:
		if precision == 32 {
			return "float32"
		}
		return "float64"
	}
	return string(typ)
}

// primitive returns the shared, unconstrained schema of a leaf type.
func (r *run) primitive(typ codemodel.SchemaType, format string, precision int) *codemodel.PrimitiveSchema {
	key := fmt.Sprintf("%s/%s/%d", typ, format, precision)
	if p, ok := r.primitives[key]; ok {
		return p
	}
	p := &codemodel.PrimitiveSchema{
		SchemaBase: codemodel.SchemaBase{Type: typ, Language: codemodel.NewLanguages(primitiveName(typ, precision), "")},
		Format:     format,
		Precision:  precision,
	}
	r.primitives[key] = p
	r.add(buckets[typ], p)
	return p
}

func (r *run) object(o *codemodel.ObjectSchema, s *openapi3.Schema) error {
	props := make(map[string]*openapi3.SchemaRef, len(s.Properties))
	required := make(map[string]bool)
	for name, p := range s.Properties {
		props[name] = p
	}
	for _, name := range s.Required {
		required[name] = true
	}

	var parents []codemodel.Schema
	for _, member := range s.AllOf {
		if member.Ref != "" {
			parent, err := r.schemaRef(member, "")
			if err != nil {
				return err
			}
			if _, ok := parent.(*codemodel.ObjectSchema); !ok {
				return &generrors.MalformedInputError{Path: member.Ref, Message: "allOf parent of " + o.Name() + " is not an object"}
			}
			parents = append(parents, parent)
			continue
		}
		if member.Value == nil {
			continue
		}
		// inline members contribute their properties directly
		for name, p := range member.Value.Properties {
			props[name] = p
		}
		for _, name := range member.Value.Required {
			required[name] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := r.property(o, name, props[name], required[name])
		if err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		o.Properties = append(o.Properties, p)
	}

	if isDictionary(&openapi3.Schema{AdditionalProperties: s.AdditionalProperties}) {
		dict, err := r.dictionary(s, o.Name()+"AdditionalProperties")
		if err != nil {
			return err
		}
		parents = append(parents, dict)
	}
	if len(parents) > 0 {
		o.Parents = &codemodel.Relations{Immediate: parents}
	}

	if s.MinProps > 0 {
		o.MinProperties = intPtr(&s.MinProps)
	}
	o.MaxProperties = intPtr(s.MaxProps)

	if d := s.Discriminator; d != nil && d.PropertyName != "" {
		prop := findProperty(o, d.PropertyName)
		if prop == nil {
			prop = &codemodel.Property{
				Value: codemodel.Value{
					Schema:   r.primitive(codemodel.SchemaTypeString, "", 0),
					Required: true,
					Language: serializedLanguages(d.PropertyName, ""),
				},
				Serialized: d.PropertyName,
				Owner:      o,
			}
			o.Properties = append(o.Properties, prop)
		}
		prop.IsDiscriminator = true
		o.Discriminator = &codemodel.Discriminator{
			Property:  prop,
			Immediate: make(map[string]codemodel.Schema),
			All:       make(map[string]codemodel.Schema),
		}
		mapping := make(map[string]string, len(d.Mapping))
		for value, ref := range d.Mapping {
			mapping[value] = ref
		}
		r.mappings[o] = mapping
	}
	return nil
}

func (r *run) property(o *codemodel.ObjectSchema, name string, sr *openapi3.SchemaRef, required bool) (*codemodel.Property, error) {
	schema, err := r.schemaRef(sr, naming.PascalCase(o.Name())+naming.PascalCase(name))
	if err != nil {
		return nil, err
	}
	p := &codemodel.Property{
		Value: codemodel.Value{
			Schema:   schema,
			Required: required,
		},
		Serialized: name,
		Owner:      o,
	}
	var description string
	if sr != nil && sr.Value != nil {
		v := sr.Value
		description = v.Description
		p.Nullable = v.Nullable
		p.ReadOnly = v.ReadOnly
		if sr.Ref == "" {
			p.Extensions = decodeExtensions(v.Extensions)
		}
		if v.Deprecated {
			p.Deprecated = &codemodel.Deprecation{}
		}
	}
	p.Language = serializedLanguages(name, description)
	return p, nil
}

func findProperty(o *codemodel.ObjectSchema, serialized string) *codemodel.Property {
	for _, p := range o.Properties {
		if p.Serialized == serialized {
			return p
		}
	}
	return nil
}

func (r *run) array(s *openapi3.Schema, name string) (codemodel.Schema, error) {
	elem, err := r.schemaRef(s.Items, name+"Item")
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = codemodel.SchemaName(elem) + "Array"
	}
	a := &codemodel.ArraySchema{
		SchemaBase:  r.base(s, codemodel.SchemaTypeArray, name),
		ElementType: elem,
		MaxItems:    intPtr(s.MaxItems),
		UniqueItems: s.UniqueItems,
	}
	if s.MinItems > 0 {
		a.MinItems = intPtr(&s.MinItems)
	}
	if s.Items != nil && s.Items.Value != nil {
		a.NullableItems = s.Items.Value.Nullable
	}
	r.add("arrays", a)
	return a, nil
}

func (r *run) dictionary(s *openapi3.Schema, name string) (codemodel.Schema, error) {
	var (
		elem codemodel.Schema = r.primitive(codemodel.SchemaTypeAny, "", 0)
		err  error
	)
	if ap := s.AdditionalProperties.Schema; ap != nil {
		if elem, err = r.schemaRef(ap, name+"Value"); err != nil {
			return nil, err
		}
	}
	if name == "" {
		name = codemodel.SchemaName(elem) + "Dictionary"
	}
	d := &codemodel.DictionarySchema{
		SchemaBase:  r.base(s, codemodel.SchemaTypeDictionary, name),
		ElementType: elem,
	}
	if ap := s.AdditionalProperties.Schema; ap != nil && ap.Value != nil {
		d.NullableItems = ap.Value.Nullable
	}
	r.add("dictionaries", d)
	return d, nil
}

func (r *run) composite(s *openapi3.Schema, name string, typ codemodel.SchemaType, bucket string, members openapi3.SchemaRefs) (codemodel.Schema, error) {
	c := &codemodel.CompositeSchema{SchemaBase: r.base(s, typ, name)}
	for i, m := range members {
		ms, err := r.schemaRef(m, fmt.Sprintf("%s%d", name, i+1))
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, ms)
	}
	r.add(bucket, c)
	return c, nil
}

// choice converts an enum. Enums are sealed unless x-ms-enum says
// modelAsString. Inline enums of the same name are converted once.
func (r *run) choice(s *openapi3.Schema, name string) (codemodel.Schema, error) {
	xEnum := cast.ToStringMap(s.Extensions["x-ms-enum"])
	if n := cast.ToString(xEnum["name"]); n != "" {
		name = n
	}
	if c, ok := r.choices[name]; ok {
		return c, nil
	}

	typ, format, precision := primitiveType(s)
	if typ == codemodel.SchemaTypeAny {
		typ = codemodel.SchemaTypeString
	}
	c := &codemodel.ChoiceSchema{
		SchemaBase: r.base(s, codemodel.SchemaTypeSealedChoice, name),
		ChoiceType: r.primitive(typ, format, precision),
	}
	bucket := "sealedChoices"
	if cast.ToBool(xEnum["modelAsString"]) {
		c.Type = codemodel.SchemaTypeChoice
		bucket = "choices"
	}

	names := make(map[string]string)
	descriptions := make(map[string]string)
	for _, v := range cast.ToSlice(xEnum["values"]) {
		entry := cast.ToStringMap(v)
		key := cast.ToString(entry["value"])
		names[key] = cast.ToString(entry["name"])
		descriptions[key] = cast.ToString(entry["description"])
	}
	for _, v := range s.Enum {
		if v == nil {
			continue
		}
		key := cast.ToString(v)
		valueName := names[key]
		if valueName == "" {
			valueName = key
		}
		c.Choices = append(c.Choices, codemodel.ChoiceValue{
			Value:       v,
			Description: descriptions[key],
			Language:    codemodel.NewLanguages(valueName, descriptions[key]),
		})
	}
	r.choices[name] = c
	r.add(bucket, c)
	return c, nil
}

// link fills the child relations and transitive closures of every object,
// then the discriminator maps of polymorphic bases.
func (r *run) link() {
	for _, o := range r.objects {
		for _, p := range objectParents(o) {
			if p.Children == nil {
				p.Children = &codemodel.Relations{}
			}
			p.Children.Immediate = append(p.Children.Immediate, o)
		}
	}
	for _, o := range r.objects {
		if o.Parents != nil {
			o.Parents.All = closure(o, objectParents, o.Parents.Immediate)
		}
		if o.Children != nil {
			o.Children.All = closure(o, objectChildren, nil)
		}
	}

	for _, o := range r.objects {
		if o.Discriminator == nil || o.Children == nil {
			continue
		}
		immediate := make(map[codemodel.Schema]bool)
		for _, c := range o.Children.Immediate {
			immediate[c] = true
		}
		for _, c := range o.Children.All {
			child := c.(*codemodel.ObjectSchema)
			value := r.discriminatorValue(o, child)
			if child.DiscriminatorValue == "" {
				child.DiscriminatorValue = value
			}
			o.Discriminator.All[value] = child
			if immediate[c] {
				o.Discriminator.Immediate[value] = child
			}
		}
	}
}

// discriminatorValue returns the mapping key that points at child, or the
// child's name when the mapping has none.
func (r *run) discriminatorValue(base, child *codemodel.ObjectSchema) string {
	keys := make([]string, 0, len(r.mappings[base]))
	for k := range r.mappings[base] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ref := r.mappings[base][k]
		name := ref
		if strings.HasPrefix(ref, "#") {
			var err error
			if name, err = componentName(ref); err != nil {
				continue
			}
		}
		if target, ok := r.named[name]; ok && target == codemodel.Schema(child) {
			return k
		}
	}
	return child.Name()
}

func objectParents(o *codemodel.ObjectSchema) []*codemodel.ObjectSchema {
	if o.Parents == nil {
		return nil
	}
	var out []*codemodel.ObjectSchema
	for _, p := range o.Parents.Immediate {
		if po, ok := p.(*codemodel.ObjectSchema); ok {
			out = append(out, po)
		}
	}
	return out
}

func objectChildren(o *codemodel.ObjectSchema) []*codemodel.ObjectSchema {
	if o.Children == nil {
		return nil
	}
	out := make([]*codemodel.ObjectSchema, 0, len(o.Children.Immediate))
	for _, c := range o.Children.Immediate {
		out = append(out, c.(*codemodel.ObjectSchema))
	}
	return out
}

// closure walks next from o breadth first and returns every object reached,
// after the leading schemas given. Each object is listed once.
func closure(o *codemodel.ObjectSchema, next func(*codemodel.ObjectSchema) []*codemodel.ObjectSchema, leading []codemodel.Schema) []codemodel.Schema {
	listed := map[codemodel.Schema]bool{o: true}
	explored := map[*codemodel.ObjectSchema]bool{o: true}
	var out []codemodel.Schema
	list := func(s codemodel.Schema) {
		if !listed[s] {
			listed[s] = true
			out = append(out, s)
		}
	}
	for _, s := range leading {
		list(s)
	}
	queue := next(o)
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		if explored[cur] {
			continue
		}
		explored[cur] = true
		list(cur)
		queue = append(queue, next(cur)...)
	}
	return out
}

func (r *run) add(bucket string, s codemodel.Schema) {
	if bucket == "" {
		bucket = "unknowns"
	}
	r.cm.Schemas.Add(bucket, s)
}

func serializedLanguages(name, description string) codemodel.Languages {
	return codemodel.Languages{Default: &codemodel.Language{
		Name:           naming.CamelCase(name),
		SerializedName: name,
		Description:    description,
	}}
}

func intPtr(v *uint64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
