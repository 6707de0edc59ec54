package codemodel

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/logging"
)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(ld *Loader) { ld.logger = logging.OrNop(l) }
}

// WithSourceName sets the name used in error messages.
func WithSourceName(name string) Option {
	return func(ld *Loader) { ld.source = name }
}

// Loader turns a YAML or JSON code model document into a schema graph.
//
// The document is decoded at the yaml.Node level. Anchors/aliases and
// {"$ref": "#/json/pointer"} objects both resolve to the node they point at,
// and every node is decoded once, so shared references in the document become
// shared pointers in the graph.
type Loader struct {
	logger logging.Logger
	source string
	root   *yaml.Node

	schemas    map[*yaml.Node]Schema
	properties map[*yaml.Node]*Property
	parameters map[*yaml.Node]*Parameter
	operations map[*yaml.Node]*Operation
	// bucketEntries are decoded with the lenient dispatch
	bucketEntries map[*yaml.Node]bool
	resolving     map[*yaml.Node]bool
}

// Load reads and decodes the code model at path. An http(s) URL is not
// supported; code models are produced locally by an upstream compiler.
func Load(path string, opts ...Option) (*CodeModel, error) {
	if u, err := url.Parse(path); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return nil, &generrors.ConfigError{Option: "codeModel", Message: "remote code models are not supported: " + path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read code model: %w", err)
	}
	opts = append([]Option{WithSourceName(path)}, opts...)
	return Parse(data, opts...)
}

// Parse decodes a code model document.
func Parse(data []byte, opts ...Option) (*CodeModel, error) {
	ld := &Loader{
		logger:        logging.NopLogger{},
		schemas:       make(map[*yaml.Node]Schema),
		properties:    make(map[*yaml.Node]*Property),
		parameters:    make(map[*yaml.Node]*Parameter),
		operations:    make(map[*yaml.Node]*Operation),
		bucketEntries: make(map[*yaml.Node]bool),
		resolving:     make(map[*yaml.Node]bool),
	}
	for _, opt := range opts {
		opt(ld)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &generrors.MalformedInputError{Path: ld.source, Message: "cannot decode document", Cause: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ld.malformed(&doc, "empty document")
	}
	ld.root = doc.Content[0]
	return ld.codeModel(ld.root)
}

func (ld *Loader) codeModel(n *yaml.Node) (*CodeModel, error) {
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	if n.Kind != yaml.MappingNode {
		return nil, ld.malformed(n, "code model must be a mapping")
	}

	for _, required := range []string{"info", "schemas", "clients"} {
		if field(n, required) == nil {
			return nil, ld.malformed(n, "missing required field "+required)
		}
	}

	cm := &CodeModel{Schemas: NewSchemas()}
	info, _ := ld.resolve(field(n, "info"))
	cm.Info = Info{Title: str(field(info, "title")), Description: str(field(info, "description"))}
	if cm.Info.Extensions, err = ld.extensions(field(info, "extensions")); err != nil {
		return nil, err
	}
	if cm.Language, err = ld.languages(field(n, "language"), cm.Info.Title); err != nil {
		return nil, err
	}

	if err := ld.schemaBuckets(field(n, "schemas"), cm.Schemas); err != nil {
		return nil, err
	}

	if cm.Security, err = ld.security(field(n, "security")); err != nil {
		return nil, err
	}

	clients, err := ld.seq(field(n, "clients"))
	if err != nil {
		return nil, err
	}
	for _, cn := range clients {
		c, err := ld.client(cn, nil)
		if err != nil {
			return nil, err
		}
		cm.Clients = append(cm.Clients, c)
	}

	if tm := field(n, "testModel"); tm != nil {
		var v any
		if err := tm.Decode(&v); err == nil {
			cm.TestModel = v
		}
	}
	ld.logger.Debug("loaded code model",
		"source", ld.source, "schemas", len(cm.Schemas.All()), "clients", len(cm.Clients))
	return cm, nil
}

func (ld *Loader) schemaBuckets(n *yaml.Node, reg *Schemas) error {
	n, err := ld.resolve(n)
	if err != nil {
		return err
	}
	if n.Kind != yaml.MappingNode {
		return ld.malformed(n, "schemas must be a mapping of buckets")
	}

	// mark every bucket entry first so that the lenient dispatch applies no
	// matter where a node is first reached from
	for i := 0; i+1 < len(n.Content); i += 2 {
		entries, err := ld.seq(n.Content[i+1])
		if err != nil {
			return err
		}
		for _, e := range entries {
			r, err := ld.resolve(e)
			if err != nil {
				return err
			}
			ld.bucketEntries[r] = true
		}
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		bucket := n.Content[i].Value
		entries, _ := ld.seq(n.Content[i+1])
		for _, e := range entries {
			s, err := ld.schema(e)
			if err != nil {
				return fmt.Errorf("schemas.%s: %w", bucket, err)
			}
			if prev, ok := reg.Add(bucket, s); !ok {
				return ld.malformed(e, fmt.Sprintf("schema %q is registered in both %s and %s", SchemaName(s), prev, bucket))
			}
		}
	}
	return nil
}

// schema decodes a schema node. Nodes listed in a schema bucket use the
// lenient dispatch; nested inline schemas must carry a known type tag.
func (ld *Loader) schema(n *yaml.Node) (Schema, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if s, ok := ld.schemas[n]; ok {
		return s, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, ld.malformed(n, "schema must be a mapping")
	}

	raw := str(field(n, "type"))
	typ, err := ParseSchemaType(raw)
	if err != nil {
		if !ld.bucketEntries[n] {
			return nil, ld.unknown(n, "schema type", raw)
		}
		ld.logger.Debug("unrecognized schema type, using generic schema", "type", raw, "line", n.Line)
		typ = SchemaType(raw)
	}

	var s Schema
	switch typ {
	case SchemaTypeAny, SchemaTypeAnyObject, SchemaTypeBoolean, SchemaTypeInteger, SchemaTypeNumber,
		SchemaTypeString, SchemaTypeChar, SchemaTypeDate, SchemaTypeDateTime, SchemaTypeDuration,
		SchemaTypeUUID, SchemaTypeURI, SchemaTypeBinary, SchemaTypeByteArray, SchemaTypeUnixTime,
		SchemaTypeArmID, SchemaTypeODataQuery, SchemaTypeCredential, SchemaTypeTime:
		s = &PrimitiveSchema{}
	case SchemaTypeArray:
		s = &ArraySchema{}
	case SchemaTypeDictionary:
		s = &DictionarySchema{}
	case SchemaTypeChoice, SchemaTypeSealedChoice:
		s = &ChoiceSchema{}
	case SchemaTypeFlag:
		s = &FlagSchema{}
	case SchemaTypeConstant:
		s = &ConstantSchema{}
	case SchemaTypeObject, SchemaTypeGroup:
		s = &ObjectSchema{}
	case SchemaTypeAnd, SchemaTypeOr, SchemaTypeXor, SchemaTypeNot:
		s = &CompositeSchema{}
	case SchemaTypeParameterGroup:
		s = &ParameterGroupSchema{}
	default:
		s = &GenericSchema{RawType: raw}
	}
	// register before decoding children: the graph may be cyclic
	ld.schemas[n] = s

	base := s.Base()
	base.Type = typ
	if err := ld.schemaBase(n, base); err != nil {
		return nil, err
	}

	switch v := s.(type) {
	case *PrimitiveSchema:
		err = ld.primitive(n, v)
	case *ArraySchema:
		err = ld.array(n, v)
	case *DictionarySchema:
		v.NullableItems = boolean(field(n, "nullableItems"))
		v.ElementType, err = ld.schema(field(n, "elementType"))
	case *ChoiceSchema:
		err = ld.choice(n, v)
	case *FlagSchema:
		err = ld.flag(n, v)
	case *ConstantSchema:
		err = ld.constant(n, v)
	case *ObjectSchema:
		err = ld.object(n, v)
	case *CompositeSchema:
		err = ld.composite(n, v)
	case *ParameterGroupSchema:
		err = ld.parameterGroup(n, v)
	case *GenericSchema:
	}
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", base.Name(), err)
	}
	return s, nil
}

func (ld *Loader) schemaBase(n *yaml.Node, b *SchemaBase) error {
	var err error
	b.Key = str(field(n, "$key"))
	b.UID = str(field(n, "uid"))
	b.Summary = str(field(n, "summary"))
	if b.Language, err = ld.languages(field(n, "language"), b.Key); err != nil {
		return err
	}
	b.Description = b.Language.Description()
	if d := str(field(n, "description")); d != "" && b.Description == "" {
		b.Description = d
	}
	b.DefaultValue = anyValue(field(n, "defaultValue"))
	b.Example = anyValue(field(n, "example"))
	for _, u := range strs(field(n, "usage")) {
		b.Usage = append(b.Usage, SchemaContext(u))
	}
	b.APIVersions = ld.apiVersions(field(n, "apiVersions"))
	b.Deprecated = deprecation(field(n, "deprecated"))
	b.Extensions, err = ld.extensions(field(n, "extensions"))
	return err
}

func (ld *Loader) primitive(n *yaml.Node, p *PrimitiveSchema) error {
	p.Format = str(field(n, "format"))
	p.Precision = integer(field(n, "precision"))
	p.Pattern = str(field(n, "pattern"))
	p.Minimum = float(field(n, "minimum"))
	p.Maximum = float(field(n, "maximum"))
	p.MinLength = intPtr(field(n, "minLength"))
	p.MaxLength = intPtr(field(n, "maxLength"))
	if p.Type == SchemaTypeUnixTime && p.Format == "" {
		p.Format = "unixtime"
	}
	return nil
}

func (ld *Loader) array(n *yaml.Node, a *ArraySchema) error {
	var err error
	a.MinItems = intPtr(field(n, "minItems"))
	a.MaxItems = intPtr(field(n, "maxItems"))
	a.UniqueItems = boolean(field(n, "uniqueItems"))
	a.NullableItems = boolean(field(n, "nullableItems"))
	a.ElementType, err = ld.schema(field(n, "elementType"))
	return err
}

func (ld *Loader) choice(n *yaml.Node, c *ChoiceSchema) error {
	var err error
	if c.ChoiceType, err = ld.schema(field(n, "choiceType")); err != nil {
		return err
	}
	choices, err := ld.seq(field(n, "choices"))
	if err != nil {
		return err
	}
	for _, cn := range choices {
		cn, err = ld.resolve(cn)
		if err != nil {
			return err
		}
		value := anyValue(field(cn, "value"))
		lang, err := ld.languages(field(cn, "language"), fmt.Sprint(value))
		if err != nil {
			return err
		}
		c.Choices = append(c.Choices, ChoiceValue{Value: value, Description: lang.Description(), Language: lang})
	}
	return nil
}

func (ld *Loader) flag(n *yaml.Node, f *FlagSchema) error {
	choices, err := ld.seq(field(n, "choices"))
	if err != nil {
		return err
	}
	for _, cn := range choices {
		cn, err = ld.resolve(cn)
		if err != nil {
			return err
		}
		value := integer(field(cn, "value"))
		lang, err := ld.languages(field(cn, "language"), strconv.Itoa(value))
		if err != nil {
			return err
		}
		f.Choices = append(f.Choices, FlagValue{Value: value, Language: lang})
	}
	return nil
}

func (ld *Loader) constant(n *yaml.Node, c *ConstantSchema) error {
	var err error
	if c.ValueType, err = ld.schema(field(n, "valueType")); err != nil {
		return err
	}
	vn, err := ld.resolve(field(n, "value"))
	if err != nil {
		return err
	}
	if vn != nil {
		c.Value = anyValue(field(vn, "value"))
		c.ValueLang, err = ld.languages(field(vn, "language"), fmt.Sprint(c.Value))
	}
	return err
}

func (ld *Loader) object(n *yaml.Node, o *ObjectSchema) error {
	var err error
	o.DiscriminatorValue = str(field(n, "discriminatorValue"))
	o.MinProperties = intPtr(field(n, "minProperties"))
	o.MaxProperties = intPtr(field(n, "maxProperties"))
	o.FlattenedSchema = boolean(field(n, "flattenedSchema"))
	o.StronglyTypedHeader = boolean(field(n, "stronglyTypedHeader"))

	props, err := ld.seq(field(n, "properties"))
	if err != nil {
		return err
	}
	for _, pn := range props {
		p, err := ld.property(pn)
		if err != nil {
			return err
		}
		if p.Owner == nil {
			p.Owner = o
		}
		o.Properties = append(o.Properties, p)
	}

	if o.Parents, err = ld.relations(field(n, "parents")); err != nil {
		return err
	}
	if o.Children, err = ld.relations(field(n, "children")); err != nil {
		return err
	}

	if dn := field(n, "discriminator"); dn != nil {
		dn, err = ld.resolve(dn)
		if err != nil {
			return err
		}
		d := &Discriminator{}
		if d.Property, err = ld.property(field(dn, "property")); err != nil {
			return err
		}
		if d.Immediate, err = ld.schemaMap(field(dn, "immediate")); err != nil {
			return err
		}
		if d.All, err = ld.schemaMap(field(dn, "all")); err != nil {
			return err
		}
		o.Discriminator = d
	}
	return nil
}

func (ld *Loader) relations(n *yaml.Node) (*Relations, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	r := &Relations{}
	if r.Immediate, err = ld.schemaList(field(n, "immediate")); err != nil {
		return nil, err
	}
	if r.All, err = ld.schemaList(field(n, "all")); err != nil {
		return nil, err
	}
	return r, nil
}

func (ld *Loader) composite(n *yaml.Node, c *CompositeSchema) error {
	var key string
	switch c.Type {
	case SchemaTypeAnd:
		key = "allOf"
	case SchemaTypeOr:
		key = "anyOf"
	case SchemaTypeXor:
		key = "oneOf"
	case SchemaTypeNot:
		s, err := ld.schema(field(n, "not"))
		if err != nil {
			return err
		}
		if s != nil {
			c.Members = []Schema{s}
		}
		return nil
	}
	var err error
	c.Members, err = ld.schemaList(field(n, key))
	return err
}

func (ld *Loader) parameterGroup(n *yaml.Node, g *ParameterGroupSchema) error {
	params, err := ld.seq(field(n, "parameters"))
	if err != nil {
		return err
	}
	for _, pn := range params {
		p, err := ld.parameter(pn)
		if err != nil {
			return err
		}
		g.Parameters = append(g.Parameters, p)
	}
	return nil
}

func (ld *Loader) schemaList(n *yaml.Node) ([]Schema, error) {
	items, err := ld.seq(n)
	if err != nil {
		return nil, err
	}
	out := make([]Schema, 0, len(items))
	for _, item := range items {
		s, err := ld.schema(item)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (ld *Loader) schemaMap(n *yaml.Node) (map[string]Schema, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	if n.Kind != yaml.MappingNode {
		return nil, ld.malformed(n, "expected a mapping")
	}
	out := make(map[string]Schema, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		s, err := ld.schema(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		out[n.Content[i].Value] = s
	}
	return out, nil
}

func (ld *Loader) value(n *yaml.Node, v *Value) error {
	var err error
	if v.Schema, err = ld.schema(field(n, "schema")); err != nil {
		return err
	}
	v.Required = boolean(field(n, "required"))
	v.Nullable = boolean(field(n, "nullable"))
	v.Key = str(field(n, "$key"))
	v.Summary = str(field(n, "summary"))
	if v.Language, err = ld.languages(field(n, "language"), v.Key); err != nil {
		return err
	}
	if v.Protocol, err = ld.protocol(field(n, "protocol")); err != nil {
		return err
	}
	v.APIVersions = ld.apiVersions(field(n, "apiVersions"))
	v.Deprecated = deprecation(field(n, "deprecated"))
	v.ClientDefaultValue = anyValue(field(n, "clientDefaultValue"))
	v.Extensions, err = ld.extensions(field(n, "extensions"))
	return err
}

func (ld *Loader) property(n *yaml.Node) (*Property, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	if p, ok := ld.properties[n]; ok {
		return p, nil
	}
	p := &Property{}
	ld.properties[n] = p
	if err := ld.value(n, &p.Value); err != nil {
		return nil, fmt.Errorf("property %s: %w", p.Name(), err)
	}
	p.Serialized = str(field(n, "serializedName"))
	if p.Serialized == "" {
		p.Serialized = p.SerializedName()
	}
	p.ReadOnly = boolean(field(n, "readOnly"))
	p.IsDiscriminator = boolean(field(n, "isDiscriminator"))
	p.FlattenedNames = strs(field(n, "flattenedNames"))
	return p, nil
}

func (ld *Loader) parameter(n *yaml.Node) (*Parameter, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	if p, ok := ld.parameters[n]; ok {
		return p, nil
	}
	p := &Parameter{}
	ld.parameters[n] = p
	if err := ld.value(n, &p.Value); err != nil {
		return nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
	}
	impl := str(field(n, "implementation"))
	if p.Implementation, err = ParseImplementationLocation(impl); err != nil {
		return nil, ld.unknown(field(n, "implementation"), "implementation location", impl)
	}
	p.Origin = str(field(n, "origin"))
	p.Flattened = boolean(field(n, "flattened"))
	if p.GroupedBy, err = ld.parameter(field(n, "groupedBy")); err != nil {
		return nil, err
	}
	if p.OriginalParameter, err = ld.parameter(field(n, "originalParameter")); err != nil {
		return nil, err
	}
	if p.TargetProperty, err = ld.property(field(n, "targetProperty")); err != nil {
		return nil, err
	}
	return p, nil
}

func (ld *Loader) parameterList(n *yaml.Node) ([]*Parameter, error) {
	items, err := ld.seq(n)
	if err != nil {
		return nil, err
	}
	out := make([]*Parameter, 0, len(items))
	for _, item := range items {
		p, err := ld.parameter(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (ld *Loader) protocol(n *yaml.Node) (*Protocol, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	hn, err := ld.resolve(field(n, "http"))
	if err != nil || hn == nil {
		return &Protocol{}, err
	}
	h := &HTTPProtocol{
		Style:       SerializationStyle(str(field(hn, "style"))),
		Explode:     boolean(field(hn, "explode")),
		Path:        str(field(hn, "path")),
		URI:         str(field(hn, "uri")),
		Method:      strings.ToUpper(str(field(hn, "method"))),
		MediaTypes:  strs(field(hn, "mediaTypes")),
		StatusCodes: strs(field(hn, "statusCodes")),
	}
	if in := field(hn, "in"); in != nil {
		if h.In, err = ParseParameterLocation(in.Value); err != nil {
			return nil, ld.unknown(in, "parameter location", in.Value)
		}
	}
	if mt := field(hn, "knownMediaType"); mt != nil {
		if h.KnownMediaType, err = ParseKnownMediaType(mt.Value); err != nil {
			return nil, ld.unknown(mt, "media type", mt.Value)
		}
	}
	headers, err := ld.seq(field(hn, "headers"))
	if err != nil {
		return nil, err
	}
	for _, hd := range headers {
		hd, err = ld.resolve(hd)
		if err != nil {
			return nil, err
		}
		header := &HTTPHeader{Header: str(field(hd, "header"))}
		if header.Schema, err = ld.schema(field(hd, "schema")); err != nil {
			return nil, err
		}
		if header.Language, err = ld.languages(field(hd, "language"), header.Header); err != nil {
			return nil, err
		}
		h.Headers = append(h.Headers, header)
	}
	return &Protocol{HTTP: h}, nil
}

func (ld *Loader) client(n *yaml.Node, parent *Client) (*Client, error) {
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	c := &Client{Parent: parent}
	if c.Language, err = ld.languages(field(n, "language"), str(field(n, "$key"))); err != nil {
		return nil, err
	}
	c.Summary = str(field(n, "summary"))
	c.CrossLanguageDefinitionID = str(field(n, "crossLanguageDefinitionId"))
	c.APIVersions = ld.apiVersions(field(n, "apiVersions"))
	if c.GlobalParameters, err = ld.parameterList(field(n, "globalParameters")); err != nil {
		return nil, fmt.Errorf("client %s: %w", c.Name(), err)
	}
	if c.Security, err = ld.security(field(n, "security")); err != nil {
		return nil, fmt.Errorf("client %s: %w", c.Name(), err)
	}

	groups, err := ld.seq(field(n, "operationGroups"))
	if err != nil {
		return nil, err
	}
	for _, gn := range groups {
		gn, err = ld.resolve(gn)
		if err != nil {
			return nil, err
		}
		g := &OperationGroup{Key: str(field(gn, "$key")), Client: c}
		if g.Language, err = ld.languages(field(gn, "language"), g.Key); err != nil {
			return nil, err
		}
		ops, err := ld.seq(field(gn, "operations"))
		if err != nil {
			return nil, err
		}
		for _, on := range ops {
			op, err := ld.operation(on)
			if err != nil {
				return nil, fmt.Errorf("client %s: %w", c.Name(), err)
			}
			op.Group = g
			g.Operations = append(g.Operations, op)
		}
		c.OperationGroups = append(c.OperationGroups, g)
	}

	subs, err := ld.seq(field(n, "subClients"))
	if err != nil {
		return nil, err
	}
	for _, sn := range subs {
		sub, err := ld.client(sn, c)
		if err != nil {
			return nil, err
		}
		c.SubClients = append(c.SubClients, sub)
	}
	return c, nil
}

func (ld *Loader) operation(n *yaml.Node) (*Operation, error) {
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	if op, ok := ld.operations[n]; ok {
		return op, nil
	}
	op := &Operation{OperationID: str(field(n, "operationId"))}
	ld.operations[n] = op
	if op.Language, err = ld.languages(field(n, "language"), op.OperationID); err != nil {
		return nil, err
	}
	wrap := func(err error) error { return fmt.Errorf("operation %s: %w", op.Name(), err) }

	if op.Parameters, err = ld.parameterList(field(n, "parameters")); err != nil {
		return nil, wrap(err)
	}
	if op.SignatureParameters, err = ld.parameterList(field(n, "signatureParameters")); err != nil {
		return nil, wrap(err)
	}
	if op.Requests, err = ld.requests(field(n, "requests")); err != nil {
		return nil, wrap(err)
	}
	if op.Responses, err = ld.responses(field(n, "responses")); err != nil {
		return nil, wrap(err)
	}
	if op.Exceptions, err = ld.responses(field(n, "exceptions")); err != nil {
		return nil, wrap(err)
	}
	op.SpecialHeaders = strs(field(n, "specialHeaders"))
	if op.Extensions, err = ld.extensions(field(n, "extensions")); err != nil {
		return nil, wrap(err)
	}
	if cn := field(n, "convenienceApi"); cn != nil {
		cn, err = ld.resolve(cn)
		if err != nil {
			return nil, wrap(err)
		}
		api := &ConvenienceAPI{}
		if api.Language, err = ld.languages(field(cn, "language"), op.Name()); err != nil {
			return nil, wrap(err)
		}
		if api.Requests, err = ld.requests(field(cn, "requests")); err != nil {
			return nil, wrap(err)
		}
		op.ConvenienceAPI = api
	}
	if gp := field(n, "generateProtocolApi"); gp != nil {
		v := boolean(gp)
		op.GenerateProtocolAPI = &v
	}
	op.InternalAPI = boolean(field(n, "internalApi"))
	op.APIVersions = ld.apiVersions(field(n, "apiVersions"))
	op.Deprecated = deprecation(field(n, "deprecated"))
	if ln := field(n, "lroMetadata"); ln != nil {
		ln, err = ld.resolve(ln)
		if err != nil {
			return nil, wrap(err)
		}
		lro := &LongRunningMetadata{
			PollingStrategy:                   str(field(ln, "pollingStrategy")),
			FinalResultPropertySerializedName: str(field(ln, "finalResultPropertySerializedName")),
		}
		if lro.PollResultType, err = ld.schema(field(ln, "pollResultType")); err != nil {
			return nil, wrap(err)
		}
		if lro.FinalResultType, err = ld.schema(field(ln, "finalResultType")); err != nil {
			return nil, wrap(err)
		}
		op.LROMetadata = lro
	}
	return op, nil
}

func (ld *Loader) requests(n *yaml.Node) ([]*Request, error) {
	items, err := ld.seq(n)
	if err != nil {
		return nil, err
	}
	out := make([]*Request, 0, len(items))
	for _, rn := range items {
		rn, err = ld.resolve(rn)
		if err != nil {
			return nil, err
		}
		r := &Request{}
		if r.Language, err = ld.languages(field(rn, "language"), ""); err != nil {
			return nil, err
		}
		if r.Parameters, err = ld.parameterList(field(rn, "parameters")); err != nil {
			return nil, err
		}
		if r.SignatureParameters, err = ld.parameterList(field(rn, "signatureParameters")); err != nil {
			return nil, err
		}
		if r.Protocol, err = ld.protocol(field(rn, "protocol")); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (ld *Loader) responses(n *yaml.Node) ([]*Response, error) {
	items, err := ld.seq(n)
	if err != nil {
		return nil, err
	}
	out := make([]*Response, 0, len(items))
	for _, rn := range items {
		rn, err = ld.resolve(rn)
		if err != nil {
			return nil, err
		}
		r := &Response{Binary: boolean(field(rn, "binary")), Nullable: boolean(field(rn, "nullable"))}
		if r.Language, err = ld.languages(field(rn, "language"), ""); err != nil {
			return nil, err
		}
		if r.Schema, err = ld.schema(field(rn, "schema")); err != nil {
			return nil, err
		}
		if r.Protocol, err = ld.protocol(field(rn, "protocol")); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (ld *Loader) security(n *yaml.Node) (*Security, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	sec := &Security{AuthenticationRequired: boolean(field(n, "authenticationRequired"))}
	schemes, err := ld.seq(field(n, "schemes"))
	if err != nil {
		return nil, err
	}
	for _, sn := range schemes {
		sn, err = ld.resolve(sn)
		if err != nil {
			return nil, err
		}
		tn := field(sn, "type")
		typ, err := ParseSecuritySchemeType(str(tn))
		if err != nil {
			return nil, ld.unknown(tn, "security scheme type", str(tn))
		}
		sec.Schemes = append(sec.Schemes, &SecurityScheme{
			Type:   typ,
			Name:   str(field(sn, "name")),
			In:     str(field(sn, "in")),
			Prefix: str(field(sn, "prefix")),
			Scopes: strs(field(sn, "scopes")),
		})
	}
	return sec, nil
}

func (ld *Loader) languages(n *yaml.Node, fallback string) (Languages, error) {
	var l Languages
	if n != nil {
		var err error
		if n, err = ld.resolve(n); err != nil {
			return l, err
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			ln, err := ld.resolve(n.Content[i+1])
			if err != nil {
				return l, err
			}
			entry := &Language{
				Name:           str(field(ln, "name")),
				SerializedName: str(field(ln, "serializedName")),
				Description:    str(field(ln, "description")),
				Summary:        str(field(ln, "summary")),
				Namespace:      str(field(ln, "namespace")),
			}
			key := n.Content[i].Value
			if key == DefaultLanguage {
				l.Default = entry
				continue
			}
			if l.Overlays == nil {
				l.Overlays = make(map[string]*Language)
			}
			l.Overlays[key] = entry
		}
	}
	l.ensureDefault(fallback)
	return l, nil
}

func (ld *Loader) extensions(n *yaml.Node) (*Extensions, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	if n.Kind != yaml.MappingNode {
		return nil, ld.malformed(n, "extensions must be a mapping")
	}
	e := &Extensions{Raw: make(map[string]any)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, vn := n.Content[i].Value, n.Content[i+1]
		if vn, err = ld.resolve(vn); err != nil {
			return nil, err
		}
		e.Raw[key] = anyValue(vn)
		switch key {
		case "x-ms-pageable":
			e.Pageable = &Pageable{
				NextLinkName:  str(field(vn, "nextLinkName")),
				ItemName:      str(field(vn, "itemName")),
				OperationName: str(field(vn, "operationName")),
			}
			if next := field(vn, "nextOperation"); next != nil {
				if e.Pageable.NextOperation, err = ld.operation(next); err != nil {
					return nil, err
				}
			}
		case "x-ms-skip-url-encoding":
			e.SkipURLEncoding = boolean(vn)
		case "x-ms-client-flatten":
			e.ClientFlatten = boolean(vn)
		case "x-ms-long-running-operation":
			e.LongRunningOperation = boolean(vn)
		case "x-ms-long-running-operation-options":
			e.LongRunningOptions = &LongRunningOptions{FinalStateVia: str(field(vn, "final-state-via"))}
		case "x-ms-flattened":
			e.Flattened = boolean(vn)
		case "x-ms-azure-resource":
			e.AzureResource = boolean(vn)
		case "x-ms-mutability":
			e.Mutability = strs(vn)
		case "x-ms-header-collection-prefix":
			e.HeaderCollectionPrefix = str(vn)
		case "x-ms-secret":
			e.Secret = boolean(vn)
		case "x-ms-examples":
			if m, ok := anyValue(vn).(map[string]any); ok {
				e.Examples = m
			}
		}
	}
	return e, nil
}

func (ld *Loader) apiVersions(n *yaml.Node) []APIVersion {
	items, _ := ld.seq(n)
	var out []APIVersion
	for _, item := range items {
		item, _ = ld.resolve(item)
		if item == nil {
			continue
		}
		out = append(out, APIVersion{Version: str(field(item, "version")), Range: str(field(item, "range"))})
	}
	return out
}

// resolve follows aliases and $ref pointers to the node they designate.
func (ld *Loader) resolve(n *yaml.Node) (*yaml.Node, error) {
	if n == nil {
		return nil, nil
	}
	start := n
	for {
		switch {
		case n.Kind == yaml.AliasNode:
			n = n.Alias
		case n.Kind == yaml.MappingNode && len(n.Content) == 2 && n.Content[0].Value == "$ref":
			if ld.resolving[n] {
				return nil, ld.malformed(start, "circular $ref "+n.Content[1].Value)
			}
			ld.resolving[n] = true
			target, err := ld.pointer(n.Content[1])
			delete(ld.resolving, n)
			if err != nil {
				return nil, err
			}
			n = target
		default:
			return n, nil
		}
	}
}

// pointer walks a JSON pointer such as "#/schemas/objects/3" from the root.
func (ld *Loader) pointer(ref *yaml.Node) (*yaml.Node, error) {
	p, err := jsonpointer.New(strings.TrimPrefix(ref.Value, "#"))
	if err != nil {
		return nil, &generrors.MalformedInputError{Path: ld.source, Line: ref.Line, Column: ref.Column, Message: "invalid $ref " + ref.Value, Cause: err}
	}
	cur := ld.root
	for _, tok := range p.DecodedTokens() {
		for cur.Kind == yaml.AliasNode {
			cur = cur.Alias
		}
		switch cur.Kind {
		case yaml.MappingNode:
			cur = field(cur, tok)
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(cur.Content) {
				cur = nil
			} else {
				cur = cur.Content[idx]
			}
		default:
			cur = nil
		}
		if cur == nil {
			return nil, ld.malformed(ref, "unresolvable $ref "+ref.Value)
		}
	}
	return cur, nil
}

func (ld *Loader) seq(n *yaml.Node) ([]*yaml.Node, error) {
	if n == nil {
		return nil, nil
	}
	n, err := ld.resolve(n)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return n.Content, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, ld.malformed(n, "expected a sequence")
}

func (ld *Loader) malformed(n *yaml.Node, msg string) error {
	e := &generrors.MalformedInputError{Path: ld.source, Message: msg}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

func (ld *Loader) unknown(n *yaml.Node, vocabulary, value string) error {
	e := &generrors.UnknownValueError{Vocabulary: vocabulary, Value: value, Path: ld.source}
	if n != nil {
		e.Line = n.Line
	}
	return e
}

// field returns the value node for key in a mapping node, following aliases
// on the mapping itself.
func field(n *yaml.Node, key string) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func scalar(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return nil
	}
	return n
}

func str(n *yaml.Node) string {
	if s := scalar(n); s != nil {
		return s.Value
	}
	return ""
}

func boolean(n *yaml.Node) bool {
	s := scalar(n)
	if s == nil {
		return false
	}
	b, _ := strconv.ParseBool(s.Value)
	return b
}

func integer(n *yaml.Node) int {
	s := scalar(n)
	if s == nil {
		return 0
	}
	i, _ := strconv.Atoi(s.Value)
	return i
}

func intPtr(n *yaml.Node) *int {
	s := scalar(n)
	if s == nil {
		return nil
	}
	i, err := strconv.Atoi(s.Value)
	if err != nil {
		return nil
	}
	return &i
}

func float(n *yaml.Node) *float64 {
	s := scalar(n)
	if s == nil {
		return nil
	}
	f, err := strconv.ParseFloat(s.Value, 64)
	if err != nil {
		return nil
	}
	return &f
}

func strs(n *yaml.Node) []string {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(n.Content))
	for _, c := range n.Content {
		out = append(out, str(c))
	}
	return out
}

func anyValue(n *yaml.Node) any {
	if n == nil {
		return nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil
	}
	return v
}

func deprecation(n *yaml.Node) *Deprecation {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		if b, err := strconv.ParseBool(n.Value); err == nil && !b {
			return nil
		}
		return &Deprecation{Message: n.Value}
	}
	return &Deprecation{Message: str(field(n, "message"))}
}
