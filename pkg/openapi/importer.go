// Package openapi loads and validates OpenAPI 3 documents and imports them
// as code models, so the generator runs from either input.
package openapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/logging"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

const (
	hostParameter       = "$host"
	apiVersionParameter = "api-version"
	defaultBodyName     = "body"
)

// methods lists the HTTP methods in the order operations of a path are
// imported.
var methods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodHead, http.MethodTrace,
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(im *Importer) { im.logger = logging.OrNop(l) }
}

// WithClientName names the imported client. The default is derived from the
// document title.
func WithClientName(name string) Option {
	return func(im *Importer) { im.clientName = name }
}

// WithIncludeTags keeps only operations with a tag matching one of the
// regular expressions. Untagged operations carry the tag "misc".
func WithIncludeTags(patterns ...string) Option {
	return func(im *Importer) { im.includeTags = append(im.includeTags, patterns...) }
}

// WithExcludeTags drops operations with a tag matching one of the regular
// expressions.
func WithExcludeTags(patterns ...string) Option {
	return func(im *Importer) { im.excludeTags = append(im.excludeTags, patterns...) }
}

// Importer converts OpenAPI documents into code models.
//
// Component schemas become typed schemas; allOf references become parents
// and a discriminator makes the hierarchy polymorphic. Operations are
// grouped by their first tag, untagged ones land in the client's unnamed
// group. Path, query, header and cookie parameters and the request body
// become method parameters, except api-version which is hoisted onto the
// client. 2xx responses are responses, the rest exceptions.
type Importer struct {
	logger      logging.Logger
	clientName  string
	includeTags []string
	excludeTags []string
}

// NewImporter returns an Importer.
func NewImporter(opts ...Option) *Importer {
	im := &Importer{logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// run holds the state of one import.
type run struct {
	doc    *openapi3.T
	cm     *codemodel.CodeModel
	logger logging.Logger

	named      map[string]codemodel.Schema
	resolving  map[string]bool
	primitives map[string]*codemodel.PrimitiveSchema
	choices    map[string]*codemodel.ChoiceSchema
	objects    []*codemodel.ObjectSchema
	mappings   map[*codemodel.ObjectSchema]map[string]string

	client     *codemodel.Client
	host       *codemodel.Parameter
	apiVersion *codemodel.Parameter
	groups     map[string]*codemodel.OperationGroup
}

// Import converts doc. The document is expected to be valid; see Validate.
func (im *Importer) Import(doc *openapi3.T) (*codemodel.CodeModel, error) {
	filter, err := compileTagFilter(im.includeTags, im.excludeTags)
	if err != nil {
		return nil, err
	}

	var title, description string
	if doc.Info != nil {
		title, description = doc.Info.Title, doc.Info.Description
	}
	r := &run{
		doc: doc,
		cm: &codemodel.CodeModel{
			Info:     codemodel.Info{Title: title, Description: description},
			Schemas:  codemodel.NewSchemas(),
			Language: codemodel.NewLanguages(title, description),
		},
		logger:     im.logger,
		named:      make(map[string]codemodel.Schema),
		resolving:  make(map[string]bool),
		primitives: make(map[string]*codemodel.PrimitiveSchema),
		choices:    make(map[string]*codemodel.ChoiceSchema),
		mappings:   make(map[*codemodel.ObjectSchema]map[string]string),
		groups:     make(map[string]*codemodel.OperationGroup),
	}

	if doc.Components != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := r.component(name); err != nil {
				return nil, err
			}
		}
	}

	r.cm.Security = r.security()
	r.client = &codemodel.Client{
		Language: codemodel.NewLanguages(im.name(title), description),
		Security: r.cm.Security,
	}
	if doc.Info != nil && doc.Info.Version != "" {
		r.client.APIVersions = []codemodel.APIVersion{{Version: doc.Info.Version}}
	}
	r.host = r.hostParameter()
	r.client.GlobalParameters = []*codemodel.Parameter{r.host}

	var paths map[string]*openapi3.PathItem
	if doc.Paths != nil {
		paths = doc.Paths.Map()
	}
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	for _, path := range keys {
		item := paths[path]
		for _, method := range methods {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			if !filter.allows(op.Tags) {
				r.logger.Debug("operation filtered out by tags", "operation", op.OperationID, "tags", op.Tags)
				continue
			}
			if err := r.operation(path, method, item, op); err != nil {
				return nil, err
			}
		}
	}

	r.link()
	r.cm.Clients = []*codemodel.Client{r.client}
	r.logger.Debug("imported OpenAPI document",
		"title", title, "schemas", len(r.cm.Schemas.All()), "groups", len(r.client.OperationGroups))
	return r.cm, nil
}

func (im *Importer) name(title string) string {
	if im.clientName != "" {
		return im.clientName
	}
	name := naming.GoIdentifier(title)
	if name == "" {
		name = "Service"
	}
	if !strings.HasSuffix(name, "Client") {
		name += "Client"
	}
	return name
}

// hostParameter is the client endpoint. The first server URL is its
// default.
func (r *run) hostParameter() *codemodel.Parameter {
	p := &codemodel.Parameter{
		Value: codemodel.Value{
			Schema:   r.primitive(codemodel.SchemaTypeURI, "", 0),
			Required: true,
			Language: codemodel.Languages{Default: &codemodel.Language{
				Name: hostParameter, SerializedName: hostParameter, Description: "Server parameter",
			}},
			Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{In: codemodel.ParameterLocationURI}},
		},
		Implementation: codemodel.ImplementationClient,
	}
	if len(r.doc.Servers) > 0 && r.doc.Servers[0] != nil {
		p.ClientDefaultValue = strings.TrimSuffix(r.doc.Servers[0].URL, "/")
	}
	return p
}

// apiVersionGlobal returns the client's api-version parameter, creating it
// on first use from the first operation parameter that declares it.
func (r *run) apiVersionGlobal(src *openapi3.Parameter) (*codemodel.Parameter, error) {
	if r.apiVersion != nil {
		return r.apiVersion, nil
	}
	schema, err := r.schemaRef(src.Schema, "ApiVersion")
	if err != nil {
		return nil, err
	}
	r.apiVersion = &codemodel.Parameter{
		Value: codemodel.Value{
			Schema:   schema,
			Required: true,
			Language: serializedLanguages(apiVersionParameter, src.Description),
			Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{
				In: codemodel.ParameterLocationQuery, Style: codemodel.StyleForm, Explode: true,
			}},
		},
		Implementation: codemodel.ImplementationClient,
	}
	r.client.GlobalParameters = append(r.client.GlobalParameters, r.apiVersion)
	return r.apiVersion, nil
}

// group returns the operation group of tag, "" being the client's own.
func (r *run) group(tag string) *codemodel.OperationGroup {
	if g, ok := r.groups[tag]; ok {
		return g
	}
	g := &codemodel.OperationGroup{Key: tag, Language: codemodel.NewLanguages(tag, ""), Client: r.client}
	r.groups[tag] = g
	r.client.OperationGroups = append(r.client.OperationGroups, g)
	sort.SliceStable(r.client.OperationGroups, func(i, j int) bool {
		return r.client.OperationGroups[i].Key < r.client.OperationGroups[j].Key
	})
	return g
}

// operationName derives the method name: the part of the operation id after
// the last underscore, or the method and path when there is no id.
func operationName(method, path, id string) string {
	if id == "" {
		return naming.CamelCase(strings.ToLower(method) + " " + strings.NewReplacer("{", " ", "}", " ").Replace(path))
	}
	if i := strings.LastIndex(id, "_"); i >= 0 && i < len(id)-1 {
		id = id[i+1:]
	}
	return naming.CamelCase(id)
}

func (r *run) operation(path, method string, item *openapi3.PathItem, src *openapi3.Operation) error {
	name := operationName(method, path, src.OperationID)
	tag := ""
	if len(src.Tags) > 0 {
		tag = src.Tags[0]
	}
	g := r.group(tag)

	op := &codemodel.Operation{
		OperationID: src.OperationID,
		Language: codemodel.Languages{Default: &codemodel.Language{
			Name: name, Description: src.Description, Summary: src.Summary,
		}},
		Parameters: []*codemodel.Parameter{r.host},
		Extensions: decodeExtensions(src.Extensions),
		Group:      g,
	}
	if op.OperationID == "" {
		op.OperationID = naming.PascalCase(tag) + "_" + naming.PascalCase(name)
	}
	if src.Deprecated {
		op.Deprecated = &codemodel.Deprecation{}
	}
	wrap := func(err error) error { return fmt.Errorf("operation %s: %w", op.OperationID, err) }

	req := &codemodel.Request{}
	h := req.HTTP()
	h.Method = method
	h.Path = path
	h.URI = "{" + hostParameter + "}"

	for _, param := range mergeParameters(item.Parameters, src.Parameters) {
		if param.In == openapi3.ParameterInQuery && param.Name == apiVersionParameter {
			p, err := r.apiVersionGlobal(param)
			if err != nil {
				return wrap(err)
			}
			op.Parameters = append(op.Parameters, p)
			continue
		}
		p, err := r.parameter(name, param)
		if err != nil {
			return wrap(err)
		}
		req.Parameters = append(req.Parameters, p)
	}

	if err := r.body(name, src, req); err != nil {
		return wrap(err)
	}
	req.SignatureParameters = append([]*codemodel.Parameter(nil), req.Parameters...)
	op.Requests = []*codemodel.Request{req}

	if err := r.responses(name, src, op); err != nil {
		return wrap(err)
	}

	g.Operations = append(g.Operations, op)
	return nil
}

// mergeParameters overlays operation parameters on path item parameters;
// an operation parameter replaces the path item one of the same name and
// location.
func mergeParameters(shared, own openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := make(map[string]int)
	for _, list := range []openapi3.Parameters{shared, own} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + "/" + ref.Value.Name
			if i, ok := index[key]; ok {
				out[i] = ref.Value
				continue
			}
			index[key] = len(out)
			out = append(out, ref.Value)
		}
	}
	return out
}

var locations = map[string]codemodel.ParameterLocation{
	openapi3.ParameterInPath:   codemodel.ParameterLocationPath,
	openapi3.ParameterInQuery:  codemodel.ParameterLocationQuery,
	openapi3.ParameterInHeader: codemodel.ParameterLocationHeader,
	openapi3.ParameterInCookie: codemodel.ParameterLocationCookie,
}

func (r *run) parameter(opName string, src *openapi3.Parameter) (*codemodel.Parameter, error) {
	in, ok := locations[src.In]
	if !ok {
		return nil, &generrors.UnknownValueError{Vocabulary: "parameter location", Value: src.In, Path: src.Name}
	}
	schema, err := r.schemaRef(src.Schema, naming.PascalCase(opName)+naming.PascalCase(src.Name))
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", src.Name, err)
	}

	style := codemodel.SerializationStyle(src.Style)
	if style == "" {
		style = codemodel.StyleSimple
		if in == codemodel.ParameterLocationQuery || in == codemodel.ParameterLocationCookie {
			style = codemodel.StyleForm
		}
	}
	explode := style == codemodel.StyleForm
	if src.Explode != nil {
		explode = *src.Explode
	}

	p := &codemodel.Parameter{
		Value: codemodel.Value{
			Schema:     schema,
			Required:   src.Required || in == codemodel.ParameterLocationPath,
			Language:   serializedLanguages(src.Name, src.Description),
			Protocol:   &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{In: in, Style: style, Explode: explode}},
			Extensions: decodeExtensions(src.Extensions),
		},
		Implementation: codemodel.ImplementationMethod,
	}
	if src.Deprecated {
		p.Deprecated = &codemodel.Deprecation{}
	}
	return p, nil
}

// body adds the request body parameter. The media type is picked the way
// clients prefer to send: JSON, then forms, then the first declared.
func (r *run) body(opName string, src *openapi3.Operation, req *codemodel.Request) error {
	if src.RequestBody == nil || src.RequestBody.Value == nil || len(src.RequestBody.Value.Content) == 0 {
		return nil
	}
	rb := src.RequestBody.Value
	contentType, media, mediaTypes := pickMedia(rb.Content)

	h := req.HTTP()
	h.MediaTypes = mediaTypes
	h.KnownMediaType = knownMediaType(contentType)

	var (
		schema codemodel.Schema
		err    error
	)
	if h.KnownMediaType == codemodel.KnownMediaTypeBinary {
		schema = r.primitive(codemodel.SchemaTypeBinary, "", 0)
	} else if schema, err = r.schemaRef(media.Schema, naming.PascalCase(opName)+"Request"); err != nil {
		return fmt.Errorf("request body: %w", err)
	}

	name := defaultBodyName
	if n, ok := src.Extensions["x-ms-requestBody-name"].(string); ok && n != "" {
		name = n
	}
	req.Parameters = append(req.Parameters, &codemodel.Parameter{
		Value: codemodel.Value{
			Schema:   schema,
			Required: rb.Required,
			Language: codemodel.NewLanguages(naming.CamelCase(name), rb.Description),
			Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{In: codemodel.ParameterLocationBody}},
		},
		Implementation: codemodel.ImplementationMethod,
	})
	return nil
}

func (r *run) responses(opName string, src *openapi3.Operation, op *codemodel.Operation) error {
	if src.Responses == nil {
		return nil
	}
	all := src.Responses.Map()
	codes := make([]string, 0, len(all))
	for code := range all {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		rr := all[code]
		if rr == nil || rr.Value == nil {
			continue
		}
		var description string
		if rr.Value.Description != nil {
			description = *rr.Value.Description
		}
		resp := &codemodel.Response{
			Language: codemodel.NewLanguages("", description),
			Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{StatusCodes: []string{code}}},
		}
		h := resp.Protocol.HTTP

		if len(rr.Value.Content) > 0 {
			contentType, media, mediaTypes := pickMedia(rr.Value.Content)
			h.MediaTypes = mediaTypes
			h.KnownMediaType = knownMediaType(contentType)
			if h.KnownMediaType == codemodel.KnownMediaTypeBinary {
				resp.Binary = true
			} else if media.Schema != nil {
				schema, err := r.schemaRef(media.Schema, naming.PascalCase(opName)+"Response")
				if err != nil {
					return fmt.Errorf("response %s: %w", code, err)
				}
				resp.Schema = schema
				resp.Nullable = media.Schema.Value != nil && media.Schema.Value.Nullable
			}
		}

		headers := make([]string, 0, len(rr.Value.Headers))
		for name := range rr.Value.Headers {
			headers = append(headers, name)
		}
		sort.Strings(headers)
		for _, name := range headers {
			hr := rr.Value.Headers[name]
			if hr == nil || hr.Value == nil {
				continue
			}
			schema, err := r.schemaRef(hr.Value.Schema, "")
			if err != nil {
				return fmt.Errorf("response %s header %s: %w", code, name, err)
			}
			h.Headers = append(h.Headers, &codemodel.HTTPHeader{
				Header:   name,
				Schema:   schema,
				Language: codemodel.NewLanguages(naming.CamelCase(name), hr.Value.Description),
			})
		}

		if strings.HasPrefix(code, "2") {
			op.Responses = append(op.Responses, resp)
		} else {
			op.Exceptions = append(op.Exceptions, resp)
		}
	}
	return nil
}

// pickMedia chooses the media type of a body and returns every declared one,
// sorted.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType, []string) {
	types := make([]string, 0, len(content))
	for ct := range content {
		types = append(types, ct)
	}
	sort.Strings(types)
	for _, preferred := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if media, ok := content[preferred]; ok && media != nil {
			return preferred, media, types
		}
	}
	for _, ct := range types {
		if media := content[ct]; media != nil {
			return ct, media, types
		}
	}
	return types[0], &openapi3.MediaType{}, types
}

func knownMediaType(contentType string) codemodel.KnownMediaType {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case ct == "application/json" || strings.HasSuffix(ct, "+json") || ct == "text/json":
		return codemodel.KnownMediaTypeJSON
	case ct == "application/xml" || ct == "text/xml" || strings.HasSuffix(ct, "+xml"):
		return codemodel.KnownMediaTypeXML
	case ct == "application/x-www-form-urlencoded":
		return codemodel.KnownMediaTypeForm
	case ct == "multipart/form-data":
		return codemodel.KnownMediaTypeMultipart
	case ct == "text/plain":
		return codemodel.KnownMediaTypeText
	}
	return codemodel.KnownMediaTypeBinary
}

// security converts the security schemes in name order. HTTP bearer auth
// becomes a key sent in the Authorization header; basic auth has no
// counterpart and is skipped.
func (r *run) security() *codemodel.Security {
	if r.doc.Components == nil || len(r.doc.Components.SecuritySchemes) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.doc.Components.SecuritySchemes))
	for name := range r.doc.Components.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)

	sec := &codemodel.Security{AuthenticationRequired: len(r.doc.Security) > 0}
	for _, name := range names {
		sr := r.doc.Components.SecuritySchemes[name]
		if sr == nil || sr.Value == nil {
			continue
		}
		s := sr.Value
		switch s.Type {
		case "apiKey":
			sec.Schemes = append(sec.Schemes, &codemodel.SecurityScheme{Type: codemodel.SecuritySchemeKey, Name: s.Name, In: s.In})
		case "http":
			if !strings.EqualFold(s.Scheme, "bearer") {
				r.logger.Warn("skipping unsupported http security scheme", "name", name, "scheme", s.Scheme)
				continue
			}
			sec.Schemes = append(sec.Schemes, &codemodel.SecurityScheme{
				Type: codemodel.SecuritySchemeKey, Name: "Authorization", In: "header", Prefix: "Bearer",
			})
		case "oauth2", "openIdConnect":
			sec.Schemes = append(sec.Schemes, &codemodel.SecurityScheme{Type: codemodel.SecuritySchemeOAuth2, Scopes: scopes(s.Flows)})
		default:
			r.logger.Warn("skipping unsupported security scheme", "name", name, "type", s.Type)
		}
	}
	if len(sec.Schemes) == 0 {
		return nil
	}
	return sec
}

// scopes collects the scopes of every OAuth2 flow, sorted and unique.
func scopes(flows *openapi3.OAuthFlows) []string {
	if flows == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, f := range []*openapi3.OAuthFlow{flows.Implicit, flows.Password, flows.ClientCredentials, flows.AuthorizationCode} {
		if f == nil {
			continue
		}
		for scope := range f.Scopes {
			if !seen[scope] {
				seen[scope] = true
				out = append(out, scope)
			}
		}
	}
	sort.Strings(out)
	return out
}
