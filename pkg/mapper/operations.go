package mapper

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

// ResponseType decides the body type of an operation's responses. With no
// response schema the type is bool for a HEAD that declares 404, a reader
// when a response is binary, and void otherwise. Several schemas resolve to
// their lowest common parent.
func (m *Mapper) ResponseType(op *codemodel.Operation) (clientmodel.Type, error) {
	var schemas []codemodel.Schema
	for _, r := range op.Responses {
		if r.Schema != nil {
			schemas = append(schemas, r.Schema)
		}
	}
	if len(schemas) == 0 {
		switch {
		case headAsBoolean(op):
			return clientmodel.Bool, nil
		case containsBinaryResponse(op):
			return clientmodel.ReadCloser, nil
		}
		return clientmodel.Void, nil
	}

	body := LowestCommonParent(schemas)
	if codemodel.IsAny(body) && !allAny(schemas) {
		m.logger.Debug("responses share no common parent, using any",
			"operation", op.OperationID, "responses", len(schemas))
	}
	return m.MapSchema(body)
}

func headAsBoolean(op *codemodel.Operation) bool {
	if op.HTTPMethod() != http.MethodHead {
		return false
	}
	for _, r := range op.Responses {
		for _, code := range r.StatusCodes() {
			if code == "404" {
				return true
			}
		}
	}
	return false
}

func containsBinaryResponse(op *codemodel.Operation) bool {
	for _, r := range op.Responses {
		if r.Binary {
			return true
		}
	}
	return false
}

func allAny(schemas []codemodel.Schema) bool {
	for _, s := range schemas {
		if !codemodel.IsAny(s) {
			return false
		}
	}
	return true
}

// ExpectedStatusCodes returns the numeric status codes of the success
// responses, sorted. "default" and other non-numeric codes are skipped.
func ExpectedStatusCodes(op *codemodel.Operation) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range op.Responses {
		for _, code := range r.StatusCodes() {
			n, err := strconv.Atoi(code)
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// RequestContentType returns the content type a request is sent with.
func RequestContentType(req *codemodel.Request) string {
	h := req.HTTP()
	if len(h.MediaTypes) == 1 {
		return h.MediaTypes[0]
	}
	if ct := h.KnownMediaType.ContentType(); ct != "" {
		return ct
	}
	return "application/json"
}

// ProxyParameter maps an operation parameter to its REST proxy form.
func (m *Mapper) ProxyParameter(p *codemodel.Parameter) (*clientmodel.ProxyParameter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.mapSchema(p.Schema)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
	}
	location := p.Location()
	constant, isConstant := p.Schema.(*codemodel.ConstantSchema)
	if (p.Nullable || !p.Required) && !isConstant {
		t = clientmodel.Optional(t)
	}

	lang := p.Language.For(m.settings.TargetLanguage)
	pp := &clientmodel.ProxyParameter{
		Name:           ParameterName(lang.Name),
		SerializedName: p.SerializedName(),
		Description:    parameterDescription(p, lang),
		Location:       string(location),
		Type:           t,
		Required:       p.Required,
		Nullable:       p.Nullable,
		FromClient:     p.Implementation == codemodel.ImplementationClient,
		Constant:       isConstant,
	}

	if p.Extensions != nil {
		pp.AlreadyEncoded = p.Extensions.SkipURLEncoding
		if prefix := p.Extensions.HeaderCollectionPrefix; prefix != "" {
			pp.HeaderCollectionPrefix = prefix
			pp.Type = &clientmodel.MapType{Elem: clientmodel.String}
		}
	}

	pp.WireType = clientmodel.WireType(pp.Type)
	if h := httpOf(p); h != nil {
		pp.Explode = h.Explode
		if location != codemodel.ParameterLocationBody {
			switch clientmodel.Underlying(pp.WireType).(type) {
			case *clientmodel.ListType:
				if h.Explode {
					pp.WireType = &clientmodel.ListType{Elem: clientmodel.String}
				} else {
					pp.WireType = clientmodel.String
				}
			}
			if clientmodel.Underlying(pp.WireType) == clientmodel.Bytes {
				pp.WireType = clientmodel.String
			}
		}
		pp.CollectionFormat = collectionFormat(h.Style)
	}
	if pp.CollectionFormat == "" {
		if _, isList := clientmodel.Underlying(pp.Type).(*clientmodel.ListType); isList && pp.WireType == clientmodel.String {
			pp.CollectionFormat = clientmodel.CollectionCSV
		}
	}

	switch {
	case isConstant:
		if pp.ConstantValue, err = m.literal(t, constant.Value); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
	case p.ClientDefaultValue != nil:
		if pp.DefaultValue, err = m.literal(t, p.ClientDefaultValue); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
	}
	return pp, nil
}

// ClientParameter maps an operation parameter to a client method parameter.
func (m *Mapper) ClientParameter(p *codemodel.Parameter) (*clientmodel.ClientMethodParameter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.mapSchema(p.Schema)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
	}
	_, isConstant := p.Schema.(*codemodel.ConstantSchema)
	if (p.Nullable || !p.Required) && !isConstant {
		t = clientmodel.Optional(t)
	}
	lang := p.Language.For(m.settings.TargetLanguage)
	cp := &clientmodel.ClientMethodParameter{
		Name:        ParameterName(lang.Name),
		Description: parameterDescription(p, lang),
		Type:        t,
		WireType:    clientmodel.WireType(t),
		Required:    p.Required,
		Constant:    isConstant,
		FromClient:  p.Implementation == codemodel.ImplementationClient,
		Location:    string(p.Location()),
	}
	if p.GroupedBy != nil {
		cp.GroupedBy = ParameterName(p.GroupedBy.Language.For(m.settings.TargetLanguage).Name)
	}
	if p.ClientDefaultValue != nil && !isConstant {
		if cp.DefaultValue, err = m.literal(t, p.ClientDefaultValue); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
	}
	return cp, nil
}

// ProxyMethod maps one request of an operation to a REST proxy method.
func (m *Mapper) ProxyMethod(op *codemodel.Operation, req *codemodel.Request) (*clientmodel.ProxyMethod, error) {
	returnType, err := m.ResponseType(op)
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", op.OperationID, err)
	}
	lang := op.Language.For(m.settings.TargetLanguage)
	h := req.HTTP()
	pm := &clientmodel.ProxyMethod{
		Name:                naming.CamelCase(lang.Name),
		BaseName:            naming.CamelCase(lang.Name),
		OperationID:         op.OperationID,
		Description:         lang.Description,
		HTTPMethod:          op.HTTPMethod(),
		URLPath:             h.Path,
		BaseURL:             h.URI,
		RequestContentType:  RequestContentType(req),
		ReturnType:          returnType,
		ExpectedStatusCodes: ExpectedStatusCodes(op),
		SpecialHeaders:      op.SpecialHeaders,
	}

	for _, p := range requestParameters(op, req) {
		if httpOf(p) == nil {
			continue
		}
		pp, err := m.ProxyParameter(p)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.OperationID, err)
		}
		pm.Parameters = append(pm.Parameters, pp)
	}

	var errSchemas []codemodel.Schema
	for _, e := range op.Exceptions {
		if e.Schema != nil {
			errSchemas = append(errSchemas, e.Schema)
		}
	}
	if len(errSchemas) > 0 {
		if o, ok := LowestCommonParent(errSchemas).(*codemodel.ObjectSchema); ok {
			pm.ErrorModel = m.TypeName(o)
		}
	}
	return pm, nil
}

// requestParameters returns the operation-level parameters followed by the
// request's own, without duplicates.
func requestParameters(op *codemodel.Operation, req *codemodel.Request) []*codemodel.Parameter {
	seen := make(map[*codemodel.Parameter]bool)
	var out []*codemodel.Parameter
	for _, list := range [][]*codemodel.Parameter{op.Parameters, req.Parameters} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func httpOf(p *codemodel.Parameter) *codemodel.HTTPProtocol {
	if p.Protocol == nil {
		return nil
	}
	return p.Protocol.HTTP
}

func collectionFormat(style codemodel.SerializationStyle) clientmodel.CollectionFormat {
	switch style {
	case "":
		return ""
	case codemodel.StyleSpaceDelimited:
		return clientmodel.CollectionSSV
	case codemodel.StylePipeDelimited:
		return clientmodel.CollectionPipes
	case codemodel.StyleTabDelimited:
		return clientmodel.CollectionTSV
	}
	return clientmodel.CollectionCSV
}

// ParameterName returns the Go variable name of a parameter. Leading "$"
// of names such as "$host" is dropped.
func ParameterName(name string) string {
	if v := naming.GoVarName(strings.TrimLeft(name, "$")); v != "" {
		return v
	}
	return "param"
}

func goFieldName(name string) string {
	if f := naming.GoIdentifier(name); f != "" {
		return f
	}
	return "Field"
}

func parameterDescription(p *codemodel.Parameter, lang codemodel.Language) string {
	if d := codemodel.MergeSummaryWithDescription(p.Summary, lang.Description); d != "" {
		return d
	}
	return fmt.Sprintf("The %s parameter", ParameterName(lang.Name))
}
