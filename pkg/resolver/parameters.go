package resolver

import (
	"net/http"
	"slices"
	"strings"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

// Header names of the OData repeatable requests protocol.
const (
	RepeatabilityRequestIDHeader = "repeatability-request-id"
	RepeatabilityFirstSentHeader = "repeatability-first-sent"
)

const (
	contentLengthHeader = "Content-Length"
	contentTypeHeader   = "Content-Type"
)

// odataNames maps OData query parameters to their client names.
var odataNames = map[string]string{
	"maxpagesize": "maxPageSize",
	"orderby":     "orderBy",
	"$top":        "top",
	"$skip":       "skip",
	"$filter":     "filter",
	"$select":     "selectParameter",
	"$expand":     "expand",
	"$orderby":    "orderBy",
}

// mergeOperationParameters prepends the operation-level parameters to the
// request's own. Signature parameters that belong to a group are dropped
// from the signature; the group stands for them.
func mergeOperationParameters(op *codemodel.Operation, req *codemodel.Request) {
	req.Parameters = appendUnique(nil, op.Parameters, req.Parameters)
	var signature []*codemodel.Parameter
	for _, p := range appendUnique(nil, op.SignatureParameters, req.SignatureParameters) {
		if p.GroupedBy == nil {
			signature = append(signature, p)
		}
	}
	req.SignatureParameters = signature
}

func appendUnique(dst []*codemodel.Parameter, lists ...[]*codemodel.Parameter) []*codemodel.Parameter {
	for _, list := range lists {
		for _, p := range list {
			if p != nil && !slices.Contains(dst, p) {
				dst = append(dst, p)
			}
		}
	}
	return dst
}

// contentTypeAsHeader binds an unbound "contentType" parameter to the
// Content-Type header.
func contentTypeAsHeader(req *codemodel.Request) {
	for _, p := range req.Parameters {
		if p.Location() != "" || p.Name() != "contentType" {
			continue
		}
		p.Protocol = &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{In: codemodel.ParameterLocationHeader}}
		if p.Language.Default == nil {
			p.Language.Default = &codemodel.Language{Name: "contentType"}
		}
		p.Language.Default.SerializedName = contentTypeHeader
		return
	}
}

// addContentLength inserts a Content-Length header right after a binary body
// that has none.
func (rn *run) addContentLength(req *codemodel.Request) {
	i := slices.IndexFunc(req.Parameters, isBinary)
	if i < 0 || slices.ContainsFunc(req.Parameters, isHeader(contentLengthHeader)) {
		return
	}
	body := req.Parameters[i]
	length := &codemodel.Parameter{
		Value: codemodel.Value{
			Schema:   rn.int64Schema(),
			Required: body.Required,
			Language: codemodel.Languages{Default: &codemodel.Language{
				Name:           "contentLength",
				SerializedName: contentLengthHeader,
				Description:    "The Content-Length header for the request",
			}},
			Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{In: codemodel.ParameterLocationHeader}},
		},
		Implementation: codemodel.ImplementationMethod,
	}
	req.Parameters = slices.Insert(req.Parameters, i+1, length)
	if j := slices.Index(req.SignatureParameters, body); j >= 0 {
		req.SignatureParameters = slices.Insert(req.SignatureParameters, j+1, length)
	} else if length.Required {
		req.SignatureParameters = append(req.SignatureParameters, length)
	}
	rn.logger.Debug("added Content-Length header", "body", body.Name())
}

func isBinary(p *codemodel.Parameter) bool {
	s, ok := p.Schema.(*codemodel.PrimitiveSchema)
	return ok && s.Type == codemodel.SchemaTypeBinary
}

func isHeader(name string) func(*codemodel.Parameter) bool {
	return func(p *codemodel.Parameter) bool {
		return p.Location() == codemodel.ParameterLocationHeader && strings.EqualFold(p.SerializedName(), name)
	}
}

// renameODataParameters gives OData query and header parameters their
// client names, unless the input already renamed them.
func (r *Resolver) renameODataParameters(req *codemodel.Request) {
	for _, p := range req.Parameters {
		switch p.Location() {
		case codemodel.ParameterLocationQuery, codemodel.ParameterLocationHeader:
		default:
			continue
		}
		serialized := p.SerializedName()
		name, ok := odataNames[serialized]
		if !ok || r.clientName(p.Language) != serialized {
			continue
		}
		r.setClientName(&p.Language, name)
	}
}

// deduplicateParameterNames appends "Param" to a parameter whose client name
// is already taken within the request. Parameters produced by flattening are
// not sent by the proxy and keep their names.
func (r *Resolver) deduplicateParameterNames(req *codemodel.Request) {
	seen := make(map[string]bool)
	for _, p := range req.Parameters {
		name := r.clientName(p.Language)
		if p.OriginalParameter == nil && seen[nameKey(name)] {
			r.logger.Debug("renamed duplicate parameter", "parameter", name, "to", name+"Param")
			name += "Param"
			r.setClientName(&p.Language, name)
		}
		seen[nameKey(name)] = true
	}
}

func nameKey(name string) string {
	return naming.CamelCase(strings.TrimLeft(name, "$"))
}

// checkGroupingCycles walks the groupedBy and originalParameter links of
// every parameter of op. Shared ancestors are fine; a link back into the
// current path is not.
func checkGroupingCycles(op *codemodel.Operation) error {
	done := make(map[*codemodel.Parameter]bool)
	var path []*codemodel.Parameter

	var visit func(p *codemodel.Parameter) error
	visit = func(p *codemodel.Parameter) error {
		if p == nil || done[p] {
			return nil
		}
		if slices.Contains(path, p) {
			chain := make([]string, 0, len(path)+1)
			for _, q := range path[slices.Index(path, p):] {
				chain = append(chain, parameterLabel(q))
			}
			return &generrors.GroupingCycleError{Operation: op.OperationID, Chain: append(chain, parameterLabel(p))}
		}
		path = append(path, p)
		if err := visit(p.GroupedBy); err != nil {
			return err
		}
		if err := visit(p.OriginalParameter); err != nil {
			return err
		}
		path = path[:len(path)-1]
		done[p] = true
		return nil
	}

	lists := [][]*codemodel.Parameter{op.Parameters, op.SignatureParameters}
	for _, req := range op.Requests {
		lists = append(lists, req.Parameters, req.SignatureParameters)
	}
	for _, list := range lists {
		for _, p := range list {
			if err := visit(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// GroupRoot returns the outermost group p belongs to, or p itself when it is
// not grouped.
func GroupRoot(p *codemodel.Parameter) (*codemodel.Parameter, error) {
	var chain []string
	seen := make(map[*codemodel.Parameter]bool)
	for p.GroupedBy != nil {
		seen[p] = true
		chain = append(chain, parameterLabel(p))
		p = p.GroupedBy
		if seen[p] {
			return nil, &generrors.GroupingCycleError{Chain: append(chain, parameterLabel(p))}
		}
	}
	return p, nil
}

func parameterLabel(p *codemodel.Parameter) string {
	if name := p.Name(); name != "" {
		return name
	}
	return "<unnamed>"
}

// IsMaxPageSizeParameter reports whether p is the page size control of a
// paged operation: a query parameter serialized as "maxpagesize" or named
// maxPageSize on the client. Either match is enough.
func (r *Resolver) IsMaxPageSizeParameter(p *codemodel.Parameter) bool {
	if p.Location() != codemodel.ParameterLocationQuery {
		return false
	}
	bySerializedName := strings.EqualFold(p.SerializedName(), "maxpagesize")
	byClientName := r.clientName(p.Language) == "maxPageSize"
	if !bySerializedName && !byClientName {
		return false
	}
	r.logger.Debug("detected maxpagesize parameter",
		"parameter", p.SerializedName(), "bySerializedName", bySerializedName, "byClientName", byClientName)
	return true
}

// IsRepeatableOperation reports whether op takes the repeatable requests
// headers: a PUT, PATCH, DELETE or POST that declares the
// repeatability-request-id special header.
func IsRepeatableOperation(op *codemodel.Operation) bool {
	switch op.HTTPMethod() {
	case http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodPost:
		return slices.Contains(op.SpecialHeaders, RepeatabilityRequestIDHeader)
	}
	return false
}
