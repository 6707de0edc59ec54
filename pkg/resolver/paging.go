package resolver

import (
	"net/http"
	"strings"

	"github.com/mohae/deepcopy"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
)

const nextPageDescription = "Get the next page of items"

// addNextOperation links a pageable operation to the operation that fetches
// its following pages. With an explicit operationName the named operation is
// looked up; otherwise a GET on the next link is synthesized into g, carrying
// the header and host parameters of op.
func (rn *run) addNextOperation(c *codemodel.Client, g *codemodel.OperationGroup, op *codemodel.Operation) {
	pageable := op.Extensions.Pageable
	if pageable.NextLinkName == "" || pageable.NextOperation == op {
		return
	}

	if pageable.OperationName != "" {
		groupName, name := g.Name(), pageable.OperationName
		if before, after, ok := strings.Cut(pageable.OperationName, "_"); ok {
			groupName, name = before, after
		}
		if next := findOperation(c, groupName, name); next != nil {
			linkNextOperation(op, next)
		} else {
			rn.logger.Debug("next page operation not found", "operation", op.OperationID, "operationName", pageable.OperationName)
		}
		return
	}

	name := op.Name() + "Next"
	if next := findOperation(c, g.Name(), name); next != nil {
		linkNextOperation(op, next)
		return
	}
	if len(op.Requests) == 0 {
		return
	}

	nextLink := &codemodel.Parameter{
		Value: codemodel.Value{
			Schema:   rn.stringSchema(),
			Required: true,
			Summary:  "The URL to get the next list of items",
			Language: codemodel.Languages{Default: &codemodel.Language{Name: "nextLink", SerializedName: "nextLink"}},
			Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{In: codemodel.ParameterLocationPath}},
			Extensions: &codemodel.Extensions{
				SkipURLEncoding: true,
				Raw:             map[string]any{"x-ms-skip-url-encoding": true},
			},
		},
		Implementation: codemodel.ImplementationMethod,
	}
	req := &codemodel.Request{
		Language: deepcopy.Copy(op.Requests[0].Language).(codemodel.Languages),
		Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{
			Method: http.MethodGet,
			Path:   "{nextLink}",
			URI:    op.Requests[0].HTTP().URI,
		}},
		Parameters:          []*codemodel.Parameter{nextLink},
		SignatureParameters: []*codemodel.Parameter{nextLink},
	}
	for _, r := range op.Requests {
		req.Parameters = appendUnique(req.Parameters, filterCarried(r.Parameters))
		req.SignatureParameters = appendUnique(req.SignatureParameters, filterCarried(r.SignatureParameters))
	}

	lang := deepcopy.Copy(op.Language).(codemodel.Languages)
	if lang.Default == nil {
		lang.Default = &codemodel.Language{}
	}
	lang.Default.Name = name
	lang.Default.Description = nextPageDescription
	for _, overlay := range lang.Overlays {
		if overlay != nil && overlay.Name != "" {
			overlay.Name += "Next"
		}
	}

	next := &codemodel.Operation{
		OperationID: op.OperationID + "Next",
		Language:    lang,
		Requests:    []*codemodel.Request{req},
		Responses:   op.Responses,
		Exceptions:  op.Exceptions,
		Extensions:  op.Extensions, // shared, so op and next both link to next
		APIVersions: deepcopy.Copy(op.APIVersions).([]codemodel.APIVersion),
		Deprecated:  op.Deprecated,
		Group:       g,
	}
	linkNextOperation(op, next)
	g.Operations = append(g.Operations, next)
	rn.logger.Debug("added next page operation", "operation", op.OperationID, "next", name)
}

// filterCarried keeps the parameters a next page request still sends: headers,
// host parameters and unbound ones.
func filterCarried(params []*codemodel.Parameter) []*codemodel.Parameter {
	var out []*codemodel.Parameter
	for _, p := range params {
		switch p.Location() {
		case "", codemodel.ParameterLocationHeader, codemodel.ParameterLocationURI:
			out = append(out, p)
		}
	}
	return out
}

func linkNextOperation(op, next *codemodel.Operation) {
	op.Extensions.Pageable.NextOperation = next
	if next.Extensions == nil {
		next.Extensions = &codemodel.Extensions{Raw: map[string]any{}}
	}
	if next.Extensions.Pageable == nil {
		next.Extensions.Pageable = &codemodel.Pageable{}
	}
	next.Extensions.Pageable.NextOperation = next
}

// findOperation looks up an operation by name in the named group of c.
// Names compare case-insensitively, and an operation ID matches too.
func findOperation(c *codemodel.Client, groupName, name string) *codemodel.Operation {
	for _, g := range c.OperationGroups {
		if !strings.EqualFold(g.Name(), groupName) && !strings.EqualFold(g.Key, groupName) {
			continue
		}
		for _, op := range g.Operations {
			if strings.EqualFold(op.Name(), name) || op.OperationID == name {
				return op
			}
		}
	}
	return nil
}
