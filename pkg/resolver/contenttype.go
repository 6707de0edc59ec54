package resolver

import (
	"slices"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

// mergeRequestsByContentType leaves op with a single request. A request whose
// known media type is binary wins; otherwise the first request is kept. When
// the variants declare more than one media type and the kept request has no
// Content-Type parameter, one is synthesized as a sealed choice over all of
// them.
func (rn *run) mergeRequestsByContentType(op *codemodel.Operation) {
	if len(op.Requests) == 0 {
		return
	}
	selected := op.Requests[0]
	binary := false
	for _, req := range op.Requests {
		if req.HTTP().KnownMediaType == codemodel.KnownMediaTypeBinary {
			selected, binary = req, true
			break
		}
	}

	if binary {
		mediaTypes := mediaTypeUnion(op.Requests)
		if len(mediaTypes) > 1 && !slices.ContainsFunc(selected.Parameters, isHeader(contentTypeHeader)) {
			rn.addContentType(op, selected, mediaTypes)
		}
	}

	if len(op.Requests) > 1 {
		rn.logger.Debug("merged request variants",
			"operation", op.OperationID, "variants", len(op.Requests), "mediaTypes", selected.HTTP().MediaTypes)
	}
	op.Requests = []*codemodel.Request{selected}
}

// mediaTypeUnion returns the media types of all requests, sorted and without
// duplicates, so the result does not depend on the order of the variants.
func mediaTypeUnion(requests []*codemodel.Request) []string {
	var out []string
	for _, req := range requests {
		out = append(out, req.HTTP().MediaTypes...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (rn *run) addContentType(op *codemodel.Operation, req *codemodel.Request, mediaTypes []string) {
	choice := &codemodel.ChoiceSchema{
		SchemaBase: codemodel.SchemaBase{
			Type:     codemodel.SchemaTypeSealedChoice,
			Language: codemodel.NewLanguages(contentTypeSchemaName(op), "The content type"),
		},
		ChoiceType: rn.stringSchema(),
	}
	for _, mt := range mediaTypes {
		choice.Choices = append(choice.Choices, codemodel.ChoiceValue{
			Value:    mt,
			Language: codemodel.NewLanguages(mt, "Content Type "+mt),
		})
	}
	rn.schemas.Add("sealedChoices", choice)

	var required bool
	if i := slices.IndexFunc(req.Parameters, isBinary); i >= 0 {
		required = req.Parameters[i].Required
	}
	contentType := &codemodel.Parameter{
		Value: codemodel.Value{
			Schema:   choice,
			Required: required,
			Language: codemodel.Languages{Default: &codemodel.Language{
				Name:           "contentType",
				SerializedName: contentTypeHeader,
				Description:    "The content type",
			}},
			Protocol: &codemodel.Protocol{HTTP: &codemodel.HTTPProtocol{In: codemodel.ParameterLocationHeader}},
		},
		Implementation: codemodel.ImplementationMethod,
	}

	req.Parameters = slices.Insert(req.Parameters, contentTypeIndex(req.Parameters), contentType)
	if required {
		req.SignatureParameters = slices.Insert(req.SignatureParameters, contentTypeIndex(req.SignatureParameters), contentType)
	}
	rn.logger.Debug("added Content-Type parameter", "operation", op.OperationID, "mediaTypes", mediaTypes)
}

// contentTypeIndex is the insertion point of a synthesized Content-Type:
// right after the Content-Length header, else right after the binary body,
// else at the end.
func contentTypeIndex(params []*codemodel.Parameter) int {
	if i := slices.IndexFunc(params, isHeader(contentLengthHeader)); i >= 0 {
		return i + 1
	}
	for i := len(params) - 1; i >= 0; i-- {
		if isBinary(params[i]) {
			return i + 1
		}
	}
	return len(params)
}

// contentTypeSchemaName names the enum of a synthesized Content-Type after
// its operation, so operations of different groups do not collide.
func contentTypeSchemaName(op *codemodel.Operation) string {
	name := naming.PascalCase(op.Name()) + "ContentType"
	if op.Group != nil {
		name = naming.PascalCase(op.Group.Name()) + name
	}
	return name
}
