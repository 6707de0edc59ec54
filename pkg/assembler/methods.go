package assembler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/mapper"
	"github.com/blimu-dev/clientgen/pkg/naming"
	"github.com/blimu-dev/clientgen/pkg/resolver"
)

// Default expressions of the repeatable requests headers.
const (
	RepeatabilityRequestIDDefault = "uuid.NewString()"
	RepeatabilityFirstSentDefault = "convert.FormatRFC1123(time.Now())"
)

const defaultItemName = "value"

// variant is one shape an operation can be generated as.
type variant struct {
	typ         clientmodel.MethodType
	withContext bool
}

var simpleVariants = []variant{
	{clientmodel.MethodSimpleAsyncRestResponse, false},
	{clientmodel.MethodSimpleAsyncRestResponse, true},
	{clientmodel.MethodSimpleAsync, false},
	{clientmodel.MethodSimpleSyncRestResponse, false},
	{clientmodel.MethodSimpleSyncRestResponse, true},
	{clientmodel.MethodSimpleSync, false},
	{clientmodel.MethodSimpleSync, true},
}

var pagingVariants = []variant{
	{clientmodel.MethodPagingAsyncSinglePage, false},
	{clientmodel.MethodPagingAsyncSinglePage, true},
	{clientmodel.MethodPagingAsync, false},
	{clientmodel.MethodPagingAsync, true},
	{clientmodel.MethodPagingSyncSinglePage, false},
	{clientmodel.MethodPagingSyncSinglePage, true},
	{clientmodel.MethodPagingSync, false},
	{clientmodel.MethodPagingSync, true},
}

// nextPageVariants are generated for operations that fetch following pages;
// only the page fetchers exist for them.
var nextPageVariants = []variant{
	{clientmodel.MethodPagingAsyncSinglePage, false},
	{clientmodel.MethodPagingAsyncSinglePage, true},
	{clientmodel.MethodPagingSyncSinglePage, false},
	{clientmodel.MethodPagingSyncSinglePage, true},
}

var longRunningVariants = []variant{
	{clientmodel.MethodSimpleAsyncRestResponse, false},
	{clientmodel.MethodSimpleAsyncRestResponse, true},
	{clientmodel.MethodSimpleSyncRestResponse, false},
	{clientmodel.MethodSimpleSyncRestResponse, true},
	{clientmodel.MethodLongRunningBeginAsync, false},
	{clientmodel.MethodLongRunningBeginAsync, true},
	{clientmodel.MethodLongRunningBeginSync, false},
	{clientmodel.MethodLongRunningBeginSync, true},
	{clientmodel.MethodLongRunningAsync, false},
	{clientmodel.MethodLongRunningSync, false},
	{clientmodel.MethodLongRunningSync, true},
}

// methodVisibility decides whether a variant is generated and exported.
//
// Data-plane protocol methods exist only in their with-context form, and
// never as plain Simple methods; their single-page fetchers are hidden.
// Data-plane convenience methods exist only without context, for simple,
// paging and long-running begin methods. Other clients get every variant
// except SimpleSyncRestResponse without context and SimpleSync with it.
func methodVisibility(dataPlane, protocol bool, v variant) clientmodel.Visibility {
	if !dataPlane {
		if (v.typ == clientmodel.MethodSimpleSyncRestResponse && !v.withContext) ||
			(v.typ == clientmodel.MethodSimpleSync && v.withContext) {
			return clientmodel.NotGenerate
		}
		return clientmodel.Visible
	}
	if protocol {
		switch {
		case v.typ == clientmodel.MethodSimpleAsync, v.typ == clientmodel.MethodSimpleSync, !v.withContext:
			return clientmodel.NotGenerate
		case v.typ == clientmodel.MethodPagingAsyncSinglePage, v.typ == clientmodel.MethodPagingSyncSinglePage:
			return clientmodel.NotVisible
		}
		return clientmodel.Visible
	}
	if v.withContext {
		return clientmodel.NotGenerate
	}
	switch v.typ {
	case clientmodel.MethodSimpleAsync, clientmodel.MethodSimpleSync,
		clientmodel.MethodPagingAsync, clientmodel.MethodPagingSync,
		clientmodel.MethodLongRunningBeginAsync, clientmodel.MethodLongRunningBeginSync:
		return clientmodel.Visible
	}
	return clientmodel.NotGenerate
}

// longRunningRestResponseVisibility overrides the visibility of the raw
// response methods of a data-plane long-running protocol operation: the
// poller is the public surface.
func longRunningRestResponseVisibility(v variant) clientmodel.Visibility {
	if v.withContext {
		return clientmodel.NotVisible
	}
	return clientmodel.NotGenerate
}

// methodName is the name of base generated as t.
func methodName(base string, t clientmodel.MethodType) string {
	name := naming.GoIdentifier(base)
	switch t {
	case clientmodel.MethodSimpleAsync, clientmodel.MethodPagingAsync, clientmodel.MethodLongRunningAsync:
		return name + "Async"
	case clientmodel.MethodSimpleAsyncRestResponse:
		return name + "WithResponseAsync"
	case clientmodel.MethodSimpleSyncRestResponse:
		return name + "WithResponse"
	case clientmodel.MethodPagingAsyncSinglePage:
		return name + "SinglePageAsync"
	case clientmodel.MethodPagingSyncSinglePage:
		return name + "SinglePage"
	case clientmodel.MethodLongRunningBeginAsync:
		return "Begin" + name + "Async"
	case clientmodel.MethodLongRunningBeginSync:
		return "Begin" + name
	}
	return name
}

// isNextPageOperation reports whether op only fetches the following pages
// of another operation.
func isNextPageOperation(op *codemodel.Operation) bool {
	return op.IsPageable() && op.Extensions.Pageable.NextOperation == op
}

// operationMethods generates the method variants of op. Protocol methods
// take the body as raw bytes and leave optional parameters to the request
// options.
func (r *run) operationMethods(op *codemodel.Operation, req *codemodel.Request, proxy *clientmodel.ProxyMethod, protocol bool) ([]*clientmodel.ClientMethod, error) {
	params, transformations, err := r.methodParameters(op, req, protocol)
	if err != nil {
		return nil, err
	}

	variants := simpleVariants
	var (
		page        *clientmodel.PageDetails
		longRunning *clientmodel.LongRunningDetails
	)
	nextPage := isNextPageOperation(op)
	switch {
	case nextPage:
		variants = nextPageVariants
	case op.IsPageable():
		variants = pagingVariants
		if page, err = r.pageDetails(op, req); err != nil {
			return nil, err
		}
	case op.IsLongRunning():
		variants = longRunningVariants
		if longRunning, err = r.longRunningDetails(op, proxy.ReturnType); err != nil {
			return nil, err
		}
	}

	returnType := proxy.ReturnType
	if protocol {
		returnType = rawType(returnType)
	}

	name := r.clientName(op.Language)
	if !protocol && op.ConvenienceAPI != nil {
		if n := r.clientName(op.ConvenienceAPI.Language); n != "" {
			name = n
		}
	}
	internal := op.InternalAPI || nextPage ||
		(protocol && op.GenerateProtocolAPI != nil && !*op.GenerateProtocolAPI)
	headerDefaults := repeatabilityDefaults(op)

	var out []*clientmodel.ClientMethod
	for _, v := range variants {
		if v.typ.IsSync() && !r.settings.IsGenerateSyncMethods() ||
			!v.typ.IsSync() && !r.settings.IsGenerateAsyncMethods() {
			continue
		}
		vis := methodVisibility(r.settings.IsDataPlaneClient(), protocol, v)
		if protocol && longRunning != nil &&
			(v.typ == clientmodel.MethodSimpleAsyncRestResponse || v.typ == clientmodel.MethodSimpleSyncRestResponse) {
			vis = longRunningRestResponseVisibility(v)
		}
		if vis == clientmodel.NotGenerate {
			continue
		}
		if nextPage && vis == clientmodel.Visible {
			vis = clientmodel.NotVisible
		}

		m := &clientmodel.ClientMethod{
			Name:            methodName(name, v.typ),
			Description:     proxy.Description,
			Type:            v.typ,
			Parameters:      params,
			ReturnType:      returnType,
			Proxy:           proxy,
			ProxyName:       proxy.Name,
			Visibility:      vis,
			WithContext:     v.withContext,
			Protocol:        protocol,
			Internal:        internal,
			Transformations: transformations,
			HeaderDefaults:  headerDefaults,
			Deprecated:      op.Deprecated != nil,
		}
		switch {
		case v.typ == clientmodel.MethodPagingAsync || v.typ == clientmodel.MethodPagingSync:
			m.Page = page
			if page != nil {
				m.ReturnType = &clientmodel.ListType{Elem: page.ItemType}
				if page.PageSizeParameter != "" {
					m.Parameters = withoutParameter(params, page.PageSizeParameter)
				}
			}
		case v.typ.IsPaging():
			m.Page = page
		case v.typ.IsLongRunning():
			m.LongRunning = longRunning
			m.ReturnType = longRunning.FinalResultType
			if v.typ == clientmodel.MethodLongRunningBeginAsync || v.typ == clientmodel.MethodLongRunningBeginSync {
				m.ReturnType = longRunning.PollResultType
			}
			if protocol {
				m.ReturnType = rawType(m.ReturnType)
			}
		}
		m.RequiredNullableParameters = requiredNullable(m.Parameters)
		out = append(out, m)
	}
	return out, nil
}

// rawType is the protocol form of a response type: models travel as bytes.
func rawType(t clientmodel.Type) clientmodel.Type {
	switch t {
	case clientmodel.Void, clientmodel.Bool, clientmodel.ReadCloser:
		return t
	}
	return clientmodel.Bytes
}

func withoutParameter(params []*clientmodel.ClientMethodParameter, name string) []*clientmodel.ClientMethodParameter {
	return slices.DeleteFunc(slices.Clone(params), func(p *clientmodel.ClientMethodParameter) bool {
		return p.Name == name
	})
}

func requiredNullable(params []*clientmodel.ClientMethodParameter) []string {
	var out []string
	for _, p := range params {
		if p.Required && !p.Constant && p.Type.Nillable() {
			out = append(out, p.Name)
		}
	}
	return out
}

// repeatabilityDefaults returns the header defaults of a repeatable
// operation, or nil.
func repeatabilityDefaults(op *codemodel.Operation) map[string]string {
	if !resolver.IsRepeatableOperation(op) {
		return nil
	}
	return map[string]string{
		resolver.RepeatabilityRequestIDHeader: RepeatabilityRequestIDDefault,
		resolver.RepeatabilityFirstSentHeader: RepeatabilityFirstSentDefault,
	}
}

func isRepeatabilityHeader(p *codemodel.Parameter) bool {
	if p.Location() != codemodel.ParameterLocationHeader {
		return false
	}
	name := p.SerializedName()
	return strings.EqualFold(name, resolver.RepeatabilityRequestIDHeader) ||
		strings.EqualFold(name, resolver.RepeatabilityFirstSentHeader)
}

// methodParameters returns the parameters of the methods of op and the
// transformations that rebuild proxy parameters from them.
//
// Grouped parameters are replaced by their group, flattened body properties
// are collected back into the body, and repeatability headers are left to
// their defaults. Protocol methods skip both rewrites: they take the body
// whole and only the required parameters.
func (r *run) methodParameters(op *codemodel.Operation, req *codemodel.Request, protocol bool) ([]*clientmodel.ClientMethodParameter, []*clientmodel.ParameterTransformation, error) {
	var (
		out        []*clientmodel.ClientMethodParameter
		transforms []*clientmodel.ParameterTransformation
		seen       = make(map[*codemodel.Parameter]bool)
	)
	repeatable := resolver.IsRepeatableOperation(op)

	add := func(p *codemodel.Parameter) error {
		if seen[p] {
			return nil
		}
		seen[p] = true
		cp, err := r.mapper.ClientParameter(p)
		if err != nil {
			return err
		}
		if protocol && p.Location() == codemodel.ParameterLocationBody {
			cp.Type, cp.WireType = clientmodel.Bytes, clientmodel.Bytes
		}
		out = append(out, cp)
		return nil
	}
	skip := func(p *codemodel.Parameter) bool {
		if p.Implementation == codemodel.ImplementationClient {
			return true
		}
		if _, constant := p.Schema.(*codemodel.ConstantSchema); constant {
			return true
		}
		if repeatable && isRepeatabilityHeader(p) {
			return true
		}
		return protocol && !p.Required
	}

	for _, p := range req.SignatureParameters {
		if skip(p) {
			continue
		}
		if protocol && p.OriginalParameter != nil {
			p = p.OriginalParameter
		}
		if err := add(p); err != nil {
			return nil, nil, err
		}
	}

	for _, p := range req.Parameters {
		if p.GroupedBy == nil || skip(p) {
			continue
		}
		if protocol {
			if err := add(p); err != nil {
				return nil, nil, err
			}
			continue
		}
		root, err := resolver.GroupRoot(p)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
		if err := r.parameterGroupModel(root, req); err != nil {
			return nil, nil, err
		}
		if err := add(root); err != nil {
			return nil, nil, err
		}
		transforms = append(transforms, &clientmodel.ParameterTransformation{
			OutParameter: r.parameterName(p),
			Mappings: []clientmodel.ParameterMapping{{
				InputParameter: r.parameterName(root),
				InputProperty:  naming.GoIdentifier(r.clientName(p.Language)),
			}},
		})
	}

	if !protocol {
		transforms = append(transforms, r.flattenTransformations(req)...)
	}
	return out, transforms, nil
}

// flattenTransformations collects the parameters flattened out of a body
// back into it, one transformation per body.
func (r *run) flattenTransformations(req *codemodel.Request) []*clientmodel.ParameterTransformation {
	var (
		out    []*clientmodel.ParameterTransformation
		byBody = make(map[*codemodel.Parameter]*clientmodel.ParameterTransformation)
	)
	for _, p := range req.SignatureParameters {
		original := p.OriginalParameter
		if original == nil {
			continue
		}
		t, ok := byBody[original]
		if !ok {
			t = &clientmodel.ParameterTransformation{OutParameter: r.parameterName(original)}
			byBody[original] = t
			out = append(out, t)
		}
		property := r.clientName(p.Language)
		if p.TargetProperty != nil {
			property = r.clientName(p.TargetProperty.Language)
		}
		t.Mappings = append(t.Mappings, clientmodel.ParameterMapping{
			InputParameter: r.parameterName(p),
			OutputProperty: naming.GoIdentifier(property),
		})
	}
	return out
}

func (r *run) parameterName(p *codemodel.Parameter) string {
	return mapper.ParameterName(r.clientName(p.Language))
}

// parameterGroupModel declares the model of a parameter group the first
// time a method takes it. Its properties are the grouped parameters.
func (r *run) parameterGroupModel(group *codemodel.Parameter, req *codemodel.Request) error {
	schema, ok := group.Schema.(*codemodel.ParameterGroupSchema)
	if !ok {
		return nil
	}
	name := r.mapper.TypeName(schema)
	if _, ok := r.mapper.Registry().Get(name); ok {
		return nil
	}

	members := schema.Parameters
	if len(members) == 0 {
		for _, p := range req.Parameters {
			if p.GroupedBy == group {
				members = append(members, p)
			}
		}
	}
	cm := &clientmodel.ClientModel{
		Name:        name,
		Package:     r.settings.PackageName,
		Description: codemodel.MergeSummaryWithDescription(schema.Summary, schema.Language.For(r.settings.TargetLanguage).Description),
		Usage:       []string{string(codemodel.ContextInput)},
	}
	for _, p := range members {
		cp, err := r.mapper.ClientParameter(p)
		if err != nil {
			return fmt.Errorf("parameter group %s: %w", name, err)
		}
		cm.Properties = append(cm.Properties, &clientmodel.Property{
			Name:           naming.GoIdentifier(r.clientName(p.Language)),
			Description:    cp.Description,
			SerializedName: p.SerializedName(),
			Type:           cp.Type,
			WireType:       cp.WireType,
			Required:       p.Required,
			Constant:       cp.Constant,
			DefaultValue:   cp.DefaultValue,
			PublicSetter:   true,
		})
	}
	r.mapper.Registry().Add(cm)
	r.logger.Debug("declared parameter group model", "model", name, "parameters", len(cm.Properties))
	return nil
}

// pageDetails describes how the methods of a pageable operation walk pages.
// The item type is the element type of the item property of the response;
// when the property cannot be found the items are untyped.
func (r *run) pageDetails(op *codemodel.Operation, req *codemodel.Request) (*clientmodel.PageDetails, error) {
	pageable := op.Extensions.Pageable
	d := &clientmodel.PageDetails{
		ItemName:     pageable.ItemName,
		NextLinkName: pageable.NextLinkName,
		ItemType:     clientmodel.Any,
	}
	if d.ItemName == "" {
		d.ItemName = defaultItemName
	}
	if next := pageable.NextOperation; next != nil && next != op {
		d.NextMethodName = naming.GoIdentifier(r.clientName(next.Language))
	}
	for _, p := range req.Parameters {
		if r.resolver.IsMaxPageSizeParameter(p) {
			d.PageSizeParameter = r.parameterName(p)
			break
		}
	}

	var schemas []codemodel.Schema
	for _, resp := range op.Responses {
		if resp.Schema != nil {
			schemas = append(schemas, resp.Schema)
		}
	}
	if len(schemas) == 0 {
		return d, nil
	}
	body, ok := mapper.LowestCommonParent(schemas).(*codemodel.ObjectSchema)
	if !ok {
		return d, nil
	}
	prop := itemProperty(body, d.ItemName)
	if prop == nil {
		r.logger.Debug("pageable item property not found", "operation", op.OperationID, "item", d.ItemName)
		return d, nil
	}
	t, err := r.mapper.MapSchema(prop.Schema)
	if err != nil {
		return nil, fmt.Errorf("page items of %s: %w", op.OperationID, err)
	}
	if list, ok := clientmodel.Underlying(t).(*clientmodel.ListType); ok {
		d.ItemType = list.Elem
	}
	return d, nil
}

// itemProperty finds the property serialized as name on o or its ancestors.
func itemProperty(o *codemodel.ObjectSchema, name string) *codemodel.Property {
	objects := []*codemodel.ObjectSchema{o}
	if o.Parents != nil {
		for _, p := range o.Parents.All {
			if parent, ok := p.(*codemodel.ObjectSchema); ok {
				objects = append(objects, parent)
			}
		}
	}
	for _, obj := range objects {
		for _, p := range obj.Properties {
			if p.Serialized == name {
				return p
			}
		}
	}
	return nil
}

// longRunningDetails describes the poller of a long-running operation. The
// poll and final result types default to the response type.
func (r *run) longRunningDetails(op *codemodel.Operation, responseType clientmodel.Type) (*clientmodel.LongRunningDetails, error) {
	d := &clientmodel.LongRunningDetails{PollResultType: responseType, FinalResultType: responseType}
	if md := op.LROMetadata; md != nil {
		d.PollingStrategy = md.PollingStrategy
		if md.PollResultType != nil {
			t, err := r.mapper.MapSchema(md.PollResultType)
			if err != nil {
				return nil, fmt.Errorf("poll result of %s: %w", op.OperationID, err)
			}
			d.PollResultType = t
		}
		if md.FinalResultType != nil {
			t, err := r.mapper.MapSchema(md.FinalResultType)
			if err != nil {
				return nil, fmt.Errorf("final result of %s: %w", op.OperationID, err)
			}
			d.FinalResultType = t
		}
	}
	if opts := op.Extensions.LongRunningOptions; opts != nil {
		d.FinalStateVia = opts.FinalStateVia
	}
	return d, nil
}
