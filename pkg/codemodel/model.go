package codemodel

import (
	"strings"
)

// CodeModel is the root of the schema graph.
type CodeModel struct {
	Info     Info
	Schemas  *Schemas
	Clients  []*Client
	Security *Security
	Language Languages
	// TestModel is carried through untouched.
	TestModel any
}

// Info describes the service.
type Info struct {
	Title       string
	Description string
	Extensions  *Extensions
}

// Client is a service client with its operation groups. Clients form a tree
// through SubClients/Parent.
type Client struct {
	Language                  Languages
	Summary                   string
	OperationGroups           []*OperationGroup
	GlobalParameters          []*Parameter
	Security                  *Security
	APIVersions               []APIVersion
	SubClients                []*Client
	Parent                    *Client
	CrossLanguageDefinitionID string
}

// Name returns the default-language name of the client.
func (c *Client) Name() string { return c.Language.Name() }

// OperationGroup is a named set of operations owned by one Client.
type OperationGroup struct {
	Key        string
	Language   Languages
	Operations []*Operation
	Client     *Client
}

// Name returns the default-language name of the group. The unnamed group holds
// the client's own operations.
func (g *OperationGroup) Name() string { return g.Language.Name() }

// Security lists the authentication schemes of a client.
type Security struct {
	AuthenticationRequired bool
	Schemes                []*SecurityScheme
}

// SecurityScheme is one authentication scheme.
type SecurityScheme struct {
	Type   SecuritySchemeType
	Name   string
	In     string
	Prefix string
	Scopes []string
}

// Value is the common part of properties and parameters.
type Value struct {
	Schema             Schema
	Required           bool
	Nullable           bool
	Key                string
	Summary            string
	Language           Languages
	Protocol           *Protocol
	APIVersions        []APIVersion
	Deprecated         *Deprecation
	Extensions         *Extensions
	ClientDefaultValue any
}

// Name returns the default-language name of the value.
func (v *Value) Name() string { return v.Language.Name() }

// Location returns the HTTP location of the value, or "" when it has none.
func (v *Value) Location() ParameterLocation {
	if v.Protocol == nil || v.Protocol.HTTP == nil {
		return ""
	}
	return v.Protocol.HTTP.In
}

// SerializedName returns the wire name of the value.
func (v *Value) SerializedName() string {
	if v.Language.Default != nil && v.Language.Default.SerializedName != "" {
		return v.Language.Default.SerializedName
	}
	return v.Name()
}

// Property is a named field of an object schema.
type Property struct {
	Value
	// Serialized is the wire name. It may contain unescaped dots that
	// denote a flattened path.
	Serialized      string
	ReadOnly        bool
	IsDiscriminator bool
	FlattenedNames  []string
	// Owner is a non-owning back-reference to the declaring object.
	Owner *ObjectSchema
}

// Parameter is an operation input.
type Parameter struct {
	Value
	Implementation    ImplementationLocation
	Origin            string
	Flattened         bool
	GroupedBy         *Parameter
	OriginalParameter *Parameter
	TargetProperty    *Property
}

// IsSignature reports whether the parameter appears directly in method signatures.
func (p *Parameter) IsSignature() bool {
	return p.Implementation == ImplementationMethod && p.GroupedBy == nil
}

// Protocol carries protocol-specific metadata.
type Protocol struct {
	HTTP *HTTPProtocol
}

// HTTPProtocol is the HTTP binding of a parameter, request or response.
type HTTPProtocol struct {
	// parameters
	In      ParameterLocation
	Style   SerializationStyle
	Explode bool

	// requests
	Path   string
	URI    string
	Method string

	KnownMediaType KnownMediaType
	MediaTypes     []string

	// responses
	StatusCodes []string
	Headers     []*HTTPHeader
}

// HTTPHeader is a response header.
type HTTPHeader struct {
	Header   string
	Schema   Schema
	Language Languages
}

// Operation is a single endpoint.
type Operation struct {
	OperationID         string
	Language            Languages
	Parameters          []*Parameter
	SignatureParameters []*Parameter
	Requests            []*Request
	Responses           []*Response
	Exceptions          []*Response
	SpecialHeaders      []string
	Extensions          *Extensions
	ConvenienceAPI      *ConvenienceAPI
	GenerateProtocolAPI *bool
	InternalAPI         bool
	LROMetadata         *LongRunningMetadata
	APIVersions         []APIVersion
	Deprecated          *Deprecation
	Group               *OperationGroup
}

// Name returns the default-language name of the operation.
func (o *Operation) Name() string { return o.Language.Name() }

// HTTPMethod returns the upper-cased method of the first request, or "".
func (o *Operation) HTTPMethod() string {
	for _, r := range o.Requests {
		if r.Protocol != nil && r.Protocol.HTTP != nil && r.Protocol.HTTP.Method != "" {
			return strings.ToUpper(r.Protocol.HTTP.Method)
		}
	}
	return ""
}

// IsPageable reports whether the operation carries paging metadata.
func (o *Operation) IsPageable() bool {
	return o.Extensions != nil && o.Extensions.Pageable != nil
}

// IsLongRunning reports whether the operation is a long-running operation.
func (o *Operation) IsLongRunning() bool {
	return o.Extensions != nil && o.Extensions.LongRunningOperation
}

// Request is one request variant of an operation.
type Request struct {
	Language            Languages
	Parameters          []*Parameter
	SignatureParameters []*Parameter
	Protocol            *Protocol
}

// HTTP returns the HTTP binding, never nil.
func (r *Request) HTTP() *HTTPProtocol {
	if r.Protocol == nil {
		r.Protocol = &Protocol{}
	}
	if r.Protocol.HTTP == nil {
		r.Protocol.HTTP = &HTTPProtocol{}
	}
	return r.Protocol.HTTP
}

// Response is a success or error response.
type Response struct {
	Language Languages
	Schema   Schema
	Binary   bool
	Nullable bool
	Protocol *Protocol
}

// StatusCodes returns the declared status codes.
func (r *Response) StatusCodes() []string {
	if r.Protocol == nil || r.Protocol.HTTP == nil {
		return nil
	}
	return r.Protocol.HTTP.StatusCodes
}

// ConvenienceAPI declares that a convenience method should be generated.
type ConvenienceAPI struct {
	Language Languages
	Requests []*Request
}

// LongRunningMetadata describes polling of a long-running operation.
type LongRunningMetadata struct {
	PollResultType                    Schema
	FinalResultType                   Schema
	PollingStrategy                   string
	FinalResultPropertySerializedName string
}

// Extensions are the x-ms-* extension fields the generator understands.
// Raw keeps every extension as decoded.
type Extensions struct {
	Pageable               *Pageable
	SkipURLEncoding        bool
	ClientFlatten          bool
	LongRunningOperation   bool
	LongRunningOptions     *LongRunningOptions
	Flattened              bool
	AzureResource          bool
	Mutability             []string
	HeaderCollectionPrefix string
	Secret                 bool
	Examples               map[string]any
	Raw                    map[string]any
}

// Pageable is the x-ms-pageable extension.
type Pageable struct {
	NextLinkName  string
	ItemName      string
	OperationName string
	NextOperation *Operation
}

// LongRunningOptions is the x-ms-long-running-operation-options extension.
type LongRunningOptions struct {
	FinalStateVia string
}

// MergeSummaryWithDescription joins a summary and a description for doc
// comments. Equal texts are written once.
func MergeSummaryWithDescription(summary, description string) string {
	if summary == description {
		summary = ""
	}
	switch {
	case summary != "" && description != "":
		return summary + "\n\n" + description
	case summary != "":
		return summary
	}
	return description
}
