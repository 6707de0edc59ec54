package clientmodel

import "fmt"

// MethodType is the shape of a generated client method.
type MethodType int

const (
	MethodSimpleAsync MethodType = iota
	MethodSimpleSync
	MethodSimpleAsyncRestResponse
	MethodSimpleSyncRestResponse
	MethodPagingAsync
	MethodPagingSync
	MethodPagingAsyncSinglePage
	MethodPagingSyncSinglePage
	MethodLongRunningAsync
	MethodLongRunningSync
	MethodLongRunningBeginAsync
	MethodLongRunningBeginSync
)

var methodTypeNames = [...]string{
	MethodSimpleAsync:             "SimpleAsync",
	MethodSimpleSync:              "SimpleSync",
	MethodSimpleAsyncRestResponse: "SimpleAsyncRestResponse",
	MethodSimpleSyncRestResponse:  "SimpleSyncRestResponse",
	MethodPagingAsync:             "PagingAsync",
	MethodPagingSync:              "PagingSync",
	MethodPagingAsyncSinglePage:   "PagingAsyncSinglePage",
	MethodPagingSyncSinglePage:    "PagingSyncSinglePage",
	MethodLongRunningAsync:        "LongRunningAsync",
	MethodLongRunningSync:         "LongRunningSync",
	MethodLongRunningBeginAsync:   "LongRunningBeginAsync",
	MethodLongRunningBeginSync:    "LongRunningBeginSync",
}

func (t MethodType) String() string {
	if int(t) >= 0 && int(t) < len(methodTypeNames) {
		return methodTypeNames[t]
	}
	return fmt.Sprintf("MethodType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t MethodType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// IsSync reports whether the method blocks until the result is available.
func (t MethodType) IsSync() bool {
	switch t {
	case MethodSimpleSync, MethodSimpleSyncRestResponse, MethodPagingSync,
		MethodPagingSyncSinglePage, MethodLongRunningSync, MethodLongRunningBeginSync:
		return true
	}
	return false
}

// IsPaging reports whether the method returns pages of items.
func (t MethodType) IsPaging() bool {
	return t >= MethodPagingAsync && t <= MethodPagingSyncSinglePage
}

// IsLongRunning reports whether the method polls for its result.
func (t MethodType) IsLongRunning() bool {
	return t >= MethodLongRunningAsync
}

// Visibility decides whether a method variant is generated and exported.
type Visibility int

const (
	Visible Visibility = iota
	NotVisible
	NotGenerate
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case NotVisible:
		return "not-visible"
	case NotGenerate:
		return "not-generate"
	}
	return fmt.Sprintf("Visibility(%d)", int(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// CollectionFormat is how an array is joined outside the body.
type CollectionFormat string

const (
	CollectionCSV   CollectionFormat = "csv"
	CollectionSSV   CollectionFormat = "ssv"
	CollectionPipes CollectionFormat = "pipes"
	CollectionTSV   CollectionFormat = "tsv"
	CollectionMulti CollectionFormat = "multi"
)

// Delimiter returns the separator of the format; multi has none.
func (f CollectionFormat) Delimiter() string {
	switch f {
	case CollectionSSV:
		return " "
	case CollectionPipes:
		return "|"
	case CollectionTSV:
		return "\t"
	case CollectionMulti:
		return ""
	}
	return ","
}

// ProxyParameter is a parameter of the low-level REST proxy.
type ProxyParameter struct {
	Name           string `json:"name"`
	SerializedName string `json:"serializedName"`
	Description    string `json:"description,omitempty"`
	Location       string `json:"location"`
	Type           Type   `json:"type"`
	WireType       Type   `json:"wireType"`
	Required       bool   `json:"required,omitempty"`
	Nullable       bool   `json:"nullable,omitempty"`

	Constant      bool   `json:"constant,omitempty"`
	ConstantValue string `json:"constantValue,omitempty"`
	DefaultValue  string `json:"defaultValue,omitempty"`

	CollectionFormat       CollectionFormat `json:"collectionFormat,omitempty"`
	Explode                bool             `json:"explode,omitempty"`
	AlreadyEncoded         bool             `json:"alreadyEncoded,omitempty"`
	HeaderCollectionPrefix string           `json:"headerCollectionPrefix,omitempty"`

	// FromClient is set when the value is a field of the service client.
	FromClient bool `json:"fromClient,omitempty"`
}

// ProxyMethod is one REST call of the proxy.
type ProxyMethod struct {
	Name                string            `json:"name"`
	BaseName            string            `json:"baseName"`
	OperationID         string            `json:"operationId,omitempty"`
	Description         string            `json:"description,omitempty"`
	HTTPMethod          string            `json:"httpMethod"`
	URLPath             string            `json:"urlPath"`
	BaseURL             string            `json:"baseUrl,omitempty"`
	RequestContentType  string            `json:"requestContentType"`
	ReturnType          Type              `json:"returnType"`
	ExpectedStatusCodes []int             `json:"expectedStatusCodes"`
	Parameters          []*ProxyParameter `json:"parameters"`
	SpecialHeaders      []string          `json:"specialHeaders,omitempty"`
	ErrorModel          string            `json:"errorModel,omitempty"`
	IsSync              bool              `json:"isSync,omitempty"`
}

// Parameter returns the proxy parameter with the given name.
func (m *ProxyMethod) Parameter(name string) (*ProxyParameter, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ClientMethodParameter is a parameter of a public client method.
type ClientMethodParameter struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Type         Type   `json:"type"`
	WireType     Type   `json:"wireType"`
	Required     bool   `json:"required,omitempty"`
	Constant     bool   `json:"constant,omitempty"`
	FromClient   bool   `json:"fromClient,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
	Location     string `json:"location,omitempty"`
	// GroupedBy names the parameter group this parameter travels in.
	GroupedBy string `json:"groupedBy,omitempty"`
}

// ParameterMapping copies a field of an input parameter into an output one.
// An empty InputProperty copies the whole input.
type ParameterMapping struct {
	InputParameter string `json:"inputParameter"`
	InputProperty  string `json:"inputProperty,omitempty"`
	OutputProperty string `json:"outputProperty,omitempty"`
}

// ParameterTransformation rebuilds a proxy parameter from method parameters,
// for flattened bodies and parameter groups.
type ParameterTransformation struct {
	OutParameter string             `json:"outParameter"`
	Mappings     []ParameterMapping `json:"mappings,omitempty"`
}

// PageDetails describes how a paging method walks its pages.
type PageDetails struct {
	ItemName       string `json:"itemName"`
	NextLinkName   string `json:"nextLinkName,omitempty"`
	NextMethodName string `json:"nextMethodName,omitempty"`
	// PageSizeParameter is the maxpagesize query parameter, if any. It is
	// dropped from the method signature and set per page instead.
	PageSizeParameter string `json:"pageSizeParameter,omitempty"`
	ItemType          Type   `json:"itemType"`
}

// LongRunningDetails describes the poller of a long-running method.
type LongRunningDetails struct {
	PollResultType  Type   `json:"pollResultType"`
	FinalResultType Type   `json:"finalResultType"`
	PollingStrategy string `json:"pollingStrategy,omitempty"`
	FinalStateVia   string `json:"finalStateVia,omitempty"`
}

// ClientMethod is a public or internal method of a client.
type ClientMethod struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Type        MethodType               `json:"type"`
	Parameters  []*ClientMethodParameter `json:"parameters"`
	ReturnType  Type                     `json:"returnType"`
	Proxy       *ProxyMethod             `json:"-"`
	ProxyName   string                   `json:"proxy"`
	Visibility  Visibility               `json:"visibility"`
	// WithContext methods take a context.Context and return the raw response
	// alongside the value.
	WithContext bool `json:"withContext,omitempty"`
	// Protocol methods take and return raw payloads.
	Protocol bool `json:"protocol,omitempty"`
	// Internal methods are unexported in the wrapper client.
	Internal bool `json:"internal,omitempty"`

	RequiredNullableParameters []string                   `json:"requiredNullableParameters,omitempty"`
	Transformations            []*ParameterTransformation `json:"transformations,omitempty"`
	Page                       *PageDetails               `json:"page,omitempty"`
	LongRunning                *LongRunningDetails        `json:"longRunning,omitempty"`

	// HeaderDefaults maps header names to Go expressions evaluated when the
	// caller did not set the header, e.g. repeatability headers.
	HeaderDefaults map[string]string `json:"headerDefaults,omitempty"`
	Deprecated     bool              `json:"deprecated,omitempty"`
}

// Parameter returns the method parameter with the given name.
func (m *ClientMethod) Parameter(name string) (*ClientMethodParameter, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ConvenienceMethod pairs a convenience method with the protocol methods it
// calls. Sync and async protocol variants share one base name, so a
// convenience method usually has more than one.
type ConvenienceMethod struct {
	Protocol    []*ClientMethod `json:"protocol"`
	Convenience []*ClientMethod `json:"convenience"`
}
