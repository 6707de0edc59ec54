package clientmodel

// CredentialKind is the kind of credential a client accepts.
type CredentialKind string

const (
	CredentialKey   CredentialKind = "key"
	CredentialToken CredentialKind = "token"
)

// SecurityInfo is the authentication a service client is built with.
type SecurityInfo struct {
	Kind       CredentialKind `json:"kind"`
	HeaderName string         `json:"headerName,omitempty"`
	Prefix     string         `json:"prefix,omitempty"`
	Scopes     []string       `json:"scopes,omitempty"`
}

// ServiceVersion is the enum of api versions a client can target.
type ServiceVersion struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
	// Latest is the default version, the newest of Versions.
	Latest string `json:"latest,omitempty"`
}

// ServiceClientProperty is a field of a service client, usually backing a
// client-level parameter such as the endpoint or api version.
type ServiceClientProperty struct {
	Name           string `json:"name"`
	SerializedName string `json:"serializedName,omitempty"`
	Description    string `json:"description,omitempty"`
	Type           Type   `json:"type"`
	Required       bool   `json:"required,omitempty"`
	ReadOnly       bool   `json:"readOnly,omitempty"`
	DefaultValue   string `json:"defaultValue,omitempty"`
}

// Proxy is the low-level REST interface of a client or method group.
type Proxy struct {
	Name    string         `json:"name"`
	BaseURL string         `json:"baseUrl,omitempty"`
	Methods []*ProxyMethod `json:"methods"`
}

// MethodGroupClient holds the methods of one operation group.
type MethodGroupClient struct {
	ClassName     string          `json:"className"`
	InterfaceName string          `json:"interfaceName"`
	VariableName  string          `json:"variableName"`
	RestAPIName   string          `json:"restApiName"`
	Proxy         *Proxy          `json:"proxy"`
	Methods       []*ClientMethod `json:"methods"`
}

// ServiceClient is the implementation client of a code-model client.
type ServiceClient struct {
	Name          string `json:"name"`
	Package       string `json:"package"`
	InterfaceName string `json:"interfaceName"`
	ClassName     string `json:"className"`
	Description   string `json:"description,omitempty"`

	Properties   []*ServiceClientProperty `json:"properties,omitempty"`
	MethodGroups []*MethodGroupClient     `json:"methodGroups,omitempty"`
	// Methods and Proxy hold the operations of the unnamed group, and of the
	// only group when the client has exactly one.
	Methods []*ClientMethod `json:"methods,omitempty"`
	Proxy   *Proxy          `json:"proxy,omitempty"`

	Security       *SecurityInfo    `json:"security,omitempty"`
	ServiceVersion *ServiceVersion  `json:"serviceVersion,omitempty"`
	SubClients     []*ServiceClient `json:"subClients,omitempty"`
}

// AllMethods returns the client's own methods followed by those of every
// method group.
func (c *ServiceClient) AllMethods() []*ClientMethod {
	out := append([]*ClientMethod(nil), c.Methods...)
	for _, g := range c.MethodGroups {
		out = append(out, g.Methods...)
	}
	return out
}

// AsyncSyncClient is a public wrapper exposing the async or sync variants of
// a service client or one of its method groups.
type AsyncSyncClient struct {
	ClassName string `json:"className"`
	Package   string `json:"package"`
	// ServiceClient is the name of the wrapped implementation client.
	ServiceClient string `json:"serviceClient"`
	// MethodGroup is the wrapped group's class name, or "" for the client itself.
	MethodGroup string               `json:"methodGroup,omitempty"`
	Async       bool                 `json:"async"`
	Convenience []*ConvenienceMethod `json:"convenience,omitempty"`
}

// Model is the full output of one generation run.
type Model struct {
	Name         string             `json:"name"`
	Package      string             `json:"package"`
	Description  string             `json:"description,omitempty"`
	Models       []*ClientModel     `json:"models"`
	Enums        []*EnumType        `json:"enums"`
	Clients      []*ServiceClient   `json:"clients"`
	AsyncClients []*AsyncSyncClient `json:"asyncClients,omitempty"`
	SyncClients  []*AsyncSyncClient `json:"syncClients,omitempty"`
	// Truncated maps class names that were shortened to fit the path budget
	// to their original names.
	Truncated map[string]string `json:"truncated,omitempty"`
}

// Client returns the service client with the given name, searching sub-clients too.
func (m *Model) Client(name string) (*ServiceClient, bool) {
	var find func([]*ServiceClient) (*ServiceClient, bool)
	find = func(cs []*ServiceClient) (*ServiceClient, bool) {
		for _, c := range cs {
			if c.Name == name {
				return c, true
			}
			if sub, ok := find(c.SubClients); ok {
				return sub, true
			}
		}
		return nil, false
	}
	return find(m.Clients)
}

// Model returns the client model with the given name.
func (m *Model) Model(name string) (*ClientModel, bool) {
	for _, cm := range m.Models {
		if cm.Name == name {
			return cm, true
		}
	}
	return nil, false
}

// Enum returns the enum with the given name.
func (m *Model) Enum(name string) (*EnumType, bool) {
	for _, e := range m.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}
