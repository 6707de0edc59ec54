package assembler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/naming"
)

// groupMethods is what one operation group contributes to a client.
type groupMethods struct {
	proxy       *clientmodel.Proxy
	methods     []*clientmodel.ClientMethod
	convenience []*clientmodel.ConvenienceMethod
}

func (r *run) serviceClient(c *codemodel.Client) (*clientmodel.ServiceClient, error) {
	name := naming.GoIdentifier(r.clientName(c.Language))
	if name == "" {
		name = naming.SyncClientName(r.model.Name)
	}
	lang := c.Language.For(r.settings.TargetLanguage)
	sc := &clientmodel.ServiceClient{
		Name:          name,
		Package:       r.settings.PackageName,
		InterfaceName: name,
		ClassName:     r.className(name + "Impl"),
		Description:   codemodel.MergeSummaryWithDescription(c.Summary, lang.Description),
		Security:      r.security(c),
	}
	sc.ServiceVersion = r.serviceVersion(name, c)

	props, err := r.clientProperties(c, sc.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", name, err)
	}
	sc.Properties = props

	var (
		unnamed *codemodel.OperationGroup
		named   []*codemodel.OperationGroup
	)
	for _, g := range c.OperationGroups {
		if g.Name() == "" && unnamed == nil {
			unnamed = g
			continue
		}
		named = append(named, g)
	}

	var own *groupMethods
	if unnamed != nil {
		if own, err = r.groupMethods(sc.InterfaceName+"Service", unnamed); err != nil {
			return nil, fmt.Errorf("client %s: %w", name, err)
		}
	}
	// A client with a single group and no operations of its own exposes
	// the group's methods directly.
	if unnamed == nil && len(named) == 1 {
		r.logger.Debug("folding single operation group into client", "client", name, "group", named[0].Name())
		if own, err = r.groupMethods(sc.InterfaceName+"Service", named[0]); err != nil {
			return nil, fmt.Errorf("client %s: %w", name, err)
		}
		named = nil
	}
	if own != nil {
		sc.Proxy, sc.Methods = own.proxy, own.methods
		r.wrappers(sc, nil, own.convenience)
	}

	for _, g := range named {
		mg := r.methodGroup(g)
		gm, err := r.groupMethods(mg.RestAPIName, g)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", name, err)
		}
		mg.Proxy, mg.Methods = gm.proxy, gm.methods
		sc.MethodGroups = append(sc.MethodGroups, mg)
		r.wrappers(sc, mg, gm.convenience)
	}

	for _, sub := range c.SubClients {
		ssc, err := r.serviceClient(sub)
		if err != nil {
			return nil, err
		}
		sc.SubClients = append(sc.SubClients, ssc)
	}
	return sc, nil
}

// methodGroup names the method group of g. Names are decided once per group:
//
//	interface  plural of the group name, with "Operations" appended when a
//	           model already has that name
//	REST API   interface + "Service"
func (r *run) methodGroup(g *codemodel.OperationGroup) *clientmodel.MethodGroupClient {
	if mg, ok := r.groups[g]; ok {
		return mg
	}
	interfaceName := naming.Plural(naming.GoIdentifier(r.clientName(g.Language)))
	if _, taken := r.mapper.Registry().Get(interfaceName); taken {
		interfaceName += "Operations"
	}
	mg := &clientmodel.MethodGroupClient{
		ClassName:     r.className(interfaceName + "Impl"),
		InterfaceName: interfaceName,
		VariableName:  naming.GoVarName(interfaceName),
		RestAPIName:   interfaceName + "Service",
	}
	r.groups[g] = mg
	return mg
}

// groupMethods maps the operations of g to proxy methods and client methods.
func (r *run) groupMethods(proxyName string, g *codemodel.OperationGroup) (*groupMethods, error) {
	gm := &groupMethods{proxy: &clientmodel.Proxy{Name: proxyName}}
	for _, op := range g.Operations {
		if len(op.Requests) == 0 {
			r.logger.Warn("operation has no request, skipping", "operation", op.OperationID)
			continue
		}
		req := op.Requests[0]
		if gm.proxy.BaseURL == "" {
			gm.proxy.BaseURL = req.HTTP().URI
		}
		proxy, err := r.mapper.ProxyMethod(op, req)
		if err != nil {
			return nil, err
		}
		proxy.IsSync = r.settings.IsGenerateSyncMethods() && !r.settings.IsGenerateAsyncMethods()
		gm.proxy.Methods = append(gm.proxy.Methods, proxy)

		dataPlane := r.settings.IsDataPlaneClient()
		methods, err := r.operationMethods(op, req, proxy, dataPlane)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.OperationID, err)
		}
		gm.methods = append(gm.methods, methods...)

		if dataPlane && op.ConvenienceAPI != nil {
			convenience, err := r.operationMethods(op, req, proxy, false)
			if err != nil {
				return nil, fmt.Errorf("operation %s: %w", op.OperationID, err)
			}
			if cm := pairConvenience(gm.methods, convenience); cm != nil {
				gm.convenience = append(gm.convenience, cm)
			}
		}
	}
	return gm, nil
}

// clientProperties returns the fields of the service client: the global
// parameters and every client-implemented operation parameter, once each.
func (r *run) clientProperties(c *codemodel.Client, sv *clientmodel.ServiceVersion) ([]*clientmodel.ServiceClientProperty, error) {
	params := slices.Clone(c.GlobalParameters)
	for _, g := range c.OperationGroups {
		for _, op := range g.Operations {
			for _, req := range op.Requests {
				for _, p := range req.Parameters {
					if p.Implementation == codemodel.ImplementationClient {
						params = append(params, p)
					}
				}
			}
		}
	}

	var out []*clientmodel.ServiceClientProperty
	seen := make(map[string]bool)
	for _, p := range params {
		name := naming.GoIdentifier(strings.TrimLeft(r.clientName(p.Language), "$"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		pp, err := r.mapper.ProxyParameter(p)
		if err != nil {
			return nil, err
		}
		prop := &clientmodel.ServiceClientProperty{
			Name:           name,
			SerializedName: p.SerializedName(),
			Description:    pp.Description,
			Type:           pp.Type,
			Required:       p.Required,
			ReadOnly:       pp.Constant,
			DefaultValue:   pp.DefaultValue,
		}
		if pp.Constant {
			prop.DefaultValue = pp.ConstantValue
		}
		if sv != nil && prop.DefaultValue == "" && isAPIVersion(p) {
			prop.DefaultValue = strconv.Quote(sv.Latest)
		}
		out = append(out, prop)
	}
	return out, nil
}

func isAPIVersion(p *codemodel.Parameter) bool {
	return p.Location() == codemodel.ParameterLocationQuery && strings.EqualFold(p.SerializedName(), "api-version")
}

// security returns the credential of c, falling back to the code model's
// schemes. The first scheme decides the kind; token schemes pool their
// scopes.
func (r *run) security(c *codemodel.Client) *clientmodel.SecurityInfo {
	sec := c.Security
	if sec == nil {
		sec = r.cm.Security
	}
	if sec == nil {
		return nil
	}
	var info *clientmodel.SecurityInfo
	for _, s := range sec.Schemes {
		switch s.Type {
		case codemodel.SecuritySchemeKey, codemodel.SecuritySchemeAzureKeyCredential:
			if info == nil {
				info = &clientmodel.SecurityInfo{Kind: clientmodel.CredentialKey, HeaderName: s.Name, Prefix: s.Prefix}
			} else if info.Kind != clientmodel.CredentialKey {
				r.logger.Debug("ignoring key credential scheme", "client", c.Name(), "header", s.Name)
			}
		case codemodel.SecuritySchemeOAuth2, codemodel.SecuritySchemeAADToken:
			if info == nil {
				info = &clientmodel.SecurityInfo{Kind: clientmodel.CredentialToken}
			}
			if info.Kind != clientmodel.CredentialToken {
				r.logger.Debug("ignoring token credential scheme", "client", c.Name())
				continue
			}
			for _, scope := range s.Scopes {
				if !slices.Contains(info.Scopes, scope) {
					info.Scopes = append(info.Scopes, scope)
				}
			}
		}
	}
	return info
}

// serviceVersion returns the api versions of c, oldest first, and declares
// their enum. The latest version is the default.
func (r *run) serviceVersion(clientName string, c *codemodel.Client) *clientmodel.ServiceVersion {
	versions := codemodel.SortAPIVersions(c.APIVersions)
	if len(versions) == 0 {
		return nil
	}
	base := strings.TrimSuffix(clientName, "Client")
	if id := naming.GoIdentifier(r.settings.ServiceName); id != "" {
		base = id
	}
	sv := &clientmodel.ServiceVersion{
		Name:     base + "ServiceVersion",
		Versions: versions,
		Latest:   codemodel.LatestAPIVersion(c.APIVersions),
	}

	enum := &clientmodel.EnumType{
		Name:        sv.Name,
		Package:     r.settings.PackageName,
		Description: fmt.Sprintf("%s is the api version of the service.", sv.Name),
		ElementType: clientmodel.String,
	}
	for _, v := range versions {
		enum.Values = append(enum.Values, &clientmodel.EnumValue{
			Name:  naming.EnumMemberName(sv.Name, "V"+v),
			Value: v,
		})
	}
	if !slices.ContainsFunc(r.enums, func(e *clientmodel.EnumType) bool { return e.Name == enum.Name }) {
		r.enums = append(r.enums, enum)
	}
	return sv
}
