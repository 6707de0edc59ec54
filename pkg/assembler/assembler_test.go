package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/resolver"
)

const store = `
info: {title: Pet Store, description: Sells pets.}
security:
  authenticationRequired: true
  schemes:
    - type: AADToken
      scopes: [https://pets.example.com/.default]
    - type: OAuth2
      scopes: [https://pets.example.com/.default, pets.read]
    - type: Key
      name: api-key
      in: header
schemas:
  strings:
    - &str
      type: string
      language: {default: {name: string}}
  numbers:
    - &int32
      type: integer
      precision: 32
      language: {default: {name: int32}}
  arrays:
    - &pets
      type: array
      elementType: {$ref: "#/schemas/objects/0"}
      language: {default: {name: PetArray}}
  objects:
    - &pet
      type: object
      language: {default: {name: Pet}}
      properties:
        - schema: *str
          serializedName: name
          required: true
          language: {default: {name: name}}
        - schema: *int32
          serializedName: age
          language: {default: {name: age}}
    - &petList
      type: object
      language: {default: {name: PetList}}
      properties:
        - schema: *pets
          serializedName: value
          required: true
          language: {default: {name: value}}
        - schema: *str
          serializedName: nextLink
          language: {default: {name: nextLink}}
    - type: object
      language: {default: {name: Owner}}
      properties:
        - schema: *str
          serializedName: accessToken
          language: {default: {name: accessToken}}
clients:
  - language: {default: {name: PetStoreClient}}
    apiVersions: [{version: "2023-05-01"}, {version: "2022-01-01"}]
    globalParameters:
      - &host
        schema: *str
        required: true
        implementation: Client
        language: {default: {name: $host, serializedName: $host}}
        protocol: {http: {in: uri}}
      - &apiVersion
        schema: *str
        required: true
        implementation: Client
        language: {default: {name: apiVersion, serializedName: api-version}}
        protocol: {http: {in: query}}
    operationGroups:
      - $key: ""
        language: {default: {name: ""}}
        operations:
          - operationId: GetPet
            language: {default: {name: getPet}}
            convenienceApi:
              language: {default: {name: getPet}}
            parameters: [*host, *apiVersion]
            requests:
              - parameters:
                  - &petName
                    schema: *str
                    required: true
                    language: {default: {name: petName, serializedName: petName}}
                    protocol: {http: {in: path}}
                signatureParameters: [*petName]
                protocol: {http: {method: get, path: "/pets/{petName}", uri: "{$host}"}}
            responses:
              - schema: *pet
                protocol: {http: {statusCodes: ["200"]}}
      - $key: Pets
        language: {default: {name: Pets}}
        operations:
          - operationId: Pets_List
            language: {default: {name: list}}
            extensions:
              x-ms-pageable: {nextLinkName: nextLink, itemName: value}
            parameters: [*host, *apiVersion]
            requests:
              - parameters:
                  - &maxpagesize
                    schema: *int32
                    language: {default: {name: maxpagesize, serializedName: maxpagesize}}
                    protocol: {http: {in: query}}
                signatureParameters: [*maxpagesize]
                protocol: {http: {method: get, path: /pets, uri: "{$host}"}}
            responses:
              - schema: *petList
                protocol: {http: {statusCodes: ["200"]}}
          - operationId: Pets_Create
            language: {default: {name: create}}
            extensions:
              x-ms-long-running-operation: true
              x-ms-long-running-operation-options: {final-state-via: location}
            parameters: [*host, *apiVersion]
            requests:
              - parameters:
                  - &body
                    schema: *pet
                    required: true
                    language: {default: {name: pet}}
                    protocol: {http: {in: body}}
                signatureParameters: [*body]
                protocol: {http: {method: put, path: /pets, uri: "{$host}", knownMediaType: json, mediaTypes: [application/json]}}
            responses:
              - schema: *pet
                protocol: {http: {statusCodes: ["201"]}}
          - operationId: Pets_Delete
            language: {default: {name: delete}}
            specialHeaders: [repeatability-request-id, repeatability-first-sent]
            parameters: [*host, *apiVersion]
            requests:
              - parameters:
                  - *petName
                  - &requestID
                    schema: *str
                    required: true
                    language: {default: {name: repeatabilityRequestId, serializedName: repeatability-request-id}}
                    protocol: {http: {in: header}}
                signatureParameters: [*petName, *requestID]
                protocol: {http: {method: delete, path: "/pets/{petName}", uri: "{$host}"}}
            responses:
              - protocol: {http: {statusCodes: ["204"]}}
`

func assemble(t *testing.T, s config.Settings, edit ...func(*codemodel.CodeModel)) *clientmodel.Model {
	t.Helper()
	cm, err := codemodel.Parse([]byte(store))
	require.NoError(t, err)
	for _, e := range edit {
		e(cm)
	}
	require.NoError(t, resolver.New(resolver.WithSettings(s)).Resolve(cm))
	model, err := New(WithSettings(s)).Assemble(cm)
	require.NoError(t, err)
	return model
}

func settings() config.Settings {
	s := config.Defaults()
	s.PackageName = "petstore"
	s.SDKOutputDir = "sdk"
	return s
}

type shape struct {
	typ         clientmodel.MethodType
	withContext bool
}

func shapes(methods []*clientmodel.ClientMethod, name string) []shape {
	var out []shape
	for _, m := range methods {
		if m.Proxy != nil && m.Proxy.BaseName == name {
			out = append(out, shape{m.Type, m.WithContext})
		}
	}
	return out
}

func method(t *testing.T, methods []*clientmodel.ClientMethod, name string, withContext bool) *clientmodel.ClientMethod {
	t.Helper()
	for _, m := range methods {
		if m.Name == name && m.WithContext == withContext {
			return m
		}
	}
	t.Fatalf("method %s (context %v) not found", name, withContext)
	return nil
}

func TestAssembleClients(t *testing.T) {
	model := assemble(t, settings())

	assert.Equal(t, "PetStore", model.Name)
	assert.Equal(t, "Sells pets.", model.Description)
	require.Len(t, model.Clients, 1)

	sc := model.Clients[0]
	assert.Equal(t, "PetStoreClient", sc.Name)
	assert.Equal(t, "PetStoreClient", sc.InterfaceName)
	assert.Equal(t, "PetStoreClientImpl", sc.ClassName)
	require.NotNil(t, sc.Proxy)
	assert.Equal(t, "PetStoreClientService", sc.Proxy.Name)
	assert.Equal(t, "{$host}", sc.Proxy.BaseURL)

	require.Len(t, sc.MethodGroups, 1)
	mg := sc.MethodGroups[0]
	assert.Equal(t, "Pets", mg.InterfaceName)
	assert.Equal(t, "PetsImpl", mg.ClassName)
	assert.Equal(t, "PetsService", mg.RestAPIName)
	assert.Equal(t, "pets", mg.VariableName)

	var async, sync []string
	for _, c := range model.AsyncClients {
		assert.True(t, c.Async)
		async = append(async, c.ClassName)
	}
	for _, c := range model.SyncClients {
		sync = append(sync, c.ClassName)
	}
	assert.Equal(t, []string{"PetStoreAsyncClient", "PetsAsyncClient"}, async)
	assert.Equal(t, []string{"PetStoreClient", "PetsClient"}, sync)
	assert.Equal(t, "PetsImpl", model.SyncClients[1].MethodGroup)
	assert.Empty(t, model.SyncClients[0].MethodGroup)
}

func TestAssembleSecurityAndVersions(t *testing.T) {
	sc := assemble(t, settings()).Clients[0]

	require.NotNil(t, sc.Security)
	assert.Equal(t, clientmodel.CredentialToken, sc.Security.Kind)
	assert.Equal(t, []string{"https://pets.example.com/.default", "pets.read"}, sc.Security.Scopes)

	require.NotNil(t, sc.ServiceVersion)
	assert.Equal(t, "PetStoreServiceVersion", sc.ServiceVersion.Name)
	assert.Equal(t, []string{"2022-01-01", "2023-05-01"}, sc.ServiceVersion.Versions)
	assert.Equal(t, "2023-05-01", sc.ServiceVersion.Latest)

	var apiVersion *clientmodel.ServiceClientProperty
	for _, p := range sc.Properties {
		if p.SerializedName == "api-version" {
			apiVersion = p
		}
	}
	require.NotNil(t, apiVersion)
	assert.Equal(t, `"2023-05-01"`, apiVersion.DefaultValue)
	assert.Len(t, sc.Properties, 2)
}

func TestAssembleServiceVersionEnum(t *testing.T) {
	model := assemble(t, settings())

	var enum *clientmodel.EnumType
	for _, e := range model.Enums {
		if e.Name == "PetStoreServiceVersion" {
			enum = e
		}
	}
	require.NotNil(t, enum)
	require.Len(t, enum.Values, 2)
	assert.Equal(t, "2022-01-01", enum.Values[0].Value)
	assert.Equal(t, "2023-05-01", enum.Values[1].Value)
}

func TestAssembleSimpleMethods(t *testing.T) {
	sc := assemble(t, settings()).Clients[0]

	assert.Equal(t, []shape{
		{clientmodel.MethodSimpleAsyncRestResponse, false},
		{clientmodel.MethodSimpleAsyncRestResponse, true},
		{clientmodel.MethodSimpleAsync, false},
		{clientmodel.MethodSimpleSyncRestResponse, true},
		{clientmodel.MethodSimpleSync, false},
	}, shapes(sc.Methods, "getPet"))

	get := method(t, sc.Methods, "GetPet", false)
	assert.Equal(t, clientmodel.Visible, get.Visibility)
	assert.Equal(t, "Pet", get.ReturnType.String())
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "petName", get.Parameters[0].Name)

	method(t, sc.Methods, "GetPetWithResponseAsync", true)
	method(t, sc.Methods, "GetPetAsync", false)
	method(t, sc.Methods, "GetPetWithResponse", true)
}

func TestAssemblePagingMethods(t *testing.T) {
	mg := assemble(t, settings()).Clients[0].MethodGroups[0]

	assert.Len(t, shapes(mg.Methods, "list"), 8)

	list := method(t, mg.Methods, "List", false)
	assert.Equal(t, clientmodel.MethodPagingSync, list.Type)
	assert.Equal(t, "[]Pet", list.ReturnType.String())
	assert.Empty(t, list.Parameters, "the page size is driven by the pager")

	require.NotNil(t, list.Page)
	assert.Equal(t, "value", list.Page.ItemName)
	assert.Equal(t, "nextLink", list.Page.NextLinkName)
	assert.Equal(t, "ListNext", list.Page.NextMethodName)
	assert.Equal(t, "maxPageSize", list.Page.PageSizeParameter)
	assert.Equal(t, "Pet", list.Page.ItemType.String())

	single := method(t, mg.Methods, "ListSinglePage", true)
	require.Len(t, single.Parameters, 1)
	assert.Equal(t, "maxPageSize", single.Parameters[0].Name)

	next := shapes(mg.Methods, "listNext")
	assert.Len(t, next, 4)
	for _, m := range mg.Methods {
		if m.Proxy.BaseName == "listNext" {
			assert.True(t, m.Type.IsPaging())
			assert.Equal(t, clientmodel.NotVisible, m.Visibility)
			assert.True(t, m.Internal)
		}
	}
}

func TestAssembleLongRunningMethods(t *testing.T) {
	mg := assemble(t, settings()).Clients[0].MethodGroups[0]

	assert.Len(t, shapes(mg.Methods, "create"), 10)

	begin := method(t, mg.Methods, "BeginCreate", false)
	assert.Equal(t, clientmodel.MethodLongRunningBeginSync, begin.Type)
	require.NotNil(t, begin.LongRunning)
	assert.Equal(t, "location", begin.LongRunning.FinalStateVia)
	assert.Equal(t, "Pet", begin.ReturnType.String())

	beginAsync := method(t, mg.Methods, "BeginCreateAsync", true)
	assert.Equal(t, clientmodel.MethodLongRunningBeginAsync, beginAsync.Type)
}

func TestAssembleRepeatableMethods(t *testing.T) {
	mg := assemble(t, settings()).Clients[0].MethodGroups[0]

	del := method(t, mg.Methods, "Delete", false)
	require.Len(t, del.Parameters, 1)
	assert.Equal(t, "petName", del.Parameters[0].Name)
	assert.Equal(t, map[string]string{
		resolver.RepeatabilityRequestIDHeader: RepeatabilityRequestIDDefault,
		resolver.RepeatabilityFirstSentHeader: RepeatabilityFirstSentDefault,
	}, del.HeaderDefaults)
	assert.Equal(t, clientmodel.Void, del.ReturnType)

	get := method(t, mg.Methods, "ListSinglePage", false)
	assert.Nil(t, get.HeaderDefaults)
}

func TestAssembleDataPlane(t *testing.T) {
	s := settings()
	s.DataPlaneClient = true
	model := assemble(t, s)
	sc := model.Clients[0]

	var protocol, convenience []shape
	for _, m := range sc.Methods {
		if m.Protocol {
			protocol = append(protocol, shape{m.Type, m.WithContext})
		} else {
			convenience = append(convenience, shape{m.Type, m.WithContext})
		}
	}
	assert.Equal(t, []shape{
		{clientmodel.MethodSimpleAsyncRestResponse, true},
		{clientmodel.MethodSimpleSyncRestResponse, true},
	}, protocol)
	assert.Empty(t, convenience, "convenience methods live on the wrappers")

	raw := method(t, sc.Methods, "GetPetWithResponse", true)
	assert.Equal(t, clientmodel.Bytes, raw.ReturnType)

	require.Len(t, model.AsyncClients, 2)
	pairs := model.AsyncClients[0].Convenience
	require.Len(t, pairs, 1)
	require.Len(t, pairs[0].Convenience, 1)
	assert.Equal(t, "GetPetAsync", pairs[0].Convenience[0].Name)
	require.Len(t, pairs[0].Protocol, 1)
	assert.Equal(t, "GetPetWithResponseAsync", pairs[0].Protocol[0].Name)

	syncPairs := model.SyncClients[0].Convenience
	require.Len(t, syncPairs, 1)
	assert.Equal(t, "GetPet", syncPairs[0].Convenience[0].Name)
	assert.Equal(t, "GetPetWithResponse", syncPairs[0].Protocol[0].Name)

	for _, m := range sc.MethodGroups[0].Methods {
		if m.Proxy.BaseName == "create" && m.Type == clientmodel.MethodSimpleSyncRestResponse {
			assert.True(t, m.WithContext)
			assert.Equal(t, clientmodel.NotVisible, m.Visibility, "the poller is the public surface")
		}
	}
}

func TestAssembleSyncOnly(t *testing.T) {
	s := settings()
	s.GenerateAsyncMethods = new(bool)
	model := assemble(t, s)

	assert.Empty(t, model.AsyncClients)
	assert.Len(t, model.SyncClients, 2)
	for _, m := range model.Clients[0].Methods {
		assert.True(t, m.Type.IsSync(), m.Name)
		assert.True(t, m.Proxy.IsSync)
	}
}

func TestAssembleSingleGroupFold(t *testing.T) {
	model := assemble(t, settings(), func(cm *codemodel.CodeModel) {
		c := cm.Clients[0]
		c.OperationGroups = c.OperationGroups[1:]
	})

	sc := model.Clients[0]
	assert.Empty(t, sc.MethodGroups)
	require.NotNil(t, sc.Proxy)
	assert.Equal(t, "PetStoreClientService", sc.Proxy.Name)
	assert.NotEmpty(t, shapes(sc.Methods, "list"))

	require.Len(t, model.SyncClients, 1)
	assert.Equal(t, "PetStoreClient", model.SyncClients[0].ClassName)
}

func TestAssembleMethodGroupNameCollision(t *testing.T) {
	cm, err := codemodel.Parse([]byte(store))
	require.NoError(t, err)
	require.NoError(t, resolver.New().Resolve(cm))

	a := New(WithSettings(settings()))
	a.Mapper().Registry().Add(&clientmodel.ClientModel{Name: "Pets"})
	model, err := a.Assemble(cm)
	require.NoError(t, err)

	mg := model.Clients[0].MethodGroups[0]
	assert.Equal(t, "PetsOperations", mg.InterfaceName)
	assert.Equal(t, "PetsOperationsImpl", mg.ClassName)
	assert.Equal(t, "PetsOperationsService", mg.RestAPIName)
}

func TestAssembleTruncatesClassNames(t *testing.T) {
	s := settings()
	// 32 - len("sdk/petstore/") - len(".go") leaves 16 characters
	s.MaxPathLength = 32
	s.MinClassNameLength = 10
	model := assemble(t, s)

	sc := model.Clients[0]
	assert.Equal(t, "PetStoreClientIm", sc.ClassName)
	assert.Equal(t, "PetStoreClient", sc.Name, "interfaces keep their name")
	assert.Equal(t, "PetStoreClientImpl", model.Truncated["PetStoreClientIm"])
	assert.Equal(t, "PetStoreAsyncCli", model.AsyncClients[0].ClassName)
	assert.Equal(t, "PetStoreAsyncClient", model.Truncated["PetStoreAsyncCli"])
	for short := range model.Truncated {
		assert.Len(t, short, 16)
	}
}

func TestAssembleTruncationKeepsClassNamesUnique(t *testing.T) {
	s := settings()
	s.MaxPathLength = 32
	s.MinClassNameLength = 10
	model := assemble(t, s, func(cm *codemodel.CodeModel) {
		groups := cm.Clients[0].OperationGroups
		groups[0].Language = codemodel.NewLanguages("StorageAccountManagementAlpha", "")
		groups[1].Language = codemodel.NewLanguages("StorageAccountManagementBeta", "")
	})

	sc := model.Clients[0]
	require.Len(t, sc.MethodGroups, 2)
	alpha, beta := sc.MethodGroups[0], sc.MethodGroups[1]
	assert.Equal(t, "StorageAccountMa", alpha.ClassName)
	assert.NotEqual(t, alpha.ClassName, beta.ClassName)
	assert.Equal(t, alpha.InterfaceName+"Impl", model.Truncated[alpha.ClassName])
	assert.Equal(t, beta.InterfaceName+"Impl", model.Truncated[beta.ClassName])

	classes := []string{sc.ClassName, alpha.ClassName, beta.ClassName}
	for _, c := range append(model.AsyncClients, model.SyncClients...) {
		classes = append(classes, c.ClassName)
	}
	seen := make(map[string]bool)
	for _, c := range classes {
		assert.False(t, seen[c], "class %s issued twice", c)
		seen[c] = true
		assert.LessOrEqual(t, len(c), 16)
	}

	originals := make(map[string]bool)
	for short, name := range model.Truncated {
		assert.Len(t, short, 16)
		assert.False(t, originals[name], "%s truncated twice", name)
		originals[name] = true
	}
	assert.Len(t, model.Truncated, 7)
}

func TestAssembleExamples(t *testing.T) {
	s := settings()
	s.GenerateExamples = true
	model := assemble(t, s)

	examples := make(map[string]any)
	for _, m := range model.Models {
		examples[m.Name] = m.Example
	}
	require.Contains(t, examples, "Pet")
	pet, ok := examples["Pet"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, pet["name"])
	assert.NotNil(t, examples["PetList"])
	assert.Nil(t, examples["Owner"], "credential-like properties suppress the example")

	again := assemble(t, s)
	for _, m := range again.Models {
		assert.Equal(t, examples[m.Name], m.Example, "examples are seeded")
	}
}

func TestMethodVisibility(t *testing.T) {
	tests := []struct {
		name      string
		dataPlane bool
		protocol  bool
		variant   variant
		expected  clientmodel.Visibility
	}{
		{"management simple", false, false, variant{clientmodel.MethodSimpleSync, false}, clientmodel.Visible},
		{"management simple with context", false, false, variant{clientmodel.MethodSimpleSync, true}, clientmodel.NotGenerate},
		{"management rest response", false, false, variant{clientmodel.MethodSimpleSyncRestResponse, false}, clientmodel.NotGenerate},
		{"management rest response with context", false, false, variant{clientmodel.MethodSimpleSyncRestResponse, true}, clientmodel.Visible},
		{"management async", false, false, variant{clientmodel.MethodSimpleAsync, false}, clientmodel.Visible},
		{"protocol simple", true, true, variant{clientmodel.MethodSimpleSync, true}, clientmodel.NotGenerate},
		{"protocol without context", true, true, variant{clientmodel.MethodSimpleAsyncRestResponse, false}, clientmodel.NotGenerate},
		{"protocol rest response", true, true, variant{clientmodel.MethodSimpleAsyncRestResponse, true}, clientmodel.Visible},
		{"protocol single page", true, true, variant{clientmodel.MethodPagingSyncSinglePage, true}, clientmodel.NotVisible},
		{"protocol pager", true, true, variant{clientmodel.MethodPagingSync, true}, clientmodel.Visible},
		{"convenience simple", true, false, variant{clientmodel.MethodSimpleAsync, false}, clientmodel.Visible},
		{"convenience with context", true, false, variant{clientmodel.MethodSimpleAsync, true}, clientmodel.NotGenerate},
		{"convenience rest response", true, false, variant{clientmodel.MethodSimpleSyncRestResponse, false}, clientmodel.NotGenerate},
		{"convenience begin", true, false, variant{clientmodel.MethodLongRunningBeginSync, false}, clientmodel.Visible},
		{"convenience poller result", true, false, variant{clientmodel.MethodLongRunningSync, false}, clientmodel.NotGenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, methodVisibility(tt.dataPlane, tt.protocol, tt.variant))
		})
	}

	assert.Equal(t, clientmodel.NotVisible, longRunningRestResponseVisibility(variant{clientmodel.MethodSimpleSyncRestResponse, true}))
	assert.Equal(t, clientmodel.NotGenerate, longRunningRestResponseVisibility(variant{clientmodel.MethodSimpleAsyncRestResponse, false}))
}

func TestMethodName(t *testing.T) {
	tests := []struct {
		typ      clientmodel.MethodType
		expected string
	}{
		{clientmodel.MethodSimpleSync, "GetPet"},
		{clientmodel.MethodSimpleAsync, "GetPetAsync"},
		{clientmodel.MethodSimpleAsyncRestResponse, "GetPetWithResponseAsync"},
		{clientmodel.MethodSimpleSyncRestResponse, "GetPetWithResponse"},
		{clientmodel.MethodPagingSync, "GetPet"},
		{clientmodel.MethodPagingAsync, "GetPetAsync"},
		{clientmodel.MethodPagingSyncSinglePage, "GetPetSinglePage"},
		{clientmodel.MethodPagingAsyncSinglePage, "GetPetSinglePageAsync"},
		{clientmodel.MethodLongRunningBeginSync, "BeginGetPet"},
		{clientmodel.MethodLongRunningBeginAsync, "BeginGetPetAsync"},
		{clientmodel.MethodLongRunningSync, "GetPet"},
		{clientmodel.MethodLongRunningAsync, "GetPetAsync"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, methodName("getPet", tt.typ))
		})
	}
}

func TestPairConvenience(t *testing.T) {
	proxy := &clientmodel.ProxyMethod{BaseName: "getPet"}
	other := &clientmodel.ProxyMethod{BaseName: "listPets"}
	generated := []*clientmodel.ClientMethod{
		{Name: "GetPetWithResponseAsync", Type: clientmodel.MethodSimpleAsyncRestResponse, Proxy: proxy, Protocol: true, Visibility: clientmodel.Visible},
		{Name: "GetPetWithResponse", Type: clientmodel.MethodSimpleSyncRestResponse, Proxy: proxy, Protocol: true, Visibility: clientmodel.Visible},
		{Name: "GetPetSinglePage", Type: clientmodel.MethodPagingSyncSinglePage, Proxy: proxy, Protocol: true, Visibility: clientmodel.NotVisible},
		{Name: "ListPetsWithResponse", Type: clientmodel.MethodSimpleSyncRestResponse, Proxy: other, Protocol: true, Visibility: clientmodel.Visible},
	}
	convenience := []*clientmodel.ClientMethod{
		{Name: "GetPetAsync", Type: clientmodel.MethodSimpleAsync, Proxy: proxy, Visibility: clientmodel.Visible},
		{Name: "GetPet", Type: clientmodel.MethodSimpleSync, Proxy: proxy, Visibility: clientmodel.Visible},
	}

	pair := pairConvenience(generated, convenience)
	require.NotNil(t, pair)
	assert.Len(t, pair.Protocol, 2)
	assert.Len(t, pair.Convenience, 2)

	async := convenienceFor([]*clientmodel.ConvenienceMethod{pair}, true)
	require.Len(t, async, 1)
	assert.Equal(t, "GetPetAsync", async[0].Convenience[0].Name)
	assert.Equal(t, "GetPetWithResponseAsync", async[0].Protocol[0].Name)

	assert.Nil(t, pairConvenience(generated, nil))
	assert.Nil(t, pairConvenience(generated[3:], convenience))
}

func TestAssembleMissingRequestIsSkipped(t *testing.T) {
	model := assemble(t, settings(), func(cm *codemodel.CodeModel) {
		g := cm.Clients[0].OperationGroups[0]
		g.Operations = append(g.Operations, &codemodel.Operation{
			OperationID: "Broken",
			Language:    codemodel.NewLanguages("broken", ""),
			Group:       g,
		})
	})
	for _, m := range model.Clients[0].Methods {
		assert.False(t, strings.HasPrefix(m.Name, "Broken"))
	}
}
