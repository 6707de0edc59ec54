package openapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/clientgen/pkg/assembler"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/resolver"
)

const petStore = `
openapi: 3.0.3
info:
  title: Pet Store
  description: Sells pets.
  version: "2023-05-01"
servers:
  - url: https://pets.example.com/
security:
  - oauth: []
paths:
  /pets:
    get:
      operationId: Pets_List
      tags: [Pets]
      x-ms-pageable:
        nextLinkName: nextLink
      parameters:
        - {name: api-version, in: query, required: true, schema: {type: string}}
        - {name: maxpagesize, in: query, schema: {type: integer, format: int32}}
      responses:
        "200":
          description: The pets.
          content:
            application/json:
              schema: {$ref: "#/components/schemas/PetList"}
        default:
          description: Something went wrong.
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Error"}
    put:
      operationId: Pets_Create
      tags: [Pets]
      x-ms-long-running-operation: true
      x-ms-long-running-operation-options:
        final-state-via: location
      parameters:
        - {name: api-version, in: query, required: true, schema: {type: string}}
      requestBody:
        required: true
        content:
          application/json:
            schema: {$ref: "#/components/schemas/Pet"}
      responses:
        "201":
          description: Created.
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pet"}
  /pets/{petName}:
    parameters:
      - {name: petName, in: path, required: true, schema: {type: string}}
    get:
      operationId: GetPet
      summary: Gets a pet.
      responses:
        "200":
          description: The pet.
          headers:
            x-request-id:
              schema: {type: string}
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pet"}
    delete:
      operationId: Pets_Delete
      tags: [Pets, internal]
      responses:
        "204":
          description: Deleted.
  /pets/{petName}/photo:
    put:
      operationId: Photos_Upload
      tags: [Photos]
      parameters:
        - {name: petName, in: path, required: true, schema: {type: string}}
      requestBody:
        content:
          application/octet-stream:
            schema: {type: string, format: binary}
      responses:
        "200":
          description: The stored photo.
          content:
            image/png:
              schema: {type: string, format: binary}
components:
  securitySchemes:
    apiKey: {type: apiKey, name: api-key, in: header}
    bearer: {type: http, scheme: bearer}
    oauth:
      type: oauth2
      flows:
        clientCredentials:
          tokenUrl: https://login.example.com/token
          scopes:
            pets.write: Write pets.
            pets.read: Read pets.
  schemas:
    Animal:
      type: object
      required: [kind]
      properties:
        kind: {type: string}
        name: {type: string}
      discriminator:
        propertyName: kind
        mapping:
          dog: "#/components/schemas/Dog"
    Cat:
      allOf:
        - $ref: "#/components/schemas/Animal"
      properties:
        lives: {type: integer, format: int64}
    Dog:
      allOf:
        - $ref: "#/components/schemas/Animal"
        - type: object
          required: [barks]
          properties:
            barks: {type: boolean}
    Error:
      type: object
      properties:
        code: {type: string}
        message: {type: string}
    Pet:
      type: object
      description: A pet for sale.
      required: [name]
      properties:
        name: {type: string}
        age: {type: integer, format: int32}
        born: {type: string, format: date-time}
        status: {type: string, enum: [available, sold]}
        tags:
          type: array
          items: {type: string}
        labels:
          type: object
          additionalProperties: {type: string}
        friend: {$ref: "#/components/schemas/Pet"}
    PetList:
      type: object
      properties:
        value:
          type: array
          items: {$ref: "#/components/schemas/Pet"}
        nextLink: {type: string}
    Size:
      type: string
      enum: [small, large]
      x-ms-enum:
        name: Size
        modelAsString: true
`

func importPetStore(t *testing.T, opts ...Option) *codemodel.CodeModel {
	t.Helper()
	doc, err := ParseDocument([]byte(petStore))
	require.NoError(t, err)
	cm, err := NewImporter(opts...).Import(doc)
	require.NoError(t, err)
	return cm
}

func object(t *testing.T, cm *codemodel.CodeModel, name string) *codemodel.ObjectSchema {
	t.Helper()
	for _, o := range cm.Schemas.Objects() {
		if o.Name() == name {
			return o
		}
	}
	t.Fatalf("no object schema %s", name)
	return nil
}

func group(t *testing.T, c *codemodel.Client, key string) *codemodel.OperationGroup {
	t.Helper()
	for _, g := range c.OperationGroups {
		if g.Key == key {
			return g
		}
	}
	t.Fatalf("no operation group %q", key)
	return nil
}

func operationIDs(g *codemodel.OperationGroup) []string {
	var ids []string
	for _, op := range g.Operations {
		ids = append(ids, op.OperationID)
	}
	return ids
}

func TestImportClient(t *testing.T) {
	cm := importPetStore(t)

	assert.Equal(t, "Pet Store", cm.Info.Title)
	require.Len(t, cm.Clients, 1)
	c := cm.Clients[0]
	assert.Equal(t, "PetStoreClient", c.Name())
	assert.Equal(t, []codemodel.APIVersion{{Version: "2023-05-01"}}, c.APIVersions)

	require.Len(t, c.GlobalParameters, 2)
	host := c.GlobalParameters[0]
	assert.Equal(t, "$host", host.Name())
	assert.Equal(t, codemodel.ParameterLocationURI, host.Location())
	assert.Equal(t, codemodel.ImplementationClient, host.Implementation)
	assert.Equal(t, "https://pets.example.com", host.ClientDefaultValue)

	apiVersion := c.GlobalParameters[1]
	assert.Equal(t, "apiVersion", apiVersion.Name())
	assert.Equal(t, "api-version", apiVersion.SerializedName())
	assert.Equal(t, codemodel.ImplementationClient, apiVersion.Implementation)

	var keys []string
	for _, g := range c.OperationGroups {
		keys = append(keys, g.Key)
		assert.Same(t, c, g.Client)
	}
	assert.Equal(t, []string{"", "Pets", "Photos"}, keys)
	assert.Equal(t, []string{"GetPet"}, operationIDs(group(t, c, "")))
	assert.Equal(t, []string{"Pets_List", "Pets_Create", "Pets_Delete"}, operationIDs(group(t, c, "Pets")))
}

func TestImportOperations(t *testing.T) {
	cm := importPetStore(t)
	c := cm.Clients[0]
	pets := group(t, c, "Pets")

	list := pets.Operations[0]
	assert.Equal(t, "list", list.Name())
	assert.Same(t, pets, list.Group)
	assert.Equal(t, c.GlobalParameters, list.Parameters)
	require.True(t, list.IsPageable())
	assert.Equal(t, "nextLink", list.Extensions.Pageable.NextLinkName)
	assert.Equal(t, "value", list.Extensions.Pageable.ItemName)

	require.Len(t, list.Requests, 1)
	req := list.Requests[0]
	assert.Equal(t, "GET", req.HTTP().Method)
	assert.Equal(t, "/pets", req.HTTP().Path)
	assert.Equal(t, "{$host}", req.HTTP().URI)
	require.Len(t, req.Parameters, 1)
	maxPageSize := req.Parameters[0]
	assert.Equal(t, "maxpagesize", maxPageSize.SerializedName())
	assert.Equal(t, codemodel.StyleForm, maxPageSize.Protocol.HTTP.Style)
	assert.True(t, maxPageSize.Protocol.HTTP.Explode)
	assert.False(t, maxPageSize.Required)
	assert.Equal(t, req.Parameters, req.SignatureParameters)

	require.Len(t, list.Responses, 1)
	assert.Equal(t, []string{"200"}, list.Responses[0].StatusCodes())
	assert.Equal(t, "PetList", codemodel.SchemaName(list.Responses[0].Schema))
	require.Len(t, list.Exceptions, 1)
	assert.Equal(t, []string{"default"}, list.Exceptions[0].StatusCodes())
	assert.Equal(t, "Error", codemodel.SchemaName(list.Exceptions[0].Schema))

	create := pets.Operations[1]
	assert.True(t, create.IsLongRunning())
	assert.Equal(t, "location", create.Extensions.LongRunningOptions.FinalStateVia)
	body := create.Requests[0].Parameters[0]
	assert.Equal(t, "body", body.Name())
	assert.Equal(t, codemodel.ParameterLocationBody, body.Location())
	assert.True(t, body.Required)
	assert.Equal(t, "Pet", codemodel.SchemaName(body.Schema))
	assert.Equal(t, codemodel.KnownMediaTypeJSON, create.Requests[0].HTTP().KnownMediaType)
	assert.Equal(t, []string{"application/json"}, create.Requests[0].HTTP().MediaTypes)

	getPet := group(t, c, "").Operations[0]
	assert.Equal(t, "getPet", getPet.Name())
	assert.Equal(t, "Gets a pet.", getPet.Language.Default.Summary)
	petName := getPet.Requests[0].Parameters[0]
	assert.Equal(t, codemodel.ParameterLocationPath, petName.Location())
	assert.Equal(t, codemodel.StyleSimple, petName.Protocol.HTTP.Style)
	assert.True(t, petName.Required)
	headers := getPet.Responses[0].Protocol.HTTP.Headers
	require.Len(t, headers, 1)
	assert.Equal(t, "x-request-id", headers[0].Header)

	upload := group(t, c, "Photos").Operations[0]
	assert.Equal(t, "upload", upload.Name())
	h := upload.Requests[0].HTTP()
	assert.Equal(t, codemodel.KnownMediaTypeBinary, h.KnownMediaType)
	uploadBody := upload.Requests[0].Parameters[1]
	assert.Equal(t, codemodel.SchemaTypeBinary, uploadBody.Schema.Base().Type)
	assert.False(t, uploadBody.Required)
	assert.True(t, upload.Responses[0].Binary)
	assert.Nil(t, upload.Responses[0].Schema)
}

func TestImportSchemas(t *testing.T) {
	cm := importPetStore(t)

	pet := object(t, cm, "Pet")
	assert.Equal(t, "A pet for sale.", pet.Description)
	var names []string
	for _, p := range pet.Properties {
		names = append(names, p.Serialized)
		assert.Same(t, pet, p.Owner)
	}
	assert.Equal(t, []string{"age", "born", "friend", "labels", "name", "status", "tags"}, names)

	props := make(map[string]*codemodel.Property)
	for _, p := range pet.Properties {
		props[p.Serialized] = p
	}
	assert.True(t, props["name"].Required)
	assert.False(t, props["age"].Required)
	assert.Same(t, pet, props["friend"].Schema, "recursive references share the object")
	assert.Equal(t, codemodel.SchemaTypeDateTime, props["born"].Schema.Base().Type)
	assert.IsType(t, &codemodel.ArraySchema{}, props["tags"].Schema)
	assert.IsType(t, &codemodel.DictionarySchema{}, props["labels"].Schema)

	status, ok := props["status"].Schema.(*codemodel.ChoiceSchema)
	require.True(t, ok)
	assert.True(t, status.Sealed())
	assert.Equal(t, "PetStatus", status.Name())
	require.Len(t, status.Choices, 2)
	assert.Equal(t, "available", status.Choices[0].Value)

	size, ok := cm.Schemas.Bucket("choices")[0].(*codemodel.ChoiceSchema)
	require.True(t, ok)
	assert.Equal(t, "Size", size.Name())
	assert.False(t, size.Sealed())

	age := props["age"].Schema.(*codemodel.PrimitiveSchema)
	assert.Equal(t, 32, age.Precision)
	lives := object(t, cm, "Cat").Properties[0].Schema.(*codemodel.PrimitiveSchema)
	assert.Equal(t, 64, lives.Precision)
	assert.Same(t, object(t, cm, "Error").Properties[0].Schema, props["name"].Schema, "unconstrained primitives are shared")
}

func TestImportHierarchy(t *testing.T) {
	cm := importPetStore(t)
	animal := object(t, cm, "Animal")
	cat := object(t, cm, "Cat")
	dog := object(t, cm, "Dog")

	require.NotNil(t, animal.Discriminator)
	assert.Equal(t, "kind", animal.Discriminator.Property.Serialized)
	assert.True(t, animal.Discriminator.Property.IsDiscriminator)
	assert.Equal(t, map[string]codemodel.Schema{"Cat": cat, "dog": dog}, animal.Discriminator.All)
	assert.Equal(t, animal.Discriminator.All, animal.Discriminator.Immediate)

	assert.Equal(t, "dog", dog.DiscriminatorValue)
	assert.Equal(t, "Cat", cat.DiscriminatorValue)
	assert.Same(t, animal, dog.ImmediateParent())
	assert.Equal(t, []codemodel.Schema{animal}, dog.Parents.All)
	assert.Equal(t, []codemodel.Schema{cat, dog}, animal.Children.Immediate)

	require.Len(t, dog.Properties, 1, "inline allOf members contribute properties")
	assert.Equal(t, "barks", dog.Properties[0].Serialized)
	assert.True(t, dog.Properties[0].Required)
}

func TestImportSecurity(t *testing.T) {
	cm := importPetStore(t)
	sec := cm.Security
	require.NotNil(t, sec)
	assert.True(t, sec.AuthenticationRequired)
	assert.Same(t, sec, cm.Clients[0].Security)
	assert.Equal(t, []*codemodel.SecurityScheme{
		{Type: codemodel.SecuritySchemeKey, Name: "api-key", In: "header"},
		{Type: codemodel.SecuritySchemeKey, Name: "Authorization", In: "header", Prefix: "Bearer"},
		{Type: codemodel.SecuritySchemeOAuth2, Scopes: []string{"pets.read", "pets.write"}},
	}, sec.Schemes)
}

func TestImportTagFilters(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want map[string][]string
	}{
		{
			name: "exclude",
			opts: []Option{WithExcludeTags("^internal$")},
			want: map[string][]string{"": {"GetPet"}, "Pets": {"Pets_List", "Pets_Create"}, "Photos": {"Photos_Upload"}},
		},
		{
			name: "include",
			opts: []Option{WithIncludeTags("^Ph")},
			want: map[string][]string{"Photos": {"Photos_Upload"}},
		},
		{
			name: "untagged",
			opts: []Option{WithIncludeTags("^misc$")},
			want: map[string][]string{"": {"GetPet"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := importPetStore(t, tt.opts...)
			got := make(map[string][]string)
			for _, g := range cm.Clients[0].OperationGroups {
				got[g.Key] = operationIDs(g)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	doc, err := ParseDocument([]byte(petStore))
	require.NoError(t, err)
	_, err = NewImporter(WithIncludeTags("(")).Import(doc)
	assert.ErrorContains(t, err, "invalid includeTags pattern")
}

func TestImportRunsThroughThePipeline(t *testing.T) {
	cm := importPetStore(t, WithClientName("PetsClient"))

	s := config.Defaults()
	s.PackageName = "pets"
	require.NoError(t, resolver.New(resolver.WithSettings(s)).Resolve(cm))
	model, err := assembler.New(assembler.WithSettings(s)).Assemble(cm)
	require.NoError(t, err)

	var models []string
	for _, m := range model.Models {
		models = append(models, m.Name)
	}
	assert.Subset(t, models, []string{"Animal", "Cat", "Dog", "Error", "Pet", "PetList"})
	require.NotEmpty(t, model.Clients)
	assert.Equal(t, "PetsClientImpl", model.Clients[0].ClassName)
}

func TestComponentName(t *testing.T) {
	name, err := componentName("#/components/schemas/a~1b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", name)

	_, err = componentName("#/definitions/Pet")
	assert.True(t, errors.Is(err, generrors.ErrMalformedInput))
}

func TestOperationName(t *testing.T) {
	tests := []struct {
		method, path, id string
		want             string
	}{
		{"GET", "/pets", "Pets_List", "list"},
		{"GET", "/pets", "listPets", "listPets"},
		{"GET", "/pets", "Pets_", "pets"},
		{"GET", "/pets/{petName}", "", "getPetsPetName"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, operationName(tt.method, tt.path, tt.id))
		})
	}
}

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument([]byte(petStore)))
	assert.True(t, IsDocument([]byte(`{"openapi": "3.1.0", "info": {}}`)))
	assert.False(t, IsDocument([]byte("swagger: \"2.0\"\n")))
	assert.False(t, IsDocument([]byte("info: {title: x}\nschemas: {}\nclients: []\n")))
	assert.False(t, IsDocument([]byte(":")))
}

func TestValidate(t *testing.T) {
	doc, err := ParseDocument([]byte(petStore))
	require.NoError(t, err)
	assert.NoError(t, Validate(context.Background(), doc))

	bad, err := ParseDocument([]byte("openapi: 3.0.3\npaths: {}\n"))
	require.NoError(t, err)
	err = Validate(context.Background(), bad)
	assert.True(t, errors.Is(err, generrors.ErrMalformedInput))
}
