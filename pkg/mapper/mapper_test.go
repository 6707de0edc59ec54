package mapper

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/config"
	"github.com/blimu-dev/clientgen/pkg/convert"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/logging"
)

const zoo = `
info: {title: Zoo}
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
    - &int64
      type: integer
      precision: 64
      language: {default: {name: int64}}
  durations:
    - &seconds
      type: duration
      format: int32-seconds
      language: {default: {name: seconds}}
    - &floatSeconds
      type: duration
      format: float-seconds
      language: {default: {name: floatSeconds}}
  dateTimes:
    - &rfc1123
      type: date-time
      format: date-time-rfc1123
      language: {default: {name: rfc1123}}
  byteArrays:
    - &b64
      type: byte-array
      format: base64url
      language: {default: {name: b64}}
  unixtimes:
    - &unix
      type: unixtime
      language: {default: {name: unix}}
  arrays:
    - &names
      type: array
      elementType: *str
      language: {default: {name: names}}
    - &names2
      type: array
      elementType: *str
      language: {default: {name: names}}
  sealedChoices:
    - &kindEnum
      type: sealed-choice
      choiceType: *str
      language: {default: {name: pet-kind}}
      choices:
        - value: dog
        - value: cat
  constants:
    - &jsonConst
      type: constant
      valueType: *str
      value: {value: application/json}
      language: {default: {name: json}}
  objects:
    - &animal
      type: object
      language: {default: {name: Animal, description: An animal.}}
      discriminator:
        property: &kindProp
          schema: *str
          serializedName: kind
          isDiscriminator: true
          required: true
          readOnly: true
          language: {default: {name: kind}}
      children:
        immediate:
          - $ref: "#/schemas/objects/1"
          - $ref: "#/schemas/objects/2"
      properties:
        - *kindProp
        - schema: *str
          serializedName: name
          required: true
          language: {default: {name: name}}
        - schema: *int32
          serializedName: age
          language: {default: {name: age}}
        - schema: *str
          serializedName: id
          required: true
          readOnly: true
          language: {default: {name: id}}
        - schema: *seconds
          serializedName: napTime
          language: {default: {name: napTime}}
    - &dog
      type: object
      discriminatorValue: dog
      language: {default: {name: Dog}}
      parents: {immediate: [*animal], all: [*animal]}
      children:
        immediate:
          - $ref: "#/schemas/objects/3"
      properties:
        - schema: *str
          serializedName: properties.breed
          flattenedNames: [properties, breed]
          language: {default: {name: breed}}
    - &cat
      type: object
      discriminatorValue: cat
      language: {default: {name: Cat}}
      parents: {immediate: [*animal], all: [*animal]}
    - &puppy
      type: object
      discriminatorValue: puppy
      language: {default: {name: Puppy}}
      parents: {immediate: [*dog], all: [*dog, *animal]}
    - &keeper
      type: object
      language: {default: {name: Keeper}}
      properties:
        - schema: {$ref: "#/schemas/objects/4"}
          serializedName: mentor
          language: {default: {name: mentor}}
        - schema: *kindEnum
          serializedName: favorite
          language: {default: {name: favorite}}
          clientDefaultValue: cat
clients:
  - language: {default: {name: ZooClient}}
    operationGroups:
      - $key: pets
        language: {default: {name: Pets}}
        operations:
          - operationId: Pets_Exists
            language: {default: {name: exists}}
            requests:
              - protocol: {http: {method: head, path: /pets/{name}}}
            responses:
              - protocol: {http: {statusCodes: ["200"]}}
              - protocol: {http: {statusCodes: ["404"]}}
          - operationId: Pets_Photo
            language: {default: {name: photo}}
            requests:
              - protocol: {http: {method: get, path: /photo}}
            responses:
              - binary: true
                protocol: {http: {statusCodes: ["200"]}}
          - operationId: Pets_Delete
            language: {default: {name: delete}}
            requests:
              - protocol: {http: {method: delete, path: /pets}}
            responses:
              - protocol: {http: {statusCodes: ["204", "default"]}}
          - operationId: Pets_Get
            language: {default: {name: get}}
            parameters:
              - schema: *names
                required: true
                language: {default: {name: names, serializedName: names}}
                protocol: {http: {in: query, style: form, explode: false}}
              - schema: *names
                language: {default: {name: tags, serializedName: tags}}
                protocol: {http: {in: query, style: pipeDelimited}}
              - schema: *str
                language: {default: {name: meta, serializedName: x-meta-}}
                extensions: {x-ms-header-collection-prefix: x-meta-}
                protocol: {http: {in: header}}
              - schema: *jsonConst
                required: true
                language: {default: {name: accept, serializedName: Accept}}
                protocol: {http: {in: header}}
              - schema: *b64
                required: true
                language: {default: {name: token, serializedName: token}}
                protocol: {http: {in: path}}
              - schema: *str
                required: true
                implementation: Client
                language: {default: {name: $host, serializedName: $host}}
                extensions: {x-ms-skip-url-encoding: true}
                protocol: {http: {in: uri}}
            requests:
              - protocol: {http: {method: get, path: /pets/{token}, uri: "{$host}"}}
            responses:
              - schema: *dog
                protocol: {http: {statusCodes: ["201"]}}
              - schema: *puppy
                protocol: {http: {statusCodes: ["200"]}}
            exceptions:
              - schema: *cat
                protocol: {http: {statusCodes: ["default"]}}
`

func loadZoo(t *testing.T) *codemodel.CodeModel {
	t.Helper()
	cm, err := codemodel.Parse([]byte(zoo))
	require.NoError(t, err)
	return cm
}

func objectNamed(t *testing.T, cm *codemodel.CodeModel, name string) *codemodel.ObjectSchema {
	t.Helper()
	for _, o := range cm.Schemas.Objects() {
		if o.Name() == name {
			return o
		}
	}
	t.Fatalf("object %s not found", name)
	return nil
}

func operationNamed(t *testing.T, cm *codemodel.CodeModel, id string) *codemodel.Operation {
	t.Helper()
	for _, g := range cm.Clients[0].OperationGroups {
		for _, op := range g.Operations {
			if op.OperationID == id {
				return op
			}
		}
	}
	t.Fatalf("operation %s not found", id)
	return nil
}

func TestMapSchemaIdempotent(t *testing.T) {
	cm := loadZoo(t)
	m := New()

	for _, s := range cm.Schemas.All() {
		first, err := m.MapSchema(s)
		require.NoError(t, err)
		second, err := m.MapSchema(s)
		require.NoError(t, err)
		assert.Same(t, first, second, "schema %s", codemodel.SchemaName(s))
	}

	// structurally equal nodes are distinct schemas
	arrays := cm.Schemas.Bucket("arrays")
	a, _ := m.MapSchema(arrays[0])
	b, _ := m.MapSchema(arrays[1])
	assert.NotSame(t, a, b)
	assert.Equal(t, a.String(), b.String())
}

func TestMapPrimitives(t *testing.T) {
	cm := loadZoo(t)
	m := New()

	tests := []struct {
		bucket   string
		index    int
		expected string
		wire     string
	}{
		{"strings", 0, "string", "string"},
		{"numbers", 0, "int32", "int32"},
		{"numbers", 1, "int64", "int64"},
		{"durations", 0, "time.Duration", "int32"},
		{"durations", 1, "time.Duration", "float64"},
		{"dateTimes", 0, "time.Time", "string"},
		{"byteArrays", 0, "[]byte", "string"},
		{"unixtimes", 0, "time.Time", "int64"},
		{"arrays", 0, "[]string", "[]string"},
		{"constants", 0, "string", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			typ, err := m.MapSchema(cm.Schemas.Bucket(tt.bucket)[tt.index])
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ.String())
			assert.Equal(t, tt.wire, clientmodel.WireType(typ).String())
		})
	}

	seconds, _ := m.MapSchema(cm.Schemas.Bucket("durations")[0])
	conv, ok := seconds.(*clientmodel.ConvertedType)
	require.True(t, ok)
	assert.Equal(t, convert.EncodingDurationInt32Seconds, conv.Encoding)
	assert.Equal(t, "convert.DurationToInt32Seconds(d)", conv.ToWire("d"))
}

func TestMapEnum(t *testing.T) {
	cm := loadZoo(t)
	m := New()

	typ, err := m.MapSchema(cm.Schemas.Bucket("sealedChoices")[0])
	require.NoError(t, err)
	e, ok := typ.(*clientmodel.EnumType)
	require.True(t, ok)

	assert.Equal(t, "PetKind", e.Name)
	assert.False(t, e.Expandable)
	require.Len(t, e.Values, 2)
	assert.Equal(t, "PetKindDog", e.Values[0].Name)
	assert.Equal(t, "cat", e.Values[1].Value)
	assert.Equal(t, []*clientmodel.EnumType{e}, m.Enums())
}

func TestMapModels(t *testing.T) {
	cm := loadZoo(t)
	m := New(WithSettings(config.Defaults()))
	require.NoError(t, m.MapAll(cm.Schemas))

	animal, ok := m.Registry().Get("Animal")
	require.True(t, ok)
	assert.True(t, animal.IsPolymorphic)
	assert.Equal(t, "kind", animal.PolymorphicDiscriminator)
	assert.Equal(t, []string{"Dog", "Cat"}, animal.DerivedModels)
	assert.Equal(t, "An animal.", animal.Description)
	assert.Equal(t, "AnimalClassification", animal.Type().String())

	kind, _ := animal.Property("Kind")
	assert.True(t, kind.IsDiscriminator)
	assert.True(t, kind.CtorArg, "a required discriminator of a polymorphic model is a constructor argument")
	assert.False(t, kind.PublicSetter)

	name, _ := animal.Property("Name")
	assert.True(t, name.CtorArg)
	assert.Equal(t, "string", name.Type.String())

	age, _ := animal.Property("Age")
	assert.False(t, age.CtorArg)
	assert.True(t, age.PublicSetter)
	assert.Equal(t, "*int32", age.Type.String())

	id, _ := animal.Property("ID")
	assert.False(t, id.CtorArg, "read-only")
	assert.False(t, id.PublicSetter)

	nap, _ := animal.Property("NapTime")
	assert.Equal(t, "*time.Duration", nap.Type.String())
	assert.Equal(t, "*int32", nap.WireType.String())

	dog, ok := m.Registry().Get("Dog")
	require.True(t, ok)
	assert.Equal(t, "Animal", dog.ParentName)
	assert.Equal(t, "dog", dog.SerializedName)
	assert.Equal(t, "kind", dog.PolymorphicDiscriminator)
	assert.True(t, dog.NeedsFlatten)
	assert.Equal(t, "DogClassification", dog.Type().String())

	cat, _ := m.Registry().Get("Cat")
	assert.Equal(t, "Cat", cat.Type().String(), "a leaf is referenced by its struct")

	var ctor []string
	for _, p := range m.ConstructorProperties(dog) {
		ctor = append(ctor, p.Name)
	}
	assert.Equal(t, []string{"Kind", "Name"}, ctor)

	keeper, _ := m.Registry().Get("Keeper")
	mentor, _ := keeper.Property("Mentor")
	assert.Equal(t, "*Keeper", mentor.Type.String())
	favorite, _ := keeper.Property("Favorite")
	assert.Equal(t, "PetKindCat", favorite.DefaultValue)

	var order []string
	for _, model := range m.Registry().Models() {
		order = append(order, model.Name)
	}
	assert.Equal(t, []string{"Animal", "Dog", "Cat", "Puppy", "Keeper"}, order)
}

func TestMapModelsSameName(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewSlogAdapter(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	m := New(WithSettings(config.Defaults()), WithLogger(logger))

	first := &codemodel.ObjectSchema{SchemaBase: codemodel.SchemaBase{Language: codemodel.NewLanguages("Widget", "")}}
	second := &codemodel.ObjectSchema{SchemaBase: codemodel.SchemaBase{Language: codemodel.NewLanguages("Widget", "")}}

	a, err := m.Model(first)
	require.NoError(t, err)
	again, err := m.Model(first)
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.NotContains(t, logs.String(), "registered by another schema")

	b, err := m.Model(second)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "distinct schemas keep distinct models")
	assert.Contains(t, logs.String(), "model=Widget")
	assert.Contains(t, logs.String(), "registered by another schema")

	got, _ := m.Registry().Get("Widget")
	assert.Same(t, b, got)
}

func TestReadOnlyInConstructor(t *testing.T) {
	cm := loadZoo(t)
	s := config.Defaults()
	s.IncludeReadOnlyInConstructorArgs = true
	m := New(WithSettings(s))

	animal, err := m.Model(objectNamed(t, cm, "Animal"))
	require.NoError(t, err)
	id, _ := animal.Property("ID")
	assert.True(t, id.CtorArg)

	s.RequiredFieldsAsConstructorArgs = new(bool)
	m = New(WithSettings(s))
	animal, err = m.Model(objectNamed(t, cm, "Animal"))
	require.NoError(t, err)
	assert.Empty(t, m.ConstructorProperties(animal))
}

func TestDiscriminatorProperty(t *testing.T) {
	cm := loadZoo(t)
	animal := objectNamed(t, cm, "Animal")

	for _, name := range []string{"Animal", "Dog", "Puppy"} {
		d, err := DiscriminatorProperty(objectNamed(t, cm, name))
		require.NoError(t, err, name)
		assert.Same(t, animal.Discriminator.Property, d)
	}

	_, err := DiscriminatorProperty(objectNamed(t, cm, "Keeper"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, generrors.ErrDiscriminatorNotFound))
	var dErr *generrors.DiscriminatorError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "Keeper", dErr.TypeName)
}

func TestDiscriminatorPropertyCycle(t *testing.T) {
	a := &codemodel.ObjectSchema{SchemaBase: codemodel.SchemaBase{Language: codemodel.NewLanguages("A", "")}}
	b := &codemodel.ObjectSchema{SchemaBase: codemodel.SchemaBase{Language: codemodel.NewLanguages("B", "")}}
	a.Parents = &codemodel.Relations{Immediate: []codemodel.Schema{b}}
	b.Parents = &codemodel.Relations{Immediate: []codemodel.Schema{a}}

	_, err := DiscriminatorProperty(a)
	assert.ErrorIs(t, err, generrors.ErrDiscriminatorNotFound)

	// a schema without parents terminates as well
	_, err = DiscriminatorProperty(&codemodel.ObjectSchema{})
	assert.ErrorIs(t, err, generrors.ErrDiscriminatorNotFound)
}

func TestLowestCommonParent(t *testing.T) {
	cm := loadZoo(t)
	animal := objectNamed(t, cm, "Animal")
	dog := objectNamed(t, cm, "Dog")
	cat := objectNamed(t, cm, "Cat")
	puppy := objectNamed(t, cm, "Puppy")
	keeper := objectNamed(t, cm, "Keeper")

	tests := []struct {
		name     string
		schemas  []codemodel.Schema
		expected codemodel.Schema
	}{
		{"single", []codemodel.Schema{dog}, dog},
		{"subclass and superclass", []codemodel.Schema{puppy, dog}, dog},
		{"superclass first", []codemodel.Schema{dog, puppy}, dog},
		{"siblings", []codemodel.Schema{cat, dog}, animal},
		{"deep and shallow", []codemodel.Schema{puppy, cat}, animal},
		{"nil entries are ignored", []codemodel.Schema{nil, puppy}, puppy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.expected, LowestCommonParent(tt.schemas))
		})
	}

	for _, unrelated := range [][]codemodel.Schema{{dog, keeper}, {}, nil} {
		got := LowestCommonParent(unrelated)
		require.NotNil(t, got)
		assert.True(t, codemodel.IsAny(got))
	}
}

func TestResponseType(t *testing.T) {
	cm := loadZoo(t)
	m := New()

	tests := []struct {
		operation string
		expected  string
	}{
		{"Pets_Exists", "bool"},
		{"Pets_Photo", "io.ReadCloser"},
		{"Pets_Delete", ""},
		{"Pets_Get", "DogClassification"},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			typ, err := m.ResponseType(operationNamed(t, cm, tt.operation))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ.String())
		})
	}

	assert.Equal(t, []int{204}, ExpectedStatusCodes(operationNamed(t, cm, "Pets_Delete")))
	assert.Equal(t, []int{200, 201}, ExpectedStatusCodes(operationNamed(t, cm, "Pets_Get")))
}

func TestProxyMethod(t *testing.T) {
	cm := loadZoo(t)
	m := New()
	op := operationNamed(t, cm, "Pets_Get")

	pm, err := m.ProxyMethod(op, op.Requests[0])
	require.NoError(t, err)
	assert.Equal(t, "get", pm.Name)
	assert.Equal(t, "GET", pm.HTTPMethod)
	assert.Equal(t, "/pets/{token}", pm.URLPath)
	assert.Equal(t, "application/json", pm.RequestContentType)
	assert.Equal(t, "Cat", pm.ErrorModel)

	names, ok := pm.Parameter("names")
	require.True(t, ok)
	assert.Equal(t, "[]string", names.Type.String())
	assert.Equal(t, "string", names.WireType.String())
	assert.Equal(t, clientmodel.CollectionCSV, names.CollectionFormat)

	tags, _ := pm.Parameter("tags")
	assert.Equal(t, clientmodel.CollectionPipes, tags.CollectionFormat)

	meta, _ := pm.Parameter("meta")
	assert.Equal(t, "x-meta-", meta.HeaderCollectionPrefix)
	assert.Equal(t, "map[string]string", meta.Type.String())

	accept, _ := pm.Parameter("accept")
	assert.True(t, accept.Constant)
	assert.Equal(t, `"application/json"`, accept.ConstantValue)

	token, _ := pm.Parameter("token")
	assert.Equal(t, "[]byte", token.Type.String())
	assert.Equal(t, "string", token.WireType.String())

	host, _ := pm.Parameter("host")
	assert.True(t, host.FromClient)
	assert.True(t, host.AlreadyEncoded)
}

func TestRequestContentType(t *testing.T) {
	tests := []struct {
		name     string
		http     codemodel.HTTPProtocol
		expected string
	}{
		{"single media type", codemodel.HTTPProtocol{MediaTypes: []string{"image/png"}}, "image/png"},
		{"known media type", codemodel.HTTPProtocol{MediaTypes: []string{"a/b", "c/d"}, KnownMediaType: codemodel.KnownMediaTypeBinary}, "application/octet-stream"},
		{"form", codemodel.HTTPProtocol{KnownMediaType: codemodel.KnownMediaTypeForm}, "application/x-www-form-urlencoded"},
		{"fallback", codemodel.HTTPProtocol{}, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.http
			req := &codemodel.Request{Protocol: &codemodel.Protocol{HTTP: &h}}
			assert.Equal(t, tt.expected, RequestContentType(req))
		})
	}
}

func TestMapGenericSchemaFails(t *testing.T) {
	m := New()
	_, err := m.MapSchema(&codemodel.GenericSchema{RawType: "hologram"})
	require.Error(t, err)
	assert.ErrorIs(t, err, generrors.ErrUnknownValue)
	assert.Contains(t, err.Error(), "hologram")

	v, err := m.MapSchema(nil)
	require.NoError(t, err)
	assert.Same(t, clientmodel.Void, v)
}
