package codemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/clientgen/pkg/generrors"
)

func TestSchemasAdd(t *testing.T) {
	reg := NewSchemas()
	s := &PrimitiveSchema{SchemaBase: SchemaBase{Type: SchemaTypeString, Language: NewLanguages("s", "")}}

	_, ok := reg.Add("strings", s)
	require.True(t, ok)

	prev, ok := reg.Add("uris", s)
	assert.False(t, ok)
	assert.Equal(t, "strings", prev)
	assert.Empty(t, reg.Bucket("uris"))

	// equal fields, different node
	twin := &PrimitiveSchema{SchemaBase: SchemaBase{Type: SchemaTypeString, Language: NewLanguages("s", "")}}
	_, ok = reg.Add("strings", twin)
	assert.True(t, ok)
	assert.Len(t, reg.All(), 2)
}

func TestSchemasAllOrder(t *testing.T) {
	reg := NewSchemas()
	obj := &ObjectSchema{}
	str := &PrimitiveSchema{}
	odd := &GenericSchema{}
	reg.Add("zzz", odd)
	reg.Add("strings", str)
	reg.Add("objects", obj)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Same(t, obj, all[0])
	assert.Same(t, str, all[1])
	assert.Same(t, odd, all[2])
}

func TestSortAPIVersions(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		expected []string
	}{
		{"semver", []string{"1.10.0", "1.2.0", "1.9.1"}, []string{"1.2.0", "1.9.1", "1.10.0"}},
		{"dates", []string{"2024-05-01", "2023-11-01", "2024-01-15"}, []string{"2023-11-01", "2024-01-15", "2024-05-01"}},
		{"duplicates", []string{"v2", "v1", "v2", ""}, []string{"v1", "v2"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in []APIVersion
			for _, v := range tt.versions {
				in = append(in, APIVersion{Version: v})
			}
			assert.Equal(t, tt.expected, SortAPIVersions(in))
		})
	}
	assert.Equal(t, "2024-05-01", LatestAPIVersion([]APIVersion{{Version: "2024-05-01"}, {Version: "2023-01-01"}}))
	assert.Equal(t, "", LatestAPIVersion(nil))
}

func TestLanguagesFor(t *testing.T) {
	l := Languages{
		Default:  &Language{Name: "pet_store", Description: "Pets."},
		Overlays: map[string]*Language{"go": {Name: "PetStore"}},
	}
	goLang := l.For("go")
	assert.Equal(t, "PetStore", goLang.Name)
	assert.Equal(t, "Pets.", goLang.Description)
	assert.Equal(t, "pet_store", l.For("python").Name)
	assert.Equal(t, "pet_store", l.Default.Name, "overlay merge must not mutate the default entry")

	var empty Languages
	empty.ensureDefault("Fallback")
	assert.Equal(t, "Fallback", empty.Name())
}

func TestParseVocabularies(t *testing.T) {
	_, err := ParseSchemaType("sealed-choice")
	assert.NoError(t, err)
	_, err = ParseSchemaType("tuple")
	assert.ErrorIs(t, err, generrors.ErrUnknownValue)

	loc, err := ParseImplementationLocation("CLIENT")
	require.NoError(t, err)
	assert.Equal(t, ImplementationClient, loc)
	loc, err = ParseImplementationLocation("")
	require.NoError(t, err)
	assert.Equal(t, ImplementationMethod, loc)
	_, err = ParseImplementationLocation("Operation")
	assert.ErrorIs(t, err, generrors.ErrUnknownValue)

	assert.Equal(t, "application/json", KnownMediaTypeJSON.ContentType())
	assert.Equal(t, "", KnownMediaTypeUnknown.ContentType())
}

func TestMergeSummaryWithDescription(t *testing.T) {
	tests := []struct {
		summary, description, expected string
	}{
		{"", "", ""},
		{"List pets.", "", "List pets."},
		{"", "Lists all pets.", "Lists all pets."},
		{"List pets.", "List pets.", "List pets."},
		{"List pets.", "Lists all pets.", "List pets.\n\nLists all pets."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MergeSummaryWithDescription(tt.summary, tt.description))
	}
}
