package exampledata

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/convert"
)

// Redact returns RedactedPlaceholder when any of names looks like a
// credential, and value otherwise.
func Redact(names []string, value string) string {
	for _, name := range names {
		if IsPossibleCredential(name) {
			return RedactedPlaceholder
		}
	}
	return value
}

// PropertyLiteral renders the wire value of p as a Go expression of its
// client type, as it would appear in a sample. String values under
// credential-like names are redacted first.
func PropertyLiteral(p *clientmodel.Property, wire any) (string, error) {
	t := clientmodel.Underlying(p.Type)
	encoding := convert.EncodingNone
	if ct, ok := t.(*clientmodel.ConvertedType); ok {
		encoding = ct.Encoding
		t = ct.Client
	}

	names := p.FlattenedNames
	if len(names) == 0 {
		names = []string{p.SerializedName}
	}
	if s, ok := wire.(string); ok && t == clientmodel.String {
		wire = Redact(names, s)
	}

	switch e := t.(type) {
	case *clientmodel.EnumType:
		s, err := cast.ToStringE(wire)
		if err != nil {
			return "", fmt.Errorf("property %s: %w", p.Name, err)
		}
		return fmt.Sprintf("%s(%q)", e.Name, s), nil
	case *clientmodel.ListType, *clientmodel.MapType, *clientmodel.ModelType:
		return "", fmt.Errorf("property %s: no literal for %s", p.Name, t)
	}
	lit, err := convert.Literal(t.String(), encoding, wire)
	if err != nil {
		return "", fmt.Errorf("property %s: %w", p.Name, err)
	}
	return lit, nil
}

// Literals renders the scalar top-level values of example, keyed by the Go
// field name of the property they belong to. Values of composite types and
// properties missing from the example are left out.
func Literals(m *clientmodel.ClientModel, example map[string]any) map[string]string {
	out := make(map[string]string)
	for _, p := range m.Properties {
		if p.Flattened() {
			continue
		}
		v, ok := example[p.SerializedName]
		if !ok {
			continue
		}
		if lit, err := PropertyLiteral(p, v); err == nil {
			out[p.Name] = lit
		}
	}
	return out
}
