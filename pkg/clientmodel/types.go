// Package clientmodel is the client object model produced by the assembler
// and consumed by emitters: Go types, models, service clients, method groups
// and methods.
package clientmodel

import (
	"sort"

	"github.com/blimu-dev/clientgen/pkg/convert"
)

// Type is a Go type of the generated client. Every implementation renders as
// Go source through String and serializes as that string.
type Type interface {
	// String returns the Go source form, e.g. "[]*Pet" or "time.Duration".
	String() string
	// Imports returns the import paths the type needs.
	Imports() []string
	// Nillable reports whether nil is a valid value of the type.
	Nillable() bool
}

// BuiltinType is a predeclared Go type or a composite spelled inline, such as
// "map[string]any".
type BuiltinType struct {
	Name        string
	CanBeNil    bool
	ImportPaths []string
}

func (t *BuiltinType) String() string               { return t.Name }
func (t *BuiltinType) Imports() []string            { return t.ImportPaths }
func (t *BuiltinType) Nillable() bool               { return t.CanBeNil }
func (t *BuiltinType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// The builtin types. They are shared values; compare them by identity.
var (
	Bool      = &BuiltinType{Name: "bool"}
	Int32     = &BuiltinType{Name: "int32"}
	Int64     = &BuiltinType{Name: "int64"}
	Float32   = &BuiltinType{Name: "float32"}
	Float64   = &BuiltinType{Name: "float64"}
	String    = &BuiltinType{Name: "string"}
	Rune      = &BuiltinType{Name: "rune"}
	Bytes     = &BuiltinType{Name: "[]byte", CanBeNil: true}
	Any       = &BuiltinType{Name: "any", CanBeNil: true}
	AnyObject = &BuiltinType{Name: "map[string]any", CanBeNil: true}
	Void      = &BuiltinType{Name: ""}
)

// NamedType is a type declared in another package, such as time.Time.
type NamedType struct {
	Package    string
	Name       string
	ImportPath string
	CanBeNil   bool
}

func (t *NamedType) String() string               { return t.Package + "." + t.Name }
func (t *NamedType) Imports() []string            { return []string{t.ImportPath} }
func (t *NamedType) Nillable() bool               { return t.CanBeNil }
func (t *NamedType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

var (
	Duration   = &NamedType{Package: "time", Name: "Duration", ImportPath: "time"}
	Time       = &NamedType{Package: "time", Name: "Time", ImportPath: "time"}
	UUID       = &NamedType{Package: "uuid", Name: "UUID", ImportPath: "github.com/google/uuid"}
	Decimal    = &NamedType{Package: "decimal", Name: "Decimal", ImportPath: "github.com/shopspring/decimal"}
	ReadCloser = &NamedType{Package: "io", Name: "ReadCloser", ImportPath: "io", CanBeNil: true}
)

// ConvertedType is a client type whose wire representation differs, e.g. a
// time.Duration sent as int32 seconds.
type ConvertedType struct {
	Client   Type
	Wire     Type
	Encoding convert.Encoding
}

func (t *ConvertedType) String() string { return t.Client.String() }
func (t *ConvertedType) Imports() []string {
	return mergeImports(t.Client.Imports(), t.Encoding.Imports())
}
func (t *ConvertedType) Nillable() bool               { return t.Client.Nillable() }
func (t *ConvertedType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ToClient returns Go source converting the wire expression expr.
func (t *ConvertedType) ToClient(expr string) string { return t.Encoding.ToClientExpression(expr) }

// ToWire returns Go source converting the client expression expr.
func (t *ConvertedType) ToWire(expr string) string { return t.Encoding.ToWireExpression(expr) }

// ListType is []Elem.
type ListType struct {
	Elem Type
}

func (t *ListType) String() string               { return "[]" + t.Elem.String() }
func (t *ListType) Imports() []string            { return t.Elem.Imports() }
func (t *ListType) Nillable() bool               { return true }
func (t *ListType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// MapType is map[string]Elem.
type MapType struct {
	Elem Type
}

func (t *MapType) String() string               { return "map[string]" + t.Elem.String() }
func (t *MapType) Imports() []string            { return t.Elem.Imports() }
func (t *MapType) Nillable() bool               { return true }
func (t *MapType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// PointerType is *Elem.
type PointerType struct {
	Elem Type
}

func (t *PointerType) String() string               { return "*" + t.Elem.String() }
func (t *PointerType) Imports() []string            { return t.Elem.Imports() }
func (t *PointerType) Nillable() bool               { return true }
func (t *PointerType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Optional returns t itself when nil already means "absent", else *t.
func Optional(t Type) Type {
	if t == nil || t.Nillable() || t == Void {
		return t
	}
	return &PointerType{Elem: t}
}

// EnumValue is one constant of an enum.
type EnumValue struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// EnumType is a named string or integer enum declared in the generated package.
type EnumType struct {
	Name        string       `json:"name"`
	Package     string       `json:"package,omitempty"`
	Description string       `json:"description,omitempty"`
	ElementType Type         `json:"elementType"`
	Values      []*EnumValue `json:"values"`
	// Expandable enums accept values outside Values.
	Expandable bool `json:"expandable"`
	// Flag enums are bitsets.
	Flag bool `json:"flag,omitempty"`
}

func (t *EnumType) String() string    { return t.Name }
func (t *EnumType) Imports() []string { return nil }
func (t *EnumType) Nillable() bool    { return false }

// ModelType references a ClientModel by name.
type ModelType struct {
	Name    string
	Package string
	// Polymorphic model references are interfaces in Go.
	Polymorphic bool
}

func (t *ModelType) String() string {
	if t.Polymorphic {
		return t.Name + "Classification"
	}
	return t.Name
}
func (t *ModelType) Imports() []string            { return nil }
func (t *ModelType) Nillable() bool               { return t.Polymorphic }
func (t *ModelType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// WireType returns the wire form of t, descending into lists and maps.
func WireType(t Type) Type {
	switch v := t.(type) {
	case *ConvertedType:
		return v.Wire
	case *ListType:
		if w := WireType(v.Elem); w != v.Elem {
			return &ListType{Elem: w}
		}
	case *MapType:
		if w := WireType(v.Elem); w != v.Elem {
			return &MapType{Elem: w}
		}
	case *PointerType:
		if w := WireType(v.Elem); w != v.Elem {
			return &PointerType{Elem: w}
		}
	}
	return t
}

// Underlying strips pointers.
func Underlying(t Type) Type {
	for {
		p, ok := t.(*PointerType)
		if !ok {
			return t
		}
		t = p.Elem
	}
}

func mergeImports(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, imp := range l {
			if !seen[imp] {
				seen[imp] = true
				out = append(out, imp)
			}
		}
	}
	sort.Strings(out)
	return out
}
