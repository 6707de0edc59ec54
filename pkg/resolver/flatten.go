package resolver

import (
	"strings"

	"github.com/blimu-dev/clientgen/pkg/codemodel"
)

// markFlattenedSchemas marks object schemas reached through a client-flattened
// property and splits dotted serialized names into flattened paths.
// Polymorphic schemas cannot be flattened; the extension is dropped for them.
func (rn *run) markFlattenedSchemas() {
	for _, o := range rn.schemas.Objects() {
		for _, p := range o.Properties {
			splitSerializedName(p)

			if p.Extensions == nil || !p.Extensions.ClientFlatten {
				continue
			}
			target, ok := p.Schema.(*codemodel.ObjectSchema)
			if !ok {
				continue
			}
			if target.IsPolymorphic() {
				rn.logger.Debug("x-ms-client-flatten ignored on polymorphic model",
					"model", target.Name(), "property", p.Name())
				p.Extensions.ClientFlatten = false
				continue
			}
			target.FlattenedSchema = true
		}
	}
}

func splitSerializedName(p *codemodel.Property) {
	if len(p.FlattenedNames) > 0 {
		return
	}
	names := SplitFlattenedName(p.Serialized)
	switch {
	case len(names) > 1:
		p.FlattenedNames = names
	case len(names) == 1 && names[0] != p.Serialized:
		p.Serialized = names[0]
	}
}

// SplitFlattenedName splits a serialized name on unescaped dots. "\." stands
// for a literal dot.
//
//	SplitFlattenedName(`properties.name`)   // ["properties" "name"]
//	SplitFlattenedName(`odata\.type`)       // ["odata.type"]
func SplitFlattenedName(name string) []string {
	if name == "" {
		return nil
	}
	var (
		out []string
		b   strings.Builder
	)
	for i := 0; i < len(name); i++ {
		switch {
		case name[i] == '\\' && i+1 < len(name) && name[i+1] == '.':
			b.WriteByte('.')
			i++
		case name[i] == '.':
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteByte(name[i])
		}
	}
	return append(out, b.String())
}
