package mapper

import (
	"github.com/blimu-dev/clientgen/pkg/codemodel"
	"github.com/blimu-dev/clientgen/pkg/generrors"
)

// DiscriminatorProperty returns the discriminator of a polymorphic object:
// its own, else the first found searching immediate parents depth-first.
// Callers only ask for polymorphic objects; an object without one anywhere
// in its ancestry is a broken model.
func DiscriminatorProperty(o *codemodel.ObjectSchema) (*codemodel.Property, error) {
	seen := make(map[*codemodel.ObjectSchema]bool)
	var search func(*codemodel.ObjectSchema) *codemodel.Property
	search = func(s *codemodel.ObjectSchema) *codemodel.Property {
		if seen[s] {
			return nil
		}
		seen[s] = true
		if s.Discriminator != nil && s.Discriminator.Property != nil {
			return s.Discriminator.Property
		}
		if s.Parents == nil {
			return nil
		}
		for _, p := range s.Parents.Immediate {
			if parent, ok := p.(*codemodel.ObjectSchema); ok {
				if d := search(parent); d != nil {
					return d
				}
			}
		}
		return nil
	}
	if d := search(o); d != nil {
		return d, nil
	}
	return nil, &generrors.DiscriminatorError{TypeName: o.Name()}
}

// parentChain returns s and its ancestors, root first. Only object parents
// are followed, one per level, and the walk stops on a revisit.
func parentChain(s codemodel.Schema) []codemodel.Schema {
	chain := []codemodel.Schema{s}
	seen := map[codemodel.Schema]bool{s: true}
	for {
		o, ok := s.(*codemodel.ObjectSchema)
		if !ok {
			break
		}
		parent := objectParent(o)
		if parent == nil || seen[parent] {
			break
		}
		seen[parent] = true
		chain = append(chain, parent)
		s = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// objectParent returns the first immediate parent that is an object.
func objectParent(o *codemodel.ObjectSchema) codemodel.Schema {
	if o.Parents == nil {
		return nil
	}
	for _, p := range o.Parents.Immediate {
		if parent, ok := p.(*codemodel.ObjectSchema); ok {
			return parent
		}
	}
	return nil
}

// LowestCommonParent returns the deepest schema that is s itself or an
// ancestor of every s in schemas. Ancestry is compared by identity. When
// schemas is empty or the chains share no node, a new any schema is
// returned; the result is never nil.
func LowestCommonParent(schemas []codemodel.Schema) codemodel.Schema {
	var common []codemodel.Schema
	first := true
	for _, s := range schemas {
		if s == nil {
			continue
		}
		chain := parentChain(s)
		if first {
			common, first = chain, false
			continue
		}
		n := 0
		for n < len(common) && n < len(chain) && common[n] == chain[n] {
			n++
		}
		common = common[:n]
		if n == 0 {
			break
		}
	}
	if len(common) == 0 {
		return codemodel.NewAnySchema()
	}
	return common[len(common)-1]
}
