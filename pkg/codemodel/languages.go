package codemodel

import (
	"github.com/imdario/mergo"
)

// DefaultLanguage is the key of the language entry every node carries.
const DefaultLanguage = "default"

// Language is per-target naming and documentation metadata.
type Language struct {
	Name           string
	SerializedName string
	Description    string
	Summary        string
	Namespace      string
}

// Languages holds the default entry plus optional target overlays such as "go".
type Languages struct {
	Default  *Language
	Overlays map[string]*Language
}

// NewLanguages returns Languages with only a default entry.
func NewLanguages(name, description string) Languages {
	return Languages{Default: &Language{Name: name, Description: description}}
}

// Name returns the default name, or "" when the default entry is missing.
func (l Languages) Name() string {
	if l.Default == nil {
		return ""
	}
	return l.Default.Name
}

// Description returns the default description.
func (l Languages) Description() string {
	if l.Default == nil {
		return ""
	}
	return l.Default.Description
}

// For returns the metadata for target: the default entry with the target
// overlay's non-empty fields merged over it.
func (l Languages) For(target string) Language {
	var out Language
	if l.Default != nil {
		out = *l.Default
	}
	if target == "" || target == DefaultLanguage {
		return out
	}
	if overlay, ok := l.Overlays[target]; ok && overlay != nil {
		// mergo only fails on mismatched kinds, which cannot happen here.
		_ = mergo.Merge(&out, *overlay, mergo.WithOverride)
	}
	return out
}

// ensureDefault guarantees a default entry, deriving the name from fallback.
func (l *Languages) ensureDefault(fallback string) {
	if l.Default == nil {
		l.Default = &Language{Name: fallback}
	}
	if l.Default.Name == "" {
		l.Default.Name = fallback
	}
}
