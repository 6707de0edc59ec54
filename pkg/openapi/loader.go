package openapi

import (
	"context"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/clientgen/pkg/generrors"
)

// LoadDocument loads an OpenAPI document from a local file path or an HTTP(S) URL
func LoadDocument(input string) (*openapi3.T, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	return LoadDocumentWithLoader(loader, input)
}

// LoadDocumentWithLoader loads an OpenAPI document using a custom loader
func LoadDocumentWithLoader(loader *openapi3.Loader, input string) (*openapi3.T, error) {
	var (
		doc *openapi3.T
		err error
	)
	if u, perr := url.Parse(input); perr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		doc, err = loader.LoadFromURI(u)
	} else {
		doc, err = loader.LoadFromFile(input)
	}
	if err != nil {
		return nil, &generrors.MalformedInputError{Path: input, Message: "cannot load OpenAPI document", Cause: err}
	}
	return doc, nil
}

// ParseDocument decodes an OpenAPI document held in memory. External
// references are not followed.
func ParseDocument(data []byte) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, &generrors.MalformedInputError{Message: "cannot decode OpenAPI document", Cause: err}
	}
	return doc, nil
}

// Validate checks doc against the OpenAPI 3 rules kin-openapi enforces.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if err := doc.Validate(ctx); err != nil {
		return &generrors.MalformedInputError{Message: "invalid OpenAPI document", Cause: err}
	}
	return nil
}

// ValidateDocument loads and validates an OpenAPI document
func ValidateDocument(input string) error {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	doc, err := LoadDocumentWithLoader(loader, input)
	if err != nil {
		return err
	}
	ctx := loader.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return Validate(ctx, doc)
}

// IsDocument reports whether data looks like an OpenAPI 3 document rather
// than a code model. Only the top-level "openapi" field is inspected.
func IsDocument(data []byte) bool {
	var head struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return false
	}
	return strings.HasPrefix(head.OpenAPI, "3.")
}
