package codemodel

import (
	"strings"

	"github.com/blimu-dev/clientgen/pkg/generrors"
)

// SchemaType is the type tag of a schema node.
type SchemaType string

const (
	SchemaTypeAny               SchemaType = "any"
	SchemaTypeAnyObject         SchemaType = "any-object"
	SchemaTypeAnd               SchemaType = "and"
	SchemaTypeArmID             SchemaType = "arm-id"
	SchemaTypeArray             SchemaType = "array"
	SchemaTypeBinary            SchemaType = "binary"
	SchemaTypeBoolean           SchemaType = "boolean"
	SchemaTypeByteArray         SchemaType = "byte-array"
	SchemaTypeChar              SchemaType = "char"
	SchemaTypeChoice            SchemaType = "choice"
	SchemaTypeConditional       SchemaType = "conditional"
	SchemaTypeConstant          SchemaType = "constant"
	SchemaTypeCredential        SchemaType = "credential"
	SchemaTypeDate              SchemaType = "date"
	SchemaTypeDateTime          SchemaType = "date-time"
	SchemaTypeDictionary        SchemaType = "dictionary"
	SchemaTypeDuration          SchemaType = "duration"
	SchemaTypeFlag              SchemaType = "flag"
	SchemaTypeGroup             SchemaType = "group"
	SchemaTypeInteger           SchemaType = "integer"
	SchemaTypeNot               SchemaType = "not"
	SchemaTypeNumber            SchemaType = "number"
	SchemaTypeObject            SchemaType = "object"
	SchemaTypeODataQuery        SchemaType = "odata-query"
	SchemaTypeOr                SchemaType = "or"
	SchemaTypeParameterGroup    SchemaType = "parameter-group"
	SchemaTypeSealedChoice      SchemaType = "sealed-choice"
	SchemaTypeSealedConditional SchemaType = "sealed-conditional"
	SchemaTypeString            SchemaType = "string"
	SchemaTypeTime              SchemaType = "time"
	SchemaTypeUnixTime          SchemaType = "unixtime"
	SchemaTypeUnknown           SchemaType = "unknown"
	SchemaTypeURI               SchemaType = "uri"
	SchemaTypeUUID              SchemaType = "uuid"
	SchemaTypeXor               SchemaType = "xor"
)

var schemaTypes = map[SchemaType]struct{}{
	SchemaTypeAny: {}, SchemaTypeAnyObject: {}, SchemaTypeAnd: {}, SchemaTypeArmID: {},
	SchemaTypeArray: {}, SchemaTypeBinary: {}, SchemaTypeBoolean: {}, SchemaTypeByteArray: {},
	SchemaTypeChar: {}, SchemaTypeChoice: {}, SchemaTypeConditional: {}, SchemaTypeConstant: {},
	SchemaTypeCredential: {}, SchemaTypeDate: {}, SchemaTypeDateTime: {}, SchemaTypeDictionary: {},
	SchemaTypeDuration: {}, SchemaTypeFlag: {}, SchemaTypeGroup: {}, SchemaTypeInteger: {},
	SchemaTypeNot: {}, SchemaTypeNumber: {}, SchemaTypeObject: {}, SchemaTypeODataQuery: {},
	SchemaTypeOr: {}, SchemaTypeParameterGroup: {}, SchemaTypeSealedChoice: {},
	SchemaTypeSealedConditional: {}, SchemaTypeString: {}, SchemaTypeTime: {},
	SchemaTypeUnixTime: {}, SchemaTypeUnknown: {}, SchemaTypeURI: {}, SchemaTypeUUID: {},
	SchemaTypeXor: {},
}

// ParseSchemaType returns the SchemaType for s, or an UnknownValueError.
func ParseSchemaType(s string) (SchemaType, error) {
	t := SchemaType(s)
	if _, ok := schemaTypes[t]; !ok {
		return "", &generrors.UnknownValueError{Vocabulary: "schema type", Value: s}
	}
	return t, nil
}

// ParameterLocation is where a parameter travels in the HTTP request.
type ParameterLocation string

const (
	ParameterLocationBody    ParameterLocation = "body"
	ParameterLocationCookie  ParameterLocation = "cookie"
	ParameterLocationHeader  ParameterLocation = "header"
	ParameterLocationNone    ParameterLocation = "none"
	ParameterLocationPath    ParameterLocation = "path"
	ParameterLocationQuery   ParameterLocation = "query"
	ParameterLocationURI     ParameterLocation = "uri"
	ParameterLocationVirtual ParameterLocation = "virtual"
)

// ParseParameterLocation returns the ParameterLocation for s, or an UnknownValueError.
func ParseParameterLocation(s string) (ParameterLocation, error) {
	switch l := ParameterLocation(s); l {
	case ParameterLocationBody, ParameterLocationCookie, ParameterLocationHeader, ParameterLocationNone,
		ParameterLocationPath, ParameterLocationQuery, ParameterLocationURI, ParameterLocationVirtual:
		return l, nil
	}
	return "", &generrors.UnknownValueError{Vocabulary: "parameter location", Value: s}
}

// KnownMediaType classifies the media types of a request or response.
type KnownMediaType string

const (
	KnownMediaTypeBinary    KnownMediaType = "binary"
	KnownMediaTypeForm      KnownMediaType = "form"
	KnownMediaTypeJSON      KnownMediaType = "json"
	KnownMediaTypeMultipart KnownMediaType = "multipart"
	KnownMediaTypeText      KnownMediaType = "text"
	KnownMediaTypeUnknown   KnownMediaType = "unknown"
	KnownMediaTypeXML       KnownMediaType = "xml"
)

// ParseKnownMediaType returns the KnownMediaType for s, or an UnknownValueError.
func ParseKnownMediaType(s string) (KnownMediaType, error) {
	switch m := KnownMediaType(s); m {
	case KnownMediaTypeBinary, KnownMediaTypeForm, KnownMediaTypeJSON, KnownMediaTypeMultipart,
		KnownMediaTypeText, KnownMediaTypeUnknown, KnownMediaTypeXML:
		return m, nil
	}
	return "", &generrors.UnknownValueError{Vocabulary: "media type", Value: s}
}

// ContentType returns the canonical content type of a known media type.
func (m KnownMediaType) ContentType() string {
	switch m {
	case KnownMediaTypeJSON:
		return "application/json"
	case KnownMediaTypeXML:
		return "application/xml"
	case KnownMediaTypeForm:
		return "application/x-www-form-urlencoded"
	case KnownMediaTypeText:
		return "text/plain"
	case KnownMediaTypeBinary:
		return "application/octet-stream"
	case KnownMediaTypeMultipart:
		return "multipart/form-data"
	}
	return ""
}

// SecuritySchemeType is the kind of a security scheme.
type SecuritySchemeType string

const (
	SecuritySchemeAADToken           SecuritySchemeType = "AADToken"
	SecuritySchemeAzureKeyCredential SecuritySchemeType = "AzureKeyCredential"
	SecuritySchemeKey                SecuritySchemeType = "Key"
	SecuritySchemeOAuth2             SecuritySchemeType = "OAuth2"
)

// ParseSecuritySchemeType returns the SecuritySchemeType for s, or an UnknownValueError.
func ParseSecuritySchemeType(s string) (SecuritySchemeType, error) {
	switch t := SecuritySchemeType(s); t {
	case SecuritySchemeAADToken, SecuritySchemeAzureKeyCredential, SecuritySchemeKey, SecuritySchemeOAuth2:
		return t, nil
	}
	return "", &generrors.UnknownValueError{Vocabulary: "security scheme type", Value: s}
}

// ImplementationLocation says where a parameter's value comes from.
type ImplementationLocation string

const (
	ImplementationClient  ImplementationLocation = "Client"
	ImplementationContext ImplementationLocation = "Context"
	ImplementationMethod  ImplementationLocation = "Method"
)

// ParseImplementationLocation accepts the location case-insensitively.
// An empty string means Method.
func ParseImplementationLocation(s string) (ImplementationLocation, error) {
	switch strings.ToLower(s) {
	case "", "method":
		return ImplementationMethod, nil
	case "client":
		return ImplementationClient, nil
	case "context":
		return ImplementationContext, nil
	}
	return "", &generrors.UnknownValueError{Vocabulary: "implementation location", Value: s}
}

// SerializationStyle is the serialization style of a non-body parameter.
// Styles are an open vocabulary; unknown styles serialize as csv.
type SerializationStyle string

const (
	StyleSimple         SerializationStyle = "simple"
	StyleForm           SerializationStyle = "form"
	StyleLabel          SerializationStyle = "label"
	StyleMatrix         SerializationStyle = "matrix"
	StyleSpaceDelimited SerializationStyle = "spaceDelimited"
	StylePipeDelimited  SerializationStyle = "pipeDelimited"
	StyleTabDelimited   SerializationStyle = "tabDelimited"
	StyleDeepObject     SerializationStyle = "deepObject"
	StyleJSON           SerializationStyle = "json"
	StyleBinary         SerializationStyle = "binary"
	StyleXML            SerializationStyle = "xml"
)

// SchemaContext is a usage context of a schema.
type SchemaContext string

const (
	ContextInput          SchemaContext = "input"
	ContextOutput         SchemaContext = "output"
	ContextException      SchemaContext = "exception"
	ContextPublic         SchemaContext = "public"
	ContextPaged          SchemaContext = "paged"
	ContextInternal       SchemaContext = "internal"
	ContextOptionsGroup   SchemaContext = "options-group"
	ContextJSONMergePatch SchemaContext = "json-merge-patch"
)
