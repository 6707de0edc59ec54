package convert

import (
	"fmt"
	"strings"
)

// Encoding names a wire representation that differs from the client
// representation of the same value.
type Encoding int

const (
	// EncodingNone means wire and client types are identical.
	EncodingNone Encoding = iota
	EncodingDurationRFC3339
	EncodingDurationInt32Seconds
	EncodingDurationSecondsInteger
	EncodingDurationFloatSeconds
	EncodingDateTimeRFC1123
	EncodingBase64URL
	EncodingUnixTime
)

var encodingNames = map[Encoding]string{
	EncodingNone:                   "none",
	EncodingDurationRFC3339:        "duration-rfc3339",
	EncodingDurationInt32Seconds:   "int32-seconds",
	EncodingDurationSecondsInteger: "seconds-integer",
	EncodingDurationFloatSeconds:   "float-seconds",
	EncodingDateTimeRFC1123:        "date-time-rfc1123",
	EncodingBase64URL:              "base64url",
	EncodingUnixTime:               "unixtime",
}

func (e Encoding) String() string {
	if n, ok := encodingNames[e]; ok {
		return n
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// EncodingFor classifies a primitive schema by its type tag and format.
func EncodingFor(schemaType, format string) Encoding {
	format = strings.ToLower(format)
	switch schemaType {
	case "duration":
		switch format {
		case "int32-seconds":
			return EncodingDurationInt32Seconds
		case "seconds-integer":
			return EncodingDurationSecondsInteger
		case "float-seconds", "seconds-number":
			return EncodingDurationFloatSeconds
		}
		return EncodingDurationRFC3339
	case "date-time":
		if format == "date-time-rfc1123" {
			return EncodingDateTimeRFC1123
		}
	case "byte-array":
		if format == "base64url" {
			return EncodingBase64URL
		}
	case "unixtime":
		return EncodingUnixTime
	}
	return EncodingNone
}

// ImportPath is the import path generated code uses for the helpers.
const ImportPath = "github.com/blimu-dev/clientgen/pkg/convert"

// WireType returns the Go type of the wire representation, or "" for EncodingNone.
func (e Encoding) WireType() string {
	switch e {
	case EncodingDurationRFC3339, EncodingDateTimeRFC1123, EncodingBase64URL:
		return "string"
	case EncodingDurationInt32Seconds:
		return "int32"
	case EncodingDurationSecondsInteger, EncodingUnixTime:
		return "int64"
	case EncodingDurationFloatSeconds:
		return "float64"
	}
	return ""
}

// ClientType returns the Go type of the client representation, or "" for EncodingNone.
func (e Encoding) ClientType() string {
	switch e {
	case EncodingDurationRFC3339, EncodingDurationInt32Seconds, EncodingDurationSecondsInteger, EncodingDurationFloatSeconds:
		return "time.Duration"
	case EncodingDateTimeRFC1123, EncodingUnixTime:
		return "time.Time"
	case EncodingBase64URL:
		return "[]byte"
	}
	return ""
}

// ToClientExpression returns Go source converting the wire expression expr to
// the client type.
func (e Encoding) ToClientExpression(expr string) string {
	switch e {
	case EncodingDurationRFC3339:
		return "convert.MustParseDurationRFC3339(" + expr + ")"
	case EncodingDurationInt32Seconds:
		return "convert.SecondsToDuration(int64(" + expr + "))"
	case EncodingDurationSecondsInteger:
		return "convert.SecondsToDuration(" + expr + ")"
	case EncodingDurationFloatSeconds:
		return "convert.FloatSecondsToDuration(" + expr + ")"
	case EncodingDateTimeRFC1123:
		return "convert.MustParseRFC1123(" + expr + ")"
	case EncodingBase64URL:
		return "convert.MustDecodeBase64URL(" + expr + ")"
	case EncodingUnixTime:
		return "convert.FromUnixSeconds(" + expr + ")"
	}
	return expr
}

// ToWireExpression returns Go source converting the client expression expr to
// the wire type.
func (e Encoding) ToWireExpression(expr string) string {
	switch e {
	case EncodingDurationRFC3339:
		return "convert.FormatDurationRFC3339(" + expr + ")"
	case EncodingDurationInt32Seconds:
		return "convert.DurationToInt32Seconds(" + expr + ")"
	case EncodingDurationSecondsInteger:
		return "convert.DurationToSeconds(" + expr + ")"
	case EncodingDurationFloatSeconds:
		return "convert.DurationToFloatSeconds(" + expr + ")"
	case EncodingDateTimeRFC1123:
		return "convert.FormatRFC1123(" + expr + ")"
	case EncodingBase64URL:
		return "convert.EncodeBase64URL(" + expr + ")"
	case EncodingUnixTime:
		return "convert.ToUnixSeconds(" + expr + ")"
	}
	return expr
}

// Imports returns the packages an expression of this encoding needs.
func (e Encoding) Imports() []string {
	switch e {
	case EncodingNone:
		return nil
	case EncodingBase64URL:
		return []string{ImportPath}
	}
	return []string{"time", ImportPath}
}
