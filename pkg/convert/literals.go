package convert

import (
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// ToWire converts a client value (time.Duration, time.Time or []byte) to its
// wire value.
func ToWire(e Encoding, v any) (any, error) {
	switch e {
	case EncodingNone:
		return v, nil
	case EncodingDurationRFC3339, EncodingDurationInt32Seconds, EncodingDurationSecondsInteger, EncodingDurationFloatSeconds:
		d, ok := v.(time.Duration)
		if !ok {
			return nil, fmt.Errorf("%s: expected time.Duration, got %T", e, v)
		}
		switch e {
		case EncodingDurationRFC3339:
			return FormatDurationRFC3339(d), nil
		case EncodingDurationInt32Seconds:
			seconds := DurationToSeconds(d)
			if seconds > math.MaxInt32 || seconds < math.MinInt32 {
				return nil, fmt.Errorf("%s: %s does not fit in int32 seconds", e, d)
			}
			return int32(seconds), nil
		case EncodingDurationSecondsInteger:
			return DurationToSeconds(d), nil
		}
		return DurationToFloatSeconds(d), nil
	case EncodingDateTimeRFC1123, EncodingUnixTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%s: expected time.Time, got %T", e, v)
		}
		if e == EncodingUnixTime {
			return ToUnixSeconds(t), nil
		}
		return FormatRFC1123(t), nil
	case EncodingBase64URL:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("%s: expected []byte, got %T", e, v)
		}
		return EncodeBase64URL(b), nil
	}
	return nil, fmt.Errorf("unsupported encoding %s", e)
}

// ToClient converts a wire value, as decoded from JSON or YAML, to its client
// value. Numeric wire values are coerced, so 90, 90.0 and "90" all decode.
func ToClient(e Encoding, wire any) (any, error) {
	switch e {
	case EncodingNone:
		return wire, nil
	case EncodingDurationRFC3339:
		s, err := cast.ToStringE(wire)
		if err != nil {
			return nil, err
		}
		return ParseDurationRFC3339(s)
	case EncodingDurationInt32Seconds:
		n, err := cast.ToInt32E(wire)
		if err != nil {
			return nil, err
		}
		return SecondsToDuration(int64(n)), nil
	case EncodingDurationSecondsInteger:
		n, err := cast.ToInt64E(wire)
		if err != nil {
			return nil, err
		}
		return SecondsToDuration(n), nil
	case EncodingDurationFloatSeconds:
		f, err := cast.ToFloat64E(wire)
		if err != nil {
			return nil, err
		}
		return FloatSecondsToDuration(f), nil
	case EncodingDateTimeRFC1123:
		s, err := cast.ToStringE(wire)
		if err != nil {
			return nil, err
		}
		return ParseRFC1123(s)
	case EncodingBase64URL:
		s, err := cast.ToStringE(wire)
		if err != nil {
			return nil, err
		}
		return DecodeBase64URL(s)
	case EncodingUnixTime:
		n, err := cast.ToInt64E(wire)
		if err != nil {
			return nil, err
		}
		return FromUnixSeconds(n), nil
	}
	return nil, fmt.Errorf("unsupported encoding %s", e)
}

// ClientLiteral renders the wire value as a Go expression of the client type,
// e.g. "PT1M30S" becomes "90 * time.Second".
func ClientLiteral(e Encoding, wire any) (string, error) {
	if e == EncodingDurationFloatSeconds {
		// go through decimal so 1.1 is 1100000000ns and not 1099999999ns
		d, err := decimal.NewFromString(cast.ToString(wire))
		if err != nil {
			return "", fmt.Errorf("%s: %w", e, err)
		}
		return DurationLiteral(time.Duration(d.Shift(9).IntPart())), nil
	}
	v, err := ToClient(e, wire)
	if err != nil {
		return "", fmt.Errorf("%s: %w", e, err)
	}
	switch c := v.(type) {
	case time.Duration:
		return DurationLiteral(c), nil
	case time.Time:
		return TimeLiteral(c), nil
	case []byte:
		return fmt.Sprintf("[]byte(%q)", c), nil
	}
	return "", fmt.Errorf("%s: no client literal for %T", e, v)
}

// DurationLiteral renders d in the largest whole unit.
func DurationLiteral(d time.Duration) string {
	switch {
	case d == 0:
		return "0"
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + " * time.Hour"
	case d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + " * time.Minute"
	case d%time.Second == 0:
		return strconv.FormatInt(int64(d/time.Second), 10) + " * time.Second"
	case d%time.Millisecond == 0:
		return strconv.FormatInt(int64(d/time.Millisecond), 10) + " * time.Millisecond"
	}
	return "time.Duration(" + strconv.FormatInt(int64(d), 10) + ")"
}

// TimeLiteral renders t as a time.Date call in UTC.
func TimeLiteral(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("time.Date(%d, time.%s, %d, %d, %d, %d, %d, time.UTC)",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

// DefaultValueExpression renders value as a Go expression of goType. It is
// used for schema defaults, client default values and constants, which come
// out of the code model as loosely typed YAML scalars.
func DefaultValueExpression(goType string, value any) (string, error) {
	fail := func(err error) (string, error) {
		return "", fmt.Errorf("cannot use %v as %s: %w", value, goType, err)
	}
	switch goType {
	case "bool":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fail(err)
		}
		return strconv.FormatBool(b), nil
	case "int", "int32", "int64":
		n, err := cast.ToInt64E(value)
		if err != nil {
			return fail(err)
		}
		return strconv.FormatInt(n, 10), nil
	case "float32", "float64":
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return fail(err)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case "string":
		s, err := cast.ToStringE(value)
		if err != nil {
			return fail(err)
		}
		return strconv.Quote(s), nil
	case "rune":
		s, err := cast.ToStringE(value)
		if err != nil {
			return fail(err)
		}
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || r == utf8.RuneError {
			return fail(fmt.Errorf("not a character"))
		}
		return strconv.QuoteRune(r), nil
	case "decimal.Decimal":
		d, err := decimal.NewFromString(cast.ToString(value))
		if err != nil {
			return fail(err)
		}
		return fmt.Sprintf("decimal.RequireFromString(%q)", d.String()), nil
	case "uuid.UUID":
		u, err := uuid.Parse(cast.ToString(value))
		if err != nil {
			return fail(err)
		}
		return fmt.Sprintf("uuid.MustParse(%q)", u.String()), nil
	case "time.Time":
		s := cast.ToString(value)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return TimeLiteral(t), nil
			}
		}
		return fail(fmt.Errorf("not an RFC 3339 date or date-time"))
	}
	return fail(fmt.Errorf("unsupported type"))
}

// Literal renders value for a client type, applying the wire encoding first
// when there is one.
func Literal(goType string, e Encoding, value any) (string, error) {
	if e != EncodingNone {
		return ClientLiteral(e, value)
	}
	return DefaultValueExpression(goType, value)
}
