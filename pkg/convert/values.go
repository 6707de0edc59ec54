// Package convert holds the wire/client conversions of the generator.
//
// The functions in this file are the runtime half: generated clients import
// this package and call them to move between the wire representation and the
// client representation of a value. The generator half (encodings, Go source
// expressions and literals) lives in encoding.go and literals.go.
//
// Every pair is a two-sided inverse, with two documented exceptions:
// integer seconds drop sub-second precision and float seconds round through
// float64.
package convert

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RFC1123 is the HTTP date layout. Unlike time.RFC1123 it always prints GMT.
const RFC1123 = "Mon, 02 Jan 2006 15:04:05 GMT"

// SecondsToDuration converts whole seconds to a duration.
func SecondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

// DurationToSeconds converts a duration to whole seconds, rounding down, so
// -1.5s is -2.
func DurationToSeconds(d time.Duration) int64 {
	seconds := int64(d / time.Second)
	if d%time.Second < 0 {
		seconds--
	}
	return seconds
}

// DurationToInt32Seconds is DurationToSeconds clamped to the int32 range.
func DurationToInt32Seconds(d time.Duration) int32 {
	seconds := DurationToSeconds(d)
	switch {
	case seconds > math.MaxInt32:
		return math.MaxInt32
	case seconds < math.MinInt32:
		return math.MinInt32
	}
	return int32(seconds)
}

// FloatSecondsToDuration converts fractional seconds to a duration.
func FloatSecondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * 1e9)
}

// DurationToFloatSeconds converts a duration to fractional seconds.
func DurationToFloatSeconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e9
}

// FormatRFC1123 formats t in UTC as an HTTP date.
func FormatRFC1123(t time.Time) string {
	return t.UTC().Format(RFC1123)
}

// ParseRFC1123 parses an HTTP date. The result is in UTC.
func ParseRFC1123(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC1123, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// MustParseRFC1123 is like ParseRFC1123 but panics on malformed input.
func MustParseRFC1123(s string) time.Time {
	t, err := ParseRFC1123(s)
	if err != nil {
		panic(err)
	}
	return t
}

// EncodeBase64URL encodes b with the unpadded URL-safe alphabet.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL decodes URL-safe base64, with or without padding.
func DecodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// MustDecodeBase64URL is like DecodeBase64URL but panics on malformed input.
func MustDecodeBase64URL(s string) []byte {
	b, err := DecodeBase64URL(s)
	if err != nil {
		panic(err)
	}
	return b
}

// FromUnixSeconds converts seconds since the epoch to a UTC time.
func FromUnixSeconds(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

// ToUnixSeconds converts t to seconds since the epoch.
func ToUnixSeconds(t time.Time) int64 {
	return t.Unix()
}

// FormatDurationRFC3339 formats d as an ISO 8601 duration in the
// PT#H#M#.#S form, e.g. "PT1M30S". Zero is "PT0S".
func FormatDurationRFC3339(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		// negating math.MinInt64 overflows to itself, but its uint64 is still the magnitude
		d = -d
	}
	u := uint64(d)
	b.WriteString("PT")
	hours := u / uint64(time.Hour)
	u -= hours * uint64(time.Hour)
	minutes := u / uint64(time.Minute)
	u -= minutes * uint64(time.Minute)
	seconds := u / uint64(time.Second)
	nanos := u - seconds*uint64(time.Second)

	if hours > 0 {
		b.WriteString(strconv.FormatUint(hours, 10))
		b.WriteByte('H')
	}
	if minutes > 0 {
		b.WriteString(strconv.FormatUint(minutes, 10))
		b.WriteByte('M')
	}
	if seconds > 0 || nanos > 0 {
		b.WriteString(strconv.FormatUint(seconds, 10))
		if nanos > 0 {
			frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
			b.WriteByte('.')
			b.WriteString(frac)
		}
		b.WriteByte('S')
	}
	return b.String()
}

// ParseDurationRFC3339 parses an ISO 8601 duration of the form
// [-]P[nD][T[nH][nM][n[.f]S]]. Years, months and weeks are rejected since
// they have no fixed length.
func ParseDurationRFC3339(s string) (time.Duration, error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if len(s) < 2 || (s[0] != 'P' && s[0] != 'p') {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	seen := false
	for len(s) > 0 {
		if s[0] == 'T' || s[0] == 't' {
			if inTime {
				return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
			}
			inTime = true
			s = s[1:]
			if len(s) == 0 {
				return 0, fmt.Errorf("invalid ISO 8601 duration %q: empty time part", orig)
			}
			continue
		}
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || s[i] == ',' || s[i] == '-') {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
		}
		num, unit := strings.ReplaceAll(s[:i], ",", "."), s[i]
		s = s[i+1:]

		var scale time.Duration
		switch {
		case !inTime && (unit == 'D' || unit == 'd'):
			scale = 24 * time.Hour
		case inTime && (unit == 'H' || unit == 'h'):
			scale = time.Hour
		case inTime && (unit == 'M' || unit == 'm'):
			scale = time.Minute
		case inTime && (unit == 'S' || unit == 's'):
			scale = time.Second
		default:
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: unsupported unit %q", orig, unit)
		}
		part, err := scaled(num, scale)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", orig, err)
		}
		total += part
		seen = true
	}
	if !seen {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
	}
	if neg {
		total = -total
	}
	return total, nil
}

// MustParseDurationRFC3339 is like ParseDurationRFC3339 but panics on malformed input.
func MustParseDurationRFC3339(s string) time.Duration {
	d, err := ParseDurationRFC3339(s)
	if err != nil {
		panic(err)
	}
	return d
}

// scaled multiplies a decimal number string by scale without going through
// float64, so "1.5S" is exactly 1.5e9ns.
func scaled(num string, scale time.Duration) (time.Duration, error) {
	whole, frac, _ := strings.Cut(num, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	d := time.Duration(w) * scale
	if frac == "" {
		return d, nil
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	for i := len(frac); i < 9; i++ {
		f *= 10
	}
	// f is in billionths of one unit; every unit is a whole number of seconds
	extra := time.Duration(f) * (scale / time.Second)
	if w < 0 || strings.HasPrefix(whole, "-") {
		return d - extra, nil
	}
	return d + extra, nil
}
