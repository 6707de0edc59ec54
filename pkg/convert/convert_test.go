package convert

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationRFC3339(t *testing.T) {
	tests := []struct {
		wire string
		d    time.Duration
	}{
		{"PT0S", 0},
		{"PT1M30S", 90 * time.Second},
		{"PT1H", time.Hour},
		{"PT48H", 48 * time.Hour},
		{"PT1.5S", 1500 * time.Millisecond},
		{"PT0.000000001S", time.Nanosecond},
		{"-PT2H3M", -(2*time.Hour + 3*time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			got, err := ParseDurationRFC3339(tt.wire)
			require.NoError(t, err)
			assert.Equal(t, tt.d, got)
			assert.Equal(t, tt.wire, FormatDurationRFC3339(tt.d))
		})
	}

	d, err := ParseDurationRFC3339("P2DT1H")
	require.NoError(t, err)
	assert.Equal(t, 49*time.Hour, d)

	for _, bad := range []string{"", "P", "PT", "1H", "P1Y", "P1W", "PT1X", "PT1H1H2"} {
		_, err := ParseDurationRFC3339(bad)
		assert.Error(t, err, bad)
	}
}

func TestIntegerSecondsRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, 90, -5, 86400} {
		assert.Equal(t, n, DurationToSeconds(SecondsToDuration(n)))
	}
	for _, d := range []time.Duration{0, time.Second, 90 * time.Second} {
		assert.Equal(t, d, SecondsToDuration(DurationToSeconds(d)))
	}
	// sub-second precision is dropped, rounding down
	assert.Equal(t, int64(1), DurationToSeconds(1999*time.Millisecond))
	assert.Equal(t, int64(-2), DurationToSeconds(-1500*time.Millisecond))
	assert.Equal(t, int64(-1), DurationToSeconds(-time.Second))
	assert.Equal(t, -2*time.Second, SecondsToDuration(DurationToSeconds(-1500*time.Millisecond)))

	assert.Equal(t, int32(90), DurationToInt32Seconds(90*time.Second))
	assert.Equal(t, int32(math.MaxInt32), DurationToInt32Seconds(SecondsToDuration(math.MaxInt32+1)))
	assert.Equal(t, int32(math.MinInt32), DurationToInt32Seconds(SecondsToDuration(math.MinInt32-1)))
}

func TestFloatSecondsRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 0.25, 1.5, 90, 3600.000001} {
		assert.InDelta(t, f, DurationToFloatSeconds(FloatSecondsToDuration(f)), 1e-6)
	}
	for _, d := range []time.Duration{0, time.Nanosecond, 1500 * time.Millisecond, 36 * time.Hour} {
		assert.InDelta(t, float64(d), float64(FloatSecondsToDuration(DurationToFloatSeconds(d))), 1)
	}
}

func TestRFC1123RoundTrip(t *testing.T) {
	for _, s := range []string{"Mon, 01 Jan 0001 00:00:00 GMT", "Wed, 01 May 2024 12:30:45 GMT"} {
		parsed, err := ParseRFC1123(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatRFC1123(parsed))
	}
	ts := time.Date(2024, time.May, 1, 14, 30, 45, 0, time.FixedZone("CEST", 2*3600))
	back := MustParseRFC1123(FormatRFC1123(ts))
	assert.True(t, ts.Equal(back))
	assert.Equal(t, time.UTC, back.Location())
}

func TestBase64URLRoundTrip(t *testing.T) {
	for _, b := range [][]byte{{}, {0xfb, 0xff}, []byte("hello world")} {
		assert.Equal(t, b, MustDecodeBase64URL(EncodeBase64URL(b)))
	}
	assert.Equal(t, "-_8", EncodeBase64URL([]byte{0xfb, 0xff}))
	padded, err := DecodeBase64URL("aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), padded)
}

func TestUnixTimeRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1714566645, -1} {
		assert.Equal(t, n, ToUnixSeconds(FromUnixSeconds(n)))
	}
	ts := time.Date(2024, time.May, 1, 12, 30, 45, 0, time.UTC)
	assert.Equal(t, ts, FromUnixSeconds(ToUnixSeconds(ts)))
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		schemaType string
		format     string
		expected   Encoding
	}{
		{"duration", "", EncodingDurationRFC3339},
		{"duration", "int32-seconds", EncodingDurationInt32Seconds},
		{"duration", "seconds-integer", EncodingDurationSecondsInteger},
		{"duration", "float-seconds", EncodingDurationFloatSeconds},
		{"duration", "seconds-number", EncodingDurationFloatSeconds},
		{"date-time", "date-time-rfc1123", EncodingDateTimeRFC1123},
		{"date-time", "date-time", EncodingNone},
		{"byte-array", "base64url", EncodingBase64URL},
		{"byte-array", "byte", EncodingNone},
		{"unixtime", "", EncodingUnixTime},
		{"string", "", EncodingNone},
	}
	for _, tt := range tests {
		t.Run(tt.schemaType+"/"+tt.format, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodingFor(tt.schemaType, tt.format))
		})
	}
}

func TestExpressions(t *testing.T) {
	e := EncodingDurationInt32Seconds
	assert.Equal(t, "int32", e.WireType())
	assert.Equal(t, "time.Duration", e.ClientType())
	assert.Equal(t, "convert.SecondsToDuration(int64(v))", e.ToClientExpression("v"))
	assert.Equal(t, "convert.DurationToInt32Seconds(v)", e.ToWireExpression("v"))
	assert.Equal(t, "v", EncodingNone.ToWireExpression("v"))
	assert.Empty(t, EncodingNone.Imports())
	assert.Equal(t, []string{ImportPath}, EncodingBase64URL.Imports())
}

// A duration header sent as int32 seconds.
func TestInt32SecondsHeader(t *testing.T) {
	wire, err := ToWire(EncodingDurationInt32Seconds, 90*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int32(90), wire)

	_, err = ToWire(EncodingDurationInt32Seconds, SecondsToDuration(math.MaxInt32+1))
	assert.Error(t, err, "int32 seconds overflow")

	back, err := ToClient(EncodingDurationInt32Seconds, 90)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, back)
	assert.Zero(t, back.(time.Duration)%time.Second)
}

// A duration sent as float seconds.
func TestFloatSecondsValue(t *testing.T) {
	wire, err := ToWire(EncodingDurationFloatSeconds, 1500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1.5, wire)

	back, err := ToClient(EncodingDurationFloatSeconds, 1.5)
	require.NoError(t, err)
	assert.Equal(t, time.Second+500_000_000*time.Nanosecond, back)
}

func TestClientLiteral(t *testing.T) {
	tests := []struct {
		name     string
		encoding Encoding
		wire     any
		expected string
	}{
		{"rfc3339", EncodingDurationRFC3339, "PT1M30S", "90 * time.Second"},
		{"int32 seconds", EncodingDurationInt32Seconds, 3600, "1 * time.Hour"},
		{"float seconds", EncodingDurationFloatSeconds, 1.1, "1100 * time.Millisecond"},
		{"float seconds nanos", EncodingDurationFloatSeconds, "0.000000007", "time.Duration(7)"},
		{"rfc1123", EncodingDateTimeRFC1123, "Wed, 01 May 2024 12:30:45 GMT", "time.Date(2024, time.May, 1, 12, 30, 45, 0, time.UTC)"},
		{"unix", EncodingUnixTime, 0, "time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)"},
		{"base64url", EncodingBase64URL, "aGk", `[]byte("hi")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClientLiteral(tt.encoding, tt.wire)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ClientLiteral(EncodingDurationRFC3339, "ninety")
	assert.Error(t, err)
}

func TestDefaultValueExpression(t *testing.T) {
	tests := []struct {
		goType   string
		value    any
		expected string
		wantErr  bool
	}{
		{"bool", "true", "true", false},
		{"int32", 42, "42", false},
		{"int64", "7", "7", false},
		{"float64", 2.5, "2.5", false},
		{"string", "a\"b", `"a\"b"`, false},
		{"rune", "x", "'x'", false},
		{"decimal.Decimal", "10.50", `decimal.RequireFromString("10.5")`, false},
		{"uuid.UUID", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", `uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")`, false},
		{"time.Time", "2024-05-01", "time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)", false},
		{"int32", "many", "", true},
		{"chan int", 1, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goType, func(t *testing.T) {
			got, err := DefaultValueExpression(tt.goType, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	lit, err := Literal("time.Duration", EncodingDurationSecondsInteger, 120)
	require.NoError(t, err)
	assert.Equal(t, "2 * time.Minute", lit)
}
