package typeutils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	baseTime := time.Now()
	laterTime := baseTime.Add(time.Hour)

	testCases := []struct {
		name          string
		leftArgument  interface{}
		rightArgument interface{}
		expected      int
	}{
		// nil cases
		{"nil_vs_nil", nil, nil, 0},
		{"nil_vs_value", nil, 1, -1},
		{"value_vs_nil", 1, nil, 1},

		// integers
		{"signed_int_equal", int64(5), int(5), 0},
		{"signed_int_less", int64(-1), int(1), -1},
		{"unsigned_int_greater", uint(8), uint16(1), 1},
		{"int64_min_vs_max", int64(math.MinInt64), int64(math.MaxInt64), -1},

		// floats
		{"float_equal", float64(3.3), float64(3.3), 0},
		{"float_less", float32(1.1), float32(2.2), -1},
		{"nan_vs_number", math.NaN(), 1.0, -1},

		// time
		{"time_less", baseTime, laterTime, -1},
		{"time_difference", baseTime.UTC(), baseTime.In(time.Local), 0},
		{"custom_time_greater", Time{Time: laterTime}, Time{Time: baseTime}, 1},

		// bool
		{"bool_false_vs_true", false, true, -1},

		// strings
		{"numeric_string_lex_order", "10", "9", -1},
		{"fallback_string_vs_int", "123", 123, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Compare(tc.leftArgument, tc.rightArgument))
		})
	}
}

func TestCompareBookmarks(t *testing.T) {
	testCases := []struct {
		name     string
		left     any
		right    any
		expected int
	}{
		{"same_instant_different_zone", "2024-01-01T10:00:00Z", "2024-01-01T12:00:00+02:00", 0},
		{"lexically_greater_but_earlier", "2024-01-01T10:00:00+05:00", "2024-01-01T06:00:00Z", -1},
		{"date_only_vs_timestamp", "2024-01-02", "2024-01-01T23:59:59Z", 1},
		{"nil_bookmark", nil, "2024-01-01T00:00:00Z", -1},
		{"non_time_strings", "b", "a", 1},
		{"numbers", float64(10), float64(9), 1},
		{"integer_and_float", int64(10), float64(9), 1},
		{"number_against_timestamp", float64(1700000000), "2024-03-01T00:00:00Z", -1},
		{"timestamp_against_bool", "2024-03-01T00:00:00Z", true, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CompareBookmarks(tc.left, tc.right))
		})
	}

	assert.Equal(t, "2024-03-01T00:00:00Z", MaxBookmark("2024-03-01T00:00:00Z", "2024-02-01T00:00:00Z"))
	assert.Equal(t, "2024-03-01T00:00:00Z", MaxBookmark(nil, "2024-03-01T00:00:00Z"))
	assert.NotPanics(t, func() {
		assert.Equal(t, "2024-03-01T00:00:00Z", MaxBookmark(float64(1700000000), "2024-03-01T00:00:00Z"))
	})
}

func TestParseTime(t *testing.T) {
	valid := map[string]time.Time{
		"2024-05-06T07:08:09Z":          time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		"2024-05-06T07:08:09.5+01:00":   time.Date(2024, 5, 6, 6, 8, 9, 500000000, time.UTC),
		"2024-05-06T07:08:09":           time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		"2024-05-06 07:08:09":           time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		"2024-05-06":                    time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		" 2024-05-06T07:08:09.123456Z ": time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.UTC),
	}
	for input, expected := range valid {
		parsed, err := ParseTime(input)
		require.NoError(t, err, input)
		assert.True(t, expected.Equal(parsed), "input %q parsed to %s", input, parsed)
	}

	for _, input := range []string{"", "yesterday", "2024-13-01", "06/05/2024"} {
		_, err := ParseTime(input)
		assert.Error(t, err, input)
	}
}
