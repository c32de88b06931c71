package railtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseClock(t *testing.T) {
	tests := map[string]string{
		"1432":    "14:32",
		"14:32":   "14:32",
		"0905H":   "09:05",
		" 0000 ":  "00:00",
		"On time": "On time",
		"2561":    "2561",
		"":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormaliseClock(in), "input %q", in)
	}
}

func TestClockMinutes(t *testing.T) {
	t.Run("accepts both layouts", func(t *testing.T) {
		m, err := ClockMinutes("09:15")
		require.NoError(t, err)
		assert.Equal(t, 9*60+15, m)

		m, err = ClockMinutes("2359")
		require.NoError(t, err)
		assert.Equal(t, 23*60+59, m)

		m, err = ClockMinutes("7:05")
		require.NoError(t, err)
		assert.Equal(t, 7*60+5, m)
	})

	t.Run("rejects out of range values", func(t *testing.T) {
		for _, in := range []string{"24:00", "12:60", "abc", "1:2", "123"} {
			_, err := ClockMinutes(in)
			assert.Error(t, err, "input %q", in)
		}
	})
}
