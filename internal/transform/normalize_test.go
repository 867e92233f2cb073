package transform

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"plain", "08:30:00", "08:30:00", true},
		{"missing seconds", "8:30", "08:30:00", true},
		{"past midnight wraps", "24:00:00", "00:00:00", true},
		{"late service wraps", "26:15:30", "02:15:30", true},
		{"padded hour", "7:05:00", "07:05:00", true},
		{"whitespace trimmed", "  09:10:00 ", "09:10:00", true},
		{"blank is absent", "", "", false},
		{"whitespace only is absent", "   ", "", false},
		{"no colon passes through", "0830", "0830", true},
		{"unparsable hour passes through", "ab:30", "ab:30", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTime(tt.input)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTime_Idempotent(t *testing.T) {
	for _, v := range []string{"26:15:30", "8:30", "00:00:00", "23:59:59"} {
		once, ok := NormalizeTime(v)
		require.True(t, ok)
		twice, ok := NormalizeTime(once)
		require.True(t, ok)
		assert.Equal(t, once, twice, "normalizing %q twice changed the value", v)
	}
}

func TestIsNight_HourGrid(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		want := hour >= 20 || hour < 6
		got := IsNight(fmt.Sprintf("%02d:30:00", hour))
		assert.Equal(t, want, got, "hour %d", hour)
	}
}

func TestIsNight_EdgeInputs(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"nan", false},
		{"NaN", false},
		{"garbage", false},
		{"25:10:00", true}, // wraps to 01:10
		{"24:00:00", true}, // wraps to 00:00
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNight(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeStationName(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"PARIS GARE DE LYON", "Paris Gare De Lyon"},
		{"berlin hbf", "Berlin Hbf"},
		{"aix-en-provence tgv", "Aix-En-Provence Tgv"},
		{"  milano centrale  ", "Milano Centrale"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeStationName(tt.input))
	}
}

func TestNormalizeCountry(t *testing.T) {
	assert.Equal(t, "FR", NormalizeCountry(" fr "))
	assert.Equal(t, "FRANCE", NormalizeCountry("France"))
	assert.Equal(t, "", NormalizeCountry("  "))
}

func TestCountryMapping(t *testing.T) {
	m := make(CountryMapping)
	m.Add("FR", "FR")
	m.Add("France", "FR")
	m.Add("FRA", "FR")
	m.Add("", "XX") // ignored

	assert.Equal(t, "FR", m.MapCountry("france"))
	assert.Equal(t, "FR", m.MapCountry(" FRA "))
	assert.Equal(t, "FR", m.MapCountry("FR"))

	// Unresolvable values pass through uppercased.
	assert.Equal(t, "NARNIA", m.MapCountry("narnia"))
	assert.Equal(t, "", m.MapCountry(""))
}
