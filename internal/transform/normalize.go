// Package transform canonicalizes extracted rows: time-of-day, country codes
// and station names, night/day classification, and the dedup/drop rules
// applied before the warehouse build.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeTime canonicalizes a GTFS time-of-day to HH:MM:SS. The hour wraps
// modulo 24 (feeds encode past-midnight service as hour >= 24) and missing
// seconds default to 00. Blank input normalizes to absent (ok = false).
// Values without a ':' pass through trimmed as-is. Idempotent.
func NormalizeTime(value string) (string, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return "", false
	}
	parts := strings.Split(text, ":")
	if len(parts) < 2 {
		return text, true
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return text, true
	}
	hour = ((hour % 24) + 24) % 24
	second := "00"
	if len(parts) > 2 {
		second = parts[2]
	}
	return fmt.Sprintf("%02d:%s:%s", hour, parts[1], second), true
}

// IsNight classifies a time-of-day: true iff the hour is >= 20 or < 6.
// Absent or unparsable input is day (false).
func IsNight(value string) bool {
	text := strings.ToLower(strings.TrimSpace(value))
	if text == "" || text == "nan" {
		return false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(strings.Split(text, ":")[0]))
	if err != nil {
		return false
	}
	hour = ((hour % 24) + 24) % 24
	return hour >= 20 || hour < 6
}

// NormalizeCountry trims and uppercases a country value.
func NormalizeCountry(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// NormalizeStationName trims and title-cases a station name: each letter
// following a non-letter is uppercased, the rest lowercased, so hyphenated
// and multi-word names come out consistently.
func NormalizeStationName(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	b.Grow(len(value))
	prevLetter := false
	for _, r := range value {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// CountryMapping resolves free-text country values (names, ISO3 codes) to
// canonical two-letter codes.
type CountryMapping map[string]string

// MapCountry resolves value through the mapping; unresolvable values pass
// through uppercased as-is.
func (m CountryMapping) MapCountry(value string) string {
	if value == "" {
		return ""
	}
	if code, ok := m[normalizeKey(value)]; ok {
		return code
	}
	return NormalizeCountry(value)
}

// Add registers one alias for a code. Blank aliases are ignored.
func (m CountryMapping) Add(alias, code string) {
	if strings.TrimSpace(alias) == "" {
		return
	}
	m[normalizeKey(alias)] = code
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
