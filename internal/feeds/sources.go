// Package feeds resolves which GTFS schedule feeds a run should process:
// a static registry of pre-vetted national feeds plus dynamically discovered
// candidates from the Mobility Database catalog.
package feeds

import "strings"

// Source describes one GTFS feed to fetch and extract.
type Source struct {
	Label    string // human-readable origin of the entry
	Country  string // lowercase country name or code as carried by the entry
	Operator string
	URL      string
}

// StaticSources are pre-vetted national rail feeds, one entry per
// country/operator. They are processed before any discovered sources.
var StaticSources = []Source{
	{
		Label:    "SNCF Open Data (Horaires SNCF, GTFS)",
		Country:  "france",
		Operator: "sncf_voyageurs",
		URL:      "https://eu.ftp.opendatasoft.com/sncf/plandata/Export_OpenData_SNCF_GTFS_NewTripId.zip",
	},
	{
		Label:    "HSL (Helsinki Region Transport, Open Data)",
		Country:  "finland",
		Operator: "hsl",
		URL:      "https://infopalvelut.storage.hsldev.com/gtfs/hsl.zip",
	},
	{
		Label:    "GTFS.DE (Schienenfernverkehr)",
		Country:  "germany",
		Operator: "deutsche_bahn_fv",
		URL:      "https://download.gtfs.de/germany/fv_free/latest.zip",
	},
	{
		Label:    "GTFS.DE (Schienenregionalverkehr)",
		Country:  "germany",
		Operator: "regionalverkehr",
		URL:      "https://download.gtfs.de/germany/rv_free/latest.zip",
	},
	{
		Label:    "Prague Integrated Transport (PID Open Data)",
		Country:  "czechia",
		Operator: "pid",
		URL:      "https://data.pid.cz/PID_GTFS.zip",
	},
}

// countryAliases maps ISO country codes to the lowercase country names used
// by the static registry.
var countryAliases = map[string]string{
	"FR": "france",
	"GB": "gb",
	"CZ": "czechia",
	"DE": "germany",
	"FI": "finland",
}

// MatchCountry reports whether a source's country value belongs to the
// target code set. An empty target set or country value matches everything.
func MatchCountry(targetCodes map[string]bool, country string) bool {
	if len(targetCodes) == 0 || country == "" {
		return true
	}
	country = strings.ToLower(strings.TrimSpace(country))
	if targetCodes[strings.ToUpper(country)] {
		return true
	}
	for code, alias := range countryAliases {
		if targetCodes[code] && alias == country {
			return true
		}
	}
	return false
}

// FilterStatic returns the static sources whose country is in the target set.
func FilterStatic(targetCodes map[string]bool) []Source {
	var out []Source
	for _, src := range StaticSources {
		if MatchCountry(targetCodes, src.Country) {
			out = append(out, src)
		}
	}
	return out
}
