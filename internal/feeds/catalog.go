package feeds

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"railmart/internal/csvio"
)

// CatalogEntry is one row of the Mobility Database feed catalog CSV.
type CatalogEntry struct {
	ID           string `csv:"id"`
	DataType     string `csv:"data_type"`
	CountryCode  string `csv:"location.country_code"`
	Municipality string `csv:"location.municipality"`
	Provider     string `csv:"provider"`
	IsOfficial   string `csv:"is_official"`
	Name         string `csv:"name"`
	Note         string `csv:"note"`
	Status       string `csv:"status"`
	URLLatest    string `csv:"urls.latest"`
	URLDirect    string `csv:"urls.direct_download"`
}

// ScoreWeights parameterizes rail-candidate scoring so the heuristic stays a
// pure, replaceable function over a documented weight table.
type ScoreWeights struct {
	Keywords      []string // each hit in name/provider/note counts KeywordHit
	KeywordHit    int
	NationalBonus int // empty municipality suggests a national rather than local feed
	OfficialBonus int
}

// DefaultScoreWeights is the weight table used by source discovery.
var DefaultScoreWeights = ScoreWeights{
	Keywords: []string{
		"rail", "railway", "train", "railways", "national",
		"sncf", "db", "tgv", "ic", "intercity",
	},
	KeywordHit:    1,
	NationalBonus: 1,
	OfficialBonus: 2,
}

// Score rates a catalog entry as a rail-feed candidate.
func (w ScoreWeights) Score(e CatalogEntry) int {
	name := strings.ToLower(e.Name)
	provider := strings.ToLower(e.Provider)
	note := strings.ToLower(e.Note)

	score := 0
	for _, kw := range w.Keywords {
		if strings.Contains(name, kw) || strings.Contains(provider, kw) || strings.Contains(note, kw) {
			score += w.KeywordHit
		}
	}
	if strings.TrimSpace(e.Municipality) == "" {
		score += w.NationalBonus
	}
	if isTrue(e.IsOfficial) {
		score += w.OfficialBonus
	}
	return score
}

// ParseCatalog decodes the feed catalog CSV.
func ParseCatalog(data []byte) ([]CatalogEntry, error) {
	entries, err := csvio.Decode[CatalogEntry](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed catalog: %w", err)
	}
	return entries, nil
}

// DiscoverSources selects the top-scored active rail GTFS entries per target
// country. Within a country, officially-flagged entries are preferred when any
// exist; ties are broken by original catalog row order (stable sort).
func DiscoverSources(entries []CatalogEntry, targetCodes map[string]bool, maxPerCountry int, weights ScoreWeights) []Source {
	if len(targetCodes) == 0 {
		return nil
	}

	type candidate struct {
		entry CatalogEntry
		url   string
		score int
	}

	byCountry := make(map[string][]candidate)
	var countryOrder []string
	for _, e := range entries {
		if e.DataType != "gtfs" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(e.Status), "active") {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(e.CountryCode))
		if !targetCodes[code] {
			continue
		}
		url := e.URLLatest
		if url == "" {
			url = e.URLDirect
		}
		if url == "" {
			continue
		}
		if _, seen := byCountry[code]; !seen {
			countryOrder = append(countryOrder, code)
		}
		byCountry[code] = append(byCountry[code], candidate{entry: e, url: url, score: weights.Score(e)})
	}

	// Country groups are emitted in code order so runs are deterministic
	// regardless of catalog shuffling.
	sort.Strings(countryOrder)

	var sources []Source
	for _, code := range countryOrder {
		group := byCountry[code]

		var official []candidate
		for _, c := range group {
			if isTrue(c.entry.IsOfficial) {
				official = append(official, c)
			}
		}
		if len(official) > 0 {
			group = official
		}

		// Stable: equal scores keep catalog row order.
		sort.SliceStable(group, func(i, j int) bool { return group[i].score > group[j].score })

		n := maxPerCountry
		if n > len(group) {
			n = len(group)
		}
		for _, c := range group[:n] {
			sources = append(sources, Source{
				Label:    "Mobility Database",
				Country:  strings.ToLower(code),
				Operator: c.entry.ID,
				URL:      c.url,
			})
		}
	}
	return sources
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1":
		return true
	}
	return false
}
