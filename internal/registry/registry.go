// Package registry parses the auxiliary CSV registries: the night-train
// operator list and the country geography table. Both are best-effort inputs;
// a missing registry degrades dimension coverage, it never fails a run.
package registry

import (
	"bytes"
	"fmt"

	"railmart/internal/csvio"
	"railmart/internal/transform"
)

type nightTrainRow struct {
	AgencyID    string `csv:"agency_id"`
	AgencyName  string `csv:"agency_name"`
	AgencyState string `csv:"agency_state"`
	AgencyURL   string `csv:"agency_url"`
}

// NightTrainOperator is one entry of the night-train operator registry.
type NightTrainOperator struct {
	OperatorID      string
	OperatorName    string
	OperatorCountry string
	OperatorURL     string
}

// ParseNightTrains decodes and deduplicates the night-train registry CSV.
func ParseNightTrains(data []byte) ([]NightTrainOperator, error) {
	rows, err := csvio.Decode[nightTrainRow](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse night-train registry: %w", err)
	}

	seen := make(map[NightTrainOperator]bool, len(rows))
	var ops []NightTrainOperator
	for _, r := range rows {
		op := NightTrainOperator{
			OperatorID:      r.AgencyID,
			OperatorName:    r.AgencyName,
			OperatorCountry: transform.NormalizeCountry(r.AgencyState),
			OperatorURL:     r.AgencyURL,
		}
		if op.OperatorID == "" || seen[op] {
			continue
		}
		seen[op] = true
		ops = append(ops, op)
	}
	return ops, nil
}

type geoRow struct {
	CountryID       string `csv:"CNTR_ID"`
	NameEnglish     string `csv:"NAME_ENGL"`
	NameFrench      string `csv:"NAME_FREN"`
	ISO3Code        string `csv:"ISO3_CODE"`
	EUMember        string `csv:"EU_STAT"`
	EFTAMember      string `csv:"EFTA_STAT"`
	CandidateMember string `csv:"CC_STAT"`
}

// Country is one entry of the geography registry, in registry order.
type Country struct {
	Code            string
	NameEN          string
	NameFR          string
	ISO3            string
	EUMember        string
	EFTAMember      string
	CandidateMember string
}

// ParseCountries decodes the geography registry CSV, uppercasing codes and
// dropping rows without one. Registry order is preserved; dim_country
// surrogate keys follow it.
func ParseCountries(data []byte) ([]Country, error) {
	rows, err := csvio.Decode[geoRow](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse geography registry: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	var countries []Country
	for _, r := range rows {
		code := transform.NormalizeCountry(r.CountryID)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		countries = append(countries, Country{
			Code:            code,
			NameEN:          r.NameEnglish,
			NameFR:          r.NameFrench,
			ISO3:            r.ISO3Code,
			EUMember:        r.EUMember,
			EFTAMember:      r.EFTAMember,
			CandidateMember: r.CandidateMember,
		})
	}
	return countries, nil
}

// BuildCountryMapping indexes every name/code variant of the countries so
// free-text country values from feeds and registries resolve to codes.
func BuildCountryMapping(countries []Country) transform.CountryMapping {
	mapping := make(transform.CountryMapping)
	for _, c := range countries {
		mapping.Add(c.Code, c.Code)
		mapping.Add(c.NameEN, c.Code)
		mapping.Add(c.NameFR, c.Code)
		mapping.Add(c.ISO3, c.Code)
	}
	return mapping
}
