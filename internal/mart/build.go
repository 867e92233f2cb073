package mart

import (
	"strconv"
	"strings"
	"time"

	"railmart/internal/gtfs"
	"railmart/internal/registry"
	"railmart/internal/transform"
)

// Build assembles the dimensional model from normalized rows. Dimensions
// deduplicate on their natural key in order of first appearance (dim_country
// follows geography registry order instead) and receive dense surrogate keys
// starting at 1. The fact table resolves every foreign key by equality lookup
// on the natural key; a miss yields a nil key, the row is kept.
func Build(
	segments []gtfs.TripSegment,
	tripStops []gtfs.TripStop,
	nightOps []registry.NightTrainOperator,
	countries []registry.Country,
	now time.Time,
) *Mart {
	m := &Mart{}

	m.Countries = buildDimCountry(countries)
	mapping := registry.BuildCountryMapping(countries)

	m.Operators = buildDimOperator(segments, nightOps, mapping)
	m.Stations = buildDimStation(segments, mapping)
	m.Routes = buildDimRoute(segments, mapping)
	m.Times = buildDimTime(segments)
	m.Dates = buildDimDate(segments, now)

	m.Facts = buildFacts(segments, m, mapping, now)
	m.TripStops = buildTripStops(tripStops, mapping)

	return m
}

func buildDimCountry(countries []registry.Country) []DimCountry {
	dim := make([]DimCountry, 0, len(countries))
	for i, c := range countries {
		dim = append(dim, DimCountry{
			Key:             i + 1,
			Code:            c.Code,
			NameEN:          c.NameEN,
			NameFR:          c.NameFR,
			ISO3:            c.ISO3,
			EUMember:        c.EUMember,
			EFTAMember:      c.EFTAMember,
			CandidateMember: c.CandidateMember,
		})
	}
	return dim
}

// buildDimOperator unions feed operators (name = id, night from the segment
// flag) with the night-train registry (always night), grouped by operator id:
// first non-empty name/country wins, night flags OR together.
func buildDimOperator(segments []gtfs.TripSegment, nightOps []registry.NightTrainOperator, mapping transform.CountryMapping) []DimOperator {
	index := make(map[string]int)
	var dim []DimOperator

	merge := func(id, name, country string, night bool) {
		if id == "" {
			return
		}
		if i, ok := index[id]; ok {
			if dim[i].Name == "" {
				dim[i].Name = name
			}
			if dim[i].Country == "" {
				dim[i].Country = country
			}
			dim[i].IsNightOperator = dim[i].IsNightOperator || night
			return
		}
		index[id] = len(dim)
		dim = append(dim, DimOperator{
			OperatorID:      id,
			Name:            name,
			Country:         country,
			IsNightOperator: night,
		})
	}

	for _, seg := range segments {
		merge(seg.Operator, seg.Operator, mapping.MapCountry(seg.Country), seg.IsNight)
	}
	for _, op := range nightOps {
		merge(op.OperatorID, op.OperatorName, mapping.MapCountry(op.OperatorCountry), true)
	}

	for i := range dim {
		dim[i].Key = i + 1
	}
	return dim
}

// buildDimStation unions departure-side and arrival-side station attributes,
// deduplicated by (stop id, country code).
func buildDimStation(segments []gtfs.TripSegment, mapping transform.CountryMapping) []DimStation {
	type naturalKey struct{ stopID, country string }
	seen := make(map[naturalKey]bool)
	var dim []DimStation

	add := func(stopID, name string, lat, lon *float64, country string) {
		if stopID == "" {
			return
		}
		key := naturalKey{stopID: stopID, country: country}
		if seen[key] {
			return
		}
		seen[key] = true
		dim = append(dim, DimStation{
			StopID:      stopID,
			Name:        name,
			Lat:         lat,
			Lon:         lon,
			CountryCode: country,
		})
	}

	for _, seg := range segments {
		country := mapping.MapCountry(seg.Country)
		add(seg.DepartureStopID, seg.DepartureStation, seg.DepartureLat, seg.DepartureLon, country)
	}
	for _, seg := range segments {
		country := mapping.MapCountry(seg.Country)
		add(seg.ArrivalStopID, seg.ArrivalStation, seg.ArrivalLat, seg.ArrivalLon, country)
	}

	for i := range dim {
		dim[i].Key = i + 1
	}
	return dim
}

func buildDimRoute(segments []gtfs.TripSegment, mapping transform.CountryMapping) []DimRoute {
	type naturalKey struct{ routeID, operatorID, country string }
	seen := make(map[naturalKey]bool)
	var dim []DimRoute

	for _, seg := range segments {
		if seg.RouteID == "" || seg.Operator == "" {
			continue
		}
		key := naturalKey{
			routeID:    seg.RouteID,
			operatorID: seg.Operator,
			country:    mapping.MapCountry(seg.Country),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		dim = append(dim, DimRoute{
			RouteID:     key.routeID,
			OperatorID:  key.operatorID,
			CountryCode: key.country,
		})
	}

	for i := range dim {
		dim[i].Key = i + 1
	}
	return dim
}

// buildDimTime collects distinct departure and arrival time-of-day values
// (departures first, matching concatenation order), decomposed into
// hour/minute/second with the night flag.
func buildDimTime(segments []gtfs.TripSegment) []DimTime {
	seen := make(map[string]bool)
	var dim []DimTime

	add := func(value *string) {
		if value == nil {
			return
		}
		v := *value
		if v == "" || seen[v] {
			return
		}
		h, mi, s, ok := splitTime(v)
		if !ok {
			return
		}
		seen[v] = true
		dim = append(dim, DimTime{
			Value:   v,
			Hour:    h,
			Minute:  mi,
			Second:  s,
			IsNight: transform.IsNight(v),
		})
	}

	for _, seg := range segments {
		add(seg.DepartureTime)
	}
	for _, seg := range segments {
		add(seg.ArrivalTime)
	}

	for i := range dim {
		dim[i].Key = i + 1
	}
	return dim
}

// buildDimDate collects distinct service dates; segments without one
// contribute the run's load date instead.
func buildDimDate(segments []gtfs.TripSegment, now time.Time) []DimDate {
	seen := make(map[int]bool)
	var dim []DimDate

	for _, seg := range segments {
		date, ok := segmentDate(seg, now)
		if !ok {
			continue
		}
		key := dateKey(date)
		if seen[key] {
			continue
		}
		seen[key] = true
		dim = append(dim, DimDate{
			Key:   key,
			Value: date,
			Year:  date.Year(),
			Month: int(date.Month()),
			Day:   date.Day(),
		})
	}
	return dim
}

func buildFacts(segments []gtfs.TripSegment, m *Mart, mapping transform.CountryMapping, now time.Time) []FactTripSegment {
	countryKeys := make(map[string]int, len(m.Countries))
	for _, c := range m.Countries {
		countryKeys[c.Code] = c.Key
	}
	operatorKeys := make(map[string]int, len(m.Operators))
	for _, o := range m.Operators {
		operatorKeys[o.OperatorID] = o.Key
	}
	type routeKey struct{ routeID, operatorID, country string }
	routeKeys := make(map[routeKey]int, len(m.Routes))
	for _, r := range m.Routes {
		routeKeys[routeKey{r.RouteID, r.OperatorID, r.CountryCode}] = r.Key
	}
	type stationKey struct{ stopID, country string }
	stationKeys := make(map[stationKey]int, len(m.Stations))
	for _, s := range m.Stations {
		stationKeys[stationKey{s.StopID, s.CountryCode}] = s.Key
	}
	timeKeys := make(map[string]int, len(m.Times))
	for _, t := range m.Times {
		timeKeys[t.Value] = t.Key
	}
	dateKeys := make(map[int]bool, len(m.Dates))
	for _, d := range m.Dates {
		dateKeys[d.Key] = true
	}

	facts := make([]FactTripSegment, 0, len(segments))
	for i, seg := range segments {
		country := mapping.MapCountry(seg.Country)

		fact := FactTripSegment{
			Key:            i + 1,
			TripBusinessID: seg.TripID,
			IsNight:        seg.IsNight,
			IsCrossBorder:  seg.IsCrossBorder,
		}
		fact.CountryKey = lookup(countryKeys, country)
		fact.OperatorKey = lookup(operatorKeys, seg.Operator)
		fact.RouteKey = lookup(routeKeys, routeKey{seg.RouteID, seg.Operator, country})
		fact.DepartureStationKey = lookup(stationKeys, stationKey{seg.DepartureStopID, country})
		fact.ArrivalStationKey = lookup(stationKeys, stationKey{seg.ArrivalStopID, country})
		if seg.DepartureTime != nil {
			fact.DepartureTimeKey = lookup(timeKeys, *seg.DepartureTime)
		}
		if seg.ArrivalTime != nil {
			fact.ArrivalTimeKey = lookup(timeKeys, *seg.ArrivalTime)
		}
		if date, ok := segmentDate(seg, now); ok {
			if k := dateKey(date); dateKeys[k] {
				key := k
				fact.DateKey = &key
			}
		}

		facts = append(facts, fact)
	}
	return facts
}

// buildTripStops assigns dense keys and maps the feed country through the
// country mapping so itinerary lookups join against the same codes the fact
// readout carries.
func buildTripStops(stops []gtfs.TripStop, mapping transform.CountryMapping) []TripStopRow {
	rows := make([]TripStopRow, 0, len(stops))
	for i, st := range stops {
		row := TripStopRow{
			Key:           i + 1,
			CountryCode:   mapping.MapCountry(st.Country),
			OperatorID:    st.Operator,
			TripID:        st.TripID,
			StopSequence:  st.StopSequence,
			StopID:        st.StopID,
			StopName:      st.StopName,
			StopLat:       st.StopLat,
			StopLon:       st.StopLon,
			ArrivalTime:   st.ArrivalTime,
			DepartureTime: st.DepartureTime,
		}
		if st.ServiceDate != nil {
			if d, ok := parseServiceDate(*st.ServiceDate); ok {
				row.DateValue = &d
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// segmentDate resolves a segment's date: the parsed service date when the
// feed carries one, else the load timestamp's date.
func segmentDate(seg gtfs.TripSegment, now time.Time) (time.Time, bool) {
	if seg.ServiceDate != nil {
		return parseServiceDate(*seg.ServiceDate)
	}
	d := now.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
}

// splitTime decomposes a normalized HH:MM:SS value into numeric parts.
// A missing seconds part counts as zero; anything unparsable is rejected.
func splitTime(value string) (hour, minute, second int, ok bool) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 {
		return 0, 0, 0, false
	}
	var err error
	if hour, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, 0, false
	}
	if minute, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, 0, false
	}
	if len(parts) > 2 {
		if second, err = strconv.Atoi(strings.TrimSpace(parts[2])); err != nil {
			return 0, 0, 0, false
		}
	}
	return hour, minute, second, true
}

// parseServiceDate parses the GTFS YYYYMMDD date encoding.
func parseServiceDate(value string) (time.Time, bool) {
	d, err := time.ParseInLocation("20060102", strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func dateKey(d time.Time) int {
	key, _ := strconv.Atoi(d.Format("20060102"))
	return key
}

func lookup[K comparable](keys map[K]int, key K) *int {
	if v, ok := keys[key]; ok {
		v := v
		return &v
	}
	return nil
}
