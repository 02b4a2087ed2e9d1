package normalize

import (
	"strings"

	"github.com/jonathan/job-consolidator/internal/types"
)

// workModeAliases are checked in order; longer aliases come first so
// "home office" resolves to remote before "office" can claim it.
var workModeAliases = []struct {
	alias string
	mode  types.WorkMode
}{
	{"work from home", types.WorkModeRemote},
	{"fully remote", types.WorkModeRemote},
	{"home office", types.WorkModeRemote},
	{"remote", types.WorkModeRemote},
	{"hybrid", types.WorkModeHybrid},
	{"in office", types.WorkModeOnSite},
	{"on-site", types.WorkModeOnSite},
	{"on site", types.WorkModeOnSite},
	{"onsite", types.WorkModeOnSite},
	{"office", types.WorkModeOnSite},
}

// knownCountries recognizes country tokens so "Berlin, Germany" splits into
// city and country rather than city and region.
var knownCountries = map[string]string{
	"germany":        "Germany",
	"deutschland":    "Germany",
	"austria":        "Austria",
	"switzerland":    "Switzerland",
	"netherlands":    "Netherlands",
	"france":         "France",
	"spain":          "Spain",
	"italy":          "Italy",
	"poland":         "Poland",
	"united kingdom": "United Kingdom",
	"uk":             "United Kingdom",
	"united states":  "United States",
	"usa":            "United States",
	"us":             "United States",
	"canada":         "Canada",
}

// LocationValue splits a raw location into city, region, country, and work
// mode. "Remote" with no city yields an empty City, not a placeholder.
func LocationValue(raw string) types.NormalizedValue {
	s := CanonicalText(raw)
	if s == "" {
		return unparsed(raw)
	}

	mode := types.WorkModeUnknown
	for _, wm := range workModeAliases {
		if strings.Contains(s, wm.alias) {
			mode = wm.mode
			s = strings.ReplaceAll(s, wm.alias, " ")
			break
		}
	}
	s = strings.Trim(whitespaceRe.ReplaceAllString(s, " "), " ,-/()")

	loc := types.Location{WorkMode: mode}
	if s != "" {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		// Last segment is a country when recognized; the first is the city.
		if country, ok := knownCountries[parts[len(parts)-1]]; ok {
			loc.Country = country
			parts = parts[:len(parts)-1]
		}
		if len(parts) > 0 && parts[0] != "" {
			loc.City = parts[0]
		}
		if len(parts) > 1 && parts[1] != "" {
			loc.Region = parts[1]
		}
	}

	if loc.City == "" && loc.Country == "" && mode == types.WorkModeUnknown {
		return unparsed(raw)
	}
	return types.NormalizedValue{Kind: types.KindLocation, Location: &loc}
}
