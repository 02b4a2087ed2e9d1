package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/job-consolidator/internal/types"
)

// absoluteLayouts are tried in order. EU dotted dates come before the
// slash-separated US form so "02.01.2026" parses day-first.
var absoluteLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2. January 2006",
	"01/02/2006",
	"1/2/2006",
}

var relativeDateRe = regexp.MustCompile(`(?i)(?:posted\s+)?(\d+)\s*(day|week|month|hour)s?\s+ago`)

// Date parses absolute and relative date forms into an absolute calendar
// date anchored to asOf. The normalizer never reads the wall clock.
func Date(raw string, asOf time.Time) types.NormalizedValue {
	s := strings.TrimSpace(raw)
	if s == "" {
		return unparsed(raw)
	}

	lower := strings.ToLower(s)
	switch lower {
	case "today", "just posted", "heute":
		d := asOf.Truncate(24 * time.Hour)
		return dateValue(d)
	case "yesterday", "gestern":
		d := asOf.AddDate(0, 0, -1).Truncate(24 * time.Hour)
		return dateValue(d)
	}

	if m := relativeDateRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			var d time.Time
			switch strings.ToLower(m[2]) {
			case "hour":
				d = asOf
			case "day":
				d = asOf.AddDate(0, 0, -n)
			case "week":
				d = asOf.AddDate(0, 0, -7*n)
			case "month":
				d = asOf.AddDate(0, -n, 0)
			}
			return dateValue(d.Truncate(24 * time.Hour))
		}
	}

	for _, layout := range absoluteLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return dateValue(d)
		}
	}
	return unparsed(raw)
}

func dateValue(d time.Time) types.NormalizedValue {
	d = d.UTC()
	return types.NormalizedValue{Kind: types.KindDate, Date: &d}
}
