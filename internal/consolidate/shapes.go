package consolidate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/job-consolidator/internal/types"
)

// DefaultConfidence is assumed when a collector did not report extraction
// confidence for a field. Neutral: it never outranks an explicit value of
// either extreme during canonical selection.
const DefaultConfidence = 50

// rawRecord is the shape-agnostic intermediate form of one job file.
type rawRecord struct {
	id        string
	sourceURL string
	fields    map[string]types.FieldValue
}

// idKeys and urlKeys are the identifier spellings seen across collectors.
var (
	idKeys  = []string{"id", "uid", "jobId", "job_id"}
	urlKeys = []string{"url", "sourceUrl", "source_url", "applicationUrl", "application_url", "job_url", "link"}
)

// fieldAliases maps collector field spellings to canonical field names.
var fieldAliases = map[string]string{
	"title":            types.FieldTitle,
	"slug":             types.FieldTitle,
	"company":          types.FieldCompany,
	"description":      types.FieldDescription,
	"location":         types.FieldLocation,
	"salary":           types.FieldSalary,
	"jobType":          types.FieldJobType,
	"job_type":         types.FieldJobType,
	"employmentType":   types.FieldJobType,
	"experienceLevel":  types.FieldExperienceLevel,
	"experience_level": types.FieldExperienceLevel,
	"seniority":        types.FieldExperienceLevel,
	"postedDate":       types.FieldPostedDate,
	"posted_date":      types.FieldPostedDate,
	"posted":           types.FieldPostedDate,
	"remotePolicy":     types.FieldLocation,
}

// extractRecord detects which historical layout a job file uses and pulls
// out id, source URL, and fields. Three shapes exist in the wild: a flat
// object, a {"job": {...}} wrapper, and a {"data": {...}} wrapper whose
// fields carry {"value": ..., "confidence": ...} envelopes.
func extractRecord(doc map[string]any) rawRecord {
	payload := doc
	if nested, ok := doc["job"].(map[string]any); ok {
		payload = nested
	} else if nested, ok := doc["data"].(map[string]any); ok {
		payload = nested
	}

	rec := rawRecord{fields: make(map[string]types.FieldValue)}
	rec.id = firstString(doc, idKeys)
	if rec.id == "" {
		rec.id = firstString(payload, idKeys)
	}
	rec.sourceURL = firstString(doc, urlKeys)
	if rec.sourceURL == "" {
		rec.sourceURL = firstString(payload, urlKeys)
	}

	for _, key := range sortedMapKeys(payload) {
		canonical, known := fieldAliases[key]
		if !known {
			continue
		}
		if _, taken := rec.fields[canonical]; taken {
			continue
		}
		raw, confidence, ok := flattenValue(payload[key])
		if !ok || raw == "" {
			continue
		}
		rec.fields[canonical] = types.FieldValue{Raw: raw, Confidence: confidence}
	}
	return rec
}

// flattenValue reduces a collector value to a raw string plus confidence.
// Envelopes carry their own confidence; everything else gets the default.
func flattenValue(v any) (string, int, bool) {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value), DefaultConfidence, true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), DefaultConfidence, true
	case bool:
		return strconv.FormatBool(value), DefaultConfidence, true
	case map[string]any:
		if inner, ok := value["value"]; ok {
			raw, _, found := flattenValue(inner)
			confidence := DefaultConfidence
			if c, ok := value["confidence"].(float64); ok {
				confidence = clampConfidence(int(c))
			}
			return raw, confidence, found
		}
		return flattenStructured(value), DefaultConfidence, true
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			if s, _, ok := flattenValue(item); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), DefaultConfidence, true
	default:
		return "", 0, false
	}
}

// flattenStructured renders structured location and salary objects into the
// string forms the normalizer parses.
func flattenStructured(m map[string]any) string {
	if _, ok := m["city"]; ok {
		parts := make([]string, 0, 4)
		for _, key := range []string{"city", "region", "country"} {
			if s, _ := m[key].(string); s != "" {
				parts = append(parts, s)
			}
		}
		joined := strings.Join(parts, ", ")
		if mode, _ := m["type"].(string); mode != "" {
			if joined == "" {
				return mode
			}
			return joined + " (" + mode + ")"
		}
		return joined
	}
	if name, ok := m["name"].(string); ok {
		return name
	}
	if _, hasMin := m["min"]; hasMin {
		min, _ := m["min"].(float64)
		max, hasMax := m["max"].(float64)
		if !hasMax {
			max = min
		}
		currency, _ := m["currency"].(string)
		period, _ := m["period"].(string)
		s := fmt.Sprintf("%s - %s", formatAmount(min), formatAmount(max))
		if currency != "" {
			s += " " + currency
		}
		if period != "" {
			s += " per " + strings.TrimSuffix(strings.ToLower(period), "ly")
		}
		return s
	}
	if raw, ok := m["raw"].(string); ok {
		return raw
	}
	return ""
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstString(m map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		if f, ok := m[key].(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ""
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
