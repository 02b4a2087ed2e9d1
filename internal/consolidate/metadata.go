// Package consolidate loads raw job records from extraction session
// directories and shapes them into canonical JobRecords. Collectors emitted
// several historical JSON layouts; all of them are recognized here so the
// rest of the engine only ever sees one shape.
package consolidate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SessionMetadata describes one extraction run, derived from its directory
// name. The session id is provenance only; dedup never keys on it.
type SessionMetadata struct {
	ID   string    `json:"sessionId"`
	Date time.Time `json:"sessionDate,omitempty"`
	Type string    `json:"sessionType"`
	Path string    `json:"sessionPath"`
}

var sessionStampRe = regexp.MustCompile(`(20\d{6})_(\d{6})`)

// ExtractSessionMetadata parses the timestamp and search type out of a
// session directory name like "data_analyst_session_scrape_20251120_182316".
func ExtractSessionMetadata(path string) SessionMetadata {
	name := filepath.Base(filepath.Clean(path))
	meta := SessionMetadata{ID: name, Path: path, Type: "general_search"}

	if m := sessionStampRe.FindStringSubmatch(name); m != nil {
		stamp := fmt.Sprintf("%s-%s-%sT%s:%s:%sZ",
			m[1][0:4], m[1][4:6], m[1][6:8],
			m[2][0:2], m[2][2:4], m[2][4:6])
		if t, err := time.Parse(time.RFC3339, stamp); err == nil {
			meta.Date = t
		}
	}

	if idx := strings.Index(name, "session_scrape"); idx > 0 {
		prefix := strings.Trim(name[:idx], "_")
		if prefix != "" {
			meta.Type = "filtered_search_" + prefix
		}
	}
	return meta
}
