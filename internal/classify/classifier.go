// Package classify is the delegated semantic classification boundary: the
// filter pipeline hands it predicates that need judgment beyond structural
// matching. The engine treats the capability as a black box with bounded
// latency and degrades to "unknown" outcomes when it is absent or failing.
package classify

import (
	"context"
	"fmt"
)

// Kind names a predicate class the classifier can judge.
type Kind string

const (
	// KindRequiredSkills asks whether a posting plausibly requires or uses
	// the given skills.
	KindRequiredSkills Kind = "requiredSkills"
	// KindKeywordRelevance asks whether a posting is relevant to a keyword
	// that structural matching found ambiguous.
	KindKeywordRelevance Kind = "keywordRelevance"
	// KindExperienceLevel asks the classifier to infer the experience level
	// when the posting does not state one.
	KindExperienceLevel Kind = "experienceLevel"
)

// RecordContext is the slice of a record handed to the classifier. It is a
// copy; the classifier never sees or mutates engine state.
type RecordContext struct {
	Title       string
	Company     string
	Description string
}

// Classification is the classifier verdict for one predicate on one record.
type Classification struct {
	Matches    bool
	Confidence int // 0-100
}

// Classifier is the external semantic judgment capability consumed by the
// filter pipeline's third stage.
type Classifier interface {
	Classify(ctx context.Context, kind Kind, record RecordContext, parameter string) (Classification, error)
}

// UnavailableError reports that the capability could not deliver a verdict.
// Callers resolve the affected predicates to unknown, never to failed.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("classifier unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
