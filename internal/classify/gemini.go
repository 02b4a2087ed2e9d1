package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/job-consolidator/internal/llm"
)

// DefaultTimeout bounds one classification call. A slow call resolves its
// predicate to unknown; it never stalls the batch.
const DefaultTimeout = 5 * time.Second

// GeminiClassifier judges predicates with the Gemini lite tier.
type GeminiClassifier struct {
	client  llm.Client
	timeout time.Duration
}

// NewGeminiClassifier wraps an LLM client as a Classifier.
func NewGeminiClassifier(client llm.Client, timeout time.Duration) *GeminiClassifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiClassifier{client: client, timeout: timeout}
}

type classifierResponse struct {
	Matches    bool `json:"matches"`
	Confidence int  `json:"confidence"`
}

// Classify evaluates one predicate on one record within the call timeout.
func (c *GeminiClassifier) Classify(ctx context.Context, kind Kind, record RecordContext, parameter string) (Classification, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildPrompt(kind, record, parameter)
	raw, err := c.client.GenerateJSON(callCtx, prompt, llm.TierLite)
	if err != nil {
		return Classification{}, &UnavailableError{Cause: err}
	}

	var resp classifierResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &resp); err != nil {
		return Classification{}, &UnavailableError{Cause: fmt.Errorf("malformed classifier response: %w (content: %s)", err, raw)}
	}

	if resp.Confidence < 0 {
		resp.Confidence = 0
	}
	if resp.Confidence > 100 {
		resp.Confidence = 100
	}
	return Classification{Matches: resp.Matches, Confidence: resp.Confidence}, nil
}

func buildPrompt(kind Kind, record RecordContext, parameter string) string {
	var sb strings.Builder
	sb.WriteString("You evaluate one yes/no question about a job posting.\n\n")
	sb.WriteString("Job posting:\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", record.Title))
	if record.Company != "" {
		sb.WriteString(fmt.Sprintf("Company: %s\n", record.Company))
	}
	if record.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", truncate(record.Description, 2000)))
	}
	sb.WriteString("\nQuestion: ")

	switch kind {
	case KindRequiredSkills:
		sb.WriteString(fmt.Sprintf("Does this role require or substantially use the following skills: %s?", parameter))
	case KindKeywordRelevance:
		sb.WriteString(fmt.Sprintf("Is this posting relevant to a job search for %q?", parameter))
	case KindExperienceLevel:
		sb.WriteString(fmt.Sprintf("Is this role at the %q experience level?", parameter))
	default:
		sb.WriteString(fmt.Sprintf("Does this posting satisfy: %s?", parameter))
	}

	sb.WriteString("\n\nRespond with JSON only: {\"matches\": true|false, \"confidence\": 0-100}")
	return sb.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
