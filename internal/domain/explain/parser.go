package explain

import "strings"

// Document is the structured result recovered from a raw completion.
// Every field is always populated; missing sections degrade to the
// fallback constants below.
type Document struct {
	Summary     string   `json:"summary"`
	Explanation string   `json:"explanation"`
	KeyPoints   []string `json:"key_points"`
}

// Fallback content emitted when a section is absent or empty after parsing.
const (
	FallbackSummary     = "Summary unavailable."
	FallbackExplanation = "Explanation unavailable."
	FallbackKeyPoint    = "No key points available."
)

// Section labels expected in the completion text. Recognition is
// prefix-based and case-insensitive.
const (
	labelSummary     = "SUMMARY"
	labelExplanation = "EXPLANATION"
	labelKeyPoints   = "KEY POINTS"
)

type parseState int

const (
	stateNone parseState = iota
	stateSummary
	stateExplanation
	stateKeyPoints
)

// labelTransitions is the state machine transition table: a trimmed line
// starting with the label keyword moves the parser into the named state and
// is consumed as a label, never as content. Ordered so the longer
// "EXPLANATION" label cannot be shadowed; labels may repeat, re-entering the
// same state and appending.
var labelTransitions = []struct {
	label string
	next  parseState
}{
	{labelSummary, stateSummary},
	{labelExplanation, stateExplanation},
	{labelKeyPoints, stateKeyPoints},
}

// ParseDocument recovers a Document from raw completion text. It is total:
// any input, including the empty string, text without labels, or labels in
// unexpected order, yields a fully populated Document. The parser never
// fails; degradation only substitutes fallback content.
func ParseDocument(raw string) Document {
	normalized := strings.ReplaceAll(raw, "\r", "")

	state := stateNone
	var summary, explanation strings.Builder
	var keyPoints []string

	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)

		if next, ok := transition(trimmed); ok {
			state = next
			continue
		}

		if trimmed == "" {
			continue
		}

		switch state {
		case stateSummary:
			summary.WriteString(trimmed)
			summary.WriteByte(' ')
		case stateExplanation:
			explanation.WriteString(trimmed)
			explanation.WriteByte(' ')
		case stateKeyPoints:
			if strings.HasPrefix(trimmed, "-") {
				point := strings.TrimSpace(trimmed[1:])
				keyPoints = append(keyPoints, point)
			}
		case stateNone:
			// Content before the first label is discarded.
		}
	}

	return Document{
		Summary:     fallbackText(summary.String(), FallbackSummary),
		Explanation: fallbackText(explanation.String(), FallbackExplanation),
		KeyPoints:   fallbackPoints(keyPoints),
	}
}

func transition(trimmed string) (parseState, bool) {
	upper := strings.ToUpper(trimmed)
	for _, t := range labelTransitions {
		if strings.HasPrefix(upper, t.label) {
			return t.next, true
		}
	}
	return stateNone, false
}

func fallbackText(accumulated string, fallback string) string {
	text := strings.TrimSpace(accumulated)
	if text == "" {
		return fallback
	}
	return text
}

func fallbackPoints(points []string) []string {
	if len(points) == 0 {
		return []string{FallbackKeyPoint}
	}
	return points
}
