package constants

import "strings"

// AnswerLabel is one of the fixed option labels a question can resolve to.
type AnswerLabel string

const (
	AnswerA AnswerLabel = "A"
	AnswerB AnswerLabel = "B"
	AnswerC AnswerLabel = "C"
	AnswerD AnswerLabel = "D"
)

var allLabels = []AnswerLabel{AnswerA, AnswerB, AnswerC, AnswerD}

// AnswerLabels returns the label set as strings, in option order.
func AnswerLabels() []string {
	result := make([]string, len(allLabels))
	for i, l := range allLabels {
		result[i] = string(l)
	}
	return result
}

// NormalizeAnswerLabel trims and case-folds a raw answer value.
// It also strips surrounding parentheses ("(b)" -> "B").
// Returns the canonical label and whether the value is in the label set.
func NormalizeAnswerLabel(raw string) (AnswerLabel, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	for _, l := range allLabels {
		if s == string(l) {
			return l, true
		}
	}
	return "", false
}

// NormalizeQuestionNumber trims whitespace and trailing punctuation from a
// question identifier so OCR output ("12.", "12)") and answer-key entries
// ("12") compare equal as strings.
func NormalizeQuestionNumber(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, ".):")
	return strings.TrimSpace(s)
}
