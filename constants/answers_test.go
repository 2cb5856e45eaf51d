package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswerLabel(t *testing.T) {
	tests := []struct {
		in    string
		want  AnswerLabel
		valid bool
	}{
		{"A", AnswerA, true},
		{"b", AnswerB, true},
		{"  c  ", AnswerC, true},
		{"(d)", AnswerD, true},
		{"(B", AnswerB, true},
		{"E", "", false},
		{"", "", false},
		{"AB", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeAnswerLabel(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeQuestionNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{"12.", "12"},
		{"12)", "12"},
		{" 12: ", "12"},
		{"  7 ", "7"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuestionNumber(tt.in), "input %q", tt.in)
	}
}

func TestMapExtToMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", MapExtToMIME(".pdf"))
	assert.Equal(t, "image/png", MapExtToMIME(".PNG"))
	assert.Equal(t, "image/jpeg", MapExtToMIME("jpeg"))
	assert.Equal(t, "", MapExtToMIME(".txt"))
}

func TestStatusForStage(t *testing.T) {
	assert.Equal(t, JobStatusExtracting, StatusForStage(StageExtraction))
	assert.Equal(t, JobStatusMatching, StatusForStage(StageMatching))
	assert.Equal(t, JobStatusFormatting, StatusForStage(StageFormatting))
	assert.Equal(t, JobStatusCompiling, StatusForStage(StageCompilation))
}
