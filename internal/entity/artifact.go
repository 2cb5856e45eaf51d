package entity

import "time"

// Question is one extracted question as the recognition service returned it.
// Text and options are verbatim; illegible fragments carry an [UNCLEAR] marker
// in place of guessed content, and Unclear flags the whole question for review.
type Question struct {
	Number  string   `json:"number"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Unclear bool     `json:"unclear,omitempty"`
}

// ExtractionArtifact is the stage-1 output. Written once, read-only afterward.
// Question order reflects document reading order and is preserved downstream.
type ExtractionArtifact struct {
	SourcePath  string     `json:"source_path"`
	ExtractedAt time.Time  `json:"extracted_at"`
	Questions   []Question `json:"questions"`
}

// MatchedQuestion merges a Question with its resolved answer and explanation.
// Resolved=false marks an identifier absent from the answer key; such entries
// are carried through, never dropped.
type MatchedQuestion struct {
	Question
	Answer      string `json:"answer,omitempty"`
	Resolved    bool   `json:"resolved"`
	Explanation string `json:"explanation,omitempty"`
}

// MatchedArtifact is the stage-2 output for one chapter.
type MatchedArtifact struct {
	ChapterNumber int               `json:"chapter_number"`
	ChapterName   string            `json:"chapter_name"`
	Subject       string            `json:"subject"`
	Questions     []MatchedQuestion `json:"questions"`
}
