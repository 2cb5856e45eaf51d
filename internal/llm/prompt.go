package llm

import (
	"encoding/json"
	"strings"
)

// BuildRecognitionPrompt composes the extraction instruction: verbatim text,
// explicit illegibility marking, no guessing, JSON-only output.
func BuildRecognitionPrompt(req RecognizeRequest, schema map[string]any) string {
	parts := []string{
		"Extract ALL questions from this " + req.ExamName + " question sheet.",
		"For each question capture: the question number, the complete question text, and every option with its full text.",
		"Extract verbatim. Do NOT summarize, paraphrase, or renumber.",
		"If any fragment is illegible, write [UNCLEAR] in its place and set \"unclear\": true for that question. Never guess.",
		"Preserve the original question order.",
		"Return ONLY JSON that matches this JSON Schema:",
		mustJSON(schema),
	}
	if s := strings.TrimSpace(req.Subject); s != "" {
		parts = append([]string{"Subject: " + s + "."}, parts...)
	}
	return strings.Join(parts, "\n")
}

// BuildExplanationPrompt composes the per-question explanation instruction.
func BuildExplanationPrompt(req ExplainRequest) string {
	var b strings.Builder
	b.WriteString("You are preparing a ")
	b.WriteString(req.ExamName)
	b.WriteString(" question bank")
	if s := strings.TrimSpace(req.Subject); s != "" {
		b.WriteString(" for ")
		b.WriteString(s)
	}
	b.WriteString(".\n\nQuestion ")
	b.WriteString(req.Question.Number)
	b.WriteString(": ")
	b.WriteString(req.Question.Text)
	b.WriteString("\n")
	for _, opt := range req.Question.Options {
		b.WriteString(opt)
		b.WriteString("\n")
	}
	b.WriteString("\nCorrect answer: ")
	b.WriteString(req.Answer)
	b.WriteString("\n\nExplain in 2-4 sentences why this answer is correct. Plain prose, no markdown headings, no restating the question.")
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
