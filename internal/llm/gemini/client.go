package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/llm"
)

// request/response shapes for the generateContent endpoint.
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature float32 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// RecognizeQuestions implements llm.Recognizer: it sends the sheet inline
// (base64) with the extraction instruction and validates the returned JSON
// against the extraction schema before decoding it.
func (c *Client) RecognizeQuestions(ctx context.Context, req llm.RecognizeRequest) (entity.ExtractionArtifact, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	data, err := os.ReadFile(req.FilePath)
	if err != nil {
		return entity.ExtractionArtifact{}, nil, common.WrapError(err, "read sheet")
	}

	schema := llm.BuildExtractionJSONSchema()
	prompt := llm.BuildRecognitionPrompt(req, schema)

	c.logger.Info("llm.recognize.start",
		"req_id", rid,
		"job_id", common.JobIDFromContext(ctx),
		"model", c.cfg.Model,
		"file", req.FilePath,
		"mime", req.MIMEType,
		"bytes", len(data),
	)

	body := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MIMEType: req.MIMEType, Data: base64.StdEncoding.EncodeToString(data)}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{Temperature: c.cfg.Temperature},
	}

	text, err := c.generate(ctx, body)
	if err != nil {
		c.logger.Error("llm.recognize.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ExtractionArtifact{}, nil, err
	}

	raw := []byte(text)
	cleaned := llm.StripCodeFences(raw)
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.logger.Error("llm.recognize.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ExtractionArtifact{}, raw, common.ExternalServiceError("recognition response does not match schema", err)
	}

	var parsed struct {
		Questions []entity.Question `json:"questions"`
	}
	if err := json.Unmarshal(cleaned, &parsed); err != nil {
		return entity.ExtractionArtifact{}, raw, common.ExternalServiceError("decode recognition response", err)
	}
	if len(parsed.Questions) == 0 {
		c.logger.Error("llm.recognize.empty",
			"req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.ExtractionArtifact{}, raw, common.ExternalServiceError("recognition service returned no questions", nil)
	}

	art := entity.ExtractionArtifact{
		SourcePath:  req.FilePath,
		ExtractedAt: time.Now().UTC(),
		Questions:   parsed.Questions,
	}

	c.logger.Info("llm.recognize.ok",
		"req_id", rid,
		"questions", len(art.Questions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return art, raw, nil
}

// ExplainAnswer implements llm.Explainer with a text-only call.
func (c *Client) ExplainAnswer(ctx context.Context, req llm.ExplainRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	body := generateRequest{
		Contents:         []content{{Parts: []part{{Text: llm.BuildExplanationPrompt(req)}}}},
		GenerationConfig: &generationConfig{Temperature: c.cfg.Temperature},
	}

	text, err := c.generate(ctx, body)
	if err != nil {
		c.logger.Error("llm.explain.failed",
			"req_id", rid, "question", req.Question.Number, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", common.ExternalServiceError("explanation service returned empty response", nil)
	}

	c.logger.Info("llm.explain.ok",
		"req_id", rid, "question", req.Question.Number,
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// generate posts to generateContent and returns the first candidate's text.
// Failure conditions are kept distinct: unreachable endpoint, unauthorized
// key, and usable-content-free responses each surface their own detail.
func (c *Client) generate(ctx context.Context, body generateRequest) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", common.ExternalServiceError("recognition service unreachable", err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.logger.Warn("gemini response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", common.ExternalServiceError(
			fmt.Sprintf("recognition service unauthorized (status %d)", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", common.ExternalServiceError(
			fmt.Sprintf("recognition service status %d: %s", resp.StatusCode, truncate(string(raw), 2<<10)), nil)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", common.ExternalServiceError("decode recognition service response", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", common.ExternalServiceError("recognition service returned no usable content", nil)
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
