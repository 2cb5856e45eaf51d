// Package answerkey loads the chapter answer key: a mapping from question
// identifier to one of the fixed answer labels.
package answerkey

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/common"
)

// Key maps normalized question identifiers to canonical answer labels.
type Key map[string]constants.AnswerLabel

// Lookup resolves a raw question identifier after normalization.
func (k Key) Lookup(number string) (constants.AnswerLabel, bool) {
	label, ok := k[constants.NormalizeQuestionNumber(number)]
	return label, ok
}

// ParseFile loads an answer key from disk. JSON files may hold either an
// object of number->label or a list of {"question": ..., "answer": ...}
// entries; anything else is parsed line by line.
func ParseFile(path string) (Key, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.MissingInputError(path)
		}
		return nil, common.WrapError(err, "read answer key")
	}

	var key Key
	if constants.NormalizeExt(filepath.Ext(path)) == "json" {
		key, err = parseJSON(b)
	} else {
		key, err = parseLines(string(b))
	}
	if err != nil {
		return nil, common.MalformedArtifactError(path, err)
	}
	if len(key) == 0 {
		return nil, common.MalformedArtifactError(path, common.ErrMalformedArtifact)
	}
	return key, nil
}

func parseJSON(b []byte) (Key, error) {
	key := Key{}

	var obj map[string]string
	if err := json.Unmarshal(b, &obj); err == nil {
		for num, raw := range obj {
			addEntry(key, num, raw)
		}
		return key, nil
	}

	var list []struct {
		Question json.Number `json:"question"`
		Answer   string      `json:"answer"`
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	for _, item := range list {
		addEntry(key, item.Question.String(), item.Answer)
	}
	return key, nil
}

// parseLines handles the "1. A" / "1,A" / "1:A" family of line formats.
// Separators are tried in a fixed order; the first split whose right-hand
// side normalizes to a valid label wins.
func parseLines(content string) (Key, error) {
	key := Key{}
	separators := []string{".", ",", ":", "\t", " "}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sep := range separators {
			before, after, found := strings.Cut(line, sep)
			if !found {
				continue
			}
			if addEntry(key, before, after) {
				break
			}
		}
	}
	return key, nil
}

func addEntry(key Key, number, raw string) bool {
	label, ok := constants.NormalizeAnswerLabel(raw)
	if !ok {
		return false
	}
	num := constants.NormalizeQuestionNumber(number)
	if num == "" {
		return false
	}
	key[num] = label
	return true
}
