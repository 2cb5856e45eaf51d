package artifact

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
)

// Store persists stage artifacts under the fixed directory layout.
// Every artifact is written in full before the next stage starts, so a human
// can inspect or correct intermediates between pipeline runs.
type Store struct {
	root   string
	logger *slog.Logger
}

func NewStore(root string, logger *slog.Logger) *Store {
	if root == "" {
		root = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, logger: logger}
}

// EnsureLayout creates the input/output directory layout if absent.
func (s *Store) EnsureLayout() error {
	for _, dir := range constants.LayoutDirs {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
			return common.WrapError(err, "create layout dir")
		}
	}
	return nil
}

// BookDir returns the directory compiled output lands in.
func (s *Store) BookDir() string {
	return filepath.Join(s.root, constants.BookDir)
}

func (s *Store) extractionPath(chapter int) string {
	return filepath.Join(s.root, constants.ExtractedQuestionsDir, fmt.Sprintf("chapter_%02d_questions.json", chapter))
}

func (s *Store) rawExtractionPath(chapter int) string {
	return filepath.Join(s.root, constants.ExtractedQuestionsDir, fmt.Sprintf("chapter_%02d_questions.raw.txt", chapter))
}

func (s *Store) matchedPath(chapter int) string {
	return filepath.Join(s.root, constants.ExtractedQuestionsDir, fmt.Sprintf("chapter_%02d_matched.json", chapter))
}

// ChapterPath returns the markdown path for a chapter number.
func (s *Store) ChapterPath(chapter int) string {
	return filepath.Join(s.root, constants.ChaptersDir, fmt.Sprintf("chapter_%02d.md", chapter))
}

// WriteExtraction persists the parsed extraction artifact plus the raw model
// text, verbatim, next to it. Returns the artifact path.
func (s *Store) WriteExtraction(chapter int, art entity.ExtractionArtifact, raw []byte) (string, error) {
	path := s.extractionPath(chapter)
	if err := s.writeJSON(path, art); err != nil {
		return "", err
	}
	if len(raw) > 0 {
		if err := s.writeFile(s.rawExtractionPath(chapter), raw); err != nil {
			return "", err
		}
	}
	s.logger.Info("artifact.extraction.written", "path", path, "questions", len(art.Questions))
	return path, nil
}

// ReadExtraction loads a stage-1 artifact. Decode failures surface as the
// MalformedArtifact kind with the offending path attached.
func (s *Store) ReadExtraction(chapter int) (entity.ExtractionArtifact, error) {
	var art entity.ExtractionArtifact
	path := s.extractionPath(chapter)
	if err := s.readJSON(path, &art); err != nil {
		return entity.ExtractionArtifact{}, err
	}
	return art, nil
}

// WriteMatched persists the stage-2 artifact. Returns the artifact path.
func (s *Store) WriteMatched(art entity.MatchedArtifact) (string, error) {
	path := s.matchedPath(art.ChapterNumber)
	if err := s.writeJSON(path, art); err != nil {
		return "", err
	}
	s.logger.Info("artifact.matched.written", "path", path, "questions", len(art.Questions))
	return path, nil
}

// ReadMatched loads a stage-2 artifact for a chapter.
func (s *Store) ReadMatched(chapter int) (entity.MatchedArtifact, error) {
	var art entity.MatchedArtifact
	path := s.matchedPath(chapter)
	if err := s.readJSON(path, &art); err != nil {
		return entity.MatchedArtifact{}, err
	}
	return art, nil
}

// ListMatched returns every matched artifact present, in chapter order.
func (s *Store) ListMatched() ([]entity.MatchedArtifact, error) {
	pattern := filepath.Join(s.root, constants.ExtractedQuestionsDir, "chapter_*_matched.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	arts := make([]entity.MatchedArtifact, 0, len(paths))
	for _, p := range paths {
		var art entity.MatchedArtifact
		if err := s.readJSON(p, &art); err != nil {
			return nil, err
		}
		arts = append(arts, art)
	}
	return arts, nil
}

// WriteChapter persists a rendered chapter document. Returns its path.
func (s *Store) WriteChapter(chapter int, markdown []byte) (string, error) {
	path := s.ChapterPath(chapter)
	if err := s.writeFile(path, markdown); err != nil {
		return "", err
	}
	s.logger.Info("artifact.chapter.written", "path", path, "bytes", len(markdown))
	return path, nil
}

// ListChapters returns the chapter markdown files present, sorted by name
// (chapter numbers are zero-padded, so name order is chapter order).
func (s *Store) ListChapters() ([]string, error) {
	pattern := filepath.Join(s.root, constants.ChaptersDir, "chapter_*.md")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadChapter returns the raw markdown of a chapter document.
func (s *Store) ReadChapter(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.MissingInputError(path)
		}
		return nil, common.WrapError(err, "read chapter")
	}
	return b, nil
}

func (s *Store) writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return common.WrapError(err, "encode artifact")
	}
	return s.writeFile(path, b)
}

func (s *Store) readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return common.MissingInputError(path)
		}
		return common.WrapError(err, "read artifact")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return common.MalformedArtifactError(path, err)
	}
	return nil
}

func (s *Store) writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return common.WrapError(err, "create artifact dir")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return common.WrapError(err, "write artifact")
	}
	return nil
}
