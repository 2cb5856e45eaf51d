package constants

// Fixed directory layout, relative to the workspace root.
// Every stage persists its artifact under these before the next stage starts.
const (
	QuestionSheetsDir     = "input/question_sheets"
	AnswerKeysDir         = "input/answer_keys"
	ExtractedQuestionsDir = "output/extracted_questions"
	ChaptersDir           = "output/chapters"
	BookDir               = "output/book"
)

// LayoutDirs lists every directory the artifact store creates if absent.
var LayoutDirs = []string{
	QuestionSheetsDir,
	AnswerKeysDir,
	ExtractedQuestionsDir,
	ChaptersDir,
	BookDir,
}
