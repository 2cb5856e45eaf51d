package constants

// JobStatus is the canonical lifecycle state for a chapter job.
type JobStatus string

// Stable values (recorded verbatim in the history store).
const (
	JobStatusPending    JobStatus = "PENDING"    // created, no stage started
	JobStatusExtracting JobStatus = "EXTRACTING" // stage 1 in progress
	JobStatusMatching   JobStatus = "MATCHING"   // stage 2 in progress
	JobStatusFormatting JobStatus = "FORMATTING" // stage 3 in progress
	JobStatusCompiling  JobStatus = "COMPILING"  // stage 4 in progress
	JobStatusDone       JobStatus = "DONE"       // all four stages completed
	JobStatusFailed     JobStatus = "FAILED"     // terminal failure
)

// Stage names as they appear in logs, errors, and job results.
type Stage string

const (
	StageExtraction  Stage = "extraction"
	StageMatching    Stage = "matching"
	StageFormatting  Stage = "formatting"
	StageCompilation Stage = "compilation"
)

// StatusForStage maps a stage to the in-progress status recorded while it runs.
func StatusForStage(s Stage) JobStatus {
	switch s {
	case StageExtraction:
		return JobStatusExtracting
	case StageMatching:
		return JobStatusMatching
	case StageFormatting:
		return JobStatusFormatting
	case StageCompilation:
		return JobStatusCompiling
	}
	return JobStatusPending
}
