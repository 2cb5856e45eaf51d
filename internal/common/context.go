package common

import "context"

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyJobID contextKey = "job_id"
)

// WithJobID adds the running job's ID to the context so downstream clients
// can attach it to their log records.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, ContextKeyJobID, jobID)
}

// JobIDFromContext extracts the job ID from context
func JobIDFromContext(ctx context.Context) string {
	if jobID, ok := ctx.Value(ContextKeyJobID).(string); ok {
		return jobID
	}
	return ""
}
