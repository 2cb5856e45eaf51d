package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateExtractionResponse(t *testing.T) {
	schema := BuildExtractionJSONSchema()

	valid := []byte(`{
		"questions": [
			{"number": "1", "text": "What is 2+2?", "options": ["3", "4", "5", "6"], "unclear": false}
		]
	}`)
	require.NoError(t, ValidateJSONAgainstSchema(schema, valid))

	t.Run("missing questions field", func(t *testing.T) {
		assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{}`)))
	})

	t.Run("too few options", func(t *testing.T) {
		bad := []byte(`{"questions": [{"number": "1", "text": "q", "options": ["only one"]}]}`)
		assert.Error(t, ValidateJSONAgainstSchema(schema, bad))
	})

	t.Run("unexpected field", func(t *testing.T) {
		bad := []byte(`{"questions": [], "extra": true}`)
		assert.Error(t, ValidateJSONAgainstSchema(schema, bad))
	})

	t.Run("not json at all", func(t *testing.T) {
		assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`apologies, I cannot`)))
	})
}
