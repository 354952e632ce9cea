package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemafiles "github.com/jonathan/series-publisher/schemas"
)

func TestValidateDocument_Draft(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{
			name: "valid draft",
			doc:  `{"title": "Morning pages", "body": "Write every day.", "tags": ["writing", "habits"]}`,
		},
		{
			name: "empty tags allowed",
			doc:  `{"title": "t", "body": "b", "tags": []}`,
		},
		{
			name:      "missing body",
			doc:       `{"title": "t", "tags": []}`,
			wantError: true,
		},
		{
			name:      "empty title",
			doc:       `{"title": "", "body": "b", "tags": []}`,
			wantError: true,
		},
		{
			name:      "wrong tag type",
			doc:       `{"title": "t", "body": "b", "tags": "writing"}`,
			wantError: true,
		},
		{
			name:      "unknown field",
			doc:       `{"title": "t", "body": "b", "tags": [], "mood": "happy"}`,
			wantError: true,
		},
		{
			name:      "not json",
			doc:       `here is your post: title t`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(schemafiles.Draft, tt.doc)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError, got %T", err)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateDocument_TopicOutline(t *testing.T) {
	valid := `{"total": 2, "topics": [
		{"order_index": 1, "title": "Why habits", "brief": "Small steps.", "keywords": ["habits"]},
		{"order_index": 2, "title": "Cues", "brief": "Make it obvious.", "keywords": []}
	]}`
	assert.NoError(t, ValidateDocument(schemafiles.TopicOutline, valid))

	err := ValidateDocument(schemafiles.TopicOutline, `{"total": 0, "topics": []}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topics")
}

func TestValidateDocument_Refinement(t *testing.T) {
	doc := `{"title": "t", "body": "b", "tags": ["a"], "optimization_notes": "shorter"}`
	assert.NoError(t, ValidateDocument(schemafiles.Refinement, doc))
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("nope.schema.json", `{}`)
	require.Error(t, err)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{}`)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidationError_Format(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "title", Message: "is required"}}}
	assert.Contains(t, err.Error(), "1. title: is required")
}
