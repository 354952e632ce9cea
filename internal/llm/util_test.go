package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced outline",
			input: "```json\n{\"topics\": [{\"title\": \"Habit loops\", \"order_index\": 1}]}\n```",
			want:  `{"topics": [{"title": "Habit loops", "order_index": 1}]}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"title\": \"Cue\"}\n```",
			want:  `{"title": "Cue"}`,
		},
		{
			name:  "fence with other language tag",
			input: "```js\n{\"title\": \"Cue\"}\n```",
			want:  `{"title": "Cue"}`,
		},
		{
			name:  "fence with object on first line",
			input: "```{\"title\": \"Cue\"}```",
			want:  `{"title": "Cue"}`,
		},
		{
			name:  "prose before draft",
			input: "Here is the post for chapter two:\n\n{\"title\": \"Craving\", \"body\": \"...\", \"tags\": [\"books\"]}",
			want:  `{"title": "Craving", "body": "...", "tags": ["books"]}`,
		},
		{
			name:  "prose after refinement",
			input: "{\"title\": \"Response\", \"optimization_notes\": \"shorter hook\"}\n\nHope this helps!",
			want:  `{"title": "Response", "optimization_notes": "shorter hook"}`,
		},
		{
			name:  "array of keywords",
			input: "Keywords:\n[\"atomic habits\", \"reading notes\"]",
			want:  `["atomic habits", "reading notes"]`,
		},
		{
			name:  "braces and escapes inside strings",
			input: "Result: {\"body\": \"use {name} and \\\"quotes\\\"\"}",
			want:  `{"body": "use {name} and \"quotes\""}`,
		},
		{
			name:  "no json",
			input: "  sorry, I cannot help  ",
			want:  "sorry, I cannot help",
		},
		{
			name:  "truncated object returned as is",
			input: `{"title": "cut off`,
			want:  `{"title": "cut off`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		open, close byte
		want        string
	}{
		{"nested object", `{"a": {"b": [1, 2]}} tail`, '{', '}', `{"a": {"b": [1, 2]}}`},
		{"array of objects", `[{"id": 1}, {"id": 2}] tail`, '[', ']', `[{"id": 1}, {"id": 2}]`},
		{"closing brace inside string", `{"s": "}"}`, '{', '}', `{"s": "}"}`},
		{"wrong opener", `not json`, '{', '}', ""},
		{"empty", "", '[', ']', ""},
		{"unterminated", `[1, 2`, '[', ']', ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBalanced(tt.input, tt.open, tt.close))
		})
	}

	assert.Equal(t, `{"k": 1}`, extractJSONObject(`{"k": 1}x`))
	assert.Equal(t, `[1]`, extractJSONArray(`[1]x`))
}
