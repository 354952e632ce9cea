package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("drafting.json", "draft-post")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Brief}}")

	_, err = Get("nonexistent.json", "draft-post")
	assert.ErrorContains(t, err, "failed to read prompt file")

	_, err = Get("drafting.json", "nonexistent-key")
	assert.ErrorContains(t, err, `prompt key "nonexistent-key" not found`)
}

func TestMustGet(t *testing.T) {
	assert.NotEmpty(t, MustGet("drafting.json", "no-references"))
	assert.Panics(t, func() { MustGet("drafting.json", "nonexistent-key") })
}

func TestRender(t *testing.T) {
	out, err := Render("refinement.json", "refine-post", map[string]string{
		"Title": "Tiny habits",
		"Body":  "Start with two minutes.",
		"Tags":  "habits, books",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Title: Tiny habits")
	assert.Contains(t, out, "Tags: habits, books")
	assert.NotContains(t, out, "{{.")
}

func TestRender_MissingValues(t *testing.T) {
	_, err := Render("refinement.json", "refine-post", map[string]string{"Title": "Tiny habits"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Body")
	assert.Contains(t, err.Error(), "Tags")
}

func TestRender_ValueContainingPlaceholderSyntax(t *testing.T) {
	out, err := Render("refinement.json", "refine-post", map[string]string{
		"Title": "{{.Body}}",
		"Body":  "body",
		"Tags":  "",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Title: {{.Body}}")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"ResourceKind", "ResourceName", "MinTopics", "MaxTopics"},
		Placeholders(MustGet("planning.json", "decompose-resource")))
	assert.Empty(t, Placeholders("no placeholders here"))
}

func TestEveryPromptFileParses(t *testing.T) {
	files := map[string][]string{
		"planning.json":   {"decompose-resource"},
		"drafting.json":   {"draft-post", "no-references"},
		"refinement.json": {"refine-post"},
	}
	for file, want := range files {
		keys, err := Keys(file)
		require.NoError(t, err, file)
		assert.Equal(t, want, keys, file)
	}
}

func TestLoadCachesParsedFile(t *testing.T) {
	first, err := load("drafting.json")
	require.NoError(t, err)

	cacheMu.RLock()
	cached, ok := cache["drafting.json"]
	cacheMu.RUnlock()
	require.True(t, ok)
	assert.Equal(t, first, cached)
}
