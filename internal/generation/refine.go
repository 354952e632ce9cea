package generation

import (
	"context"
	"strings"

	"github.com/jonathan/series-publisher/internal/llm"
	"github.com/jonathan/series-publisher/internal/prompts"
	"github.com/jonathan/series-publisher/internal/types"
	schemafiles "github.com/jonathan/series-publisher/schemas"
)

var refinementSchema = llm.OutputSchema{
	Name: "Refinement",
	Fields: []llm.OutputField{
		{Name: "title", Description: "Polished title", Required: true},
		{Name: "body", Description: "Polished body", Required: true},
		{Name: "tags", Type: `["string"]`, Description: "Final tags without the # sign", Required: true},
		{Name: "optimization_notes", Description: "What was changed and why"},
	},
}

// Refine polishes a drafted post.
func (g *Generator) Refine(ctx context.Context, title, body string, tags []string) (*types.RefinedDraft, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &GenerationError{Stage: StageRefinement, Message: "draft body is required"}
	}

	instructions, err := prompts.Render("refinement.json", "refine-post", map[string]string{
		"Title": title,
		"Body":  body,
		"Tags":  strings.Join(tags, ", "),
	})
	if err != nil {
		return nil, &GenerationError{Stage: StageRefinement, Message: "failed to load prompt", Cause: err}
	}

	schema := refinementSchema
	schema.Description = instructions

	var refined types.RefinedDraft
	if err := g.complete(ctx, StageRefinement, llm.BuildJSONPrompt(schema, ""), llm.TierAdvanced, schemafiles.Refinement, &refined); err != nil {
		return nil, err
	}
	return &refined, nil
}
