package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/series-publisher/internal/llm"
	"github.com/jonathan/series-publisher/internal/prompts"
	"github.com/jonathan/series-publisher/internal/types"
	schemafiles "github.com/jonathan/series-publisher/schemas"
)

// maxExcerptInPrompt bounds how much of each reference excerpt is sent to the model.
const maxExcerptInPrompt = 300

var draftSchema = llm.OutputSchema{
	Name: "Draft",
	Fields: []llm.OutputField{
		{Name: "title", Description: "Post title", Required: true},
		{Name: "body", Description: "Post body", Required: true},
		{Name: "tags", Type: `["string"]`, Description: "Topic tags without the # sign", Required: true},
	},
}

// Draft writes a post for a topic, using references for tone and structure.
func (g *Generator) Draft(ctx context.Context, title, brief string, refs []types.ReferenceNote) (*types.Draft, error) {
	if strings.TrimSpace(brief) == "" {
		return nil, &GenerationError{Stage: StageDrafting, Message: "topic brief is required"}
	}

	instructions, err := prompts.Render("drafting.json", "draft-post", map[string]string{
		"Title":      title,
		"Brief":      brief,
		"References": formatReferences(refs),
	})
	if err != nil {
		return nil, &GenerationError{Stage: StageDrafting, Message: "failed to load prompt", Cause: err}
	}

	schema := draftSchema
	schema.Description = instructions

	var draft types.Draft
	if err := g.complete(ctx, StageDrafting, llm.BuildJSONPrompt(schema, ""), llm.TierStandard, schemafiles.Draft, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func formatReferences(refs []types.ReferenceNote) string {
	if len(refs) == 0 {
		return prompts.MustGet("drafting.json", "no-references")
	}
	var sb strings.Builder
	for i, ref := range refs {
		excerpt := []rune(ref.Excerpt)
		if len(excerpt) > maxExcerptInPrompt {
			excerpt = excerpt[:maxExcerptInPrompt]
		}
		fmt.Fprintf(&sb, "%d. %s (%d likes, %d collects)\n   %s\n", i+1, ref.Title, ref.Likes, ref.Collects, string(excerpt))
	}
	return strings.TrimRight(sb.String(), "\n")
}
