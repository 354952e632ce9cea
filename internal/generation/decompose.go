package generation

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/series-publisher/internal/llm"
	"github.com/jonathan/series-publisher/internal/prompts"
	"github.com/jonathan/series-publisher/internal/types"
	schemafiles "github.com/jonathan/series-publisher/schemas"
)

// Bounds on the number of topics requested from the model.
const (
	MinTopics = 15
	MaxTopics = 30
)

var outlineSchema = llm.OutputSchema{
	Name: "TopicOutline",
	Fields: []llm.OutputField{
		{Name: "total", Type: "number", Description: "Number of topics"},
		{Name: "topics", Type: `[{"order_index": number, "title": "string", "brief": "string", "keywords": ["string"]}]`, Description: "Topics in reading order, order_index starting at 1", Required: true},
	},
}

// Decompose breaks a resource into an ordered list of topics.
func (g *Generator) Decompose(ctx context.Context, resourceName, resourceKind string) ([]types.TopicSpec, error) {
	if strings.TrimSpace(resourceName) == "" {
		return nil, &GenerationError{Stage: StagePlanning, Message: "resource name is required"}
	}

	instructions, err := prompts.Render("planning.json", "decompose-resource", map[string]string{
		"ResourceName": resourceName,
		"ResourceKind": resourceKind,
		"MinTopics":    strconv.Itoa(MinTopics),
		"MaxTopics":    strconv.Itoa(MaxTopics),
	})
	if err != nil {
		return nil, &GenerationError{Stage: StagePlanning, Message: "failed to load prompt", Cause: err}
	}

	schema := outlineSchema
	schema.Description = instructions

	var outline types.TopicOutline
	if err := g.complete(ctx, StagePlanning, llm.BuildJSONPrompt(schema, ""), llm.TierAdvanced, schemafiles.TopicOutline, &outline); err != nil {
		return nil, err
	}

	topics := normalizeOutline(outline.Topics)
	g.logger.Info("resource decomposed", "resource", resourceName, "topics", len(topics))
	return topics, nil
}

// normalizeOutline orders topics by order_index, keeping model order for ties.
func normalizeOutline(topics []types.TopicSpec) []types.TopicSpec {
	out := make([]types.TopicSpec, len(topics))
	copy(out, topics)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}
