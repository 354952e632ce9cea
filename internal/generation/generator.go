// Package generation turns topics into structured outlines, drafts and refined posts using an LLM.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jonathan/series-publisher/internal/llm"
	"github.com/jonathan/series-publisher/internal/schemas"
)

// Generator implements decomposition, drafting and refinement on top of an llm.Client.
type Generator struct {
	client llm.Client
	logger *slog.Logger
}

// New creates a Generator. A nil logger falls back to slog.Default().
func New(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

type validatable interface {
	Validate() error
}

// normalizer is implemented by outputs that tidy model quirks before validation.
type normalizer interface {
	Normalize()
}

// complete sends prompt to the model and strictly decodes the answer into out.
func (g *Generator) complete(ctx context.Context, stage, prompt string, tier llm.ModelTier, schemaName string, out validatable) error {
	raw, err := g.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return &GenerationError{Stage: stage, Message: "model call failed", Cause: err}
	}
	g.logger.Debug("model responded", "stage", stage, "model", g.client.GetModel(tier), "bytes", len(raw))
	return decodeStrict(stage, raw, schemaName, out)
}

// decodeStrict validates raw against the named schema, decodes it rejecting
// unknown fields, normalizes it when supported, then applies struct validation.
func decodeStrict(stage, raw, schemaName string, out validatable) error {
	doc := llm.CleanJSONBlock(raw)
	if doc == "" {
		return &GenerationError{Stage: stage, Message: "empty response"}
	}

	if err := schemas.ValidateDocument(schemaName, doc); err != nil {
		return &GenerationError{Stage: stage, Message: "response does not match schema", Cause: err}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &GenerationError{Stage: stage, Message: "failed to decode response", Cause: err}
	}

	if n, ok := out.(normalizer); ok {
		n.Normalize()
	}
	if err := out.Validate(); err != nil {
		return &GenerationError{Stage: stage, Message: "response failed validation", Cause: err}
	}
	return nil
}
