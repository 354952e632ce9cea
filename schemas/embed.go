// Package schemas embeds the JSON Schemas that model output must satisfy.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	TopicOutline = "topic_outline.schema.json"
	Draft        = "draft.schema.json"
	Refinement   = "refinement.schema.json"
)
