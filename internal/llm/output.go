// Package llm - output.go builds prompts that ask for a fixed JSON shape.
package llm

import (
	"fmt"
	"strings"
)

// OutputSchema describes the JSON object a prompt asks the model to return.
type OutputSchema struct {
	Name        string        // Schema name (e.g., "TopicOutline", "Draft")
	Description string        // Task instructions placed before the output shape
	Fields      []OutputField // Expected output fields
}

// OutputField defines a single field in the output object.
type OutputField struct {
	Name        string // JSON field name
	Type        string // Type hint, e.g. "string", "[\"string\"]"
	Description string // Description for the LLM
	Required    bool
}

// BuildJSONPrompt constructs the LLM prompt from schema and input text.
func BuildJSONPrompt(schema OutputSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Use exactly the field names above and no others.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	if inputText != "" {
		sb.WriteString("\nInput:\n\"\"\"\n")
		sb.WriteString(inputText)
		sb.WriteString("\n\"\"\"\n")
	}

	return sb.String()
}
