// Package types provides the structured values exchanged with generation, discovery and publishing services.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// TopicSpec is one topic proposed by resource decomposition.
type TopicSpec struct {
	OrderIndex int      `json:"order_index,omitempty" validate:"gte=0"`
	Title      string   `json:"title" validate:"required"`
	Brief      string   `json:"brief" validate:"required"`
	Keywords   []string `json:"keywords" validate:"dive,required"`
}

// TopicOutline is the decomposition of a resource into ordered topics.
type TopicOutline struct {
	Total  int         `json:"total,omitempty"`
	Topics []TopicSpec `json:"topics" validate:"required,min=1,dive"`
}

// Validate validates the TopicOutline using the validator.
func (o *TopicOutline) Validate() error {
	validate := validator.New()
	return validate.Struct(o)
}

// Normalize trims titles, briefs and keywords, and drops blank keywords.
func (o *TopicOutline) Normalize() {
	for i := range o.Topics {
		t := &o.Topics[i]
		t.Title = strings.TrimSpace(t.Title)
		t.Brief = strings.TrimSpace(t.Brief)
		keywords := make([]string, 0, len(t.Keywords))
		for _, k := range t.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		t.Keywords = keywords
	}
}
