package types

import "github.com/go-playground/validator/v10"

// ReferenceNote is a post returned by content discovery.
type ReferenceNote struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Author     string `json:"author"`
	Likes      int    `json:"likes"`
	Collects   int    `json:"collects"`
	Comments   int    `json:"comments"`
	URL        string `json:"url"`
}

// Engagement is the ranking score of the note.
func (n *ReferenceNote) Engagement() int {
	return n.Likes + n.Collects
}

// Draft is the structured result of draft generation.
type Draft struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags" validate:"dive,required"`
}

// Validate validates the Draft using the validator.
func (d *Draft) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}

// RefinedDraft is the structured result of refinement.
type RefinedDraft struct {
	Title             string   `json:"title" validate:"required"`
	Body              string   `json:"body" validate:"required"`
	Tags              []string `json:"tags" validate:"dive,required"`
	OptimizationNotes string   `json:"optimization_notes,omitempty"`
}

// Validate validates the RefinedDraft using the validator.
func (r *RefinedDraft) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// PublishRequest is what gets submitted to the publication service.
type PublishRequest struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"content" validate:"required"`
	Media []string `json:"images" validate:"min=1,dive,required"`
	Tags  []string `json:"tags,omitempty"`
}

// Validate validates the PublishRequest using the validator.
func (r *PublishRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// PublishResult is the outcome of a successful publication.
type PublishResult struct {
	PostID string `json:"post_id"`
}
