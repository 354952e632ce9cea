package pipeline

// ProgressEvent represents a progress update while a topic moves through its stages
type ProgressEvent struct {
	Stage    string `json:"stage"`
	Category string `json:"category"`
	Number   int    `json:"number,omitempty"`
	Total    int    `json:"total,omitempty"`
	Message  string `json:"message"`
	TopicID  string `json:"topic_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)
