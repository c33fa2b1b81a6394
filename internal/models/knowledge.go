package models

import "time"

// KnowledgeEntry is one cached query/response pair. The integration layer
// never writes these itself; the chat engine populates them through the API.
type KnowledgeEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Context   string    `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
