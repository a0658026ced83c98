package entity

// KbDocument is a knowledge base passage as stored in the vector index.
// Metadata is free-form JSON produced at ingestion time (e.g. fullText,
// preview, source).
type KbDocument struct {
	ID       int64
	DocType  string
	Content  string
	Metadata map[string]interface{}
}

// ScoredDocument pairs a document with its cosine similarity to the query
// vector (higher = better). Produced by the vector repository, consumed
// read-only by filtering and context formatting.
type ScoredDocument struct {
	Document *KbDocument `json:"document"`
	Score    float64     `json:"score"`
}

// RetrievalResult is the output of a retrieval-only query:
// the original question, the filtered scored documents (score-descending)
// and a formatted context string ready for prompt injection.
type RetrievalResult struct {
	Question  string            `json:"question"`
	Documents []*ScoredDocument `json:"documents"`
	Context   string            `json:"context"`
}
