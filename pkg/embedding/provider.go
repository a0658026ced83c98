package embedding

import "context"

// EmbeddingResponse carries a (unit-normalized) embedding vector.
type EmbeddingResponse struct {
	Values []float32
}

// EmbeddingProvider defines the interface for generating text embeddings.
// taskType is a provider hint ("retrieval_query", "retrieval_document");
// providers that do not distinguish tasks may ignore it.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

const (
	TaskTypeQuery    = "retrieval_query"
	TaskTypeDocument = "retrieval_document"
)
