package contract

import (
	"context"

	"ai-kbchat-be/internal/entity"
)

// KbDocumentRepository is the vector index surface the retrieval pipeline
// depends on. SearchNearest returns up to limit documents ordered by
// similarity descending (may return fewer).
type KbDocumentRepository interface {
	SearchNearest(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredDocument, error)
}
