package implementation

import (
	"context"

	"ai-kbchat-be/internal/entity"
	"ai-kbchat-be/internal/mapper"
	"ai-kbchat-be/internal/model"
	"ai-kbchat-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KbDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KbDocumentMapper
}

func NewKbDocumentRepository(db *gorm.DB) contract.KbDocumentRepository {
	return &KbDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewKbDocumentMapper(),
	}
}

// SearchNearest runs a cosine nearest-neighbor query.
// pgvector's <=> operator is cosine distance, so similarity is
// 1 - (embedding <=> query_vector); results come back score-descending.
func (r *KbDocumentRepositoryImpl) SearchNearest(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		model.KbDocument
		Score float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("kb_documents").
		Select("kb_documents.*, 1 - (embedding <=> ?) as score", queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredDocument, len(rows))
	for i, res := range rows {
		scored[i] = &entity.ScoredDocument{
			Document: r.mapper.ToEntity(&res.KbDocument),
			Score:    res.Score,
		}
	}
	return scored, nil
}
