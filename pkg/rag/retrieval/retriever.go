// FILE: pkg/rag/retrieval/retriever.go
// PURPOSE: Retrieval-only RAG coordinator: embed the question, query the
//          vector index, filter dynamically and build LLM-ready context.
//          This package does NOT call any chat/LLM APIs.

package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/dto"
	"ai-kbchat-be/internal/entity"
	"ai-kbchat-be/internal/pkg/logger"
	"ai-kbchat-be/internal/repository/contract"
	"ai-kbchat-be/pkg/embedding"
	"ai-kbchat-be/pkg/rag"

	"github.com/patrickmn/go-cache"
)

// Query-embedding cache: repeated questions (retries, paging, the same
// question re-asked in a session) skip the embedding round trip.
const (
	embeddingCacheTTL     = 5 * time.Minute
	embeddingCacheCleanup = 10 * time.Minute
)

type Retriever struct {
	embedder embedding.EmbeddingProvider
	kbRepo   contract.KbDocumentRepository
	embCache *cache.Cache
	logger   logger.ILogger
}

func NewRetriever(embedder embedding.EmbeddingProvider, kbRepo contract.KbDocumentRepository, log logger.ILogger) *Retriever {
	return &Retriever{
		embedder: embedder,
		kbRepo:   kbRepo,
		embCache: cache.New(embeddingCacheTTL, embeddingCacheCleanup),
		logger:   log,
	}
}

// Retrieve runs the retrieval-only flow:
//  1. embed the question (cached)
//  2. query the vector index for topK nearest documents
//  3. filter by dynamic minimum score
//  4. build the context string
//
// No matches yields the "(no results)" sentinel context and an empty list.
func (r *Retriever) Retrieve(ctx context.Context, query *dto.QueryRequest) (*entity.RetrievalResult, error) {
	question := query.Question

	vector, err := r.embedQuestion(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	retrieved, err := r.kbRepo.SearchNearest(ctx, vector, query.ResolveTopK())
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if len(retrieved) == 0 {
		r.logger.Debug("Retrieval", "No documents found", map[string]interface{}{
			"question": question,
		})
		return &entity.RetrievalResult{
			Question: question,
			Context:  constant.NoResultsContext,
		}, nil
	}

	filtered := rag.FilterByDynamicScore(retrieved, query.ResolveMinScore())

	r.logger.Debug("Retrieval", "Documents filtered", map[string]interface{}{
		"retrieved": len(retrieved),
		"kept":      len(filtered),
	})

	return &entity.RetrievalResult{
		Question:  question,
		Documents: filtered,
		Context:   BuildContext(filtered),
	}, nil
}

func (r *Retriever) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	if cached, found := r.embCache.Get(question); found {
		return cached.([]float32), nil
	}

	resp, err := r.embedder.Generate(ctx, question, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}

	r.embCache.Set(question, resp.Values, cache.DefaultExpiration)
	return resp.Values, nil
}

// BuildContext converts scored documents into a single context string for
// system-prompt injection:
//
//	【docId=42, type=faq, score=0.873】
//	document content...
//
//	【docId=17, type=chat_qa, score=0.751】
//	document content...
func BuildContext(docs []*entity.ScoredDocument) string {
	if len(docs) == 0 {
		return constant.NoResultsContext
	}

	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = fmt.Sprintf("【docId=%d, type=%s, score=%.3f】\n%s",
			d.Document.ID, d.Document.DocType, d.Score, d.Document.Content)
	}
	return strings.Join(blocks, "\n\n")
}
