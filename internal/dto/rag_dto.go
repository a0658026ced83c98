package dto

import (
	"strings"

	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/entity"

	"github.com/google/uuid"
)

// QueryRequest is a retrieval-only query.
// TopK and MinScore are optional overrides; zero TopK means "use default",
// a nil MinScore means "use default" (0 is a legal explicit value).
type QueryRequest struct {
	Question string   `json:"question" validate:"required"`
	TopK     int      `json:"topK"`
	MinScore *float64 `json:"minScore" validate:"omitempty,gte=0,lte=1"`
}

func (r *QueryRequest) ResolveTopK() int {
	if r.TopK <= 0 {
		return constant.DefaultTopK
	}
	return r.TopK
}

func (r *QueryRequest) ResolveMinScore() float64 {
	if r.MinScore == nil {
		return constant.DefaultMinScore
	}
	return *r.MinScore
}

// AnswerRequest is the payload for generating an answer with RAG context.
type AnswerRequest struct {
	Question    string   `json:"question" validate:"required"`
	SessionId   string   `json:"sessionId"`
	TopK        int      `json:"topK"`
	MinScore    *float64 `json:"minScore" validate:"omitempty,gte=0,lte=1"`
	Model       string   `json:"model"`
	ToolProfile string   `json:"toolProfile"`
}

// ResolvedSession is the session identity used for chat memory.
// Temporary sessions (no sessionId supplied) get a fresh synthetic id and
// the short memory TTL.
type ResolvedSession struct {
	Id        string
	Temporary bool
}

func (r *AnswerRequest) ResolveSession() ResolvedSession {
	if strings.TrimSpace(r.SessionId) == "" {
		return ResolvedSession{
			Id:        "temp-" + uuid.NewString(),
			Temporary: true,
		}
	}
	return ResolvedSession{Id: r.SessionId}
}

func (r *AnswerRequest) ResolveModel() string {
	if strings.TrimSpace(r.Model) == "" {
		return constant.DefaultModel
	}
	return strings.ToLower(r.Model)
}

// ToQuery converts a high-level answer request into a retrieval-only query.
func (r *AnswerRequest) ToQuery() *QueryRequest {
	return &QueryRequest{
		Question: r.Question,
		TopK:     r.TopK,
		MinScore: r.MinScore,
	}
}

// RagAnswer is the non-streaming answer response.
type RagAnswer struct {
	Answer    string                   `json:"answer"`
	Documents []*entity.ScoredDocument `json:"documents"`
}

// ThinkingEvent is a single pipeline stage event streamed to the client.
// Payload varies per stage:
//   - start:        map with a "ts" timestamp
//   - history:      []HistoryMessageDTO
//   - retrieval:    []RetrievedDocumentDTO
//   - answer_delta: string token fragment
//   - answer_final: string full aggregated answer
type ThinkingEvent struct {
	Stage   string      `json:"stage"`
	Message string      `json:"message"`
	Payload interface{} `json:"payload"`
}

// HistoryMessageDTO summarizes one stored chat message for the history stage.
type HistoryMessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RetrievedDocumentDTO summarizes one match for the retrieval stage.
type RetrievedDocumentDTO struct {
	Id      int64   `json:"id"`
	Type    string  `json:"type"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// ChatLogMessage is the event published after an answered turn so the
// consumer can persist it asynchronously.
type ChatLogMessage struct {
	SessionId string `json:"session_id"`
	Model     string `json:"model"`
	Question  string `json:"question"`
	Prompt    string `json:"prompt"`
	Answer    string `json:"answer"`
	Documents string `json:"documents"` // serialized []*entity.ScoredDocument
}
