// FILE: pkg/rag/executor/pipeline.go
// PURPOSE: Staged RAG answer pipeline. Orchestrates chat memory, retrieval
//          and generation into an ordered thinking-event stream, with direct
//          Q/A short-circuit and exactly-once memory persistence.

package executor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/dto"
	"ai-kbchat-be/internal/entity"
	"ai-kbchat-be/internal/pkg/logger"
	"ai-kbchat-be/pkg/llm"
	"ai-kbchat-be/pkg/rag/direct"
	"ai-kbchat-be/pkg/rag/memory"
	"ai-kbchat-be/pkg/rag/prompt"
	"ai-kbchat-be/pkg/rag/tools"
)

// Retriever is the retrieval-only collaborator the pipeline depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query *dto.QueryRequest) (*entity.RetrievalResult, error)
}

// HistoryStore is the chat-memory collaborator the pipeline depends on.
type HistoryStore interface {
	LoadHistory(ctx context.Context, sessionId string) ([]memory.StoredMessage, error)
	AppendTurn(ctx context.Context, sessionId, userMessage, assistantMessage string, temporary bool) error
}

// ChatLogRecorder receives an event for every answered turn. Implementations
// must not block the pipeline; publishing is fire-and-forget.
type ChatLogRecorder interface {
	Record(msg dto.ChatLogMessage)
}

// Pipeline is the staged answer orchestrator. One Pipeline serves all
// requests; all per-invocation state lives on the stack of StreamAnswer.
type Pipeline struct {
	retriever Retriever
	memory    HistoryStore
	registry  *llm.Registry
	tools     *tools.Registry
	chatLogs  ChatLogRecorder
	logger    logger.ILogger
}

func NewPipeline(
	retriever Retriever,
	memoryStore HistoryStore,
	registry *llm.Registry,
	toolRegistry *tools.Registry,
	chatLogs ChatLogRecorder,
	log logger.ILogger,
) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		memory:    memoryStore,
		registry:  registry,
		tools:     toolRegistry,
		chatLogs:  chatLogs,
		logger:    log,
	}
}

// StreamAnswer runs the full staged pipeline and returns the event channel.
// Stages arrive strictly ordered: start, history, retrieval, then either one
// answer_final (direct Q/A hit) or answer_delta fragments followed by
// answer_final. The channel is closed when the pipeline finishes, fails or
// the context is cancelled.
//
// The error return covers setup-time failures only (no provider for the
// requested model and no fallback available). Runtime failures terminate the
// stream instead; partial progress already emitted stays valid.
func (p *Pipeline) StreamAnswer(ctx context.Context, req *dto.AnswerRequest) (<-chan dto.ThinkingEvent, error) {
	provider, resolvedModel, err := p.registry.Resolve(req.ResolveModel())
	if err != nil {
		return nil, err
	}

	session := req.ResolveSession()

	profile := tools.ResolveProfile(req.ToolProfile)
	p.logger.Debug("RagPipeline", "Invocation accepted", map[string]interface{}{
		"session_id": session.Id,
		"temporary":  session.Temporary,
		"model":      resolvedModel,
		"profile":    string(profile),
		"tools":      p.tools.ToolNamesForProfile(profile),
	})

	// Both lookups start immediately and run concurrently. Each resolves
	// exactly once per invocation no matter how many stages consume it.
	historyLookup := newLookup(ctx, func(ctx context.Context) ([]memory.StoredMessage, error) {
		return p.memory.LoadHistory(ctx, session.Id)
	})
	retrievalLookup := newLookup(ctx, func(ctx context.Context) (*entity.RetrievalResult, error) {
		return p.retriever.Retrieve(ctx, req.ToQuery())
	})

	events := make(chan dto.ThinkingEvent, 8)
	go p.run(ctx, req, session, provider, resolvedModel, historyLookup, retrievalLookup, events)
	return events, nil
}

func (p *Pipeline) run(
	ctx context.Context,
	req *dto.AnswerRequest,
	session dto.ResolvedSession,
	provider llm.LLMProvider,
	resolvedModel string,
	historyLookup *lookup[[]memory.StoredMessage],
	retrievalLookup *lookup[*entity.RetrievalResult],
	events chan<- dto.ThinkingEvent,
) {
	defer close(events)

	var aggregate strings.Builder

	// Memory persistence must run exactly once per invocation, on every
	// exit path, even after client disconnect. The detached context keeps
	// the write alive when ctx is already cancelled.
	persistCtx := context.WithoutCancel(ctx)
	persisted := false
	persistTurn := func() {
		if persisted {
			return
		}
		persisted = true
		if err := p.memory.AppendTurn(persistCtx, session.Id, req.Question, aggregate.String(), session.Temporary); err != nil {
			p.logger.Error("RagPipeline", "Failed to persist conversation turn", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		}
	}
	defer persistTurn()

	emit := func(stage, message string, payload interface{}) bool {
		select {
		case events <- dto.ThinkingEvent{Stage: stage, Message: message, Payload: payload}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit(constant.StageStart, "Request received. Initializing thinking pipeline.", map[string]interface{}{
		"ts": time.Now().UnixMilli(),
	}) {
		return
	}

	history, err := historyLookup.Wait(ctx)
	if err != nil {
		p.logger.Error("RagPipeline", "History lookup failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return
	}
	if !emit(constant.StageHistory, "Loaded conversation history.", summarizeHistory(history)) {
		return
	}

	retrieval, err := retrievalLookup.Wait(ctx)
	if err != nil {
		p.logger.Error("RagPipeline", "Retrieval failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return
	}
	if !emit(constant.StageRetrieval, "Retrieved knowledge base documents.", summarizeRetrieval(retrieval.Documents)) {
		return
	}

	// Direct Q/A short-circuit: a high-confidence stored answer skips
	// generation entirely.
	if answer, ok := direct.TryDirectAnswer(retrieval.Documents, req.Question); ok {
		aggregate.WriteString(answer)
		emit(constant.StageAnswerFinal, "Answered directly from a stored Q/A pair.", answer)
		persistTurn()
		p.recordChatLog(req, session, resolvedModel, retrieval, "", answer)
		return
	}

	promptText := prompt.Build(req.Question, retrieval, memory.RenderHistory(history))

	deltas, err := provider.Stream(ctx, []llm.Message{
		{Role: "system", Content: constant.AnswerSystemPrompt},
		{Role: "user", Content: promptText},
	})
	if err != nil {
		p.logger.Error("RagPipeline", "Failed to start generation", map[string]interface{}{
			"session_id": session.Id,
			"model":      resolvedModel,
			"error":      err.Error(),
		})
		return
	}

	for delta := range deltas {
		if delta.Err != nil {
			// Tokens already streamed stay valid. Close with what we have.
			p.logger.Error("RagPipeline", "Generation stream failed", map[string]interface{}{
				"session_id": session.Id,
				"model":      resolvedModel,
				"error":      delta.Err.Error(),
			})
			break
		}
		if delta.Content == "" {
			continue
		}
		aggregate.WriteString(delta.Content)
		if !emit(constant.StageAnswerDelta, "", delta.Content) {
			return
		}
	}

	answer := aggregate.String()
	emit(constant.StageAnswerFinal, "Answer complete.", answer)
	persistTurn()
	p.recordChatLog(req, session, resolvedModel, retrieval, promptText, answer)
}

// Answer runs the same flow without streaming: retrieval and history load
// run concurrently, then a single blocking chat completion.
func (p *Pipeline) Answer(ctx context.Context, req *dto.AnswerRequest) (*dto.RagAnswer, error) {
	provider, resolvedModel, err := p.registry.Resolve(req.ResolveModel())
	if err != nil {
		return nil, err
	}

	session := req.ResolveSession()

	historyLookup := newLookup(ctx, func(ctx context.Context) ([]memory.StoredMessage, error) {
		return p.memory.LoadHistory(ctx, session.Id)
	})
	retrieval, err := p.retriever.Retrieve(ctx, req.ToQuery())
	if err != nil {
		return nil, err
	}
	history, err := historyLookup.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if answer, ok := direct.TryDirectAnswer(retrieval.Documents, req.Question); ok {
		p.finishTurn(ctx, req, session, resolvedModel, retrieval, "", answer)
		return &dto.RagAnswer{Answer: answer, Documents: retrieval.Documents}, nil
	}

	promptText := prompt.Build(req.Question, retrieval, memory.RenderHistory(history))
	answer, err := provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.AnswerSystemPrompt},
		{Role: "user", Content: promptText},
	})
	if err != nil {
		return nil, err
	}

	p.finishTurn(ctx, req, session, resolvedModel, retrieval, promptText, answer)
	return &dto.RagAnswer{Answer: answer, Documents: retrieval.Documents}, nil
}

func (p *Pipeline) finishTurn(
	ctx context.Context,
	req *dto.AnswerRequest,
	session dto.ResolvedSession,
	resolvedModel string,
	retrieval *entity.RetrievalResult,
	promptText, answer string,
) {
	if err := p.memory.AppendTurn(context.WithoutCancel(ctx), session.Id, req.Question, answer, session.Temporary); err != nil {
		p.logger.Error("RagPipeline", "Failed to persist conversation turn", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
	p.recordChatLog(req, session, resolvedModel, retrieval, promptText, answer)
}

func (p *Pipeline) recordChatLog(
	req *dto.AnswerRequest,
	session dto.ResolvedSession,
	resolvedModel string,
	retrieval *entity.RetrievalResult,
	promptText, answer string,
) {
	if p.chatLogs == nil {
		return
	}
	p.chatLogs.Record(dto.ChatLogMessage{
		SessionId: session.Id,
		Model:     resolvedModel,
		Question:  req.Question,
		Prompt:    promptText,
		Answer:    answer,
		Documents: serializeDocuments(retrieval.Documents),
	})
}

func serializeDocuments(docs []*entity.ScoredDocument) string {
	if len(docs) == 0 {
		return "[]"
	}
	payload, err := json.Marshal(docs)
	if err != nil {
		return "[]"
	}
	return string(payload)
}

// summarizeHistory converts stored messages into the history stage payload,
// capped to the last HistorySummaryLimit messages.
func summarizeHistory(messages []memory.StoredMessage) []dto.HistoryMessageDTO {
	start := len(messages) - constant.HistorySummaryLimit
	if start < 0 {
		start = 0
	}
	window := messages[start:]

	summary := make([]dto.HistoryMessageDTO, len(window))
	for i, msg := range window {
		summary[i] = dto.HistoryMessageDTO{Role: msg.Role, Content: msg.Content}
	}
	return summary
}

// summarizeRetrieval converts scored documents into the retrieval stage
// payload with truncated content previews.
func summarizeRetrieval(docs []*entity.ScoredDocument) []dto.RetrievedDocumentDTO {
	summary := make([]dto.RetrievedDocumentDTO, len(docs))
	for i, d := range docs {
		summary[i] = dto.RetrievedDocumentDTO{
			Id:      d.Document.ID,
			Type:    d.Document.DocType,
			Score:   d.Score,
			Preview: previewOf(d.Document.Content),
		}
	}
	return summary
}

func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= constant.RetrievalPreviewLimit {
		return content
	}
	return string(runes[:constant.RetrievalPreviewLimit]) + "..."
}
