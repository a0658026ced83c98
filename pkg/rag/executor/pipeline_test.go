package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/dto"
	"ai-kbchat-be/internal/entity"
	"ai-kbchat-be/internal/pkg/logger"
	"ai-kbchat-be/pkg/llm"
	"ai-kbchat-be/pkg/rag/memory"
	"ai-kbchat-be/pkg/rag/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	result *entity.RetrievalResult
	calls  int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query *dto.QueryRequest) (*entity.RetrievalResult, error) {
	f.calls++
	return f.result, nil
}

type appendedTurn struct {
	sessionId string
	user      string
	assistant string
	temporary bool
}

type fakeHistoryStore struct {
	history    []memory.StoredMessage
	loadCalls  int
	appends    []appendedTurn
	appendDone chan struct{}
	appendOnce bool
}

func newFakeHistoryStore(history []memory.StoredMessage) *fakeHistoryStore {
	return &fakeHistoryStore{
		history:    history,
		appendDone: make(chan struct{}),
	}
}

func (f *fakeHistoryStore) LoadHistory(ctx context.Context, sessionId string) ([]memory.StoredMessage, error) {
	f.loadCalls++
	return f.history, nil
}

func (f *fakeHistoryStore) AppendTurn(ctx context.Context, sessionId, userMessage, assistantMessage string, temporary bool) error {
	f.appends = append(f.appends, appendedTurn{
		sessionId: sessionId,
		user:      userMessage,
		assistant: assistantMessage,
		temporary: temporary,
	})
	if !f.appendOnce {
		f.appendOnce = true
		close(f.appendDone)
	}
	return nil
}

type fakeRecorder struct {
	records []dto.ChatLogMessage
}

func (f *fakeRecorder) Record(msg dto.ChatLogMessage) {
	f.records = append(f.records, msg)
}

// scriptedProvider streams a fixed token sequence.
type scriptedProvider struct {
	deltas      []string
	chatAnswer  string
	streamCalls int
}

func (s *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.chatAnswer, nil
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.chatAnswer, nil
}

func (s *scriptedProvider) Stream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.StreamDelta, error) {
	s.streamCalls++
	ch := make(chan llm.StreamDelta, len(s.deltas))
	for _, d := range s.deltas {
		ch <- llm.StreamDelta{Content: d}
	}
	close(ch)
	return ch, nil
}

func kbMatch(id int64, docType, content string, score float64) *entity.ScoredDocument {
	return &entity.ScoredDocument{
		Document: &entity.KbDocument{ID: id, DocType: docType, Content: content},
		Score:    score,
	}
}

func retrievalOf(docs ...*entity.ScoredDocument) *entity.RetrievalResult {
	return &entity.RetrievalResult{
		Question:  "test question",
		Documents: docs,
		Context:   "test context",
	}
}

func newTestPipeline(retriever *fakeRetriever, store *fakeHistoryStore, provider llm.LLMProvider, recorder *fakeRecorder) *Pipeline {
	registry := llm.NewRegistry("deepseek")
	if provider != nil {
		registry.Register("deepseek", provider)
	}

	return NewPipeline(
		retriever,
		store,
		registry,
		tools.NewRegistry(),
		recorder,
		logger.NewNopLogger(),
	)
}

func collect(t *testing.T, events <-chan dto.ThinkingEvent) []dto.ThinkingEvent {
	t.Helper()

	var collected []dto.ThinkingEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %d so far", len(collected))
		}
	}
}

func stagesOf(events []dto.ThinkingEvent) []string {
	stages := make([]string, len(events))
	for i, ev := range events {
		stages[i] = ev.Stage
	}
	return stages
}

func TestStreamAnswerGenerationPath(t *testing.T) {
	retriever := &fakeRetriever{result: retrievalOf(
		kbMatch(1, "faq", "Reset from the login page.", 0.90),
	)}
	store := newFakeHistoryStore([]memory.StoredMessage{
		{Role: "user", Content: "hi", Timestamp: 1},
		{Role: "assistant", Content: "hello", Timestamp: 1},
	})
	provider := &scriptedProvider{deltas: []string{"Hello ", "world"}}
	recorder := &fakeRecorder{}
	p := newTestPipeline(retriever, store, provider, recorder)

	events, err := p.StreamAnswer(context.Background(), &dto.AnswerRequest{
		Question:  "how to reset",
		SessionId: "s-1",
	})
	require.NoError(t, err)

	collected := collect(t, events)
	assert.Equal(t, []string{
		constant.StageStart,
		constant.StageHistory,
		constant.StageRetrieval,
		constant.StageAnswerDelta,
		constant.StageAnswerDelta,
		constant.StageAnswerFinal,
	}, stagesOf(collected))

	historyPayload, ok := collected[1].Payload.([]dto.HistoryMessageDTO)
	require.True(t, ok)
	assert.Equal(t, []dto.HistoryMessageDTO{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}, historyPayload)

	retrievalPayload, ok := collected[2].Payload.([]dto.RetrievedDocumentDTO)
	require.True(t, ok)
	require.Len(t, retrievalPayload, 1)
	assert.Equal(t, int64(1), retrievalPayload[0].Id)
	assert.Equal(t, "faq", retrievalPayload[0].Type)
	assert.Equal(t, 0.90, retrievalPayload[0].Score)

	assert.Equal(t, "Hello ", collected[3].Payload)
	assert.Equal(t, "Hello world", collected[5].Payload)

	// Channel closure means the invocation is fully done.
	require.Len(t, store.appends, 1)
	assert.Equal(t, "s-1", store.appends[0].sessionId)
	assert.Equal(t, "how to reset", store.appends[0].user)
	assert.Equal(t, "Hello world", store.appends[0].assistant)
	assert.False(t, store.appends[0].temporary)

	require.Len(t, recorder.records, 1)
	assert.Equal(t, "Hello world", recorder.records[0].Answer)
	assert.Contains(t, recorder.records[0].Prompt, "User Question: how to reset")
	assert.Contains(t, recorder.records[0].Prompt, "user: hi")
}

func TestStreamAnswerDirectQaShortCircuit(t *testing.T) {
	retriever := &fakeRetriever{result: retrievalOf(
		kbMatch(1, "chat_qa", "【问题】X是什么【回答】X is Y.", 0.80),
		kbMatch(2, "faq", "unrelated", 0.70),
	)}
	store := newFakeHistoryStore(nil)
	provider := &scriptedProvider{deltas: []string{"should not stream"}}
	recorder := &fakeRecorder{}
	p := newTestPipeline(retriever, store, provider, recorder)

	events, err := p.StreamAnswer(context.Background(), &dto.AnswerRequest{
		Question:  "what is X",
		SessionId: "s-2",
	})
	require.NoError(t, err)

	collected := collect(t, events)
	assert.Equal(t, []string{
		constant.StageStart,
		constant.StageHistory,
		constant.StageRetrieval,
		constant.StageAnswerFinal,
	}, stagesOf(collected))

	assert.Equal(t, "X is Y.", collected[3].Payload)
	assert.Equal(t, 0, provider.streamCalls)

	require.Len(t, store.appends, 1)
	assert.Equal(t, "X is Y.", store.appends[0].assistant)

	// No prompt is built on the direct path.
	require.Len(t, recorder.records, 1)
	assert.Equal(t, "", recorder.records[0].Prompt)
}

func TestStreamAnswerLookupsResolveOnce(t *testing.T) {
	retriever := &fakeRetriever{result: retrievalOf(
		kbMatch(1, "faq", "content", 0.90),
	)}
	store := newFakeHistoryStore(nil)
	p := newTestPipeline(retriever, store, &scriptedProvider{deltas: []string{"a"}}, &fakeRecorder{})

	events, err := p.StreamAnswer(context.Background(), &dto.AnswerRequest{
		Question:  "q",
		SessionId: "s-3",
	})
	require.NoError(t, err)
	collect(t, events)

	assert.Equal(t, 1, store.loadCalls)
	assert.Equal(t, 1, retriever.calls)
}

func TestStreamAnswerTemporarySession(t *testing.T) {
	retriever := &fakeRetriever{result: retrievalOf(
		kbMatch(1, "faq", "content", 0.90),
	)}
	store := newFakeHistoryStore(nil)
	p := newTestPipeline(retriever, store, &scriptedProvider{deltas: []string{"a"}}, &fakeRecorder{})

	events, err := p.StreamAnswer(context.Background(), &dto.AnswerRequest{Question: "q"})
	require.NoError(t, err)
	collect(t, events)

	require.Len(t, store.appends, 1)
	assert.True(t, store.appends[0].temporary)
	assert.True(t, strings.HasPrefix(store.appends[0].sessionId, "temp-"))
}

func TestStreamAnswerPersistsOnCancellation(t *testing.T) {
	retriever := &fakeRetriever{result: retrievalOf(
		kbMatch(1, "faq", "content", 0.90),
	)}
	store := newFakeHistoryStore(nil)
	p := newTestPipeline(retriever, store, &scriptedProvider{deltas: []string{"a", "b"}}, &fakeRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	events, err := p.StreamAnswer(ctx, &dto.AnswerRequest{Question: "q", SessionId: "s-4"})
	require.NoError(t, err)

	// Consume the first event, then walk away like a disconnected client.
	<-events
	cancel()

	select {
	case <-store.appendDone:
	case <-time.After(5 * time.Second):
		t.Fatal("turn was not persisted after cancellation")
	}
	require.Len(t, store.appends, 1)
	assert.Equal(t, "s-4", store.appends[0].sessionId)
}

func TestStreamAnswerEmptyRegistry(t *testing.T) {
	p := newTestPipeline(&fakeRetriever{result: retrievalOf()}, newFakeHistoryStore(nil), nil, &fakeRecorder{})

	_, err := p.StreamAnswer(context.Background(), &dto.AnswerRequest{Question: "q"})
	assert.Error(t, err)
}

func TestAnswerNonStreaming(t *testing.T) {
	retriever := &fakeRetriever{result: retrievalOf(
		kbMatch(1, "faq", "content", 0.90),
	)}
	store := newFakeHistoryStore(nil)
	recorder := &fakeRecorder{}
	p := newTestPipeline(retriever, store, &scriptedProvider{chatAnswer: "full answer"}, recorder)

	res, err := p.Answer(context.Background(), &dto.AnswerRequest{
		Question:  "q",
		SessionId: "s-5",
	})
	require.NoError(t, err)

	assert.Equal(t, "full answer", res.Answer)
	require.Len(t, res.Documents, 1)

	require.Len(t, store.appends, 1)
	assert.Equal(t, "full answer", store.appends[0].assistant)
	require.Len(t, recorder.records, 1)
	assert.Equal(t, "s-5", recorder.records[0].SessionId)
}

func TestSummarizeRetrievalTruncatesPreview(t *testing.T) {
	long := strings.Repeat("x", constant.RetrievalPreviewLimit+50)
	summary := summarizeRetrieval([]*entity.ScoredDocument{
		kbMatch(1, "faq", long, 0.9),
	})

	require.Len(t, summary, 1)
	assert.Len(t, []rune(summary[0].Preview), constant.RetrievalPreviewLimit+3)
	assert.True(t, strings.HasSuffix(summary[0].Preview, "..."))
}
