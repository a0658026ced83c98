// FILE: internal/constant/rag_constant.go
// PURPOSE: Shared constants for the RAG retrieval + answer pipeline

package constant

const (
	// --- Retrieval defaults ---

	// DefaultTopK is used when the client does not specify topK.
	DefaultTopK = 3

	// DefaultMinScore is the requested minimum similarity preference.
	// It is an input preference, not a hard cutoff: the filter applies
	// dynamic adaptation based on the actual score distribution.
	DefaultMinScore = 0.60

	// TopScoreMargin is the distance from the top score used for dynamic
	// thresholding (topScore 0.82 + margin 0.10 -> threshold ~0.72).
	TopScoreMargin = 0.10

	// AbsoluteFloorScore is the lower bound when all scores are low.
	// We never drop below this to avoid extremely noisy results.
	AbsoluteFloorScore = 0.25

	// --- Direct Q/A answer gate ---

	QaDirectMinScore = 0.72
	QaDirectMargin   = 0.08

	// DocTypeChatQa marks documents ingested as explicit Q/A pairs.
	DocTypeChatQa = "chat_qa"

	// --- Sentinels ---

	NoResultsContext    = "(no results)"
	NoPriorConversation = "(no prior conversation)"

	// --- Stage names for the thinking event stream ---

	StageStart       = "start"
	StageHistory     = "history"
	StageRetrieval   = "retrieval"
	StageAnswerDelta = "answer_delta"
	StageAnswerFinal = "answer_final"

	// RetrievalPreviewLimit caps per-document content previews in the
	// retrieval stage payload.
	RetrievalPreviewLimit = 200

	// HistorySummaryLimit caps how many messages the history stage payload
	// carries (last 3 turns, user + assistant).
	HistorySummaryLimit = 6

	// --- Model selection ---

	DefaultModel = "deepseek"

	// --- Event bus topics ---

	ChatLogTopicName = "RECORD_CHAT_LOG"

	// --- System prompts ---

	AnswerSystemPrompt = "You are a helpful knowledge base assistant. " +
		"Answer succinctly in the user's language, " +
		"using only the provided context and chat history."
)
