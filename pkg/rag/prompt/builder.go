package prompt

import (
	"strings"

	"ai-kbchat-be/internal/entity"
)

// Build combines conversation history, retrieved KB context and the user
// question into a single prompt.
func Build(question string, retrieval *entity.RetrievalResult, historyText string) string {
	var sb strings.Builder
	sb.WriteString("Conversation History:\n")
	sb.WriteString(historyText)
	sb.WriteString("\n\n")
	sb.WriteString("Retrieved Context:\n")
	sb.WriteString(retrieval.Context)
	sb.WriteString("\n\n")
	sb.WriteString("User Question: ")
	sb.WriteString(question)
	sb.WriteString("\n")
	sb.WriteString("Answer with clear and concise. You can infer based on info.")
	return sb.String()
}
