package contract

import (
	"context"

	"ai-kbchat-be/internal/model"
)

// ChatLogRepository persists answered turns for auditing.
type ChatLogRepository interface {
	Create(ctx context.Context, chatLog *model.ChatLog) error
}
