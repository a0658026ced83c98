package implementation

import (
	"context"

	"ai-kbchat-be/internal/model"
	"ai-kbchat-be/internal/repository/contract"

	"gorm.io/gorm"
)

type ChatLogRepositoryImpl struct {
	db *gorm.DB
}

func NewChatLogRepository(db *gorm.DB) contract.ChatLogRepository {
	return &ChatLogRepositoryImpl{db: db}
}

func (r *ChatLogRepositoryImpl) Create(ctx context.Context, chatLog *model.ChatLog) error {
	return r.db.WithContext(ctx).Create(chatLog).Error
}
