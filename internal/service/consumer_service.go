// FILE: internal/service/consumer_service.go
// PURPOSE: Background consumer persisting chat log events to Postgres.

package service

import (
	"context"
	"encoding/json"

	"ai-kbchat-be/internal/dto"
	"ai-kbchat-be/internal/model"
	"ai-kbchat-be/internal/pkg/logger"
	"ai-kbchat-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	chatLogRepo contract.ChatLogRepository
	logger      logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chatLogRepo contract.ChatLogRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		chatLogRepo: chatLogRepo,
		logger:      log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatLogMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Warn("ChatLogConsumer", "Dropping malformed chat log event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack invalid messages to prevent infinite retry.
		msg.Ack()
		return
	}

	record := &model.ChatLog{
		SessionId: payload.SessionId,
		Model:     payload.Model,
		Question:  payload.Question,
		Prompt:    payload.Prompt,
		Answer:    payload.Answer,
		Documents: payload.Documents,
	}

	if err := cs.chatLogRepo.Create(ctx, record); err != nil {
		cs.logger.Error("ChatLogConsumer", "Failed to persist chat log", map[string]interface{}{
			"message_id": msg.UUID,
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		// Nack for retriable errors.
		msg.Nack()
		return
	}

	cs.logger.Debug("ChatLogConsumer", "Chat log persisted", map[string]interface{}{
		"session_id": payload.SessionId,
	})
	msg.Ack()
}
