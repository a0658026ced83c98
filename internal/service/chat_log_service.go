// FILE: internal/service/chat_log_service.go
// PURPOSE: Fire-and-forget publisher for answered-turn chat log events.

package service

import (
	"encoding/json"

	"ai-kbchat-be/internal/dto"
	"ai-kbchat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IChatLogService interface {
	Record(msg dto.ChatLogMessage)
}

type chatLogService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewChatLogService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IChatLogService {
	return &chatLogService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

// Record publishes the chat log event. Logging a turn is auxiliary to
// answering it, so failures are logged and swallowed.
func (s *chatLogService) Record(msg dto.ChatLogMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("ChatLog", "Failed to serialize chat log event", map[string]interface{}{
			"session_id": msg.SessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := s.pubSub.Publish(s.topicName, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.logger.Warn("ChatLog", "Failed to publish chat log event", map[string]interface{}{
			"session_id": msg.SessionId,
			"error":      err.Error(),
		})
	}
}
