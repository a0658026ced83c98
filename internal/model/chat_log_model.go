package model

import "time"

// ChatLog is the GORM model for the chat_logs audit table.
// Documents holds the scored retrieval matches serialized as JSON.
type ChatLog struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	SessionId string `gorm:"column:session_id;index"`
	Model     string
	Question  string `gorm:"type:text"`
	Prompt    string `gorm:"type:text"`
	Answer    string `gorm:"type:text"`
	Documents string `gorm:"type:text"`
	CreatedAt time.Time
}

func (ChatLog) TableName() string {
	return "chat_logs"
}
