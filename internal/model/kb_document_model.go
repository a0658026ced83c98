package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// KbDocument is the GORM model for the kb_documents table.
// Embedding uses pgvector; Metadata is a JSONB column.
type KbDocument struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	DocType   string          `gorm:"column:doc_type;index"`
	Content   string          `gorm:"type:text"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (KbDocument) TableName() string {
	return "kb_documents"
}
