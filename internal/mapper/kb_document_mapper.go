package mapper

import (
	"encoding/json"

	"ai-kbchat-be/internal/entity"
	"ai-kbchat-be/internal/model"
)

// KbDocumentMapper converts between the GORM model and the domain entity.
type KbDocumentMapper struct{}

func NewKbDocumentMapper() *KbDocumentMapper {
	return &KbDocumentMapper{}
}

func (m *KbDocumentMapper) ToEntity(doc *model.KbDocument) *entity.KbDocument {
	var metadata map[string]interface{}
	if len(doc.Metadata) > 0 {
		// Unparseable metadata is nulled out rather than failing the row.
		if err := json.Unmarshal(doc.Metadata, &metadata); err != nil {
			metadata = nil
		}
	}

	return &entity.KbDocument{
		ID:       doc.ID,
		DocType:  doc.DocType,
		Content:  doc.Content,
		Metadata: metadata,
	}
}
