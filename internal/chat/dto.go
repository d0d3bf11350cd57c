package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
)

// MessageDTO is the API-facing shape of a message.
type MessageDTO struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Body       string    `json:"body"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReadReceipt reports a mark-read sweep over a conversation.
type ReadReceipt struct {
	PostID   uuid.UUID `json:"post_id"`
	ReaderID uuid.UUID `json:"reader_id"`
	Count    int64     `json:"count"`
}

func toMessageDTO(m *models.Message) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:         m.ID,
		PostID:     m.PostID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}
