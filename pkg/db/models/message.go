package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one utterance in a post's conversation. Sender and receiver are
// the two authorized participants at send time. Ordering inside a conversation
// is (created_at, id) ascending.
type Message struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PostID     uuid.UUID `gorm:"column:post_id;type:uuid;not null;index:messages_post_id_idx"`
	SenderID   uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	ReceiverID uuid.UUID `gorm:"column:receiver_id;type:uuid;not null;index:messages_receiver_id_idx"`
	Body       string    `gorm:"column:body;type:text;not null"`
	IsRead     bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}
