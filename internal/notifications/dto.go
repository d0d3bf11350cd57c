package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/db/models"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
)

// NotificationDTO is the API-facing shape of a notification.
type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	PostID    *uuid.UUID             `json:"post_id,omitempty"`
	Type      enums.NotificationType `json:"type"`
	Message   string                 `json:"message"`
	Link      *string                `json:"link,omitempty"`
	Read      bool                   `json:"read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationListResult pairs a notification page with its next cursor.
type NotificationListResult struct {
	Notifications []NotificationDTO `json:"notifications"`
	NextCursor    *string           `json:"next_cursor,omitempty"`
}

func toNotificationDTO(n *models.Notification) *NotificationDTO {
	if n == nil {
		return nil
	}
	return &NotificationDTO{
		ID:        n.ID,
		PostID:    n.PostID,
		Type:      n.Type,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.ReadAt != nil,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
