package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:notifications_user_id_idx"`
	PostID    *uuid.UUID             `gorm:"column:post_id;type:uuid"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	Link      *string                `gorm:"column:link;type:text"`
	ReadAt    *time.Time             `gorm:"column:read_at;type:timestamptz"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
