package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. Registration and login live
// in a separate auth service; this table is read-only here.
type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Email       string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	IsModerator bool      `gorm:"column:is_moderator;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
