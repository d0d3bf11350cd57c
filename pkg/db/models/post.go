package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/enums"
)

// Post is a lost- or found-item report. Claims, messages, and notifications
// reference posts but never own them; deleting a post cascades over all three.
type Post struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID            uuid.UUID                `gorm:"column:owner_id;type:uuid;not null;index:posts_owner_id_idx"`
	Kind               enums.PostKind           `gorm:"column:kind;type:text;not null"`
	ItemName           string                   `gorm:"column:item_name;type:text;not null"`
	Description        string                   `gorm:"column:description;type:text;not null"`
	Location           string                   `gorm:"column:location;type:text"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:text;not null;default:'pending'"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
