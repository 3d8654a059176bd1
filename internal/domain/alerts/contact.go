package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/domain/user"
)

// Contact is a directed edge: UserID may send location alerts to
// ContactUserID. The reverse direction is a separate row.
type Contact struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_contact_pair,unique,priority:1" json:"user_id"`
	ContactUserID uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_contact_pair,unique,priority:2" json:"contact_user_id"`
	ContactUser   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContactUserID;references:ID" json:"contact_user,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Contact) TableName() string { return "contact" }
