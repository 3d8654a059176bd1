package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/domain/user"
)

const (
	AlertActive   = "active"
	AlertInactive = "inactive"
)

// LocationAlert is a live "I'm here" session from SenderID to ReceiverID. At
// most one ACTIVE row may exist per ordered pair; sending again supersedes
// the previous one inside the same transaction, and a partial unique index
// (see db.AutoMigrateAll) backs the invariant at the schema level.
type LocationAlert struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SenderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Sender     *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:SenderID;references:ID" json:"sender,omitempty"`

	Status    string     `gorm:"column:status;not null;default:'active';index" json:"status"`
	StartedAt time.Time  `gorm:"column:started_at;not null;default:now();index" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LocationAlert) TableName() string { return "location_alert" }
