package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/domain/user"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationCanceled = "canceled"
)

// ChatInvitation is the handshake that precedes a conversation. The ordered
// (sender, receiver) pair is unique: re-inviting after a decline or cancel
// reuses the same row, resetting it to pending.
type ChatInvitation struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SenderID   uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_chat_invitation_pair,unique,priority:1" json:"sender_id"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_chat_invitation_pair,unique,priority:2" json:"receiver_id"`
	Sender     *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:SenderID;references:ID" json:"sender,omitempty"`
	Receiver   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:ReceiverID;references:ID" json:"receiver,omitempty"`

	Status string `gorm:"column:status;not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (ChatInvitation) TableName() string { return "chat_invitation" }
