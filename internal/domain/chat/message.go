package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/domain/user"
)

const MessageTypeText = "text"

type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender         *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:SenderID;references:ID" json:"sender,omitempty"`

	Content string `gorm:"column:content;type:text;not null" json:"content"`
	Type    string `gorm:"column:type;not null;default:'text'" json:"type"`
	IsRead  bool   `gorm:"column:is_read;not null;default:false;index" json:"is_read"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Message) TableName() string { return "message" }
