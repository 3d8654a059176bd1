package chat

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/domain/user"
)

// Conversation holds exactly one row per unordered user pair. User1ID is
// always the smaller UUID; CanonicalPair is the only place that ordering is
// computed. UpdatedAt is the activity timestamp: sending a message bumps it,
// and conversation lists sort by it.
type Conversation struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	User1ID uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_conversation_pair,unique,priority:1" json:"user1_id"`
	User2ID uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_conversation_pair,unique,priority:2" json:"user2_id"`
	User1   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:User1ID;references:ID" json:"user1,omitempty"`
	User2   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:User2ID;references:ID" json:"user2,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

// OtherUser returns the participant that is not id. Zero UUID when id is not
// a participant.
func (c *Conversation) OtherUser(id uuid.UUID) uuid.UUID {
	switch id {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return uuid.Nil
}

func (c *Conversation) HasParticipant(id uuid.UUID) bool {
	return id == c.User1ID || id == c.User2ID
}

// CanonicalPair orders two user IDs into the (User1ID, User2ID) form.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

// ConversationDeletedBy is a per-viewer visibility mark, not a deletion: the
// conversation and its messages stay intact, the marking user just stops
// seeing the conversation (and any message at or before DeletedAt) until the
// counterpart writes again.
type ConversationDeletedBy struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_conversation_deleted_by_pair,unique,priority:1" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index;index:idx_conversation_deleted_by_pair,unique,priority:2" json:"user_id"`

	DeletedAt time.Time `gorm:"column:deleted_at;not null;default:now()" json:"deleted_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ConversationDeletedBy) TableName() string { return "conversation_deleted_by" }
