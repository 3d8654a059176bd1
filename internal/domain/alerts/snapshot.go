package alerts

import (
	"time"

	"github.com/google/uuid"
)

// LocationSnapshot is the single latest position per user; updates overwrite
// in place, so the table never grows beyond one row per user.
type LocationSnapshot struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Latitude  float64   `gorm:"column:latitude;not null" json:"latitude"`
	Longitude float64   `gorm:"column:longitude;not null" json:"longitude"`
	Accuracy  *float64  `gorm:"column:accuracy" json:"accuracy,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LocationSnapshot) TableName() string { return "location_snapshot" }
