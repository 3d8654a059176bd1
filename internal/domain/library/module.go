package library

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/domain/user"
)

// LibraryModule is a stored resource ("module"): the DB row owns the
// metadata, the bucket owns the bytes under StorageKey.
type LibraryModule struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`

	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Category    string         `gorm:"column:category;index" json:"category"`
	FileName    string         `gorm:"column:file_name;not null" json:"file_name"`
	StorageKey  string         `gorm:"column:storage_key;not null;uniqueIndex" json:"storage_key"`
	ContentType string         `gorm:"column:content_type" json:"content_type"`
	SizeBytes   int64          `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`
	DownloadURL string         `gorm:"column:download_url" json:"download_url"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LibraryModule) TableName() string { return "library_module" }
