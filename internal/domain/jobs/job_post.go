package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/domain/user"
)

const (
	JobPostOpen   = "open"
	JobPostClosed = "closed"
)

type JobPost struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`

	Title       string         `gorm:"column:title;not null" json:"title"`
	Company     string         `gorm:"column:company;not null" json:"company"`
	Location    string         `gorm:"column:location" json:"location"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	SalaryRange string         `gorm:"column:salary_range" json:"salary_range"`
	Status      string         `gorm:"column:status;not null;default:'open';index" json:"status"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (JobPost) TableName() string { return "job_post" }
