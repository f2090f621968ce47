package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BudgetType string

const (
	BudgetFixed  BudgetType = "fixed"
	BudgetHourly BudgetType = "hourly"
)

type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "entry"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

type JobCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *JobCategory) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`

	ClientID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`

	BudgetType      BudgetType      `gorm:"type:varchar(20);not null" json:"budget_type"`
	BudgetMin       float64         `gorm:"type:numeric(10,2);default:0" json:"budget_min"`
	BudgetMax       *float64        `gorm:"type:numeric(10,2)" json:"budget_max,omitempty"`
	ExperienceLevel ExperienceLevel `gorm:"type:varchar(20);default:'entry'" json:"experience_level"`

	SkillsRequired datatypes.JSON `json:"skills_required"` // ["react", "figma", ...]
	Duration       string         `gorm:"type:varchar(100)" json:"duration"`
	AttachmentURL  string         `gorm:"type:text" json:"attachment_url"`

	Status JobStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`

	// Denormalized; reconciled inside the proposal submit/withdraw transactions.
	ProposalsCount int `gorm:"default:0" json:"proposals_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client   *User        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Category *JobCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}
