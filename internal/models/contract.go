package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
	ContractStatusDisputed  ContractStatus = "disputed"
)

// Contract is created exactly once, when a proposal is accepted. The unique
// index on JobID is what makes a second accept on the same job fail.
type Contract struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"job_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;index;not null" json:"freelancer_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Amount      float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description string  `gorm:"type:text" json:"description"`

	Status ContractStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job        *Job        `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Freelancer *User       `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Client     *User       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Milestones []Milestone `gorm:"foreignKey:ContractID" json:"milestones,omitempty"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.StartDate.IsZero() {
		c.StartDate = time.Now()
	}
	return
}

type MilestoneStatus string

const (
	MilestoneStatusPending           MilestoneStatus = "pending"
	MilestoneStatusSubmitted         MilestoneStatus = "submitted"
	MilestoneStatusApproved          MilestoneStatus = "approved"
	MilestoneStatusRevisionRequested MilestoneStatus = "revision_requested"
)

type Milestone struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;index;not null" json:"contract_id"`

	Title       string  `gorm:"type:varchar(200);not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Amount      float64 `gorm:"type:numeric(10,2);not null" json:"amount"`

	Status MilestoneStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	DeliverableURL string `gorm:"type:text" json:"deliverable_url"`
	Feedback       string `gorm:"type:text" json:"feedback"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
