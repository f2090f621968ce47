package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusDeclined  ProposalStatus = "declined"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

// Proposal is a freelancer's bid against a job. At most one proposal per
// (job, freelancer) pair, enforced by the composite unique index.
type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_proposals_job_freelancer" json:"job_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_proposals_job_freelancer;index" json:"freelancer_id"`

	CoverLetter   string  `gorm:"type:text;not null" json:"cover_letter"`
	BidAmount     float64 `gorm:"type:numeric(10,2);not null" json:"bid_amount"`
	DeliveryTime  int     `gorm:"not null" json:"delivery_time"` // days
	AttachmentURL string  `gorm:"type:text" json:"attachment_url"`

	Status ProposalStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job        *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
