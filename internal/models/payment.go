package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;index;not null" json:"contract_id"`
	PayerID    uuid.UUID `gorm:"type:uuid;index;not null" json:"payer_id"`
	PayeeID    uuid.UUID `gorm:"type:uuid;index;not null" json:"payee_id"`

	Amount      float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	PlatformFee float64 `gorm:"type:numeric(10,2);default:0" json:"platform_fee"`
	// amount - platform_fee, fixed at creation
	NetAmount float64 `gorm:"type:numeric(10,2);not null" json:"net_amount"`

	PaymentMethod string `gorm:"type:varchar(50);default:'demo'" json:"payment_method"`
	TransactionID string `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_id"`

	Status      PaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Description string        `gorm:"type:text" json:"description"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	Payer    *User     `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	Payee    *User     `gorm:"foreignKey:PayeeID" json:"payee,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// Earning is the freelancer-side ledger entry for a payment, 1:1 with it.
type Earning struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;index;not null" json:"freelancer_id"`
	PaymentID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"payment_id"`

	Amount    float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Withdrawn bool    `gorm:"default:false;index" json:"withdrawn"`

	CreatedAt time.Time `json:"created_at"`

	Payment    *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	Freelancer *User    `gorm:"foreignKey:FreelancerID" json:"-"`
}

func (e *Earning) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
