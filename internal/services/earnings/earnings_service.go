package earnings

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
)

type EarningsService struct {
	DB *gorm.DB
}

func NewEarningsService(db *gorm.DB) *EarningsService {
	return &EarningsService{DB: db}
}

// RecordPayment persists a payment and, when the payee is a freelancer, its 1:1
// earning ledger entry. Must be called within a DB transaction so the pair is
// all-or-nothing.
func (s *EarningsService) RecordPayment(tx *gorm.DB, payment *models.Payment, payeeRole models.Role) error {
	if payment.Amount <= 0 {
		return errors.New("payment amount must be greater than zero")
	}
	if payment.PlatformFee < 0 || payment.PlatformFee > payment.Amount {
		return errors.New("platform fee must be between zero and the amount")
	}

	payment.NetAmount = payment.Amount - payment.PlatformFee
	if payment.TransactionID == "" {
		payment.TransactionID = uuid.New().String()
	}

	if err := tx.Create(payment).Error; err != nil {
		return err
	}

	if payeeRole != models.RoleFreelancer {
		return nil
	}

	ledger := models.Earning{
		FreelancerID: payment.PayeeID,
		PaymentID:    payment.ID,
		Amount:       payment.NetAmount,
		Withdrawn:    false,
	}
	return tx.Create(&ledger).Error
}

// Summary aggregates a freelancer's ledger. total == available + withdrawn
// holds by construction: the two partitions are disjoint over the same rows.
type Summary struct {
	TotalEarned      float64 `json:"total_earned"`
	AvailableBalance float64 `json:"available_balance"`
	Withdrawn        float64 `json:"withdrawn"`
	PendingPayments  int64   `json:"pending_payments"`
}

func (s *EarningsService) Summarize(freelancerID uuid.UUID) (Summary, error) {
	var out Summary

	base := s.DB.Model(&models.Earning{}).Where("freelancer_id = ?", freelancerID)

	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&out.TotalEarned).Error; err != nil {
		return out, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("withdrawn = ?", false).
		Select("COALESCE(SUM(amount), 0)").Scan(&out.AvailableBalance).Error; err != nil {
		return out, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("withdrawn = ?", true).
		Select("COALESCE(SUM(amount), 0)").Scan(&out.Withdrawn).Error; err != nil {
		return out, err
	}

	if err := s.DB.Model(&models.Earning{}).
		Joins("JOIN payments ON payments.id = earnings.payment_id").
		Where("earnings.freelancer_id = ? AND payments.status = ?", freelancerID, models.PaymentStatusPending).
		Count(&out.PendingPayments).Error; err != nil {
		return out, err
	}

	return out, nil
}

// WithdrawAvailable flips every non-withdrawn earning to withdrawn and returns
// the total moved. The flag only ever goes false -> true.
func (s *EarningsService) WithdrawAvailable(tx *gorm.DB, freelancerID uuid.UUID) (float64, error) {
	var total float64
	if err := tx.Model(&models.Earning{}).
		Where("freelancer_id = ? AND withdrawn = ?", freelancerID, false).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	if err := tx.Model(&models.Earning{}).
		Where("freelancer_id = ? AND withdrawn = ?", freelancerID, false).
		Update("withdrawn", true).Error; err != nil {
		return 0, err
	}
	return total, nil
}
