package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
	"github.com/flexilance/flexilance-api/internal/services/earnings"
)

type PaymentHandler struct {
	DB       *gorm.DB
	Earnings *earnings.EarningsService
}

func NewPaymentHandler(db *gorm.DB, earningsService *earnings.EarningsService) *PaymentHandler {
	return &PaymentHandler{DB: db, Earnings: earningsService}
}

type CreatePaymentReq struct {
	ContractID    string  `json:"contract_id"`
	Amount        float64 `json:"amount"`
	PlatformFee   float64 `json:"platform_fee"`
	PaymentMethod string  `json:"payment_method"`
	Description   string  `json:"description"`
}

// Create records a payment against a contract. The caller must be a party to
// the contract and pays the other party; the earning ledger entry is written
// in the same transaction.
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var req CreatePaymentReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	contractUUID, err := uuid.Parse(strings.TrimSpace(req.ContractID))
	if err != nil {
		return fail(c, 400, "Invalid contract ID")
	}

	errs := FieldErrors{}
	if req.Amount <= 0 {
		errs.Add("amount", "Amount must be positive")
	}
	if req.PlatformFee < 0 {
		errs.Add("platform_fee", "Platform fee must not be negative")
	}
	if req.PlatformFee > req.Amount {
		errs.Add("platform_fee", "Platform fee must not exceed the amount")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var contract models.Contract
	if err := h.DB.First(&contract, "id = ?", contractUUID).Error; err != nil {
		return fail(c, 404, "Contract not found")
	}

	// Payer and payee are the contract's two parties.
	var payeeID uuid.UUID
	var payeeRole models.Role
	switch userUUID {
	case contract.ClientID:
		payeeID = contract.FreelancerID
		payeeRole = models.RoleFreelancer
	case contract.FreelancerID:
		payeeID = contract.ClientID
		payeeRole = models.RoleClient
	default:
		return fail(c, 403, "Only contract parties can record payments")
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = "demo"
	}

	payment := models.Payment{
		ContractID:    contract.ID,
		PayerID:       userUUID,
		PayeeID:       payeeID,
		Amount:        req.Amount,
		PlatformFee:   req.PlatformFee,
		PaymentMethod: method,
		Description:   req.Description,
		Status:        models.PaymentStatusPending,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		return h.Earnings.RecordPayment(tx, &payment, payeeRole)
	})
	if err != nil {
		log.Println("Error recording payment:", err)
		return failFromTx(c, err, "Failed to record payment")
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": payment})
}

type UpdatePaymentStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus completes, fails or refunds a pending payment. Only the payer
// or payee may do so.
func (h *PaymentHandler) UpdateStatus(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	paymentUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid payment ID")
	}

	var payment models.Payment
	if err := h.DB.First(&payment, "id = ?", paymentUUID).Error; err != nil {
		return fail(c, 404, "Payment not found")
	}

	if payment.PayerID != userUUID && payment.PayeeID != userUUID {
		return fail(c, 403, "Access denied")
	}

	var req UpdatePaymentStatusReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	next := models.PaymentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch next {
	case models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusRefunded:
	default:
		return fail(c, 400, "Status must be completed, failed or refunded")
	}

	if payment.Status != models.PaymentStatusPending {
		return fail(c, 400, "Only pending payments can change status")
	}

	updates := map[string]interface{}{"status": next}
	if next == models.PaymentStatusCompleted {
		updates["completed_at"] = time.Now()
	}

	if err := h.DB.Model(&payment).Updates(updates).Error; err != nil {
		return fail(c, 500, "Failed to update payment")
	}

	return c.JSON(fiber.Map{"success": true, "data": payment})
}

// History lists payments where the caller is payer or payee.
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var payments []models.Payment
	if err := h.DB.
		Where("payer_id = ? OR payee_id = ?", userUUID, userUUID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return fail(c, 500, "Failed to fetch payments")
	}

	return c.JSON(fiber.Map{"success": true, "data": payments})
}

// ListEarnings returns the caller's earning ledger. Route is gated to role
// freelancer.
func (h *PaymentHandler) ListEarnings(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var list []models.Earning
	if err := h.DB.
		Preload("Payment").
		Where("freelancer_id = ?", userUUID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return fail(c, 500, "Failed to fetch earnings")
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

// Summary aggregates the caller's ledger. Route is gated to role freelancer;
// for anyone else the gate answers 403.
func (h *PaymentHandler) Summary(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	summary, err := h.Earnings.Summarize(userUUID)
	if err != nil {
		log.Println("Error summarizing earnings:", err)
		return fail(c, 500, "Failed to summarize earnings")
	}

	return c.JSON(fiber.Map{"success": true, "data": summary})
}

// Withdraw flips all available earnings to withdrawn and reports the amount.
func (h *PaymentHandler) Withdraw(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var total float64
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = h.Earnings.WithdrawAvailable(tx, userUUID)
		return err
	})
	if err != nil {
		return failFromTx(c, err, "Failed to withdraw earnings")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"withdrawn": total},
	})
}
