package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
)

type ContractHandler struct {
	DB *gorm.DB
}

func NewContractHandler(db *gorm.DB) *ContractHandler {
	return &ContractHandler{DB: db}
}

func (h *ContractHandler) isParty(contract *models.Contract, userID uuid.UUID) bool {
	return contract.ClientID == userID || contract.FreelancerID == userID
}

// loadContractForParty fetches a contract and enforces that the caller is one
// of its two parties.
func (h *ContractHandler) loadContractForParty(c *fiber.Ctx, param string) (*models.Contract, error) {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return nil, fail(c, 401, "Unauthorized")
	}

	contractUUID, err := parseUUIDParam(c, param)
	if err != nil {
		return nil, fail(c, 400, "Invalid contract ID")
	}

	var contract models.Contract
	if err := h.DB.First(&contract, "id = ?", contractUUID).Error; err != nil {
		return nil, fail(c, 404, "Contract not found")
	}

	if !h.isParty(&contract, userUUID) {
		return nil, fail(c, 403, "Access denied")
	}

	return &contract, nil
}

// ListMine returns contracts where the caller is client or freelancer.
func (h *ContractHandler) ListMine(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var contracts []models.Contract
	if err := h.DB.
		Preload("Job").
		Preload("Client").
		Preload("Freelancer").
		Where("client_id = ? OR freelancer_id = ?", userUUID, userUUID).
		Order("created_at DESC").
		Find(&contracts).Error; err != nil {
		return fail(c, 500, "Failed to fetch contracts")
	}

	return c.JSON(fiber.Map{"success": true, "data": contracts})
}

func (h *ContractHandler) GetDetail(c *fiber.Ctx) error {
	contract, err := h.loadContractForParty(c, "id")
	if contract == nil {
		return err
	}

	if err := h.DB.
		Preload("Job").
		Preload("Client").
		Preload("Freelancer").
		Preload("Milestones").
		First(contract, "id = ?", contract.ID).Error; err != nil {
		return fail(c, 500, "Failed to fetch contract")
	}

	return c.JSON(fiber.Map{"success": true, "data": contract})
}

type UpdateContractStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves an active contract to completed, cancelled or disputed.
// Storage-level transition; either party may trigger it.
func (h *ContractHandler) UpdateStatus(c *fiber.Ctx) error {
	contract, err := h.loadContractForParty(c, "id")
	if contract == nil {
		return err
	}

	var req UpdateContractStatusReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	next := models.ContractStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch next {
	case models.ContractStatusCompleted, models.ContractStatusCancelled, models.ContractStatusDisputed:
	default:
		return fail(c, 400, "Status must be completed, cancelled or disputed")
	}

	if contract.Status != models.ContractStatusActive {
		return fail(c, 400, "Only active contracts can change status")
	}

	updates := map[string]interface{}{"status": next}
	if next == models.ContractStatusCompleted || next == models.ContractStatusCancelled {
		updates["end_date"] = time.Now()
	}

	if err := h.DB.Model(contract).Updates(updates).Error; err != nil {
		return fail(c, 500, "Failed to update contract")
	}

	return c.JSON(fiber.Map{"success": true, "data": contract})
}

type CreateMilestoneReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// CreateMilestone adds a milestone to a contract; only the contract's client
// may define deliverables.
func (h *ContractHandler) CreateMilestone(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	contract, err := h.loadContractForParty(c, "id")
	if contract == nil {
		return err
	}

	if contract.ClientID != userUUID {
		return fail(c, 403, "Only the client can create milestones")
	}

	var req CreateMilestoneReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	errs := FieldErrors{}
	if strings.TrimSpace(req.Title) == "" {
		errs.Add("title", "Title is required")
	}
	if req.Amount <= 0 {
		errs.Add("amount", "Amount must be positive")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	milestone := models.Milestone{
		ContractID:  contract.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Amount:      req.Amount,
		Status:      models.MilestoneStatusPending,
	}

	if err := h.DB.Create(&milestone).Error; err != nil {
		return fail(c, 500, "Failed to create milestone")
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": milestone})
}

func (h *ContractHandler) ListMilestones(c *fiber.Ctx) error {
	contract, err := h.loadContractForParty(c, "id")
	if contract == nil {
		return err
	}

	var milestones []models.Milestone
	if err := h.DB.
		Where("contract_id = ?", contract.ID).
		Order("created_at ASC").
		Find(&milestones).Error; err != nil {
		return fail(c, 500, "Failed to fetch milestones")
	}

	return c.JSON(fiber.Map{"success": true, "data": milestones})
}

// loadMilestone fetches a milestone with its contract and enforces that the
// caller is a party to that contract.
func (h *ContractHandler) loadMilestone(c *fiber.Ctx) (*models.Milestone, uuid.UUID, error) {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return nil, uuid.Nil, fail(c, 401, "Unauthorized")
	}

	milestoneUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil, uuid.Nil, fail(c, 400, "Invalid milestone ID")
	}

	var milestone models.Milestone
	if err := h.DB.Preload("Contract").First(&milestone, "id = ?", milestoneUUID).Error; err != nil {
		return nil, uuid.Nil, fail(c, 404, "Milestone not found")
	}

	if milestone.Contract == nil || !h.isParty(milestone.Contract, userUUID) {
		return nil, uuid.Nil, fail(c, 403, "Access denied")
	}

	return &milestone, userUUID, nil
}

type SubmitMilestoneReq struct {
	DeliverableURL string `json:"deliverable_url"`
}

// SubmitMilestone: freelancer moves pending/revision_requested -> submitted.
func (h *ContractHandler) SubmitMilestone(c *fiber.Ctx) error {
	milestone, userUUID, err := h.loadMilestone(c)
	if milestone == nil {
		return err
	}

	if milestone.Contract.FreelancerID != userUUID {
		return fail(c, 403, "Only the freelancer can submit milestones")
	}

	if milestone.Status != models.MilestoneStatusPending &&
		milestone.Status != models.MilestoneStatusRevisionRequested {
		return fail(c, 400, "Milestone cannot be submitted from its current status")
	}

	var req SubmitMilestoneReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.MilestoneStatusSubmitted,
		"submitted_at": now,
	}
	if req.DeliverableURL != "" {
		updates["deliverable_url"] = req.DeliverableURL
	}

	if err := h.DB.Model(milestone).Updates(updates).Error; err != nil {
		return fail(c, 500, "Failed to submit milestone")
	}

	return c.JSON(fiber.Map{"success": true, "data": milestone})
}

// ApproveMilestone: client moves submitted -> approved. Terminal.
func (h *ContractHandler) ApproveMilestone(c *fiber.Ctx) error {
	milestone, userUUID, err := h.loadMilestone(c)
	if milestone == nil {
		return err
	}

	if milestone.Contract.ClientID != userUUID {
		return fail(c, 403, "Only the client can approve milestones")
	}

	if milestone.Status != models.MilestoneStatusSubmitted {
		return fail(c, 400, "Only submitted milestones can be approved")
	}

	now := time.Now()
	if err := h.DB.Model(milestone).Updates(map[string]interface{}{
		"status":      models.MilestoneStatusApproved,
		"approved_at": now,
	}).Error; err != nil {
		return fail(c, 500, "Failed to approve milestone")
	}

	return c.JSON(fiber.Map{"success": true, "data": milestone})
}

type RequestRevisionReq struct {
	Feedback string `json:"feedback"`
}

// RequestRevision: client moves submitted -> revision_requested; the
// freelancer may then resubmit.
func (h *ContractHandler) RequestRevision(c *fiber.Ctx) error {
	milestone, userUUID, err := h.loadMilestone(c)
	if milestone == nil {
		return err
	}

	if milestone.Contract.ClientID != userUUID {
		return fail(c, 403, "Only the client can request revisions")
	}

	if milestone.Status != models.MilestoneStatusSubmitted {
		return fail(c, 400, "Only submitted milestones can be sent back for revision")
	}

	var req RequestRevisionReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	if err := h.DB.Model(milestone).Updates(map[string]interface{}{
		"status":   models.MilestoneStatusRevisionRequested,
		"feedback": req.Feedback,
	}).Error; err != nil {
		return fail(c, 500, "Failed to request revision")
	}

	return c.JSON(fiber.Map{"success": true, "data": milestone})
}
