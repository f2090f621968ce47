package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
)

type ProposalHandler struct {
	DB *gorm.DB
}

func NewProposalHandler(db *gorm.DB) *ProposalHandler {
	return &ProposalHandler{DB: db}
}

type SubmitProposalReq struct {
	CoverLetter   string  `json:"cover_letter"`
	BidAmount     float64 `json:"bid_amount"`
	DeliveryTime  int     `json:"delivery_time"` // days
	AttachmentURL string  `json:"attachment_url"`
}

// Submit creates a pending proposal on an open job. Route is gated to role
// freelancer. The proposal insert and the job counter bump are one transaction;
// the (job, freelancer) unique index is the hard duplicate guard.
func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	jobUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid job ID")
	}

	var req SubmitProposalReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	errs := FieldErrors{}
	if strings.TrimSpace(req.CoverLetter) == "" {
		errs.Add("cover_letter", "Cover letter is required")
	}
	if req.BidAmount <= 0 {
		errs.Add("bid_amount", "Bid amount must be positive")
	}
	if req.DeliveryTime <= 0 {
		errs.Add("delivery_time", "Delivery time must be positive")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return fail(c, 404, "Job not found")
	}

	if job.Status != models.JobStatusOpen {
		return fail(c, 400, "Job is not open for proposals")
	}

	// Friendly duplicate check; the unique index still closes the race.
	var existing models.Proposal
	if err := h.DB.Where("job_id = ? AND freelancer_id = ?", jobUUID, userUUID).
		First(&existing).Error; err == nil {
		return fail(c, 409, "You have already submitted a proposal for this job")
	}

	proposal := models.Proposal{
		JobID:         jobUUID,
		FreelancerID:  userUUID,
		CoverLetter:   req.CoverLetter,
		BidAmount:     req.BidAmount,
		DeliveryTime:  req.DeliveryTime,
		AttachmentURL: req.AttachmentURL,
		Status:        models.ProposalStatusPending,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}
		return tx.Model(&models.Job{}).
			Where("id = ?", jobUUID).
			Update("proposals_count", gorm.Expr("proposals_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, 409, "You have already submitted a proposal for this job")
		}
		log.Println("Error creating proposal:", err)
		return failFromTx(c, err, "Failed to submit proposal")
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": proposal})
}

// ListForJob returns a job's proposals to its owning client. Everyone else
// gets an empty list, not an error.
func (h *ProposalHandler) ListForJob(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	jobUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid job ID")
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return fail(c, 404, "Job not found")
	}

	if job.ClientID != userUUID {
		return c.JSON(fiber.Map{"success": true, "data": []models.Proposal{}})
	}

	var proposals []models.Proposal
	if err := h.DB.
		Preload("Freelancer").
		Preload("Freelancer.Profile").
		Where("job_id = ?", jobUUID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return fail(c, 500, "Failed to fetch proposals")
	}

	return c.JSON(fiber.Map{"success": true, "data": proposals})
}

// ListMine returns the caller's proposals, strictly filtered by freelancer
// identity.
func (h *ProposalHandler) ListMine(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var proposals []models.Proposal
	if err := h.DB.
		Preload("Job").
		Where("freelancer_id = ?", userUUID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return fail(c, 500, "Failed to fetch proposals")
	}

	return c.JSON(fiber.Map{"success": true, "data": proposals})
}

// Accept flips the proposal to accepted, the job to in_progress and creates
// the contract, as one atomic unit. The unique index on contracts.job_id makes
// the second accept for a job fail with a conflict; nothing from the losing
// call is committed.
func (h *ProposalHandler) Accept(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	proposalUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid proposal ID")
	}

	var contract models.Contract

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := lockForUpdate(tx).
			First(&proposal, "id = ?", proposalUUID).Error; err != nil {
			return fiber.NewError(404, "Proposal not found")
		}

		if proposal.Status != models.ProposalStatusPending {
			return fiber.NewError(400, "Only pending proposals can be accepted")
		}

		var job models.Job
		if err := tx.First(&job, "id = ?", proposal.JobID).Error; err != nil {
			return fiber.NewError(404, "Job not found")
		}

		if job.ClientID != userUUID {
			return fiber.NewError(403, "You can only accept proposals for your own jobs")
		}

		if err := tx.Model(&models.Proposal{}).
			Where("id = ?", proposal.ID).
			Update("status", models.ProposalStatusAccepted).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Job{}).
			Where("id = ?", job.ID).
			Update("status", models.JobStatusInProgress).Error; err != nil {
			return err
		}

		contract = models.Contract{
			JobID:        job.ID,
			FreelancerID: proposal.FreelancerID,
			ClientID:     job.ClientID,
			Amount:       proposal.BidAmount,
			Description:  proposal.CoverLetter,
			Status:       models.ContractStatusActive,
		}
		if err := tx.Create(&contract).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(409, "Job already has a contract")
			}
			return err
		}

		return nil
	})
	if err != nil {
		return failFromTx(c, err, "Failed to accept proposal")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Proposal accepted and contract created",
		"data":    contract,
	})
}

// Decline marks a pending proposal declined; only the job owner may do so.
func (h *ProposalHandler) Decline(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	proposalUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid proposal ID")
	}

	var proposal models.Proposal
	if err := h.DB.Preload("Job").First(&proposal, "id = ?", proposalUUID).Error; err != nil {
		return fail(c, 404, "Proposal not found")
	}

	if proposal.Job == nil || proposal.Job.ClientID != userUUID {
		return fail(c, 403, "You can only decline proposals for your own jobs")
	}

	if proposal.Status != models.ProposalStatusPending {
		return fail(c, 400, "Only pending proposals can be declined")
	}

	if err := h.DB.Model(&proposal).
		Update("status", models.ProposalStatusDeclined).Error; err != nil {
		return fail(c, 500, "Failed to decline proposal")
	}

	return c.JSON(fiber.Map{"success": true, "data": proposal})
}

// Withdraw lets the proposal's freelancer pull a pending proposal; the job's
// counter is decremented in the same transaction.
func (h *ProposalHandler) Withdraw(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	proposalUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid proposal ID")
	}

	var proposal models.Proposal
	if err := h.DB.First(&proposal, "id = ?", proposalUUID).Error; err != nil {
		return fail(c, 404, "Proposal not found")
	}

	if proposal.FreelancerID != userUUID {
		return fail(c, 403, "You can only withdraw your own proposals")
	}

	if proposal.Status != models.ProposalStatusPending {
		return fail(c, 400, "Only pending proposals can be withdrawn")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&proposal).
			Update("status", models.ProposalStatusWithdrawn).Error; err != nil {
			return err
		}
		return tx.Model(&models.Job{}).
			Where("id = ? AND proposals_count > 0", proposal.JobID).
			Update("proposals_count", gorm.Expr("proposals_count - 1")).Error
	})
	if err != nil {
		return failFromTx(c, err, "Failed to withdraw proposal")
	}

	return c.JSON(fiber.Map{"success": true, "data": proposal})
}
