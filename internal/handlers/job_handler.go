package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
)

type JobHandler struct {
	DB *gorm.DB
}

func NewJobHandler(db *gorm.DB) *JobHandler {
	return &JobHandler{DB: db}
}

// ListPublic returns open jobs with the catalog filters. No auth required.
func (h *JobHandler) ListPublic(c *fiber.Ctx) error {
	q := h.DB.Model(&models.Job{}).
		Preload("Category").
		Where("status = ?", models.JobStatusOpen)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(CAST(skills_required AS TEXT)) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category_id = ?", category)
	}
	if budgetType := c.Query("budget_type"); budgetType != "" {
		q = q.Where("budget_type = ?", budgetType)
	}
	if experience := c.Query("experience"); experience != "" {
		q = q.Where("experience_level = ?", experience)
	}

	var jobs []models.Job
	if err := q.Order("created_at DESC").Find(&jobs).Error; err != nil {
		log.Println("Error fetching jobs:", err)
		return fail(c, 500, "Failed to fetch jobs")
	}

	return c.JSON(fiber.Map{"success": true, "data": jobs})
}

func (h *JobHandler) GetDetail(c *fiber.Ctx) error {
	jobUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid job ID")
	}

	var job models.Job
	if err := h.DB.Preload("Category").Preload("Client").First(&job, "id = ?", jobUUID).Error; err != nil {
		return fail(c, 404, "Job not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": job})
}

type CreateJobReq struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	CategoryID      *uuid.UUID     `json:"category_id"`
	BudgetType      string         `json:"budget_type"`
	BudgetMin       float64        `json:"budget_min"`
	BudgetMax       *float64       `json:"budget_max"`
	ExperienceLevel string         `json:"experience_level"`
	SkillsRequired  datatypes.JSON `json:"skills_required"`
	Duration        string         `json:"duration"`
	AttachmentURL   string         `json:"attachment_url"`
}

func (h *JobHandler) validateJobReq(req *CreateJobReq) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(req.Title) == "" {
		errs.Add("title", "Title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs.Add("description", "Description is required")
	}

	switch models.BudgetType(req.BudgetType) {
	case models.BudgetFixed, models.BudgetHourly:
	default:
		errs.Add("budget_type", "Budget type must be fixed or hourly")
	}

	if req.BudgetMin < 0 {
		errs.Add("budget_min", "Minimum budget must not be negative")
	}
	if req.BudgetMax != nil && *req.BudgetMax < req.BudgetMin {
		errs.Add("budget_max", "Maximum budget must not be below minimum")
	}

	if req.ExperienceLevel != "" {
		switch models.ExperienceLevel(req.ExperienceLevel) {
		case models.ExperienceEntry, models.ExperienceIntermediate, models.ExperienceExpert:
		default:
			errs.Add("experience_level", "Experience level must be entry, intermediate or expert")
		}
	}

	return errs
}

// Create posts a new job. Route is gated to role client.
func (h *JobHandler) Create(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	if errs := h.validateJobReq(&req); len(errs) > 0 {
		return validationFail(c, errs)
	}

	if req.CategoryID != nil {
		var category models.JobCategory
		if err := h.DB.First(&category, "id = ?", req.CategoryID).Error; err != nil {
			return fail(c, 404, "Category not found")
		}
	}

	experience := models.ExperienceLevel(req.ExperienceLevel)
	if experience == "" {
		experience = models.ExperienceEntry
	}

	job := models.Job{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		ClientID:        userUUID,
		CategoryID:      req.CategoryID,
		BudgetType:      models.BudgetType(req.BudgetType),
		BudgetMin:       req.BudgetMin,
		BudgetMax:       req.BudgetMax,
		ExperienceLevel: experience,
		SkillsRequired:  req.SkillsRequired,
		Duration:        req.Duration,
		AttachmentURL:   req.AttachmentURL,
		Status:          models.JobStatusOpen,
	}

	if err := h.DB.Create(&job).Error; err != nil {
		log.Println("Error creating job:", err)
		return fail(c, 500, "Failed to create job")
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": job})
}

// Update edits a job; only the owning client may do so.
func (h *JobHandler) Update(c *fiber.Ctx) error {
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
		return fail(c, 403, "You can only edit your own jobs")
	}

	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	if errs := h.validateJobReq(&req); len(errs) > 0 {
		return validationFail(c, errs)
	}

	experience := models.ExperienceLevel(req.ExperienceLevel)
	if experience == "" {
		experience = job.ExperienceLevel
	}

	updates := map[string]interface{}{
		"title":            strings.TrimSpace(req.Title),
		"description":      req.Description,
		"category_id":      req.CategoryID,
		"budget_type":      req.BudgetType,
		"budget_min":       req.BudgetMin,
		"budget_max":       req.BudgetMax,
		"experience_level": experience,
		"skills_required":  req.SkillsRequired,
		"duration":         req.Duration,
		"attachment_url":   req.AttachmentURL,
	}

	if err := h.DB.Model(&job).Updates(updates).Error; err != nil {
		log.Println("Error updating job:", err)
		return fail(c, 500, "Failed to update job")
	}

	return c.JSON(fiber.Map{"success": true, "data": job})
}

// Delete removes a job; only the owning client may do so.
func (h *JobHandler) Delete(c *fiber.Ctx) error {
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
		return fail(c, 403, "You can only delete your own jobs")
	}

	if err := h.DB.Delete(&job).Error; err != nil {
		return fail(c, 500, "Failed to delete job")
	}

	return c.SendStatus(204)
}

// ListMine returns the caller's own postings regardless of status.
func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var jobs []models.Job
	if err := h.DB.
		Preload("Category").
		Where("client_id = ?", userUUID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return fail(c, 500, "Failed to fetch jobs")
	}

	return c.JSON(fiber.Map{"success": true, "data": jobs})
}
