package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var user models.User
	if err := h.DB.Preload("Profile").First(&user, "id = ?", userUUID).Error; err != nil {
		return fail(c, 401, "User not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":      user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"phone":   user.Phone,
			"role":    user.Role,
			"profile": user.Profile,
		},
	})
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", userUUID).First(&profile).Error; err != nil {
		return fail(c, 404, "Profile not found")
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

type UpdateProfileReq struct {
	Bio        *string         `json:"bio"`
	Location   *string         `json:"location"`
	Website    *string         `json:"website"`
	AvatarURL  *string         `json:"avatar_url"`
	Skills     *datatypes.JSON `json:"skills"`
	HourlyRate *float64        `json:"hourly_rate"`
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var req UpdateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", userUUID).First(&profile).Error; err != nil {
		return fail(c, 404, "Profile not found")
	}

	updates := map[string]interface{}{}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Skills != nil {
		updates["skills"] = *req.Skills
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return fail(c, 400, "Hourly rate must not be negative")
		}
		updates["hourly_rate"] = *req.HourlyRate
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&profile).Updates(updates).Error; err != nil {
			return fail(c, 500, "Failed to update profile")
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}
