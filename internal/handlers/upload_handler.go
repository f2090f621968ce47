package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/flexilance/flexilance-api/internal/storage"
)

type UploadHandler struct {
	Store storage.Store
}

func NewUploadHandler(store storage.Store) *UploadHandler {
	return &UploadHandler{Store: store}
}

// Upload accepts a multipart file plus an optional logical folder and stores
// it through the configured backend. A remote outage degrades to local disk
// inside the store; this handler never sees it.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	if _, err := getUserUUID(c); err != nil {
		return fail(c, 401, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fail(c, 400, "file is required")
	}

	folder := c.FormValue("folder")

	f, err := fileHeader.Open()
	if err != nil {
		return fail(c, 400, "Failed to read file")
	}
	defer f.Close()

	result, err := h.Store.Upload(c.Context(), folder, fileHeader.Filename, f)
	if err != nil {
		log.Println("Upload failed:", err)
		return c.Status(500).JSON(result)
	}

	return c.Status(201).JSON(result)
}
