package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate locks the selected rows for the rest of the transaction.
// SQLite has no FOR UPDATE; its single-writer lock already serializes the
// whole transaction there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		return uuid.Parse(t)
	case []byte:
		return uuid.ParseBytes(t)
	default:
		return uuid.Nil, fmt.Errorf("invalid userId type: %T", v)
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// fail is the uniform error body; every handler error goes through it.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// failFromTx maps an error returned out of a DB.Transaction callback: fiber
// errors keep their status, everything else is a 500.
func failFromTx(c *fiber.Ctx, err error, fallback string) error {
	if fe, ok := err.(*fiber.Error); ok {
		return fail(c, fe.Code, fe.Message)
	}
	return fail(c, 500, fallback)
}
