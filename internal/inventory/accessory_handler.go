package inventory

import (
	"strings"
	"time"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/ledger"
	"assettrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateAccessoryRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	LocationID   *uint           `json:"location_id"`
	Capacity     int             `json:"capacity"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
}

type UpdateAccessoryRequest struct {
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	Manufacturer *string          `json:"manufacturer"`
	LocationID   *uint            `json:"location_id"`
	Capacity     *int             `json:"capacity"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost"`
}

type AccessoryResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	LocationID   *uint           `json:"location_id,omitempty"`
	Capacity     int             `json:"capacity"`
	Available    int             `json:"available"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	CreatedAt    string          `json:"created_at"`
}

func accessoryResponse(a *models.Accessory) AccessoryResponse {
	return AccessoryResponse{
		ID:           a.ID,
		Name:         a.Name,
		Category:     a.Category,
		Manufacturer: a.Manufacturer,
		LocationID:   a.LocationID,
		Capacity:     a.Capacity,
		Available:    a.Available,
		PurchaseCost: a.PurchaseCost,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/accessories
func ListAccessoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessories []models.Accessory
		if err := database.DB.Order("name asc").Find(&accessories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Accessories could not be listed")
		}

		res := make([]AccessoryResponse, 0, len(accessories))
		for i := range accessories {
			res = append(res, accessoryResponse(&accessories[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/accessories/:id
func GetAccessoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid accessory id")
		}

		var accessory models.Accessory
		if err := database.DB.First(&accessory, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Accessory not found")
		}
		return c.JSON(accessoryResponse(&accessory))
	}
}

// POST /api/accessories (admin only)
func CreateAccessoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAccessoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if body.Capacity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Capacity must be at least 1")
		}
		if body.LocationID != nil {
			var loc models.Location
			if err := database.DB.First(&loc, "id = ?", *body.LocationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Location not found")
			}
		}

		accessory := models.Accessory{
			Name:         body.Name,
			Category:     strings.TrimSpace(body.Category),
			Manufacturer: strings.TrimSpace(body.Manufacturer),
			LocationID:   body.LocationID,
			Capacity:     body.Capacity,
			Available:    body.Capacity,
			PurchaseCost: body.PurchaseCost,
		}

		if err := database.DB.Create(&accessory).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Accessory could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(accessoryResponse(&accessory))
	}
}

// PUT /api/accessories/:id (admin only)
func UpdateAccessoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid accessory id")
		}

		var body UpdateAccessoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var accessory models.Accessory
		if err := database.DB.First(&accessory, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Accessory not found")
		}

		// Validate every field before touching anything so a rejected
		// request leaves the row untouched.
		updates := map[string]interface{}{}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			updates["name"] = name
		}
		if body.Category != nil {
			updates["category"] = strings.TrimSpace(*body.Category)
		}
		if body.Manufacturer != nil {
			updates["manufacturer"] = strings.TrimSpace(*body.Manufacturer)
		}
		if body.LocationID != nil {
			var loc models.Location
			if err := database.DB.First(&loc, "id = ?", *body.LocationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Location not found")
			}
			updates["location_id"] = *body.LocationID
		}
		if body.PurchaseCost != nil {
			updates["purchase_cost"] = *body.PurchaseCost
		}

		// Capacity goes through the ledger so availability shifts by the same
		// delta and shrinking below the checked-out quantity is rejected.
		if body.Capacity != nil && *body.Capacity != accessory.Capacity {
			if err := ledger.AdjustCapacity(models.StockAccessory, accessory.ID, *body.Capacity); err != nil {
				return ledgerError(err)
			}
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&accessory).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Accessory could not be updated")
			}
		}

		if err := database.DB.First(&accessory, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Accessory could not be reloaded")
		}
		return c.JSON(accessoryResponse(&accessory))
	}
}

// DELETE /api/accessories/:id (admin only)
func DeleteAccessoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid accessory id")
		}

		var accessory models.Accessory
		if err := database.DB.First(&accessory, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Accessory not found")
		}

		// Assignments never outlive their stock.
		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be started")
		}
		if err := tx.Where("stock_kind = ? AND stock_id = ?", models.StockAccessory, id).
			Delete(&models.Assignment{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Assignments could not be deleted")
		}
		if err := tx.Delete(&accessory).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Accessory could not be deleted")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Delete could not be completed")
		}

		return c.JSON(fiber.Map{"message": "Accessory deleted"})
	}
}
