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

type CreateComponentRequest struct {
	Name         string          `json:"name"`
	Serial       string          `json:"serial"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	LocationID   *uint           `json:"location_id"`
	Capacity     int             `json:"capacity"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
}

type UpdateComponentRequest struct {
	Name         *string          `json:"name"`
	Serial       *string          `json:"serial"`
	Category     *string          `json:"category"`
	Manufacturer *string          `json:"manufacturer"`
	LocationID   *uint            `json:"location_id"`
	Capacity     *int             `json:"capacity"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost"`
}

type ComponentResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Serial       string          `json:"serial,omitempty"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	LocationID   *uint           `json:"location_id,omitempty"`
	Capacity     int             `json:"capacity"`
	Available    int             `json:"available"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	CreatedAt    string          `json:"created_at"`
}

func componentResponse(m *models.Component) ComponentResponse {
	return ComponentResponse{
		ID:           m.ID,
		Name:         m.Name,
		Serial:       m.Serial,
		Category:     m.Category,
		Manufacturer: m.Manufacturer,
		LocationID:   m.LocationID,
		Capacity:     m.Capacity,
		Available:    m.Available,
		PurchaseCost: m.PurchaseCost,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/components
func ListComponentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var components []models.Component
		if err := database.DB.Order("name asc").Find(&components).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Components could not be listed")
		}

		res := make([]ComponentResponse, 0, len(components))
		for i := range components {
			res = append(res, componentResponse(&components[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/components/:id
func GetComponentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid component id")
		}

		var component models.Component
		if err := database.DB.First(&component, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Component not found")
		}
		return c.JSON(componentResponse(&component))
	}
}

// POST /api/components (admin only)
func CreateComponentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateComponentRequest
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

		component := models.Component{
			Name:         body.Name,
			Serial:       strings.TrimSpace(body.Serial),
			Category:     strings.TrimSpace(body.Category),
			Manufacturer: strings.TrimSpace(body.Manufacturer),
			LocationID:   body.LocationID,
			Capacity:     body.Capacity,
			Available:    body.Capacity,
			PurchaseCost: body.PurchaseCost,
		}

		if err := database.DB.Create(&component).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Component could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(componentResponse(&component))
	}
}

// PUT /api/components/:id (admin only)
func UpdateComponentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid component id")
		}

		var body UpdateComponentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var component models.Component
		if err := database.DB.First(&component, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Component not found")
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
		if body.Serial != nil {
			updates["serial"] = strings.TrimSpace(*body.Serial)
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

		if body.Capacity != nil && *body.Capacity != component.Capacity {
			if err := ledger.AdjustCapacity(models.StockComponent, component.ID, *body.Capacity); err != nil {
				return ledgerError(err)
			}
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&component).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Component could not be updated")
			}
		}

		if err := database.DB.First(&component, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Component could not be reloaded")
		}
		return c.JSON(componentResponse(&component))
	}
}

// DELETE /api/components/:id (admin only)
func DeleteComponentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid component id")
		}

		var component models.Component
		if err := database.DB.First(&component, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Component not found")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be started")
		}
		if err := tx.Where("stock_kind = ? AND stock_id = ?", models.StockComponent, id).
			Delete(&models.Assignment{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Assignments could not be deleted")
		}
		if err := tx.Delete(&component).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Component could not be deleted")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Delete could not be completed")
		}

		return c.JSON(fiber.Map{"message": "Component deleted"})
	}
}
