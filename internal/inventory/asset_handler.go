package inventory

import (
	"strings"
	"time"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/history"
	"assettrack-backend/internal/ledger"
	"assettrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateAssetRequest struct {
	AssetTag     string          `json:"asset_tag"` // generated when blank
	Name         string          `json:"name"`
	Serial       string          `json:"serial"`
	Model        string          `json:"model"`
	Manufacturer string          `json:"manufacturer"`
	LocationID   *uint           `json:"location_id"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	WarrantyEnd  string          `json:"warranty_end"` // "2006-01-02", optional
}

type UpdateAssetRequest struct {
	AssetTag     *string          `json:"asset_tag"`
	Name         *string          `json:"name"`
	Serial       *string          `json:"serial"`
	Model        *string          `json:"model"`
	Manufacturer *string          `json:"manufacturer"`
	Status       *string          `json:"status"` // Ready to Deploy <-> Archived only
	LocationID   *uint            `json:"location_id"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost"`
	WarrantyEnd  *string          `json:"warranty_end"`
}

type AssetResponse struct {
	ID           uint            `json:"id"`
	AssetTag     string          `json:"asset_tag"`
	Name         string          `json:"name"`
	Serial       string          `json:"serial,omitempty"`
	Model        string          `json:"model,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	Status       string          `json:"status"`
	Available    int             `json:"available"`
	LocationID   *uint           `json:"location_id,omitempty"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	WarrantyEnd  string          `json:"warranty_end,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

type AssetEventResponse struct {
	ID           uint   `json:"id"`
	Action       string `json:"action"`
	AssigneeKind string `json:"assignee_kind,omitempty"`
	AssigneeID   uint   `json:"assignee_id,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func assetResponse(a *models.Asset) AssetResponse {
	available := 0
	if a.Status == models.AssetStatusReady {
		available = 1
	}

	res := AssetResponse{
		ID:           a.ID,
		AssetTag:     a.AssetTag,
		Name:         a.Name,
		Serial:       a.Serial,
		Model:        a.Model,
		Manufacturer: a.Manufacturer,
		Status:       string(a.Status),
		Available:    available,
		LocationID:   a.LocationID,
		PurchaseCost: a.PurchaseCost,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
	if a.WarrantyEnd != nil {
		res.WarrantyEnd = a.WarrantyEnd.Format("2006-01-02")
	}
	return res
}

// GET /api/assets
func ListAssetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var assets []models.Asset
		if err := database.DB.Order("asset_tag asc").Find(&assets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Assets could not be listed")
		}

		res := make([]AssetResponse, 0, len(assets))
		for i := range assets {
			res = append(res, assetResponse(&assets[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/assets/:id
// Includes the checkout/checkin history inline.
func GetAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid asset id")
		}

		var asset models.Asset
		if err := database.DB.First(&asset, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Asset not found")
		}

		events, err := history.ForAsset(asset.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Asset history could not be loaded")
		}
		eventRes := make([]AssetEventResponse, 0, len(events))
		for _, e := range events {
			eventRes = append(eventRes, AssetEventResponse{
				ID:           e.ID,
				Action:       string(e.Action),
				AssigneeKind: string(e.AssigneeKind),
				AssigneeID:   e.AssigneeID,
				AssigneeName: e.AssigneeName,
				Notes:        e.Notes,
				CreatedAt:    e.CreatedAt.Format(time.RFC3339),
			})
		}

		return c.JSON(fiber.Map{
			"asset":   assetResponse(&asset),
			"history": eventRes,
		})
	}
}

// POST /api/assets (admin only)
func CreateAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAssetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		tag := strings.TrimSpace(body.AssetTag)
		if tag == "" {
			tag = "AT-" + strings.ToUpper(uuid.NewString()[:8])
		}
		if body.LocationID != nil {
			var loc models.Location
			if err := database.DB.First(&loc, "id = ?", *body.LocationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Location not found")
			}
		}

		asset := models.Asset{
			AssetTag:     tag,
			Name:         body.Name,
			Serial:       strings.TrimSpace(body.Serial),
			Model:        strings.TrimSpace(body.Model),
			Manufacturer: strings.TrimSpace(body.Manufacturer),
			Status:       models.AssetStatusReady,
			LocationID:   body.LocationID,
			PurchaseCost: body.PurchaseCost,
		}
		if body.WarrantyEnd != "" {
			d, err := time.Parse("2006-01-02", body.WarrantyEnd)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "warranty_end must be 'YYYY-MM-DD'")
			}
			asset.WarrantyEnd = &d
		}

		if err := database.DB.Create(&asset).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Asset could not be created (asset tag may already exist)")
		}
		return c.Status(fiber.StatusCreated).JSON(assetResponse(&asset))
	}
}

// PUT /api/assets/:id (admin only)
func UpdateAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid asset id")
		}

		var body UpdateAssetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var asset models.Asset
		if err := database.DB.First(&asset, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Asset not found")
		}

		updates := map[string]interface{}{}
		if body.AssetTag != nil {
			tag := strings.TrimSpace(*body.AssetTag)
			if tag == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Asset tag cannot be empty")
			}
			updates["asset_tag"] = tag
		}
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
		if body.Model != nil {
			updates["model"] = strings.TrimSpace(*body.Model)
		}
		if body.Manufacturer != nil {
			updates["manufacturer"] = strings.TrimSpace(*body.Manufacturer)
		}
		if body.Status != nil {
			// Deployed is owned by the ledger; edits may only park an idle
			// asset in Archived or bring it back.
			next := models.AssetStatus(*body.Status)
			if next != models.AssetStatusReady && next != models.AssetStatusArchived {
				return fiber.NewError(fiber.StatusBadRequest, "Status can only be set to 'Ready to Deploy' or 'Archived'")
			}
			if asset.Status == models.AssetStatusDeployed {
				return fiber.NewError(fiber.StatusBadRequest, "A deployed asset must be checked in first")
			}
			updates["status"] = next
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
		if body.WarrantyEnd != nil {
			if *body.WarrantyEnd == "" {
				updates["warranty_end"] = nil
			} else {
				d, err := time.Parse("2006-01-02", *body.WarrantyEnd)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "warranty_end must be 'YYYY-MM-DD'")
				}
				updates["warranty_end"] = d
			}
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&asset).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Asset could not be updated")
			}
		}

		if err := database.DB.First(&asset, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Asset could not be reloaded")
		}
		return c.JSON(assetResponse(&asset))
	}
}

// DELETE /api/assets/:id (admin only)
func DeleteAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid asset id")
		}

		var asset models.Asset
		if err := database.DB.First(&asset, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Asset not found")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be started")
		}
		if err := tx.Where("stock_kind = ? AND stock_id = ?", models.StockAsset, id).
			Delete(&models.Assignment{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Assignments could not be deleted")
		}
		if err := tx.Where("asset_id = ?", id).Delete(&models.AssetEvent{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Asset history could not be deleted")
		}
		if err := tx.Delete(&asset).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Asset could not be deleted")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Delete could not be completed")
		}

		return c.JSON(fiber.Map{"message": "Asset deleted"})
	}
}

// POST /api/assets/:id/checkin
// Assets have at most one open assignment, so the route addresses the asset
// and the handler resolves the assignment itself.
func AssetCheckinHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid asset id")
		}
		if !stockExists(models.StockAsset, uint(id)) {
			return fiber.NewError(fiber.StatusNotFound, "Asset not found")
		}

		var a models.Assignment
		err = database.DB.
			First(&a, "stock_kind = ? AND stock_id = ? AND closed_at IS NULL", models.StockAsset, id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Asset has no open assignment")
		}

		if err := ledger.Checkin(a.ID); err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"message": "Checked in"})
	}
}
