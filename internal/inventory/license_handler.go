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

type CreateLicenseRequest struct {
	Name           string          `json:"name"`
	ProductKey     string          `json:"product_key"`
	Manufacturer   string          `json:"manufacturer"`
	Seats          int             `json:"seats"`
	ExpirationDate string          `json:"expiration_date"` // "2006-01-02", optional
	PurchaseCost   decimal.Decimal `json:"purchase_cost"`
}

type UpdateLicenseRequest struct {
	Name           *string          `json:"name"`
	ProductKey     *string          `json:"product_key"`
	Manufacturer   *string          `json:"manufacturer"`
	Seats          *int             `json:"seats"`
	ExpirationDate *string          `json:"expiration_date"`
	PurchaseCost   *decimal.Decimal `json:"purchase_cost"`
}

type LicenseResponse struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	ProductKey     string          `json:"product_key,omitempty"`
	Manufacturer   string          `json:"manufacturer"`
	Seats          int             `json:"seats"`
	SeatsAvailable int             `json:"seats_available"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
	PurchaseCost   decimal.Decimal `json:"purchase_cost"`
	CreatedAt      string          `json:"created_at"`
}

// licenseResponse derives available seats from open assignments; nothing is
// stored, so the value cannot drift.
func licenseResponse(l *models.License) (LicenseResponse, error) {
	open, err := ledger.OpenQuantity(models.StockLicense, l.ID)
	if err != nil {
		return LicenseResponse{}, fiber.NewError(fiber.StatusInternalServerError, "Seat usage could not be computed")
	}

	res := LicenseResponse{
		ID:             l.ID,
		Name:           l.Name,
		ProductKey:     l.ProductKey,
		Manufacturer:   l.Manufacturer,
		Seats:          l.Seats,
		SeatsAvailable: l.Seats - open,
		PurchaseCost:   l.PurchaseCost,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.ExpirationDate != nil {
		res.ExpirationDate = l.ExpirationDate.Format("2006-01-02")
	}
	return res, nil
}

// GET /api/licenses
func ListLicensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var licenses []models.License
		if err := database.DB.Order("name asc").Find(&licenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Licenses could not be listed")
		}

		res := make([]LicenseResponse, 0, len(licenses))
		for i := range licenses {
			lr, err := licenseResponse(&licenses[i])
			if err != nil {
				return err
			}
			res = append(res, lr)
		}
		return c.JSON(res)
	}
}

// GET /api/licenses/:id
func GetLicenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid license id")
		}

		var license models.License
		if err := database.DB.First(&license, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "License not found")
		}

		lr, err := licenseResponse(&license)
		if err != nil {
			return err
		}
		return c.JSON(lr)
	}
}

// POST /api/licenses (admin only)
func CreateLicenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLicenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}
		if body.Seats < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Seats must be at least 1")
		}

		license := models.License{
			Name:         body.Name,
			ProductKey:   strings.TrimSpace(body.ProductKey),
			Manufacturer: strings.TrimSpace(body.Manufacturer),
			Seats:        body.Seats,
			PurchaseCost: body.PurchaseCost,
		}
		if body.ExpirationDate != "" {
			d, err := time.Parse("2006-01-02", body.ExpirationDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expiration_date must be 'YYYY-MM-DD'")
			}
			license.ExpirationDate = &d
		}

		if err := database.DB.Create(&license).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "License could not be created")
		}

		lr, err := licenseResponse(&license)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(lr)
	}
}

// PUT /api/licenses/:id (admin only)
func UpdateLicenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid license id")
		}

		var body UpdateLicenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var license models.License
		if err := database.DB.First(&license, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "License not found")
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
		if body.ProductKey != nil {
			updates["product_key"] = strings.TrimSpace(*body.ProductKey)
		}
		if body.Manufacturer != nil {
			updates["manufacturer"] = strings.TrimSpace(*body.Manufacturer)
		}
		if body.ExpirationDate != nil {
			if *body.ExpirationDate == "" {
				updates["expiration_date"] = nil
			} else {
				d, err := time.Parse("2006-01-02", *body.ExpirationDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "expiration_date must be 'YYYY-MM-DD'")
				}
				updates["expiration_date"] = d
			}
		}
		if body.PurchaseCost != nil {
			updates["purchase_cost"] = *body.PurchaseCost
		}

		// Seat count changes are capacity adjustments: shrinking below the
		// seats currently assigned out is rejected.
		if body.Seats != nil && *body.Seats != license.Seats {
			if err := ledger.AdjustCapacity(models.StockLicense, license.ID, *body.Seats); err != nil {
				return ledgerError(err)
			}
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&license).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "License could not be updated")
			}
		}

		if err := database.DB.First(&license, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "License could not be reloaded")
		}
		lr, err := licenseResponse(&license)
		if err != nil {
			return err
		}
		return c.JSON(lr)
	}
}

// DELETE /api/licenses/:id (admin only)
func DeleteLicenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid license id")
		}

		var license models.License
		if err := database.DB.First(&license, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "License not found")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be started")
		}
		if err := tx.Where("stock_kind = ? AND stock_id = ?", models.StockLicense, id).
			Delete(&models.Assignment{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Assignments could not be deleted")
		}
		if err := tx.Delete(&license).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "License could not be deleted")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Delete could not be completed")
		}

		return c.JSON(fiber.Map{"message": "License deleted"})
	}
}
