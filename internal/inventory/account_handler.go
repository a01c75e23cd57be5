package inventory

import (
	"strings"
	"time"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/ledger"
	"assettrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Category string `json:"category"`
	Capacity int    `json:"capacity"`
}

type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Category *string `json:"category"`
	Capacity *int    `json:"capacity"`
}

type AccountResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	Category  string `json:"category"`
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
	CreatedAt string `json:"created_at"`
}

func accountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Username:  a.Username,
		Category:  a.Category,
		Capacity:  a.Capacity,
		Available: a.Available,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/accounts
func ListAccountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accounts []models.Account
		if err := database.DB.Order("name asc").Find(&accounts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Accounts could not be listed")
		}

		res := make([]AccountResponse, 0, len(accounts))
		for i := range accounts {
			res = append(res, accountResponse(&accounts[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/accounts/:id
func GetAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid account id")
		}

		var account models.Account
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Account not found")
		}
		return c.JSON(accountResponse(&account))
	}
}

// POST /api/accounts (admin only)
func CreateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAccountRequest
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

		account := models.Account{
			Name:      body.Name,
			Username:  strings.TrimSpace(body.Username),
			Category:  strings.TrimSpace(body.Category),
			Capacity:  body.Capacity,
			Available: body.Capacity,
		}

		if err := database.DB.Create(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Account could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(accountResponse(&account))
	}
}

// PUT /api/accounts/:id (admin only)
func UpdateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid account id")
		}

		var body UpdateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var account models.Account
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Account not found")
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
		if body.Username != nil {
			updates["username"] = strings.TrimSpace(*body.Username)
		}
		if body.Category != nil {
			updates["category"] = strings.TrimSpace(*body.Category)
		}

		if body.Capacity != nil && *body.Capacity != account.Capacity {
			if err := ledger.AdjustCapacity(models.StockAccount, account.ID, *body.Capacity); err != nil {
				return ledgerError(err)
			}
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&account).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Account could not be updated")
			}
		}

		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Account could not be reloaded")
		}
		return c.JSON(accountResponse(&account))
	}
}

// DELETE /api/accounts/:id (admin only)
func DeleteAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid account id")
		}

		var account models.Account
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Account not found")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Transaction could not be started")
		}
		if err := tx.Where("stock_kind = ? AND stock_id = ?", models.StockAccount, id).
			Delete(&models.Assignment{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Assignments could not be deleted")
		}
		if err := tx.Delete(&account).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Account could not be deleted")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Delete could not be completed")
		}

		return c.JSON(fiber.Map{"message": "Account deleted"})
	}
}
