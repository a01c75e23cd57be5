package admin

import (
	"strings"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type UpdateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

// POST /api/admin/locations
func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		location := models.Location{
			Name:    body.Name,
			Address: strings.TrimSpace(body.Address),
			City:    strings.TrimSpace(body.City),
		}

		if err := database.DB.Create(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Location could not be created (name may already exist)")
		}
		return c.Status(fiber.StatusCreated).JSON(location)
	}
}

// GET /api/admin/locations
func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var locations []models.Location
		if err := database.DB.Order("name asc").Find(&locations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Locations could not be listed")
		}
		return c.JSON(locations)
	}
}

// GET /api/admin/locations/:id
func GetLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid location id")
		}

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}
		return c.JSON(location)
	}
}

// PUT /api/admin/locations/:id
func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid location id")
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			location.Name = name
		}
		if body.Address != nil {
			location.Address = strings.TrimSpace(*body.Address)
		}
		if body.City != nil {
			location.City = strings.TrimSpace(*body.City)
		}

		if err := database.DB.Save(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Location could not be updated")
		}
		return c.JSON(location)
	}
}

// DELETE /api/admin/locations/:id
func DeleteLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid location id")
		}

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}

		// Locations holding open assignments cannot be removed.
		var open int64
		database.DB.Model(&models.Assignment{}).
			Where("assignee_kind = ? AND assignee_id = ? AND closed_at IS NULL", models.AssigneeLocation, id).
			Count(&open)
		if open > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Location still holds checked-out items")
		}

		if err := database.DB.Delete(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Location could not be deleted")
		}
		return c.JSON(fiber.Map{"message": "Location deleted"})
	}
}
