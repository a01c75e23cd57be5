package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp wires the inventory routes without the auth middleware; the
// handlers under test do not read the caller's identity.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	require.NoError(t, db.Create(&models.User{
		Name: "Quinn", Email: "quinn@example.com", PasswordHash: "x", Role: models.RoleStaff,
	}).Error)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	api := app.Group("/api")
	api.Get("/accessories", ListAccessoriesHandler())
	api.Get("/accessories/:id", GetAccessoryHandler())
	api.Post("/accessories", CreateAccessoryHandler())
	api.Put("/accessories/:id", UpdateAccessoryHandler())
	api.Delete("/accessories/:id", DeleteAccessoryHandler())
	api.Post("/accessories/:id/checkout", CheckoutHandler(models.StockAccessory))
	api.Post("/accessories/:id/checkin/:assignmentId", CheckinHandler(models.StockAccessory))
	api.Get("/accessories/:id/assignments", ListAssignmentsHandler(models.StockAccessory))

	api.Get("/licenses/:id", GetLicenseHandler())
	api.Post("/licenses", CreateLicenseHandler())
	api.Post("/licenses/:id/checkout", CheckoutHandler(models.StockLicense))

	api.Get("/assets/:id", GetAssetHandler())
	api.Post("/assets", CreateAssetHandler())
	api.Post("/assets/:id/checkout", CheckoutHandler(models.StockAsset))
	api.Post("/assets/:id/checkin", AssetCheckinHandler())

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func TestAccessoryCheckoutFlow(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/accessories", map[string]interface{}{
		"name": "HDMI Cable", "capacity": 5,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))

	resp, got := doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1, "quantity": 3, "notes": "lab bench",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assignmentID := int(got["id"].(float64))
	assert.Equal(t, "Quinn", got["assignee_name"])

	resp, state := doJSON(t, app, "GET", fmt.Sprintf("/api/accessories/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, state["available"])

	// Over-request is a 400 with an error message and no state change.
	resp, body := doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1, "quantity": 3,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "available")

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkin/%d", id, assignmentID), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Duplicate checkin is rejected.
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkin/%d", id, assignmentID), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, state = doJSON(t, app, "GET", fmt.Sprintf("/api/accessories/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 5, state["available"])
}

func TestCheckoutMissingStock(t *testing.T) {
	app := setupApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/accessories/999/checkout", map[string]interface{}{
		"assignee_id": 1,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCheckoutUnknownAssignee(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/accessories", map[string]interface{}{
		"name": "Mouse", "capacity": 2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))

	resp, body := doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkout", id), map[string]interface{}{
		"assignee_id": 42,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Assignee not found", body["error"])
}

func TestCapacityShrinkRejected(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/accessories", map[string]interface{}{
		"name": "Keyboard", "capacity": 4,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1, "quantity": 3,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, "PUT", fmt.Sprintf("/api/accessories/%d", id), map[string]interface{}{
		"capacity": 2,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "capacity")

	resp, state := doJSON(t, app, "GET", fmt.Sprintf("/api/accessories/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, state["capacity"])
	assert.EqualValues(t, 1, state["available"])

	// Growing works and shifts available by the delta.
	resp, state = doJSON(t, app, "PUT", fmt.Sprintf("/api/accessories/%d", id), map[string]interface{}{
		"capacity": 6,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 6, state["capacity"])
	assert.EqualValues(t, 3, state["available"])
}

func TestRejectedUpdateLeavesRowUntouched(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/accessories", map[string]interface{}{
		"name": "Headset", "capacity": 4,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))

	// A request rejected on one field must not commit another.
	resp, body := doJSON(t, app, "PUT", fmt.Sprintf("/api/accessories/%d", id), map[string]interface{}{
		"capacity": 9, "name": "",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Name cannot be empty", body["error"])

	resp, state := doJSON(t, app, "GET", fmt.Sprintf("/api/accessories/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, state["capacity"])
	assert.EqualValues(t, 4, state["available"])
	assert.Equal(t, "Headset", state["name"])
}

func TestLicenseSeatsAvailableDerived(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/licenses", map[string]interface{}{
		"name": "Editor Pro", "seats": 2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))
	assert.EqualValues(t, 2, created["seats_available"])

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/licenses/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, state := doJSON(t, app, "GET", fmt.Sprintf("/api/licenses/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, state["seats"])
	assert.EqualValues(t, 1, state["seats_available"])
}

func TestAssetCheckoutCheckin(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/assets", map[string]interface{}{
		"name": "MacBook", "asset_tag": "AT-0001",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))
	assert.Equal(t, string(models.AssetStatusReady), created["status"])

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/assets/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1, "expected_return_at": "2026-12-31",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, got := doJSON(t, app, "GET", fmt.Sprintf("/api/assets/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	asset := got["asset"].(map[string]interface{})
	assert.Equal(t, string(models.AssetStatusDeployed), asset["status"])
	assert.EqualValues(t, 0, asset["available"])

	// Second checkout of a deployed asset fails.
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/assets/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/assets/%d/checkin", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, got = doJSON(t, app, "GET", fmt.Sprintf("/api/assets/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	asset = got["asset"].(map[string]interface{})
	assert.Equal(t, string(models.AssetStatusReady), asset["status"])
	history := got["history"].([]interface{})
	assert.Len(t, history, 2)

	// No open assignment left to check in.
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/assets/%d/checkin", id), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssignmentsListing(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/accessories", map[string]interface{}{
		"name": "Webcam", "capacity": 3,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))

	resp, first := doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1, "quantity": 2,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1, "quantity": 1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	firstID := int(first["id"].(float64))
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkin/%d", id, firstID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/accessories/%d/assignments", id), nil)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var all []map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&all))
	assert.Len(t, all, 2)

	req = httptest.NewRequest("GET", fmt.Sprintf("/api/accessories/%d/assignments?open=true", id), nil)
	res, err = app.Test(req, -1)
	require.NoError(t, err)
	var openOnly []map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&openOnly))
	assert.Len(t, openOnly, 1)

	// History listings for unknown stock are 404.
	req = httptest.NewRequest("GET", "/api/accessories/999/assignments", nil)
	res, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestDeleteRemovesAssignments(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/api/accessories", map[string]interface{}{
		"name": "Dock", "capacity": 2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := int(created["id"].(float64))

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/accessories/%d/checkout", id), map[string]interface{}{
		"assignee_id": 1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/accessories/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	database.DB.Model(&models.Assignment{}).
		Where("stock_kind = ? AND stock_id = ?", models.StockAccessory, id).
		Count(&count)
	assert.EqualValues(t, 0, count, "assignments must not outlive their stock")
}
