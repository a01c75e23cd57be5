package auth

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"assettrack-backend/internal/config"
	"assettrack-backend/internal/database"
	"assettrack-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}
}

func protectedApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/staff", JWTMiddleware(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/admin", JWTMiddleware(cfg), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Name: "Quinn", Email: "quinn@example.com", Role: models.RoleStaff}
	user.ID = 7

	token, err := GenerateToken(cfg.JWTSecret, user)
	require.NoError(t, err)

	app := protectedApp(cfg)
	req := httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMissingAndMalformedAuth(t *testing.T) {
	app := protectedApp(testConfig())

	req := httptest.NewRequest("GET", "/staff", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWrongSecretRejected(t *testing.T) {
	user := &models.User{Email: "quinn@example.com", Role: models.RoleStaff}
	user.ID = 7
	token, err := GenerateToken("another-secret-another-secret-xx", user)
	require.NoError(t, err)

	app := protectedApp(testConfig())
	req := httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestBootstrapAdminOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := testConfig()
	app := fiber.New()
	app.Post("/register-admin", RegisterAdminHandler(cfg))

	// Concurrent bootstrap calls may create at most one admin.
	const callers = 4
	var wg sync.WaitGroup
	codes := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			body := strings.NewReader(`{"name":"Root","email":"root@example.com","password":"hunter22"}`)
			req := httptest.NewRequest("POST", "/register-admin", body)
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				return
			}
			codes[n] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == fiber.StatusCreated {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one bootstrap call may win")

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	assert.EqualValues(t, 1, admins)

	// Once an admin exists the endpoint stays closed.
	req := httptest.NewRequest("POST", "/register-admin",
		strings.NewReader(`{"name":"Late","email":"late@example.com","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg)

	staff := &models.User{Email: "staff@example.com", Role: models.RoleStaff}
	staff.ID = 1
	staffToken, err := GenerateToken(cfg.JWTSecret, staff)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminUser := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	adminUser.ID = 2
	adminToken, err := GenerateToken(cfg.JWTSecret, adminUser)
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
