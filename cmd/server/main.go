package main

import (
	"os"
	"strings"
	"time"

	"assettrack-backend/internal/admin"
	"assettrack-backend/internal/auth"
	"assettrack-backend/internal/config"
	"assettrack-backend/internal/database"
	"assettrack-backend/internal/inventory"
	"assettrack-backend/internal/models"
	"assettrack-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin-only management
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/locations", admin.CreateLocationHandler())
	adminRoutes.Get("/locations", admin.ListLocationsHandler())
	adminRoutes.Get("/locations/:id", admin.GetLocationHandler())
	adminRoutes.Put("/locations/:id", admin.UpdateLocationHandler())
	adminRoutes.Delete("/locations/:id", admin.DeleteLocationHandler())

	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())

	// Stock CRUD: reads for everyone signed in, writes for admins
	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/accessories", inventory.ListAccessoriesHandler())
	protected.Get("/accessories/:id", inventory.GetAccessoryHandler())
	protected.Post("/accessories", adminOnly, inventory.CreateAccessoryHandler())
	protected.Put("/accessories/:id", adminOnly, inventory.UpdateAccessoryHandler())
	protected.Delete("/accessories/:id", adminOnly, inventory.DeleteAccessoryHandler())

	protected.Get("/components", inventory.ListComponentsHandler())
	protected.Get("/components/:id", inventory.GetComponentHandler())
	protected.Post("/components", adminOnly, inventory.CreateComponentHandler())
	protected.Put("/components/:id", adminOnly, inventory.UpdateComponentHandler())
	protected.Delete("/components/:id", adminOnly, inventory.DeleteComponentHandler())

	protected.Get("/accounts", inventory.ListAccountsHandler())
	protected.Get("/accounts/:id", inventory.GetAccountHandler())
	protected.Post("/accounts", adminOnly, inventory.CreateAccountHandler())
	protected.Put("/accounts/:id", adminOnly, inventory.UpdateAccountHandler())
	protected.Delete("/accounts/:id", adminOnly, inventory.DeleteAccountHandler())

	protected.Get("/licenses", inventory.ListLicensesHandler())
	protected.Get("/licenses/:id", inventory.GetLicenseHandler())
	protected.Post("/licenses", adminOnly, inventory.CreateLicenseHandler())
	protected.Put("/licenses/:id", adminOnly, inventory.UpdateLicenseHandler())
	protected.Delete("/licenses/:id", adminOnly, inventory.DeleteLicenseHandler())

	protected.Get("/assets", inventory.ListAssetsHandler())
	protected.Get("/assets/:id", inventory.GetAssetHandler())
	protected.Post("/assets", adminOnly, inventory.CreateAssetHandler())
	protected.Put("/assets/:id", adminOnly, inventory.UpdateAssetHandler())
	protected.Delete("/assets/:id", adminOnly, inventory.DeleteAssetHandler())

	// Checkout / checkin / assignment history
	for kind, prefix := range map[models.StockKind]string{
		models.StockAccessory: "/accessories",
		models.StockComponent: "/components",
		models.StockAccount:   "/accounts",
		models.StockLicense:   "/licenses",
		models.StockAsset:     "/assets",
	} {
		protected.Post(prefix+"/:id/checkout", inventory.CheckoutHandler(kind))
		protected.Post(prefix+"/:id/checkin/:assignmentId", inventory.CheckinHandler(kind))
		protected.Get(prefix+"/:id/assignments", inventory.ListAssignmentsHandler(kind))
	}
	protected.Post("/assets/:id/checkin", inventory.AssetCheckinHandler())

	// Reports
	protected.Get("/reports/assets.xlsx", report.AssetRegisterHandler())

	log.Info().Str("port", cfg.HTTPPort).Msg("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
