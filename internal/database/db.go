package database

import (
	"assettrack-backend/internal/config"
	"assettrack-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Msg("database connected, migration complete")
}

// Migrate creates/updates the schema. Split out from Init so tests can run it
// against their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.Accessory{},
		&models.Component{},
		&models.Account{},
		&models.License{},
		&models.Asset{},
		&models.Assignment{},
		&models.AssetEvent{},
	)
}
