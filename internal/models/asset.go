package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetStatus string

const (
	AssetStatusReady    AssetStatus = "Ready to Deploy"
	AssetStatusDeployed AssetStatus = "Deployed"
	AssetStatusArchived AssetStatus = "Archived"
)

// Asset: unique stock, capacity fixed at 1. Status only changes inside ledger
// transactions, alongside the assignment row, so it cannot drift from the
// open/closed assignment state.
type Asset struct {
	ID           uint        `gorm:"primaryKey"`
	AssetTag     string      `gorm:"size:60;uniqueIndex;not null"`
	Name         string      `gorm:"size:100;not null"`
	Serial       string      `gorm:"size:120"`
	Model        string      `gorm:"size:100"`
	Manufacturer string      `gorm:"size:100"`
	Status       AssetStatus `gorm:"size:30;not null;default:'Ready to Deploy'"`
	LocationID   *uint       `gorm:"index"`
	Location     *Location
	PurchaseCost decimal.Decimal `gorm:"type:numeric(12,2)"`
	WarrantyEnd  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
