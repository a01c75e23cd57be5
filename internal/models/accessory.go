package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accessory: fungible stock (keyboards, cables, ...). Available is maintained
// by the ledger and must always equal Capacity minus open assignment quantity.
type Accessory struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Category     string `gorm:"size:100"`
	Manufacturer string `gorm:"size:100"`
	LocationID   *uint  `gorm:"index"`
	Location     *Location
	Capacity     int             `gorm:"not null"`
	Available    int             `gorm:"not null"`
	PurchaseCost decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
