package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component: fungible stock of internal parts (RAM sticks, SSDs, ...).
type Component struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Serial       string `gorm:"size:120"`
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
