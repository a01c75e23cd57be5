package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// License: seat-based stock. Availability is not stored; it is derived as
// Seats minus the count of open assignments, so the two can never diverge.
type License struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:100;not null"`
	ProductKey     string `gorm:"size:255"`
	Manufacturer   string `gorm:"size:100"`
	Seats          int    `gorm:"not null"`
	ExpirationDate *time.Time
	PurchaseCost   decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
