package models

import "time"

type AssetEventAction string

const (
	AssetEventCheckout AssetEventAction = "checkout"
	AssetEventCheckin  AssetEventAction = "checkin"
)

// AssetEvent: append-only history of asset checkouts and checkins. Written by
// the ledger, read only by the history endpoints, never consulted for
// availability checks.
type AssetEvent struct {
	ID           uint             `gorm:"primaryKey"`
	AssetID      uint             `gorm:"index;not null"`
	Action       AssetEventAction `gorm:"size:20;not null"`
	AssigneeKind AssigneeKind     `gorm:"size:20"`
	AssigneeID   uint
	AssigneeName string `gorm:"size:100"`
	Notes        string `gorm:"size:255"`
	CreatedAt    time.Time
}
