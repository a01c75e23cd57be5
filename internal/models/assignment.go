package models

import "time"

// StockKind identifies which inventory table an assignment belongs to.
type StockKind string

const (
	StockAccessory StockKind = "accessory"
	StockComponent StockKind = "component"
	StockLicense   StockKind = "license"
	StockAccount   StockKind = "account"
	StockAsset     StockKind = "asset"
)

// AssigneeKind tags the polymorphic holder of an assignment.
type AssigneeKind string

const (
	AssigneeUser     AssigneeKind = "user"
	AssigneeLocation AssigneeKind = "location"
	AssigneeAsset    AssigneeKind = "asset"
)

func (k AssigneeKind) Valid() bool {
	switch k {
	case AssigneeUser, AssigneeLocation, AssigneeAsset:
		return true
	}
	return false
}

// Assignment records units of a stock held by an assignee. ClosedAt is nil
// while the assignment is open; checkin sets it and nothing else ever does.
type Assignment struct {
	ID               uint         `gorm:"primaryKey"`
	StockKind        StockKind    `gorm:"size:20;not null;index:idx_assignments_stock"`
	StockID          uint         `gorm:"not null;index:idx_assignments_stock"`
	AssigneeKind     AssigneeKind `gorm:"size:20;not null"`
	AssigneeID       uint         `gorm:"not null;index"`
	AssigneeName     string       `gorm:"size:100"`
	Quantity         int          `gorm:"not null"`
	Notes            string       `gorm:"size:255"`
	ExpectedReturnAt *time.Time
	OpenedAt         time.Time  `gorm:"not null;index"`
	ClosedAt         *time.Time `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (a *Assignment) Open() bool {
	return a.ClosedAt == nil
}
