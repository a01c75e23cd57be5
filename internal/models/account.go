package models

import "time"

// Account: shared credential pool (e.g. a SaaS subscription with N logins).
// Checkin soft-closes the assignment like every other kind; history is kept.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Username  string `gorm:"size:100"`
	Category  string `gorm:"size:100"`
	Capacity  int    `gorm:"not null"`
	Available int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
