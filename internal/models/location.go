package models

import "time"

type Location struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Address   string `gorm:"size:255"`
	City      string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
