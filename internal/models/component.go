package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Component is a catalog entry for an LV panel part (breaker, contactor,
// meter, busbar, enclosure, ...).
type Component struct {
	ID            string `gorm:"primaryKey;size:36"`
	Name          string `gorm:"size:255;not null"`
	Category      string `gorm:"size:64;index"` // e.g. ACB, MCCB, MCB, Contactor
	Manufacturer  string `gorm:"size:128;index"`
	Vendor        string `gorm:"size:128"`
	Amperage      string `gorm:"size:32"`
	Specification string
	UnitPrice     float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c *Component) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
