package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:255;not null"`
	CompanyName string `gorm:"size:255"`
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:32"`
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
