package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quotation statuses. Transitions happen through QuotationService only.
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusSent     = "sent"
)

// Quotation is the persisted quotation header. Revisions are append-only:
// a revision is a new row pointing back via ParentQuoteID.
type Quotation struct {
	ID                    string `gorm:"primaryKey;size:36"`
	ClientID              string `gorm:"size:36;index;not null"`
	CreatedBy             string `gorm:"size:36;not null"`
	Status                string `gorm:"size:16;not null;default:draft"`
	QuoteNumber           string `gorm:"size:32;index"`
	QuoteTitle            string `gorm:"size:255"`
	ValidityDays          int
	PaymentTerms          string
	DeliveryTimeline      string
	IncludeWarranty       bool
	WarrantyPeriod        string `gorm:"size:32"`
	IncludeImages         bool
	IncludeSpecifications bool
	TermsAndConditions    string
	Subtotal              float64
	Total                 float64
	PricingStrategy       string          `gorm:"size:32;not null;default:standard"`
	Version               int             `gorm:"not null;default:1"`
	ParentQuoteID         string          `gorm:"size:36;index"`
	Items                 []QuotationItem `gorm:"foreignKey:QuotationID"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (q *Quotation) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// QuotationItem is one catalog line on a quotation.
type QuotationItem struct {
	ID          string `gorm:"primaryKey;size:36"`
	QuotationID string `gorm:"size:36;index;not null"`
	ComponentID string `gorm:"size:36;index;not null"`
	Quantity    int    `gorm:"not null"`
	UnitPrice   float64
	TotalPrice  float64
	CreatedAt   time.Time
}

func (i *QuotationItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
