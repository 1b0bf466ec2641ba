package quote

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/models"
)

// Build validation failures. The title check always runs first.
var (
	ErrMissingTitle   = &apperr.ValidationError{Field: "quote_title", Msg: "required"}
	ErrEmptyQuotation = &apperr.ValidationError{Field: "items", Msg: "quotation must have at least one item"}
)

// BuildResult is the frozen output of a successful Build.
type BuildResult struct {
	Quotation models.Quotation
	Items     []models.QuotationItem
}

// Builder accumulates quotation header fields and line items step by step.
// Every setter returns the builder for chaining. After a successful Build
// the builder is reusable only after Reset.
type Builder struct {
	quotation models.Quotation
	items     []models.QuotationItem
}

func NewBuilder(clientID, userID string) *Builder {
	now := time.Now().UTC()
	return &Builder{
		quotation: models.Quotation{
			ID:        uuid.NewString(),
			ClientID:  clientID,
			CreatedBy: userID,
			Status:    models.StatusDraft,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *Builder) SetTitle(title string) *Builder {
	b.quotation.QuoteTitle = title
	return b
}

func (b *Builder) SetQuoteNumber(number string) *Builder {
	b.quotation.QuoteNumber = number
	return b
}

func (b *Builder) SetValidity(days int) *Builder {
	b.quotation.ValidityDays = days
	return b
}

func (b *Builder) SetPaymentTerms(terms string) *Builder {
	b.quotation.PaymentTerms = terms
	return b
}

func (b *Builder) SetDeliveryTimeline(timeline string) *Builder {
	b.quotation.DeliveryTimeline = timeline
	return b
}

func (b *Builder) SetWarranty(period string) *Builder {
	b.quotation.WarrantyPeriod = period
	b.quotation.IncludeWarranty = true
	return b
}

func (b *Builder) IncludeSpecifications(include bool) *Builder {
	b.quotation.IncludeSpecifications = include
	return b
}

func (b *Builder) IncludeImages(include bool) *Builder {
	b.quotation.IncludeImages = include
	return b
}

func (b *Builder) SetTermsAndConditions(terms string) *Builder {
	b.quotation.TermsAndConditions = terms
	return b
}

// AddItem appends a line with a fresh id and timestamp;
// total price is quantity × unit price.
func (b *Builder) AddItem(componentID string, quantity int, unitPrice float64) *Builder {
	b.items = append(b.items, models.QuotationItem{
		ID:          uuid.NewString(),
		QuotationID: b.quotation.ID,
		ComponentID: componentID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  float64(quantity) * unitPrice,
		CreatedAt:   time.Now().UTC(),
	})
	return b
}

// ItemInput is a batch entry for AddItems.
type ItemInput struct {
	ComponentID string
	Quantity    int
	UnitPrice   float64
}

func (b *Builder) AddItems(items []ItemInput) *Builder {
	for _, it := range items {
		b.AddItem(it.ComponentID, it.Quantity, it.UnitPrice)
	}
	return b
}

// Build validates the draft and freezes it into a quotation/items pair.
// It fails fast on the first violated rule: title first, then items.
func (b *Builder) Build() (*BuildResult, error) {
	if b.quotation.QuoteTitle == "" {
		return nil, ErrMissingTitle
	}
	if len(b.items) == 0 {
		return nil, ErrEmptyQuotation
	}

	subtotal := 0.0
	for _, it := range b.items {
		subtotal += it.TotalPrice
	}
	b.quotation.Subtotal = subtotal

	items := make([]models.QuotationItem, len(b.items))
	copy(items, b.items)
	return &BuildResult{Quotation: b.quotation, Items: items}, nil
}

// Reset clears the accumulated items but preserves header fields already set.
func (b *Builder) Reset() *Builder {
	b.items = nil
	return b
}
