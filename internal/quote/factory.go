package quote

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltio/panelquote/internal/models"
)

// Template types understood by the factory. Anything else is treated as
// custom: the caller supplies every header field itself.
const (
	TemplateMinimal  = "minimal"
	TemplateStandard = "standard"
	TemplateDetailed = "detailed"
	TemplateCustom   = "custom"
)

// Every template shares the house payment terms.
const defaultPaymentTerms = "80% upfront, 20% on completion before delivery"

// Template selects a set of pre-configured header defaults.
type Template struct {
	Type            string
	IncludeWarranty bool
}

// CreateFromTemplate returns a draft quotation header pre-filled from the
// named template.
func CreateFromTemplate(tpl Template, clientID, userID string) models.Quotation {
	now := time.Now().UTC()
	q := models.Quotation{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		CreatedBy: userID,
		Status:    models.StatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch tpl.Type {
	case TemplateMinimal:
		q.QuoteTitle = "Quick Quote"
		q.ValidityDays = 7
		q.PaymentTerms = defaultPaymentTerms
		q.DeliveryTimeline = "2-3 weeks"
	case TemplateStandard:
		q.QuoteTitle = "Detailed Quotation"
		q.ValidityDays = 30
		q.PaymentTerms = defaultPaymentTerms
		q.DeliveryTimeline = "4-6 weeks"
		q.IncludeImages = true
		q.IncludeWarranty = tpl.IncludeWarranty
		q.WarrantyPeriod = "12 months"
	case TemplateDetailed:
		q.QuoteTitle = "Detailed Quotation"
		q.ValidityDays = 30
		q.PaymentTerms = defaultPaymentTerms
		q.DeliveryTimeline = "6-8 weeks"
		q.IncludeImages = true
		q.IncludeWarranty = tpl.IncludeWarranty
		q.WarrantyPeriod = "12 months"
	}
	return q
}

// CreateRevision copies every field of the original, assigns a new id,
// increments the version, points back at the parent, and resets the status
// to draft. The original row is untouched; revisions form an append-only
// chain. This is the only sanctioned way to "edit" an approved quotation.
func CreateRevision(original models.Quotation) models.Quotation {
	now := time.Now().UTC()
	revision := original
	revision.ID = uuid.NewString()
	revision.Version = original.Version + 1
	revision.Status = models.StatusDraft
	revision.ParentQuoteID = original.ID
	revision.Items = nil
	revision.CreatedAt = now
	revision.UpdatedAt = now
	return revision
}
