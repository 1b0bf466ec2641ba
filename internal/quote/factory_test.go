package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltio/panelquote/internal/models"
)

func TestTemplates(t *testing.T) {
	minimal := CreateFromTemplate(Template{Type: TemplateMinimal}, "client-1", "user-1")
	assert.Equal(t, "Quick Quote", minimal.QuoteTitle)
	assert.Equal(t, 7, minimal.ValidityDays)
	assert.Equal(t, "2-3 weeks", minimal.DeliveryTimeline)
	assert.Equal(t, defaultPaymentTerms, minimal.PaymentTerms)
	assert.False(t, minimal.IncludeImages)

	standard := CreateFromTemplate(Template{Type: TemplateStandard, IncludeWarranty: true}, "client-1", "user-1")
	assert.Equal(t, 30, standard.ValidityDays)
	assert.Equal(t, "4-6 weeks", standard.DeliveryTimeline)
	assert.True(t, standard.IncludeImages)
	assert.True(t, standard.IncludeWarranty)
	assert.Equal(t, "12 months", standard.WarrantyPeriod)

	detailed := CreateFromTemplate(Template{Type: TemplateDetailed, IncludeWarranty: true}, "client-1", "user-1")
	assert.Equal(t, "6-8 weeks", detailed.DeliveryTimeline)
	assert.Equal(t, 30, detailed.ValidityDays)

	custom := CreateFromTemplate(Template{Type: TemplateCustom}, "client-1", "user-1")
	assert.Empty(t, custom.QuoteTitle)
	assert.Equal(t, models.StatusDraft, custom.Status)
}

func TestCreateRevision(t *testing.T) {
	original := CreateFromTemplate(Template{Type: TemplateStandard}, "client-1", "user-1")
	original.Status = models.StatusApproved
	original.Version = 3
	original.Total = 500000

	revision := CreateRevision(original)

	assert.NotEqual(t, original.ID, revision.ID)
	assert.Equal(t, 4, revision.Version)
	assert.Equal(t, models.StatusDraft, revision.Status)
	assert.Equal(t, original.ID, revision.ParentQuoteID)
	assert.Equal(t, original.Total, revision.Total)
	assert.Nil(t, revision.Items)

	// The parent is untouched; revisions are append-only.
	assert.Equal(t, models.StatusApproved, original.Status)
	assert.Equal(t, 3, original.Version)
}
