package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltio/panelquote/internal/models"
)

func TestBuildRequiresTitleBeforeItems(t *testing.T) {
	// Both rules violated: the title check runs first.
	b := NewBuilder("client-1", "user-1")
	_, err := b.Build()
	require.ErrorIs(t, err, ErrMissingTitle)

	b.SetTitle("Panel Quote")
	_, err = b.Build()
	require.ErrorIs(t, err, ErrEmptyQuotation)
}

func TestBuildComputesSubtotal(t *testing.T) {
	b := NewBuilder("client-1", "user-1")
	b.SetTitle("Panel Quote").
		AddItem("comp-1", 2, 50000).
		AddItem("comp-2", 10, 3000)

	result, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 130000.0, result.Quotation.Subtotal)
	assert.Equal(t, models.StatusDraft, result.Quotation.Status)
	assert.Equal(t, 1, result.Quotation.Version)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 100000.0, result.Items[0].TotalPrice)
	assert.Equal(t, result.Quotation.ID, result.Items[0].QuotationID)
	assert.NotEmpty(t, result.Items[0].ID)
}

func TestBuildFreezesItems(t *testing.T) {
	b := NewBuilder("client-1", "user-1")
	b.SetTitle("Panel Quote").AddItem("comp-1", 1, 1000)

	result, err := b.Build()
	require.NoError(t, err)

	// Later mutations must not leak into the frozen result.
	b.AddItem("comp-2", 1, 2000)
	assert.Len(t, result.Items, 1)
}

func TestResetClearsItemsKeepsHeader(t *testing.T) {
	b := NewBuilder("client-1", "user-1")
	b.SetTitle("Panel Quote").
		SetPaymentTerms("80% upfront, 20% on completion before delivery").
		AddItem("comp-1", 1, 1000)

	_, err := b.Build()
	require.NoError(t, err)

	b.Reset()
	_, err = b.Build()
	require.ErrorIs(t, err, ErrEmptyQuotation)

	b.AddItem("comp-2", 3, 500)
	result, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "Panel Quote", result.Quotation.QuoteTitle)
	assert.Equal(t, 1500.0, result.Quotation.Subtotal)
}

func TestAddItemsBatch(t *testing.T) {
	b := NewBuilder("client-1", "user-1")
	b.SetTitle("Panel Quote").AddItems([]ItemInput{
		{ComponentID: "comp-1", Quantity: 2, UnitPrice: 100},
		{ComponentID: "comp-2", Quantity: 1, UnitPrice: 50},
	})

	result, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 250.0, result.Quotation.Subtotal)
}
