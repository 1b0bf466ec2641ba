package pricing

import "github.com/voltio/panelquote/internal/models"

// StandardStrategy applies no discount; tax on the raw subtotal.
type StandardStrategy struct{}

func (StandardStrategy) Name() string { return "Standard Pricing" }

func (StandardStrategy) Calculate(items []models.QuotationItem) Result {
	breakdown := make([]LineBreakdown, 0, len(items))
	subtotal := 0.0
	for _, item := range items {
		breakdown = append(breakdown, LineBreakdown{
			Item:            item,
			OriginalPrice:   item.TotalPrice,
			DiscountedPrice: item.TotalPrice,
		})
		subtotal += item.TotalPrice
	}
	tax := subtotal * TaxRate
	return Result{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal + tax,
		Breakdown: breakdown,
	}
}
