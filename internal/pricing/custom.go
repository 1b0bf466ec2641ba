package pricing

import "github.com/voltio/panelquote/internal/models"

// LineRule prices a single line: given the item, return the discount to
// subtract from its total price.
type LineRule func(item models.QuotationItem) (discount float64)

// CustomStrategy applies a caller-supplied rule to every line. With a nil
// rule it behaves like standard pricing.
type CustomStrategy struct {
	RuleName string
	Rule     LineRule
}

func (s CustomStrategy) Name() string {
	if s.RuleName != "" {
		return "Custom Pricing (" + s.RuleName + ")"
	}
	return "Custom Pricing"
}

func (s CustomStrategy) Calculate(items []models.QuotationItem) Result {
	breakdown := make([]LineBreakdown, 0, len(items))
	subtotalBefore := 0.0
	subtotal := 0.0
	for _, item := range items {
		discount := 0.0
		if s.Rule != nil {
			discount = s.Rule(item)
		}
		if discount < 0 {
			discount = 0
		}
		if discount > item.TotalPrice {
			discount = item.TotalPrice
		}
		discounted := item.TotalPrice - discount
		breakdown = append(breakdown, LineBreakdown{
			Item:            item,
			OriginalPrice:   item.TotalPrice,
			DiscountedPrice: discounted,
			Discount:        discount,
		})
		subtotalBefore += item.TotalPrice
		subtotal += discounted
	}

	tax := subtotal * TaxRate
	return Result{
		Subtotal:  subtotal,
		Discount:  subtotalBefore - subtotal,
		Tax:       tax,
		Total:     subtotal + tax,
		Breakdown: breakdown,
	}
}
