package pricing

import "github.com/voltio/panelquote/internal/models"

// discountTier maps a minimum pre-discount subtotal to a discount rate.
// Tiers are checked top-down; boundaries are inclusive (≥).
type discountTier struct {
	minAmount       float64
	discountPercent float64
}

var bulkTiers = []discountTier{
	{minAmount: 10_000_000, discountPercent: 0.15},
	{minAmount: 5_000_000, discountPercent: 0.10},
	{minAmount: 2_000_000, discountPercent: 0.05},
}

// BulkDiscountStrategy picks one discount rate from the whole-document
// subtotal before discount and applies it uniformly to every line (no
// blended or marginal rates). Tax is computed on the post-discount subtotal.
type BulkDiscountStrategy struct{}

func (BulkDiscountStrategy) Name() string { return "Bulk Discount Strategy" }

func (BulkDiscountStrategy) Calculate(items []models.QuotationItem) Result {
	subtotalBefore := 0.0
	for _, item := range items {
		subtotalBefore += item.TotalPrice
	}
	rate := bulkRate(subtotalBefore)

	breakdown := make([]LineBreakdown, 0, len(items))
	subtotal := 0.0
	for _, item := range items {
		itemDiscount := item.TotalPrice * rate
		discounted := item.TotalPrice - itemDiscount
		breakdown = append(breakdown, LineBreakdown{
			Item:            item,
			OriginalPrice:   item.TotalPrice,
			DiscountedPrice: discounted,
			Discount:        itemDiscount,
		})
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

func bulkRate(amount float64) float64 {
	for _, tier := range bulkTiers {
		if amount >= tier.minAmount {
			return tier.discountPercent
		}
	}
	return 0
}
