package pricing

import "github.com/voltio/panelquote/internal/models"

// TaxRate is the VAT applied to the post-discount subtotal (7.5%).
const TaxRate = 0.075

// LineBreakdown records how one line was priced so callers can render a
// line-by-line reconciliation.
type LineBreakdown struct {
	Item            models.QuotationItem `json:"item"`
	OriginalPrice   float64              `json:"original_price"`
	DiscountedPrice float64              `json:"discounted_price"`
	Discount        float64              `json:"discount"`
}

// Result is the full price computation for a list of quote items.
type Result struct {
	Subtotal  float64         `json:"subtotal"` // after discount
	Discount  float64         `json:"discount"`
	Tax       float64         `json:"tax"`
	Total     float64         `json:"total"`
	Breakdown []LineBreakdown `json:"breakdown"`
}

// Strategy is a pricing algorithm over quote line items.
type Strategy interface {
	Calculate(items []models.QuotationItem) Result
	Name() string
}
