package pricing

import "github.com/voltio/panelquote/internal/models"

// Strategy names accepted by NewContext and SetStrategy.
const (
	StrategyStandard     = "standard"
	StrategyBulkDiscount = "bulk_discount"
	StrategyCustom       = "custom"
)

// Context holds the active pricing strategy and can be re-pointed at
// runtime. It never mutates strategy internals, only swaps the instance.
type Context struct {
	strategy Strategy
}

// NewContext builds a context for the named strategy. Unknown names fall
// back to standard pricing.
func NewContext(strategyName string) *Context {
	c := &Context{}
	c.SetStrategy(strategyName)
	return c
}

func (c *Context) SetStrategy(strategyName string) {
	switch strategyName {
	case StrategyBulkDiscount:
		c.strategy = BulkDiscountStrategy{}
	case StrategyCustom:
		c.strategy = CustomStrategy{}
	default:
		c.strategy = StandardStrategy{}
	}
}

// Use installs a caller-supplied strategy instance (the injected-custom
// case).
func (c *Context) Use(s Strategy) {
	if s != nil {
		c.strategy = s
	}
}

func (c *Context) Calculate(items []models.QuotationItem) Result {
	return c.strategy.Calculate(items)
}

func (c *Context) StrategyName() string { return c.strategy.Name() }
