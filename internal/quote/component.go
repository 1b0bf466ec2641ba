package quote

import (
	"github.com/voltio/panelquote/internal/apperr"
)

// TaxRate is the VAT applied once at the quotation root (7.5%).
const TaxRate = 0.075

// Component is the shared contract of the quotation tree. Items are leaves,
// sections and the quotation root are composites. Prices and quantities are
// computed on demand from the current children so they are always consistent
// with the latest tree state; trees are small enough that recomputation is
// cheap.
type Component interface {
	ID() string
	Name() string
	Price() float64
	Quantity() int
	Children() []Component
	IsComposite() bool
	AddChild(c Component) error
	RemoveChild(id string) error
	// FindChild walks the subtree depth-first in insertion order and returns
	// the first component with the given id, or nil.
	FindChild(id string) Component
}

// Item is a leaf line: quantity × unit price of one catalog component.
type Item struct {
	id            string
	name          string
	componentType string
	quantity      int
	unitPrice     float64
}

func NewItem(id, name string, quantity int, unitPrice float64, componentType string) *Item {
	return &Item{id: id, name: name, quantity: quantity, unitPrice: unitPrice, componentType: componentType}
}

func (i *Item) ID() string            { return i.id }
func (i *Item) Name() string          { return i.name }
func (i *Item) ComponentType() string { return i.componentType }
func (i *Item) Price() float64        { return float64(i.quantity) * i.unitPrice }
func (i *Item) Quantity() int         { return i.quantity }
func (i *Item) UnitPrice() float64    { return i.unitPrice }
func (i *Item) Children() []Component { return nil }
func (i *Item) IsComposite() bool     { return false }

func (i *Item) SetQuantity(q int)        { i.quantity = q }
func (i *Item) SetUnitPrice(p float64)   { i.unitPrice = p }
func (i *Item) FindChild(string) Component { return nil }

func (i *Item) AddChild(Component) error {
	return &apperr.InvalidOperation{Op: "AddChild", Msg: "cannot add child to a leaf item"}
}

func (i *Item) RemoveChild(string) error {
	return &apperr.InvalidOperation{Op: "RemoveChild", Msg: "cannot remove child from a leaf item"}
}

// Section groups items (or nested sections) and applies a section-level
// discount to the sum of its children.
type Section struct {
	id              string
	name            string
	discountPercent float64 // fraction in [0,1]
	children        []Component
}

func NewSection(id, name string, discountPercent float64) *Section {
	return &Section{id: id, name: name, discountPercent: discountPercent}
}

func (s *Section) ID() string        { return s.id }
func (s *Section) Name() string      { return s.name }
func (s *Section) IsComposite() bool { return true }

func (s *Section) Price() float64 {
	subtotal := 0.0
	for _, c := range s.children {
		subtotal += c.Price()
	}
	return subtotal - subtotal*s.discountPercent
}

// DiscountAmount is the absolute amount removed by the section discount.
func (s *Section) DiscountAmount() float64 {
	subtotal := 0.0
	for _, c := range s.children {
		subtotal += c.Price()
	}
	return subtotal * s.discountPercent
}

func (s *Section) SetDiscount(fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return apperr.Validation("discount", "must be between 0 and 1")
	}
	s.discountPercent = fraction
	return nil
}

func (s *Section) Quantity() int {
	total := 0
	for _, c := range s.children {
		total += c.Quantity()
	}
	return total
}

func (s *Section) Children() []Component {
	out := make([]Component, len(s.children))
	copy(out, s.children)
	return out
}

func (s *Section) AddChild(c Component) error {
	if c == Component(s) || c.FindChild(s.id) != nil {
		return &apperr.InvalidOperation{Op: "AddChild", Msg: "component cannot become its own descendant"}
	}
	s.children = append(s.children, c)
	return nil
}

// RemoveChild detaches a direct child only; it does not recurse. Callers
// needing deep removal locate the owning parent via FindChild first.
func (s *Section) RemoveChild(id string) error {
	for i, c := range s.children {
		if c.ID() == id {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (s *Section) FindChild(id string) Component {
	for _, c := range s.children {
		if c.ID() == id {
			return c
		}
		if c.IsComposite() {
			if found := c.FindChild(id); found != nil {
				return found
			}
		}
	}
	return nil
}

// ItemCount counts leaf items in the subtree.
func (s *Section) ItemCount() int {
	count := 0
	for _, c := range s.children {
		if sub, ok := c.(*Section); ok {
			count += sub.ItemCount()
			continue
		}
		count++
	}
	return count
}

// Quotation is the tree root: an ordered list of sections plus the
// document-level tax. Tax is applied once here, never per section.
type Quotation struct {
	id       string
	name     string
	clientID string
	sections []*Section
}

func NewQuotation(id, name, clientID string) *Quotation {
	return &Quotation{id: id, name: name, clientID: clientID}
}

func (q *Quotation) ID() string        { return q.id }
func (q *Quotation) Name() string      { return q.name }
func (q *Quotation) ClientID() string  { return q.clientID }
func (q *Quotation) IsComposite() bool { return true }

func (q *Quotation) Subtotal() float64 {
	subtotal := 0.0
	for _, s := range q.sections {
		subtotal += s.Price()
	}
	return subtotal
}

func (q *Quotation) Tax() float64 { return q.Subtotal() * TaxRate }

func (q *Quotation) Price() float64 { return q.Subtotal() + q.Tax() }

func (q *Quotation) Quantity() int {
	total := 0
	for _, s := range q.sections {
		total += s.Quantity()
	}
	return total
}

func (q *Quotation) Children() []Component {
	out := make([]Component, len(q.sections))
	for i, s := range q.sections {
		out[i] = s
	}
	return out
}

// AddChild accepts sections only; the root owns no loose items.
func (q *Quotation) AddChild(c Component) error {
	section, ok := c.(*Section)
	if !ok {
		return &apperr.InvalidOperation{Op: "AddChild", Msg: "only sections can be added to a quotation"}
	}
	if section.FindChild(q.id) != nil {
		return &apperr.InvalidOperation{Op: "AddChild", Msg: "component cannot become its own descendant"}
	}
	q.sections = append(q.sections, section)
	return nil
}

func (q *Quotation) RemoveChild(id string) error {
	for i, s := range q.sections {
		if s.ID() == id {
			q.sections = append(q.sections[:i], q.sections[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (q *Quotation) FindChild(id string) Component {
	for _, s := range q.sections {
		if s.ID() == id {
			return s
		}
		if found := s.FindChild(id); found != nil {
			return found
		}
	}
	return nil
}

func (q *Quotation) SectionCount() int { return len(q.sections) }

func (q *Quotation) TotalItemCount() int {
	count := 0
	for _, s := range q.sections {
		count += s.ItemCount()
	}
	return count
}

// SectionBreakdown is one line of the per-section reconciliation.
type SectionBreakdown struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Subtotal float64 `json:"subtotal"` // before section discount
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"` // after section discount
	Items    int     `json:"items"`
}

// PricingBreakdown reconciles the document totals section by section.
type PricingBreakdown struct {
	Subtotal float64            `json:"subtotal"`
	Tax      float64            `json:"tax"`
	Total    float64            `json:"total"`
	Sections []SectionBreakdown `json:"sections"`
}

func (q *Quotation) PricingBreakdown() PricingBreakdown {
	sections := make([]SectionBreakdown, 0, len(q.sections))
	for _, s := range q.sections {
		sections = append(sections, SectionBreakdown{
			ID:       s.ID(),
			Name:     s.Name(),
			Subtotal: s.Price() + s.DiscountAmount(),
			Discount: s.DiscountAmount(),
			Total:    s.Price(),
			Items:    s.ItemCount(),
		})
	}
	return PricingBreakdown{
		Subtotal: q.Subtotal(),
		Tax:      q.Tax(),
		Total:    q.Price(),
		Sections: sections,
	}
}
