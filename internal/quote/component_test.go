package quote

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltio/panelquote/internal/apperr"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLeafItemRejectsChildren(t *testing.T) {
	item := NewItem("i1", "ACB 630A", 2, 150000, "ACB")

	err := item.AddChild(NewItem("i2", "MCB 32A", 1, 4500, "MCB"))
	var invalid *apperr.InvalidOperation
	require.ErrorAs(t, err, &invalid)

	err = item.RemoveChild("i2")
	require.ErrorAs(t, err, &invalid)

	assert.Empty(t, item.Children())
	assert.False(t, item.IsComposite())
}

func TestItemPrice(t *testing.T) {
	item := NewItem("i1", "Contactor 40A", 3, 12000, "Contactor")
	assert.Equal(t, 36000.0, item.Price())
	assert.Equal(t, 3, item.Quantity())
}

func TestSectionDiscount(t *testing.T) {
	section := NewSection("s1", "Distribution", 0)
	require.NoError(t, section.AddChild(NewItem("i1", "MCCB 250A", 2, 50000, "MCCB")))
	require.NoError(t, section.AddChild(NewItem("i2", "MCB 63A", 10, 3000, "MCB")))

	// 130000 subtotal, no discount yet.
	assert.Equal(t, 130000.0, section.Price())

	require.NoError(t, section.SetDiscount(0.1))
	assert.True(t, almostEqual(section.Price(), 117000))
	assert.True(t, almostEqual(section.DiscountAmount(), 13000))
}

func TestSectionDiscountValidation(t *testing.T) {
	section := NewSection("s1", "Main", 0)
	require.Error(t, section.SetDiscount(-0.1))
	require.Error(t, section.SetDiscount(1.5))
	require.NoError(t, section.SetDiscount(1))
}

func TestRemoveChildDirectOnly(t *testing.T) {
	outer := NewSection("outer", "Panel", 0)
	inner := NewSection("inner", "Incomers", 0)
	require.NoError(t, inner.AddChild(NewItem("i1", "ACB 1600A", 1, 900000, "ACB")))
	require.NoError(t, outer.AddChild(inner))

	// The item is a grandchild of outer; removal must not recurse.
	err := outer.RemoveChild("i1")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// Deep removal goes through FindChild to locate the owning parent.
	owner := outer.FindChild("inner")
	require.NotNil(t, owner)
	require.NoError(t, owner.RemoveChild("i1"))
	assert.Equal(t, 0, inner.ItemCount())
}

func TestFindChildDepthFirstInsertionOrder(t *testing.T) {
	root := NewSection("root", "Panel", 0)
	first := NewSection("first", "Incomers", 0)
	second := NewSection("second", "Outgoings", 0)
	require.NoError(t, first.AddChild(NewItem("target", "MCB 32A", 1, 4500, "MCB")))
	require.NoError(t, second.AddChild(NewItem("other", "MCB 32A", 1, 4500, "MCB")))
	require.NoError(t, root.AddChild(first))
	require.NoError(t, root.AddChild(second))

	found := root.FindChild("target")
	require.NotNil(t, found)
	assert.Equal(t, "target", found.ID())
	assert.Nil(t, root.FindChild("missing"))
}

func TestCycleGuard(t *testing.T) {
	parent := NewSection("parent", "Panel", 0)
	child := NewSection("child", "Sub", 0)
	require.NoError(t, parent.AddChild(child))

	var invalid *apperr.InvalidOperation
	require.ErrorAs(t, child.AddChild(parent), &invalid)
	require.ErrorAs(t, parent.AddChild(parent), &invalid)
}

func TestQuotationAcceptsSectionsOnly(t *testing.T) {
	q := NewQuotation("q1", "Factory LV Panel", "client-1")

	var invalid *apperr.InvalidOperation
	require.ErrorAs(t, q.AddChild(NewItem("i1", "MCB", 1, 100, "MCB")), &invalid)

	require.NoError(t, q.AddChild(NewSection("s1", "Main", 0)))
	assert.Equal(t, 1, q.SectionCount())
}

func TestQuotationTaxAppliedOnceAtRoot(t *testing.T) {
	q := NewQuotation("q1", "Factory LV Panel", "client-1")

	discounted := NewSection("s1", "Incomers", 0.1)
	require.NoError(t, discounted.AddChild(NewItem("i1", "ACB 1600A", 1, 1000000, "ACB")))
	plain := NewSection("s2", "Outgoings", 0)
	require.NoError(t, plain.AddChild(NewItem("i2", "MCCB 250A", 2, 50000, "MCCB")))
	require.NoError(t, q.AddChild(discounted))
	require.NoError(t, q.AddChild(plain))

	// 900000 + 100000 after section discounts; tax on the document subtotal.
	require.True(t, almostEqual(q.Subtotal(), 1000000))
	assert.True(t, almostEqual(q.Tax(), 75000))
	assert.True(t, almostEqual(q.Price(), 1075000))
	assert.Equal(t, 2, q.TotalItemCount())

	// Pricing is pure: repeated evaluation without mutation is bit-identical.
	assert.Equal(t, q.Price(), q.Price())
	assert.Equal(t, discounted.Price(), discounted.Price())
	assert.Equal(t, q.Subtotal(), q.Subtotal())
}

func TestPricingBreakdown(t *testing.T) {
	q := NewQuotation("q1", "Panel", "client-1")
	section := NewSection("s1", "Main", 0.05)
	require.NoError(t, section.AddChild(NewItem("i1", "MCCB 400A", 2, 100000, "MCCB")))
	require.NoError(t, q.AddChild(section))

	breakdown := q.PricingBreakdown()
	require.Len(t, breakdown.Sections, 1)
	line := breakdown.Sections[0]
	assert.True(t, almostEqual(line.Subtotal, 200000))
	assert.True(t, almostEqual(line.Discount, 10000))
	assert.True(t, almostEqual(line.Total, 190000))
	assert.Equal(t, 1, line.Items)
	assert.True(t, almostEqual(breakdown.Total, breakdown.Subtotal+breakdown.Tax))
}
