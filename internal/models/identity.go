package models

// GetID implementations satisfy the repository layer's Identifiable
// constraint.

func (q Quotation) GetID() string        { return q.ID }
func (i QuotationItem) GetID() string    { return i.ID }
func (c Client) GetID() string           { return c.ID }
func (c Component) GetID() string        { return c.ID }
func (p QuotePattern) GetID() string     { return p.ID }
func (r AIRecommendation) GetID() string { return r.ID }
func (m AILearningMetric) GetID() string { return m.ID }
