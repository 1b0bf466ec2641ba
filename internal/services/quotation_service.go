// Package services composes the quotation workflow: building, pricing,
// persistence and event publication in one place so handlers stay thin.
package services

import (
	"context"
	"fmt"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/auth"
	"github.com/voltio/panelquote/internal/events"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/pricing"
	"github.com/voltio/panelquote/internal/quote"
	"github.com/voltio/panelquote/internal/repository"
)

// statusTransitions is the set of allowed status changes. Anything not
// listed is rejected.
var statusTransitions = map[string][]string{
	models.StatusDraft:    {models.StatusPending, models.StatusSent},
	models.StatusPending:  {models.StatusApproved, models.StatusRejected},
	models.StatusApproved: {},
	models.StatusRejected: {},
	models.StatusSent:     {},
}

// statusEvents maps a reached status to the event announcing it.
var statusEvents = map[string]events.Type{
	models.StatusPending:  events.QuotationSubmitted,
	models.StatusApproved: events.QuotationApproved,
	models.StatusRejected: events.QuotationRejected,
}

// QuotationService drives the quotation lifecycle.
type QuotationService struct {
	repos *repository.Repositories
	bus   *events.Bus
}

func NewQuotationService(repos *repository.Repositories, bus *events.Bus) *QuotationService {
	return &QuotationService{repos: repos, bus: bus}
}

// CreateInput carries everything needed to build and price a quotation.
// Template, when set, pre-fills header fields; explicit fields win over
// template defaults.
type CreateInput struct {
	ClientID        string            `json:"client_id"`
	Template        string            `json:"template,omitempty"`
	IncludeWarranty bool              `json:"include_warranty,omitempty"`
	Title           string            `json:"title,omitempty"`
	QuoteNumber     string            `json:"quote_number,omitempty"`
	ValidityDays    int               `json:"validity_days,omitempty"`
	PaymentTerms    string            `json:"payment_terms,omitempty"`
	Items           []quote.ItemInput `json:"items"`
	PricingStrategy string            `json:"pricing_strategy,omitempty"`
}

// Create builds, prices and persists a new quotation, then announces it.
// The created event feeds pattern learning; event handling never affects
// the returned result.
func (s *QuotationService) Create(ctx context.Context, input CreateInput) (*models.Quotation, error) {
	userID, _ := auth.UserIDFromContext(ctx)

	header := quote.CreateFromTemplate(quote.Template{
		Type:            input.Template,
		IncludeWarranty: input.IncludeWarranty,
	}, input.ClientID, userID)

	b := quote.NewBuilder(input.ClientID, userID)
	b.SetTitle(header.QuoteTitle).
		SetValidity(header.ValidityDays).
		SetPaymentTerms(header.PaymentTerms).
		SetDeliveryTimeline(header.DeliveryTimeline)
	if header.IncludeWarranty {
		b.SetWarranty(header.WarrantyPeriod)
	}
	b.IncludeImages(header.IncludeImages)

	if input.Title != "" {
		b.SetTitle(input.Title)
	}
	if input.QuoteNumber != "" {
		b.SetQuoteNumber(input.QuoteNumber)
	}
	if input.ValidityDays > 0 {
		b.SetValidity(input.ValidityDays)
	}
	if input.PaymentTerms != "" {
		b.SetPaymentTerms(input.PaymentTerms)
	}
	b.AddItems(input.Items)

	built, err := b.Build()
	if err != nil {
		return nil, err
	}

	pc := pricing.NewContext(input.PricingStrategy)
	result := pc.Calculate(built.Items)
	built.Quotation.Subtotal = result.Subtotal
	built.Quotation.Total = result.Total
	// Persist the effective strategy so later repricing honours it.
	built.Quotation.PricingStrategy = normalizeStrategy(input.PricingStrategy)

	created, err := s.repos.Quotations.Create(ctx, &built.Quotation)
	if err != nil {
		return nil, err
	}
	for i := range built.Items {
		built.Items[i].QuotationID = created.ID
		if _, err := s.repos.QuotationItems.Create(ctx, &built.Items[i]); err != nil {
			return nil, err
		}
	}
	created.Items = built.Items

	s.bus.Publish(ctx, events.QuotationCreated, events.QuotationPayload{
		QuotationID: created.ID,
		ClientID:    created.ClientID,
		UserID:      userID,
		Status:      created.Status,
		Total:       created.Total,
	})
	return created, nil
}

// Get loads a quotation with its line items.
func (s *QuotationService) Get(ctx context.Context, id string) (*models.Quotation, error) {
	return s.repos.QuotationQueries.FindWithItems(ctx, id)
}

// List returns quotations matching the exact-match filters.
func (s *QuotationService) List(ctx context.Context, filters repository.Filters) ([]models.Quotation, error) {
	return s.repos.Quotations.FindAll(ctx, filters)
}

// Update applies header-field changes and announces the update.
func (s *QuotationService) Update(ctx context.Context, id string, changes map[string]any) (*models.Quotation, error) {
	// Status moves through Transition, versions through Revise.
	delete(changes, "status")
	delete(changes, "version")

	updated, err := s.repos.Quotations.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.publishLifecycle(ctx, events.QuotationUpdated, updated)
	return updated, nil
}

// Transition moves a quotation to a new status, enforcing the allowed
// transition table, and announces the specific lifecycle event.
func (s *QuotationService) Transition(ctx context.Context, id, newStatus string) (*models.Quotation, error) {
	q, err := s.repos.Quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range statusTransitions[q.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &apperr.InvalidOperation{
			Op:  "transition",
			Msg: fmt.Sprintf("cannot move quotation from %s to %s", q.Status, newStatus),
		}
	}

	updated, err := s.repos.Quotations.Update(ctx, id, map[string]any{"status": newStatus})
	if err != nil {
		return nil, err
	}

	if ev, ok := statusEvents[newStatus]; ok {
		s.publishLifecycle(ctx, ev, updated)
	} else {
		s.publishLifecycle(ctx, events.QuotationUpdated, updated)
	}
	return updated, nil
}

// Revise creates a new draft revision of an existing quotation. The parent
// row is untouched; revisions form an append-only chain.
func (s *QuotationService) Revise(ctx context.Context, id string) (*models.Quotation, error) {
	original, err := s.repos.Quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	revision := quote.CreateRevision(*original)
	created, err := s.repos.Quotations.Create(ctx, &revision)
	if err != nil {
		return nil, err
	}

	s.publishLifecycle(ctx, events.QuotationCreated, created)
	return created, nil
}

// Delete removes a quotation and its items, then announces the deletion.
func (s *QuotationService) Delete(ctx context.Context, id string) error {
	q, err := s.repos.Quotations.FindByID(ctx, id)
	if err != nil {
		return err
	}

	items, err := s.repos.QuotationItems.FindAll(ctx, repository.Filters{"quotation_id": id})
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.repos.QuotationItems.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	if err := s.repos.Quotations.Delete(ctx, id); err != nil {
		return err
	}

	s.publishLifecycle(ctx, events.QuotationDeleted, q)
	return nil
}

// AddItem appends a line item to a draft quotation and reprices it.
func (s *QuotationService) AddItem(ctx context.Context, quotationID string, input quote.ItemInput) (*models.Quotation, error) {
	q, err := s.repos.Quotations.FindByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.StatusDraft {
		return nil, &apperr.InvalidOperation{Op: "add_item", Msg: "only draft quotations can be edited"}
	}

	item := &models.QuotationItem{
		QuotationID: quotationID,
		ComponentID: input.ComponentID,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		TotalPrice:  float64(input.Quantity) * input.UnitPrice,
	}
	created, err := s.repos.QuotationItems.Create(ctx, item)
	if err != nil {
		return nil, err
	}

	updated, err := s.reprice(ctx, quotationID, q.PricingStrategy)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ItemAdded, events.ItemPayload{
		QuotationID: quotationID,
		ItemID:      created.ID,
		ComponentID: created.ComponentID,
		Quantity:    created.Quantity,
	})
	return updated, nil
}

// RemoveItem deletes a line item from a draft quotation and reprices it.
func (s *QuotationService) RemoveItem(ctx context.Context, quotationID, itemID string) (*models.Quotation, error) {
	q, err := s.repos.Quotations.FindByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.StatusDraft {
		return nil, &apperr.InvalidOperation{Op: "remove_item", Msg: "only draft quotations can be edited"}
	}

	item, err := s.repos.QuotationItems.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.QuotationID != quotationID {
		return nil, apperr.ErrNotFound
	}
	if err := s.repos.QuotationItems.Delete(ctx, itemID); err != nil {
		return nil, err
	}

	updated, err := s.reprice(ctx, quotationID, q.PricingStrategy)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ItemRemoved, events.ItemPayload{
		QuotationID: quotationID,
		ItemID:      itemID,
		ComponentID: item.ComponentID,
		Quantity:    item.Quantity,
	})
	return updated, nil
}

// reprice recalculates totals with the strategy the quotation was created
// with, so a bulk-discounted quote keeps its discount across item edits.
func (s *QuotationService) reprice(ctx context.Context, quotationID, strategy string) (*models.Quotation, error) {
	items, err := s.repos.QuotationItems.FindAll(ctx, repository.Filters{"quotation_id": quotationID})
	if err != nil {
		return nil, err
	}
	result := pricing.NewContext(strategy).Calculate(items)
	return s.repos.Quotations.Update(ctx, quotationID, map[string]any{
		"subtotal": result.Subtotal,
		"total":    result.Total,
	})
}

// normalizeStrategy maps unknown strategy names to standard, mirroring
// pricing.NewContext's fallback.
func normalizeStrategy(name string) string {
	switch name {
	case pricing.StrategyBulkDiscount, pricing.StrategyCustom:
		return name
	default:
		return pricing.StrategyStandard
	}
}

func (s *QuotationService) publishLifecycle(ctx context.Context, t events.Type, q *models.Quotation) {
	userID, _ := auth.UserIDFromContext(ctx)
	s.bus.Publish(ctx, t, events.QuotationPayload{
		QuotationID: q.ID,
		ClientID:    q.ClientID,
		UserID:      userID,
		Status:      q.Status,
		Total:       q.Total,
	})
}
