package events

import (
	"context"

	"github.com/voltio/panelquote/internal/platform/logger"
)

// Learner is the slice of the AI service the observer needs.
type Learner interface {
	LearnFromQuote(ctx context.Context, quoteID string) error
}

// QuotationObserver reacts to quotation lifecycle events: created quotes
// feed pattern learning, updated quotes are audit-logged. It is constructed
// once at startup and holds no other state.
type QuotationObserver struct {
	learner Learner
	log     *logger.Logger

	unsubscribe []func()
}

func NewQuotationObserver(learner Learner, log *logger.Logger) *QuotationObserver {
	return &QuotationObserver{learner: learner, log: log}
}

// Register subscribes the observer to the bus. Stop undoes it.
func (o *QuotationObserver) Register(bus *Bus) {
	o.unsubscribe = append(o.unsubscribe,
		bus.Subscribe(QuotationCreated, o.onCreated),
		bus.Subscribe(QuotationUpdated, o.onUpdated),
	)
}

// Stop removes the observer's subscriptions.
func (o *QuotationObserver) Stop() {
	for _, u := range o.unsubscribe {
		u()
	}
	o.unsubscribe = nil
}

func (o *QuotationObserver) onCreated(ctx context.Context, ev Event) error {
	payload, ok := ev.Payload.(QuotationPayload)
	if !ok {
		o.log.Warn("unexpected payload for quotation created event")
		return nil
	}
	// Learning is best-effort; a failure here must never surface to the
	// quotation workflow.
	if err := o.learner.LearnFromQuote(ctx, payload.QuotationID); err != nil {
		o.log.Warn("pattern learning failed", "quotation_id", payload.QuotationID, "error", err)
	}
	return nil
}

func (o *QuotationObserver) onUpdated(ctx context.Context, ev Event) error {
	payload, ok := ev.Payload.(QuotationPayload)
	if !ok {
		o.log.Warn("unexpected payload for quotation updated event")
		return nil
	}
	o.log.Info("quotation updated",
		"quotation_id", payload.QuotationID,
		"client_id", payload.ClientID,
		"status", payload.Status,
		"total", payload.Total,
	)
	return nil
}
