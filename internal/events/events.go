// Package events provides in-process publish/subscribe for domain events.
// Handlers run concurrently per publish; one failing handler never blocks
// the others.
package events

import "time"

// Type identifies a domain event. The set is closed; handlers switch on it.
type Type string

const (
	QuotationCreated   Type = "quotation.created"
	QuotationUpdated   Type = "quotation.updated"
	QuotationDeleted   Type = "quotation.deleted"
	QuotationSubmitted Type = "quotation.submitted"
	QuotationApproved  Type = "quotation.approved"
	QuotationRejected  Type = "quotation.rejected"

	ItemAdded   Type = "quotation.item.added"
	ItemUpdated Type = "quotation.item.updated"
	ItemRemoved Type = "quotation.item.removed"

	UserLogin  Type = "user.login"
	UserLogout Type = "user.logout"

	CacheInvalidated Type = "cache.invalidated"
	ErrorOccurred    Type = "error.occurred"
)

// Event is the envelope delivered to every subscriber.
type Event struct {
	Type      Type
	Timestamp time.Time
	Payload   any
}

// QuotationPayload accompanies the quotation lifecycle events.
type QuotationPayload struct {
	QuotationID string
	ClientID    string
	UserID      string
	Status      string
	Total       float64
}

// ItemPayload accompanies the quotation item events.
type ItemPayload struct {
	QuotationID string
	ItemID      string
	ComponentID string
	Quantity    int
}

// UserPayload accompanies login/logout events.
type UserPayload struct {
	UserID string
}

// CachePayload accompanies cache invalidation events.
type CachePayload struct {
	Prefix string
	Keys   int
}

// ErrorPayload accompanies error events.
type ErrorPayload struct {
	Source string
	Err    error
}
