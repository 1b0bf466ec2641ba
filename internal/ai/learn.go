package ai

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/repository"
)

// learnedConfidence is the confidence assigned to patterns produced by the
// learning pipeline. Feedback adjusts it over time; initial observations
// start here.
const learnedConfidence = 0.7

// LearnFromQuote extracts patterns from a persisted quotation. Loading the
// quote is the only hard failure; each individual pattern update is
// best-effort so one malformed signal never blocks the rest.
func (s *Service) LearnFromQuote(ctx context.Context, quoteID string) error {
	s.log.Info("learning from quote", "quote_id", quoteID)

	quote, err := s.repos.QuotationQueries.FindWithItems(ctx, quoteID)
	if err != nil {
		return err
	}

	s.bestEffort("component pairing patterns", func() error {
		return s.updateComponentPairingPattern(ctx, quote)
	})
	s.bestEffort("client preference pattern", func() error {
		return s.updateClientPreferencePattern(ctx, quote)
	})
	s.bestEffort("pricing patterns", func() error {
		return s.updatePricingPatterns(ctx, quote)
	})

	s.log.Info("finished learning from quote", "quote_id", quoteID)
	return nil
}

// updateComponentPairingPattern records which components appeared together.
// The highest-value line anchors the pattern; every other line is counted
// as a co-occurrence against it.
func (s *Service) updateComponentPairingPattern(ctx context.Context, quote *models.Quotation) error {
	if len(quote.Items) < 2 {
		return nil
	}

	main := quote.Items[0]
	for _, item := range quote.Items[1:] {
		if item.TotalPrice > main.TotalPrice {
			main = item
		}
	}
	mainComponent, err := s.repos.Components.FindByID(ctx, main.ComponentID)
	if err != nil {
		return err
	}

	existing, data, err := s.findPairingPattern(ctx, main.ComponentID)
	if err != nil {
		return err
	}
	if data == nil {
		data = &ComponentPairingPatternData{
			MainComponent: MainComponentRef{
				ID:       mainComponent.ID,
				Category: mainComponent.Category,
				Amperage: mainComponent.Amperage,
			},
			TypicalAccessories: []string{},
		}
	}

	for _, item := range quote.Items {
		if item.ComponentID == main.ComponentID {
			continue
		}
		component, err := s.repos.Components.FindByID(ctx, item.ComponentID)
		if err != nil {
			continue
		}
		found := false
		for i := range data.PairedComponents {
			if data.PairedComponents[i].ComponentID == item.ComponentID {
				data.PairedComponents[i].CoOccurrenceCount++
				data.PairedComponents[i].TypicalQuantity = item.Quantity
				found = true
				break
			}
		}
		if !found {
			data.PairedComponents = append(data.PairedComponents, PairedComponentRef{
				ComponentID:       item.ComponentID,
				Category:          component.Category,
				TypicalQuantity:   item.Quantity,
				CoOccurrenceCount: 1,
			})
		}
	}

	return s.upsertPattern(ctx, existing, models.PatternComponentPairing, "", data)
}

// findPairingPattern scans stored pairing patterns for the one anchored at
// the given component. Pairing patterns are global, not client-scoped.
func (s *Service) findPairingPattern(ctx context.Context, mainComponentID string) (*models.QuotePattern, *ComponentPairingPatternData, error) {
	patterns, err := s.repos.Patterns.FindAll(ctx, repository.Filters{"pattern_type": models.PatternComponentPairing})
	if err != nil {
		return nil, nil, err
	}
	for i := range patterns {
		decoded, err := DecodePatternData(&patterns[i])
		if err != nil {
			continue
		}
		data := decoded.(*ComponentPairingPatternData)
		if data.MainComponent.ID == mainComponentID {
			return &patterns[i], data, nil
		}
	}
	return nil, nil, nil
}

// updateClientPreferencePattern recomputes the client's preference profile
// from all of their quotes. A single quote is not a pattern; at least two
// are required before anything is stored.
func (s *Service) updateClientPreferencePattern(ctx context.Context, quote *models.Quotation) error {
	if quote.ClientID == "" {
		return nil
	}

	clientQuotes, err := s.repos.QuotationQueries.FindByClient(ctx, quote.ClientID)
	if err != nil {
		return err
	}
	if len(clientQuotes) < 2 {
		return nil
	}

	manufacturers := make(map[string]int)
	vendors := make(map[string]int)
	var totalValue float64

	for _, q := range clientQuotes {
		totalValue += q.Total

		items, err := s.repos.QuotationItems.FindAll(ctx, repository.Filters{"quotation_id": q.ID})
		if err != nil {
			continue
		}
		seenManufacturers := make(map[string]bool)
		seenVendors := make(map[string]bool)
		for _, item := range items {
			component, err := s.repos.Components.FindByID(ctx, item.ComponentID)
			if err != nil {
				continue
			}
			if component.Manufacturer != "" && !seenManufacturers[component.Manufacturer] {
				seenManufacturers[component.Manufacturer] = true
				manufacturers[component.Manufacturer]++
			}
			if component.Vendor != "" && !seenVendors[component.Vendor] {
				seenVendors[component.Vendor] = true
				vendors[component.Vendor]++
			}
		}
	}

	data := &ClientPreferencePatternData{
		ClientID:            quote.ClientID,
		AverageProjectValue: totalValue / float64(len(clientQuotes)),
		CommonProjectTypes:  []string{},
	}
	for m, count := range manufacturers {
		data.PreferredManufacturers = append(data.PreferredManufacturers, ManufacturerFrequency{
			Manufacturer: m,
			Frequency:    float64(count) / float64(len(clientQuotes)),
		})
	}
	for v, count := range vendors {
		data.PreferredVendors = append(data.PreferredVendors, VendorFrequency{
			Vendor:    v,
			Frequency: float64(count) / float64(len(clientQuotes)),
		})
	}

	existing, err := s.repos.PatternQueries.FindForClient(ctx, models.PatternClientPreference, quote.ClientID)
	if err != nil && !apperr.IsNotFound(err) {
		return err
	}
	return s.upsertPattern(ctx, existing, models.PatternClientPreference, quote.ClientID, data)
}

// updatePricingPatterns folds each line's price into the per-category
// pricing aggregate.
func (s *Service) updatePricingPatterns(ctx context.Context, quote *models.Quotation) error {
	type bucket struct {
		amperage string
		total    float64
		min      float64
		max      float64
		count    int
	}
	buckets := make(map[string]*bucket)

	for _, item := range quote.Items {
		component, err := s.repos.Components.FindByID(ctx, item.ComponentID)
		if err != nil {
			continue
		}
		b, ok := buckets[component.Category]
		if !ok {
			b = &bucket{amperage: component.Amperage, min: item.UnitPrice, max: item.UnitPrice}
			buckets[component.Category] = b
		}
		b.total += item.UnitPrice
		b.count++
		if item.UnitPrice < b.min {
			b.min = item.UnitPrice
		}
		if item.UnitPrice > b.max {
			b.max = item.UnitPrice
		}
	}

	for category, b := range buckets {
		existing, data, err := s.findPricingPattern(ctx, category)
		if err != nil {
			return err
		}
		if data == nil {
			data = &PricingPatternData{
				Amperage:   b.amperage,
				Category:   category,
				Currency:   "NGN",
				PriceRange: PriceRange{Min: b.min, Max: b.max},
			}
		}

		// Fold this quote's observations into the running aggregate.
		newSample := data.SampleSize + b.count
		data.AveragePrice = (data.AveragePrice*float64(data.SampleSize) + b.total) / float64(newSample)
		data.SampleSize = newSample
		if b.min < data.PriceRange.Min || data.PriceRange.Min == 0 {
			data.PriceRange.Min = b.min
		}
		if b.max > data.PriceRange.Max {
			data.PriceRange.Max = b.max
		}

		if err := s.upsertPattern(ctx, existing, models.PatternPricing, "", data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) findPricingPattern(ctx context.Context, category string) (*models.QuotePattern, *PricingPatternData, error) {
	patterns, err := s.repos.Patterns.FindAll(ctx, repository.Filters{"pattern_type": models.PatternPricing})
	if err != nil {
		return nil, nil, err
	}
	for i := range patterns {
		decoded, err := DecodePatternData(&patterns[i])
		if err != nil {
			continue
		}
		data := decoded.(*PricingPatternData)
		if data.Category == category {
			return &patterns[i], data, nil
		}
	}
	return nil, nil, nil
}

// upsertPattern inserts a new pattern or, when an existing row is given,
// replaces its payload, bumps usage_count and refreshes last_seen_at.
func (s *Service) upsertPattern(ctx context.Context, existing *models.QuotePattern, patternType, clientID string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if existing != nil {
		_, err = s.repos.Patterns.Update(ctx, existing.ID, map[string]any{
			"pattern_data": datatypes.JSON(payload),
			"usage_count":  existing.UsageCount + 1,
			"last_seen_at": time.Now(),
		})
		return err
	}

	confidence := learnedConfidence
	_, err = s.repos.Patterns.Create(ctx, &models.QuotePattern{
		PatternType:     patternType,
		ClientID:        clientID,
		PatternData:     datatypes.JSON(payload),
		ConfidenceScore: &confidence,
		UsageCount:      1,
		LastSeenAt:      time.Now(),
	})
	return err
}
