// Package ai maintains confidence-scored usage patterns learned from
// historical quotations and serves component recommendations built on them.
package ai

import (
	"encoding/json"
	"fmt"

	"github.com/voltio/panelquote/internal/models"
)

// MainComponentRef identifies the anchor of a pairing pattern.
type MainComponentRef struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Amperage string `json:"amperage,omitempty"`
}

// PairedComponentRef is one component observed alongside the anchor.
type PairedComponentRef struct {
	ComponentID       string `json:"component_id"`
	Category          string `json:"category"`
	TypicalQuantity   int    `json:"typical_quantity"`
	CoOccurrenceCount int    `json:"co_occurrence_count"`
}

// ComponentPairingPatternData is the payload for component_pairing patterns.
type ComponentPairingPatternData struct {
	MainComponent      MainComponentRef     `json:"main_component"`
	PairedComponents   []PairedComponentRef `json:"paired_components"`
	TypicalAccessories []string             `json:"typical_accessories"`
	VendorPreference   string               `json:"vendor_preference,omitempty"`
}

// ManufacturerFrequency records how often a client's quotes use a manufacturer.
type ManufacturerFrequency struct {
	Manufacturer string  `json:"manufacturer"`
	Frequency    float64 `json:"frequency"`
}

// VendorFrequency records how often a client's quotes use a vendor.
type VendorFrequency struct {
	Vendor    string  `json:"vendor"`
	Frequency float64 `json:"frequency"`
}

// AmperageRange is a textual amperage window, e.g. "63A".."250A".
type AmperageRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// ClientPreferencePatternData is the payload for client_preference patterns.
type ClientPreferencePatternData struct {
	ClientID               string                  `json:"client_id"`
	PreferredManufacturers []ManufacturerFrequency `json:"preferred_manufacturers"`
	PreferredVendors       []VendorFrequency       `json:"preferred_vendors"`
	TypicalAmperageRange   AmperageRange           `json:"typical_amperage_range"`
	AverageProjectValue    float64                 `json:"average_project_value"`
	CommonProjectTypes     []string                `json:"common_project_types"`
}

// PriceRange bounds observed prices for one category/amperage bucket.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PricingPatternData is the payload for pricing patterns.
type PricingPatternData struct {
	Amperage     string     `json:"amperage"`
	Category     string     `json:"category"`
	AveragePrice float64    `json:"average_price"`
	PriceRange   PriceRange `json:"price_range"`
	PricePerAmp  float64    `json:"price_per_ampere,omitempty"`
	Currency     string     `json:"currency"`
	SampleSize   int        `json:"sample_size"`
}

// DecodePatternData deserializes a pattern's stored payload into the typed
// variant for its pattern_type and validates the shape. Stored payloads are
// never trusted blindly; a mismatched shape is an error, not a zero value.
func DecodePatternData(p *models.QuotePattern) (any, error) {
	switch p.PatternType {
	case models.PatternComponentPairing:
		var data ComponentPairingPatternData
		if err := json.Unmarshal(p.PatternData, &data); err != nil {
			return nil, fmt.Errorf("decode %s pattern %s: %w", p.PatternType, p.ID, err)
		}
		if data.MainComponent.ID == "" {
			return nil, fmt.Errorf("decode %s pattern %s: missing main component id", p.PatternType, p.ID)
		}
		return &data, nil
	case models.PatternClientPreference:
		var data ClientPreferencePatternData
		if err := json.Unmarshal(p.PatternData, &data); err != nil {
			return nil, fmt.Errorf("decode %s pattern %s: %w", p.PatternType, p.ID, err)
		}
		if data.ClientID == "" {
			return nil, fmt.Errorf("decode %s pattern %s: missing client id", p.PatternType, p.ID)
		}
		return &data, nil
	case models.PatternPricing:
		var data PricingPatternData
		if err := json.Unmarshal(p.PatternData, &data); err != nil {
			return nil, fmt.Errorf("decode %s pattern %s: %w", p.PatternType, p.ID, err)
		}
		if data.Category == "" {
			return nil, fmt.Errorf("decode %s pattern %s: missing category", p.PatternType, p.ID)
		}
		return &data, nil
	default:
		return nil, fmt.Errorf("unknown pattern type %q", p.PatternType)
	}
}
