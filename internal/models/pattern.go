package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pattern types for learned quote patterns.
const (
	PatternComponentPairing = "component_pairing"
	PatternClientPreference = "client_preference"
	PatternPricing          = "pricing"
	PatternVendorPreference = "vendor_preference"
	PatternPanelConfig      = "panel_configuration"
)

// Recommendation types.
const (
	RecommendationComponentSuggestion = "component_suggestion"
	RecommendationComponentPairing    = "component_pairing"
	RecommendationPricingOptimization = "pricing_optimization"
)

// Metric types.
const (
	MetricAcceptanceRate = "acceptance_rate"
)

// Usage-count thresholds for pattern reliability. Fixed constants, not
// configurable per call.
const (
	PatternUsageReliable = 10
	PatternUsageEmerging = 5
)

// MinConfidence is the floor below which patterns never surface as
// recommendations.
const MinConfidence = 0.3

// QuotePattern is a confidence-scored statistical observation about
// historical quotations. PatternData is a JSON payload whose shape is keyed
// by PatternType; see the ai package for the typed variants.
type QuotePattern struct {
	ID              string         `gorm:"primaryKey;size:36"`
	PatternType     string         `gorm:"size:32;index;not null"`
	ClientID        string         `gorm:"size:36;index"` // set for client-scoped patterns; part of the upsert key
	PatternData     datatypes.JSON `gorm:"not null"`
	ConfidenceScore *float64
	UsageCount      int `gorm:"not null;default:1"`
	LastSeenAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *QuotePattern) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Reliability buckets a pattern by how often it has been observed.
func (p *QuotePattern) Reliability() string {
	switch {
	case p.UsageCount >= PatternUsageReliable:
		return "reliable"
	case p.UsageCount >= PatternUsageEmerging:
		return "emerging"
	default:
		return "new"
	}
}

// AIRecommendation records a served recommendation so feedback can be
// attached later. WasAccepted stays nil until feedback arrives and is set
// exactly once.
type AIRecommendation struct {
	ID                 string         `gorm:"primaryKey;size:36"`
	RecommendationType string         `gorm:"size:32;index;not null"`
	UserID             string         `gorm:"size:36"`
	InputData          datatypes.JSON `gorm:"not null"`
	RecommendationData datatypes.JSON `gorm:"not null"`
	WasAccepted        *bool
	FeedbackText       string
	CreatedAt          time.Time
}

func (r *AIRecommendation) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// AILearningMetric is an append-only time series of learning aggregates.
type AILearningMetric struct {
	ID          string `gorm:"primaryKey;size:36"`
	MetricType  string `gorm:"size:32;index;not null"`
	MetricValue float64
	Metadata    datatypes.JSON
	RecordedAt  time.Time
}

func (m *AILearningMetric) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
