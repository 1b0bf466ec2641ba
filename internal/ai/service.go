package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/auth"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/platform/logger"
	"github.com/voltio/panelquote/internal/repository"
)

// clientPreferenceBoost multiplies the score of components whose manufacturer
// matches a learned client preference.
const clientPreferenceBoost = 1.15

// maxRecommendations caps the served recommendation list.
const maxRecommendations = 10

// Service maintains learned quote patterns and serves recommendations.
// All query methods silently no-op (empty results, nil error) when the
// request carries no authenticated user, so unauthenticated screens render
// "no recommendations" rather than an error.
type Service struct {
	repos *repository.Repositories
	log   *logger.Logger
}

func NewService(repos *repository.Repositories, log *logger.Logger) *Service {
	return &Service{repos: repos, log: log}
}

// ExistingComponent is one component already placed on the quote being built.
type ExistingComponent struct {
	ComponentID string `json:"component_id"`
	Amperage    string `json:"amperage,omitempty"`
	Category    string `json:"category,omitempty"`
}

// PanelConfiguration describes the panel the quote targets.
type PanelConfiguration struct {
	TotalAmperage string `json:"total_amperage,omitempty"`
	Voltage       string `json:"voltage,omitempty"`
	Phases        int    `json:"phases,omitempty"`
}

// BudgetRange bounds acceptable component prices. Zero max means unbounded.
type BudgetRange struct {
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// RecommendationInput is the context a recommendation query runs against.
type RecommendationInput struct {
	ClientID           string              `json:"client_id,omitempty"`
	ProjectType        string              `json:"project_type,omitempty"`
	ExistingComponents []ExistingComponent `json:"existing_components"`
	PanelConfiguration *PanelConfiguration `json:"panel_configuration,omitempty"`
	BudgetRange        *BudgetRange        `json:"budget_range,omitempty"`
}

// RecommendedComponent is one scored suggestion.
type RecommendedComponent struct {
	Component         models.Component `json:"component"`
	Reason            string           `json:"reason"`
	Confidence        float64          `json:"confidence"`
	SuggestedQuantity int              `json:"suggested_quantity,omitempty"`
	EstimatedPrice    float64          `json:"estimated_price,omitempty"`
}

// RecommendationOutput is the served recommendation set. RecommendationID
// identifies the stored record that feedback can later be attached to; it is
// empty when tracking persistence failed or the request was anonymous.
type RecommendationOutput struct {
	RecommendationID      string                 `json:"recommendation_id,omitempty"`
	RecommendedComponents []RecommendedComponent `json:"recommended_components"`
	TotalEstimatedPrice   float64                `json:"total_estimated_price"`
}

// PairedComponent is one component that historically accompanies an anchor.
type PairedComponent struct {
	Component        models.Component `json:"component"`
	PairingFrequency float64          `json:"pairing_frequency"`
	Confidence       float64          `json:"confidence"`
	TypicalQuantity  int              `json:"typical_quantity"`
	Reason           string           `json:"reason"`
}

// Pairing groups the paired components for one anchor component.
type Pairing struct {
	MainComponentID  string            `json:"main_component_id"`
	MainComponent    models.Component  `json:"main_component"`
	PairedComponents []PairedComponent `json:"paired_components"`
}

// ComponentRecommendations serves scored component suggestions for the
// context in input. At least one existing component is required.
//
// Ranking merges the learned signals:
//
//	score = pattern confidence x pairing frequency,
//	boosted x1.15 when the component's manufacturer matches a learned
//	client preference, then filtered against the budget range using the
//	learned per-category price for the target amperage when one exists.
//
// Duplicate components keep their highest score. The list is capped at 10.
// Secondary signal failures (pairings, preferences, pricing) degrade to "no
// signal"; only the anchor validation fails the call.
func (s *Service) ComponentRecommendations(ctx context.Context, input RecommendationInput) (*RecommendationOutput, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return &RecommendationOutput{RecommendedComponents: []RecommendedComponent{}}, nil
	}
	if len(input.ExistingComponents) == 0 {
		return nil, apperr.Validation("existing_components", "at least one component required")
	}

	s.log.Info("generating component recommendations", "user_id", userID, "client_id", input.ClientID)

	ids := make([]string, 0, len(input.ExistingComponents))
	for _, c := range input.ExistingComponents {
		ids = append(ids, c.ComponentID)
	}
	pairings := s.componentPairings(ctx, ids)

	var prefs *ClientPreferencePatternData
	if input.ClientID != "" {
		prefs = s.clientPreferences(ctx, input.ClientID)
	}

	targetAmperage := ""
	if input.PanelConfiguration != nil {
		targetAmperage = input.PanelConfiguration.TotalAmperage
	}
	insights := s.pricingInsights(ctx, targetAmperage)

	out := s.buildRecommendations(input, pairings, prefs, insights)

	if id, err := s.saveRecommendation(ctx, userID, models.RecommendationComponentSuggestion, input, out); err != nil {
		// Tracking is best-effort; the recommendation is still served.
		s.log.Warn("recommendation tracking failed", "error", err)
	} else {
		out.RecommendationID = id
	}

	s.log.Info("component recommendations generated",
		"recommendation_id", out.RecommendationID, "count", len(out.RecommendedComponents))
	return out, nil
}

// ComponentPairings reports, for each given component id, the components
// that historically appear alongside it. Anonymous callers get an empty
// result; read failures degrade to an empty result, never an error.
func (s *Service) ComponentPairings(ctx context.Context, componentIDs []string) ([]Pairing, error) {
	if _, ok := auth.UserIDFromContext(ctx); !ok {
		return []Pairing{}, nil
	}
	return s.componentPairings(ctx, componentIDs), nil
}

func (s *Service) componentPairings(ctx context.Context, componentIDs []string) []Pairing {
	patterns, err := s.repos.PatternQueries.FindByType(ctx, models.PatternComponentPairing, models.MinConfidence)
	if err != nil {
		s.log.Warn("pairing patterns unavailable", "error", err)
		return []Pairing{}
	}

	pairings := make([]Pairing, 0, len(componentIDs))
	for _, id := range componentIDs {
		var relevant []struct {
			pattern *models.QuotePattern
			data    *ComponentPairingPatternData
		}
		for i := range patterns {
			p := &patterns[i]
			decoded, err := DecodePatternData(p)
			if err != nil {
				s.log.Warn("skipping malformed pattern", "pattern_id", p.ID, "error", err)
				continue
			}
			data := decoded.(*ComponentPairingPatternData)
			if data.MainComponent.ID == id {
				relevant = append(relevant, struct {
					pattern *models.QuotePattern
					data    *ComponentPairingPatternData
				}{p, data})
			}
		}
		if len(relevant) == 0 {
			continue
		}

		main, err := s.repos.Components.FindByID(ctx, id)
		if err != nil {
			if !apperr.IsNotFound(err) {
				s.log.Warn("component lookup failed", "component_id", id, "error", err)
			}
			continue
		}

		var paired []PairedComponent
		for _, r := range relevant {
			usage := r.pattern.UsageCount
			if usage < 1 {
				usage = 1
			}
			confidence := 0.0
			if r.pattern.ConfidenceScore != nil {
				confidence = *r.pattern.ConfidenceScore
			}
			for _, pc := range r.data.PairedComponents {
				component, err := s.repos.Components.FindByID(ctx, pc.ComponentID)
				if err != nil {
					continue
				}
				paired = append(paired, PairedComponent{
					Component:        *component,
					PairingFrequency: float64(pc.CoOccurrenceCount) / float64(usage),
					Confidence:       confidence,
					TypicalQuantity:  pc.TypicalQuantity,
					Reason:           fmt.Sprintf("Frequently paired with main component (%d times)", pc.CoOccurrenceCount),
				})
			}
		}

		pairings = append(pairings, Pairing{
			MainComponentID:  id,
			MainComponent:    *main,
			PairedComponents: paired,
		})
	}
	return pairings
}

func (s *Service) clientPreferences(ctx context.Context, clientID string) *ClientPreferencePatternData {
	pattern, err := s.repos.PatternQueries.FindForClient(ctx, models.PatternClientPreference, clientID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			s.log.Warn("client preference pattern unavailable", "client_id", clientID, "error", err)
		}
		return nil
	}
	decoded, err := DecodePatternData(pattern)
	if err != nil {
		s.log.Warn("skipping malformed pattern", "pattern_id", pattern.ID, "error", err)
		return nil
	}
	return decoded.(*ClientPreferencePatternData)
}

// pricingInsights loads the learned per-category pricing patterns, keyed by
// category. When a target amperage is given, only patterns learned for that
// amperage apply. Failures degrade to "no signal".
func (s *Service) pricingInsights(ctx context.Context, targetAmperage string) map[string]*PricingPatternData {
	patterns, err := s.repos.PatternQueries.FindByType(ctx, models.PatternPricing, models.MinConfidence)
	if err != nil {
		s.log.Warn("pricing patterns unavailable", "error", err)
		return nil
	}
	insights := make(map[string]*PricingPatternData, len(patterns))
	for i := range patterns {
		decoded, err := DecodePatternData(&patterns[i])
		if err != nil {
			s.log.Warn("skipping malformed pattern", "pattern_id", patterns[i].ID, "error", err)
			continue
		}
		data := decoded.(*PricingPatternData)
		if targetAmperage != "" && data.Amperage != "" && data.Amperage != targetAmperage {
			continue
		}
		insights[data.Category] = data
	}
	return insights
}

func (s *Service) buildRecommendations(input RecommendationInput, pairings []Pairing, prefs *ClientPreferencePatternData, insights map[string]*PricingPatternData) *RecommendationOutput {
	existing := make(map[string]bool, len(input.ExistingComponents))
	for _, c := range input.ExistingComponents {
		existing[c.ComponentID] = true
	}

	preferredManufacturers := make(map[string]bool)
	if prefs != nil {
		for _, m := range prefs.PreferredManufacturers {
			preferredManufacturers[m.Manufacturer] = true
		}
	}

	best := make(map[string]RecommendedComponent)
	for _, pairing := range pairings {
		for _, pc := range pairing.PairedComponents {
			if existing[pc.Component.ID] {
				continue
			}
			score := pc.Confidence * pc.PairingFrequency
			reason := pc.Reason
			if preferredManufacturers[pc.Component.Manufacturer] {
				score *= clientPreferenceBoost
				reason = fmt.Sprintf("%s; client prefers %s", reason, pc.Component.Manufacturer)
			}
			if score < models.MinConfidence {
				continue
			}
			if input.BudgetRange != nil {
				// The learned category price, when known, is a better budget
				// signal than the single catalog price.
				price := pc.Component.UnitPrice
				if insight := insights[pc.Component.Category]; insight != nil && insight.AveragePrice > 0 {
					price = insight.AveragePrice
				}
				if input.BudgetRange.Max > 0 && price > input.BudgetRange.Max {
					continue
				}
				if input.BudgetRange.Min > 0 && price < input.BudgetRange.Min {
					continue
				}
			}
			qty := pc.TypicalQuantity
			if qty < 1 {
				qty = 1
			}
			candidate := RecommendedComponent{
				Component:         pc.Component,
				Reason:            reason,
				Confidence:        score,
				SuggestedQuantity: qty,
				EstimatedPrice:    pc.Component.UnitPrice * float64(qty),
			}
			if current, ok := best[pc.Component.ID]; !ok || candidate.Confidence > current.Confidence {
				best[pc.Component.ID] = candidate
			}
		}
	}

	recommended := make([]RecommendedComponent, 0, len(best))
	for _, r := range best {
		recommended = append(recommended, r)
	}
	sort.Slice(recommended, func(i, j int) bool {
		if recommended[i].Confidence != recommended[j].Confidence {
			return recommended[i].Confidence > recommended[j].Confidence
		}
		return recommended[i].Component.ID < recommended[j].Component.ID
	})
	if len(recommended) > maxRecommendations {
		recommended = recommended[:maxRecommendations]
	}

	var total float64
	for _, r := range recommended {
		total += r.EstimatedPrice
	}
	return &RecommendationOutput{
		RecommendedComponents: recommended,
		TotalEstimatedPrice:   total,
	}
}

func (s *Service) saveRecommendation(ctx context.Context, userID, recType string, input RecommendationInput, output *RecommendationOutput) (string, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	outputJSON, err := json.Marshal(output)
	if err != nil {
		return "", err
	}
	rec := &models.AIRecommendation{
		RecommendationType: recType,
		UserID:             userID,
		InputData:          datatypes.JSON(inputJSON),
		RecommendationData: datatypes.JSON(outputJSON),
	}
	created, err := s.repos.Recommendations.Create(ctx, rec)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// RecordFeedback attaches the user's verdict to a served recommendation.
// The outcome is set exactly once; a second submission is rejected. After
// recording, the rolling acceptance-rate metric over the latest 100
// recommendations with feedback is appended to the metric series.
func (s *Service) RecordFeedback(ctx context.Context, recommendationID string, wasAccepted bool, feedbackText string) error {
	rec, err := s.repos.Recommendations.FindByID(ctx, recommendationID)
	if err != nil {
		return err
	}
	if rec.WasAccepted != nil {
		return &apperr.InvalidOperation{Op: "record_feedback", Msg: "feedback already recorded"}
	}

	_, err = s.repos.Recommendations.Update(ctx, recommendationID, map[string]any{
		"was_accepted":  wasAccepted,
		"feedback_text": feedbackText,
	})
	if err != nil {
		return err
	}

	s.bestEffort("update acceptance metric", func() error {
		return s.appendAcceptanceMetric(ctx)
	})

	s.log.Info("feedback recorded", "recommendation_id", recommendationID, "was_accepted", wasAccepted)
	return nil
}

func (s *Service) appendAcceptanceMetric(ctx context.Context) error {
	recent, err := s.repos.RecommendationQueries.FindRecentWithFeedback(ctx, 100)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}

	accepted := 0
	for _, r := range recent {
		if r.WasAccepted != nil && *r.WasAccepted {
			accepted++
		}
	}
	rate := float64(accepted) / float64(len(recent))

	meta, err := json.Marshal(map[string]any{
		"total_recommendations": len(recent),
		"accepted":              accepted,
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = s.repos.Metrics.Create(ctx, &models.AILearningMetric{
		MetricType:  models.MetricAcceptanceRate,
		MetricValue: rate,
		Metadata:    datatypes.JSON(meta),
		RecordedAt:  time.Now(),
	})
	return err
}

// TypePerformance aggregates feedback outcomes for one recommendation type.
type TypePerformance struct {
	Total          int     `json:"total"`
	Accepted       int     `json:"accepted"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// Performance summarizes recommendation outcomes over a period.
type Performance struct {
	TotalRecommendations    int                        `json:"total_recommendations"`
	AcceptedRecommendations int                        `json:"accepted_recommendations"`
	AcceptanceRate          float64                    `json:"acceptance_rate"`
	ByType                  map[string]TypePerformance `json:"by_type"`
	From                    time.Time                  `json:"from"`
	To                      time.Time                  `json:"to"`
}

// RecommendationPerformance reports acceptance statistics for the period,
// overall and per recommendation type.
func (s *Service) RecommendationPerformance(ctx context.Context, from, to time.Time) (*Performance, error) {
	recs, err := s.repos.RecommendationQueries.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	perf := &Performance{ByType: make(map[string]TypePerformance), From: from, To: to}
	for _, r := range recs {
		perf.TotalRecommendations++
		t := perf.ByType[r.RecommendationType]
		t.Total++
		if r.WasAccepted != nil && *r.WasAccepted {
			perf.AcceptedRecommendations++
			t.Accepted++
		}
		perf.ByType[r.RecommendationType] = t
	}
	if perf.TotalRecommendations > 0 {
		perf.AcceptanceRate = float64(perf.AcceptedRecommendations) / float64(perf.TotalRecommendations)
	}
	for k, t := range perf.ByType {
		if t.Total > 0 {
			t.AcceptanceRate = float64(t.Accepted) / float64(t.Total)
		}
		perf.ByType[k] = t
	}
	return perf, nil
}

// TopPatterns returns the reliable patterns with the highest confidence.
func (s *Service) TopPatterns(ctx context.Context, limit int) ([]models.QuotePattern, error) {
	return s.repos.PatternQueries.FindTop(ctx, limit)
}

// bestEffort runs a non-critical task, logging and discarding its failure.
// Learning and tracking failures must never block the quotation workflow.
func (s *Service) bestEffort(what string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Warn("best-effort task failed", "task", what, "error", err)
	}
}
