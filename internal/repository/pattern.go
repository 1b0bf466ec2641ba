package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/models"
)

// PatternRepository carries the confidence/usage-ordered pattern queries.
type PatternRepository struct {
	db *gorm.DB
}

func NewPatternRepository(db *gorm.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// FindByType returns patterns of one type at or above the confidence floor,
// highest confidence first.
func (r *PatternRepository) FindByType(ctx context.Context, patternType string, minConfidence float64) ([]models.QuotePattern, error) {
	var out []models.QuotePattern
	err := r.db.WithContext(ctx).
		Where("pattern_type = ? AND confidence_score >= ?", patternType, minConfidence).
		Order("confidence_score DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("quote_pattern", "find_by_type", err)
	}
	return out, nil
}

// FindForClient returns the single client-scoped pattern of the given type.
func (r *PatternRepository) FindForClient(ctx context.Context, patternType, clientID string) (*models.QuotePattern, error) {
	var p models.QuotePattern
	err := r.db.WithContext(ctx).
		Where("pattern_type = ? AND client_id = ?", patternType, clientID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("quote_pattern", "find_for_client", err)
	}
	return &p, nil
}

// FindTop returns reliable patterns (usage ≥ 10) ordered by confidence.
func (r *PatternRepository) FindTop(ctx context.Context, limit int) ([]models.QuotePattern, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []models.QuotePattern
	err := r.db.WithContext(ctx).
		Where("usage_count >= ?", models.PatternUsageReliable).
		Order("confidence_score DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("quote_pattern", "find_top", err)
	}
	return out, nil
}
