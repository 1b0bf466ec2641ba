package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/models"
)

// RecommendationRepository carries the ordered/windowed recommendation
// queries used by the metrics pipeline and analytics.
type RecommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// FindRecentWithFeedback returns the newest recommendations that have any
// feedback recorded, newest first.
func (r *RecommendationRepository) FindRecentWithFeedback(ctx context.Context, limit int) ([]models.AIRecommendation, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []models.AIRecommendation
	err := r.db.WithContext(ctx).
		Where("was_accepted IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("ai_recommendation", "find_recent_with_feedback", err)
	}
	return out, nil
}

// FindBetween returns recommendations created in [from, to].
func (r *RecommendationRepository) FindBetween(ctx context.Context, from, to time.Time) ([]models.AIRecommendation, error) {
	var out []models.AIRecommendation
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("ai_recommendation", "find_between", err)
	}
	return out, nil
}
