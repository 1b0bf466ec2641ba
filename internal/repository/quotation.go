package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/models"
)

// QuotationRepository carries the ordered/related quotation queries the
// generic exact-match contract cannot express.
type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// FindWithItems loads a quotation together with its line items.
func (r *QuotationRepository) FindWithItems(ctx context.Context, id string) (*models.Quotation, error) {
	var q models.Quotation
	err := r.db.WithContext(ctx).Preload("Items").First(&q, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("quotation", "find_with_items", err)
	}
	return &q, nil
}

func (r *QuotationRepository) FindByClient(ctx context.Context, clientID string) ([]models.Quotation, error) {
	var out []models.Quotation
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("quotation", "find_by_client", err)
	}
	return out, nil
}

func (r *QuotationRepository) FindRecent(ctx context.Context, limit int) ([]models.Quotation, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []models.Quotation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("quotation", "find_recent", err)
	}
	return out, nil
}

func (r *QuotationRepository) FindByStatus(ctx context.Context, status string) ([]models.Quotation, error) {
	var out []models.Quotation
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("quotation", "find_by_status", err)
	}
	return out, nil
}
