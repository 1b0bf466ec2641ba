package services

import (
	"context"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/repository"
)

// ComponentService manages the component catalog. The delete guard lives
// here and only here: a component referenced by any quotation line cannot
// be removed.
type ComponentService struct {
	repos *repository.Repositories
}

func NewComponentService(repos *repository.Repositories) *ComponentService {
	return &ComponentService{repos: repos}
}

func (s *ComponentService) Create(ctx context.Context, c *models.Component) (*models.Component, error) {
	if c.Name == "" {
		return nil, apperr.Validation("name", "required")
	}
	if c.UnitPrice < 0 {
		return nil, apperr.Validation("unit_price", "must not be negative")
	}
	return s.repos.Components.Create(ctx, c)
}

func (s *ComponentService) Get(ctx context.Context, id string) (*models.Component, error) {
	return s.repos.Components.FindByID(ctx, id)
}

func (s *ComponentService) List(ctx context.Context, filters repository.Filters) ([]models.Component, error) {
	return s.repos.Components.FindAll(ctx, filters)
}

func (s *ComponentService) Update(ctx context.Context, id string, changes map[string]any) (*models.Component, error) {
	return s.repos.Components.Update(ctx, id, changes)
}

// Delete removes a component unless a quotation still references it.
func (s *ComponentService) Delete(ctx context.Context, id string) error {
	inUse, err := s.repos.QuotationItems.Count(ctx, repository.Filters{"component_id": id})
	if err != nil {
		return err
	}
	if inUse > 0 {
		return &apperr.InvalidOperation{Op: "delete_component", Msg: "component is referenced by existing quotations"}
	}
	return s.repos.Components.Delete(ctx, id)
}
