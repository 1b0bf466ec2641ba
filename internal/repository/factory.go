package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/cache"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/platform/logger"
)

// Repositories is the composition root for data access. Every generic
// repository is wired logging(cache(gorm)) so timings include cache hits.
type Repositories struct {
	Quotations      Repository[models.Quotation]
	QuotationItems  Repository[models.QuotationItem]
	Components      Repository[models.Component]
	Clients         Repository[models.Client]
	Patterns        Repository[models.QuotePattern]
	Recommendations Repository[models.AIRecommendation]
	Metrics         Repository[models.AILearningMetric]

	// Specialized query surfaces, uncached. They back AI learning and
	// list screens where staleness is more costly than the extra read.
	QuotationQueries      *QuotationRepository
	PatternQueries        *PatternRepository
	RecommendationQueries *RecommendationRepository
}

func New(db *gorm.DB, store cache.Store, ttl time.Duration, log *logger.Logger) *Repositories {
	return &Repositories{
		Quotations:      build[models.Quotation](db, store, "quotation", ttl, log),
		QuotationItems:  build[models.QuotationItem](db, store, "quotation_item", ttl, log),
		Components:      build[models.Component](db, store, "component", ttl, log),
		Clients:         build[models.Client](db, store, "client", ttl, log),
		Patterns:        build[models.QuotePattern](db, store, "quote_pattern", ttl, log),
		Recommendations: build[models.AIRecommendation](db, store, "ai_recommendation", ttl, log),
		Metrics:         build[models.AILearningMetric](db, store, "ai_learning_metric", ttl, log),

		QuotationQueries:      NewQuotationRepository(db),
		PatternQueries:        NewPatternRepository(db),
		RecommendationQueries: NewRecommendationRepository(db),
	}
}

func build[T Identifiable](db *gorm.DB, store cache.Store, entity string, ttl time.Duration, log *logger.Logger) Repository[T] {
	var repo Repository[T] = NewGormRepository[T](db, entity)
	repo = NewCacheDecorator(repo, store, entity, ttl, log)
	repo = NewLoggingDecorator(repo, entity, log)
	return repo
}
