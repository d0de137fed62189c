package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// ConfigLoader bundles the configuration read functions behind a struct so
// the snapshot provider can pull flow, FAQs, and criteria through one
// handle.
type ConfigLoader struct {
	DB *gorm.DB
}

func (l *ConfigLoader) LoadFlow(ctx context.Context) ([]domain.FlowStep, error) {
	return LoadFlow(ctx, l.DB)
}

func (l *ConfigLoader) LoadFAQs(ctx context.Context) ([]domain.FAQEntry, error) {
	return LoadFAQs(ctx, l.DB)
}

func (l *ConfigLoader) LoadCriteria(ctx context.Context) (*domain.QualificationCriteria, error) {
	return LoadCriteria(ctx, l.DB)
}
