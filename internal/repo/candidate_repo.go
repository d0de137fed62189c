// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Candidate
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a candidate is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the engine layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetCandidate fetches a candidate by messaging identity, or ErrNotFound.
func GetCandidate(ctx context.Context, db *gorm.DB, identity string) (*domain.Candidate, error) {
	var c domain.Candidate
	err := db.WithContext(ctx).
		Where("identity = ?", identity).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertCandidate inserts the candidate row for its identity or updates the
// existing one in place. The ID and CreatedAt of an existing row are
// preserved; a new row gets a UUID and a UTC creation time.
func UpsertCandidate(ctx context.Context, db *gorm.DB, c *domain.Candidate) error {
	existing, err := GetCandidate(ctx, db, c.Identity)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}
		if c.Status == "" {
			c.Status = domain.StatusPending
		}
		return db.WithContext(ctx).Create(c).Error
	}

	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	return db.WithContext(ctx).Save(c).Error
}

// ListCandidatesPage returns a page of candidates ordered by creation time
// descending (most recent first). An empty status selects all candidates.
func ListCandidatesPage(ctx context.Context, db *gorm.DB, status string, offset, limit int) ([]domain.Candidate, error) {
	var out []domain.Candidate
	q := db.WithContext(ctx).Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// CountCandidates returns the total number of candidates, optionally
// filtered by status, for pagination metadata.
func CountCandidates(ctx context.Context, db *gorm.DB, status string) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.Candidate{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&total).Error
	return total, err
}
