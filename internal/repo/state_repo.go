// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for per-identity
// conversation state.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// LoadState fetches the in-progress conversation state for identity, or
// ErrNotFound when no conversation is underway.
func LoadState(ctx context.Context, db *gorm.DB, identity string) (*domain.ConversationState, error) {
	var s domain.ConversationState
	err := db.WithContext(ctx).
		Where("identity = ?", identity).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveState inserts or replaces the conversation state row for its identity.
func SaveState(ctx context.Context, db *gorm.DB, s *domain.ConversationState) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Save(s).Error
}

// DeleteState removes the conversation state row once a disposition has been
// recorded on the candidate. Deleting an absent row is not an error.
func DeleteState(ctx context.Context, db *gorm.DB, identity string) error {
	return db.WithContext(ctx).
		Where("identity = ?", identity).
		Delete(&domain.ConversationState{}).Error
}
