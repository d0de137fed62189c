// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// chat transcript.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// AppendChatMessage inserts a new transcript row at the next per-identity
// sequence number. The transcript is append-only; rows are never updated.
// When at is zero, the current UTC time is used.
//
// Callers appending for the same identity must be serialized (the engine
// holds the identity lock), otherwise two inserts can race for a sequence
// number.
func AppendChatMessage(ctx context.Context, db *gorm.DB, identity, sender, text, stepKey string, at time.Time) (*domain.ChatMessage, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	var last int64
	err := db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(seq), 0) FROM chat_messages WHERE identity = ?", identity).
		Scan(&last).Error
	if err != nil {
		return nil, err
	}
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		Identity:  identity,
		Seq:       last + 1,
		Sender:    sender,
		Text:      text,
		StepKey:   stepKey,
		CreatedAt: at,
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// ListChatLog returns the transcript for an identity in insertion order.
// Seq is the tiebreak: rows written by one inbound message share a
// timestamp but never a sequence number.
func ListChatLog(ctx context.Context, db *gorm.DB, identity string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.WithContext(ctx).
		Where("identity = ?", identity).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListChatLogPage returns a paginated transcript slice in insertion order.
func ListChatLogPage(ctx context.Context, db *gorm.DB, identity string, offset, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("identity = ?", identity).
		Order("seq ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountChatMessages uses a raw COUNT so a missing table surfaces as an error.
func CountChatMessages(ctx context.Context, db *gorm.DB, identity string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM chat_messages WHERE identity = ?", identity).
		Scan(&total).Error
	return total, err
}
