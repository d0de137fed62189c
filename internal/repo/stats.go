// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries
// consumed by the dashboard API. Each function is context-aware and safe to
// call from handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// DashboardStats is the aggregate view rendered on the dashboard landing
// page: candidate totals broken down by status plus recent message volume.
type DashboardStats struct {
	TotalCandidates        int64 `json:"total_candidates"`
	QualifiedCandidates    int64 `json:"qualified_candidates"`
	DisqualifiedCandidates int64 `json:"disqualified_candidates"`
	PendingCandidates      int64 `json:"pending_candidates"`
	RecentMessages         int64 `json:"recent_messages"`
}

// LoadDashboardStats computes candidate totals by status and the number of
// chat messages received within the given window (e.g., the last 24h).
func LoadDashboardStats(ctx context.Context, db *gorm.DB, recentWindow time.Duration) (*DashboardStats, error) {
	var out DashboardStats

	if err := db.WithContext(ctx).Model(&domain.Candidate{}).Count(&out.TotalCandidates).Error; err != nil {
		return nil, err
	}

	byStatus := map[string]*int64{
		domain.StatusQualified:    &out.QualifiedCandidates,
		domain.StatusDisqualified: &out.DisqualifiedCandidates,
		domain.StatusPending:      &out.PendingCandidates,
	}
	for status, dst := range byStatus {
		if err := db.WithContext(ctx).
			Model(&domain.Candidate{}).
			Where("status = ?", status).
			Count(dst).Error; err != nil {
			return nil, err
		}
	}

	since := time.Now().UTC().Add(-recentWindow)
	if err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("created_at >= ?", since).
		Count(&out.RecentMessages).Error; err != nil {
		return nil, err
	}

	return &out, nil
}
