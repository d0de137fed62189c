package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

func TestGetCandidate_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := GetCandidate(context.Background(), db, "919900000000")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpsertCandidate_CreateThenUpdate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c := &domain.Candidate{Identity: "919900000001", Name: "Ravi"}
	if err := UpsertCandidate(ctx, db, c); err != nil {
		t.Fatalf("UpsertCandidate create: %v", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be assigned, got %+v", c)
	}
	if c.Status != domain.StatusPending {
		t.Fatalf("status = %q; want pending", c.Status)
	}

	// Update the same identity with a disposition; ID/CreatedAt survive.
	upd := &domain.Candidate{
		Identity:               "919900000001",
		Name:                   "Ravi",
		Status:                 domain.StatusDisqualified,
		DisqualificationReason: "declined interest",
	}
	if err := UpsertCandidate(ctx, db, upd); err != nil {
		t.Fatalf("UpsertCandidate update: %v", err)
	}
	if upd.ID != c.ID {
		t.Fatalf("ID changed on upsert: %q -> %q", c.ID, upd.ID)
	}
	if !upd.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("CreatedAt changed on upsert")
	}

	got, err := GetCandidate(ctx, db, "919900000001")
	if err != nil {
		t.Fatalf("GetCandidate: %v", err)
	}
	if got.Status != domain.StatusDisqualified || got.DisqualificationReason != "declined interest" {
		t.Fatalf("unexpected candidate after update: %+v", got)
	}

	total, err := CountCandidates(ctx, db, "")
	if err != nil || total != 1 {
		t.Fatalf("CountCandidates = %d, %v; want 1, nil", total, err)
	}
}

func TestListCandidatesPage_StatusFilter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seed := []domain.Candidate{
		{Identity: "1", Status: domain.StatusQualified},
		{Identity: "2", Status: domain.StatusDisqualified},
		{Identity: "3", Status: domain.StatusPending},
		{Identity: "4", Status: domain.StatusQualified},
	}
	for i := range seed {
		if err := UpsertCandidate(ctx, db, &seed[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	got, err := ListCandidatesPage(ctx, db, domain.StatusQualified, 0, 10)
	if err != nil {
		t.Fatalf("ListCandidatesPage: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 qualified, got %d", len(got))
	}
	for _, c := range got {
		if c.Status != domain.StatusQualified {
			t.Fatalf("filter leaked status %q", c.Status)
		}
	}

	n, err := CountCandidates(ctx, db, domain.StatusPending)
	if err != nil || n != 1 {
		t.Fatalf("CountCandidates(pending) = %d, %v; want 1, nil", n, err)
	}
}
