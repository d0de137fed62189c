package repo

import (
	"context"
	"testing"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

func TestSeedDefaults_PopulatesOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := SeedDefaults(ctx, db); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}

	steps, err := LoadFlow(ctx, db)
	if err != nil {
		t.Fatalf("LoadFlow: %v", err)
	}
	if len(steps) == 0 {
		t.Fatal("seed produced no flow steps")
	}
	if steps[0].Key != "interest" || steps[0].Match == "" {
		t.Fatalf("step 0 should be the interest gate, got %+v", steps[0])
	}
	if steps[len(steps)-1].Key != "cv" {
		t.Fatalf("terminal step should be cv, got %q", steps[len(steps)-1].Key)
	}
	for i, s := range steps {
		if s.Ordinal != i {
			t.Fatalf("step %d has ordinal %d", i, s.Ordinal)
		}
	}

	faqs, err := LoadFAQs(ctx, db)
	if err != nil || len(faqs) == 0 {
		t.Fatalf("LoadFAQs = %v, %v", faqs, err)
	}

	crit, err := LoadCriteria(ctx, db)
	if err != nil {
		t.Fatalf("LoadCriteria: %v", err)
	}
	if crit.MinExperienceYears != 2 || crit.MaxCTC != 6 {
		t.Fatalf("unexpected default criteria: %+v", crit)
	}

	// Seeding twice must not duplicate rows.
	if err := SeedDefaults(ctx, db); err != nil {
		t.Fatalf("SeedDefaults second run: %v", err)
	}
	again, _ := LoadFlow(ctx, db)
	if len(again) != len(steps) {
		t.Fatalf("second seed changed flow length: %d -> %d", len(steps), len(again))
	}
}

func TestReplaceFlow_RenumbersOrdinals(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	steps := []domain.FlowStep{
		{Key: "interest", Ask: "Interested?", Match: "yes", Ordinal: 7},
		{Key: "name", Ask: "Name?", Ordinal: 3},
	}
	if err := ReplaceFlow(ctx, db, steps); err != nil {
		t.Fatalf("ReplaceFlow: %v", err)
	}
	got, err := LoadFlow(ctx, db)
	if err != nil {
		t.Fatalf("LoadFlow: %v", err)
	}
	if len(got) != 2 || got[0].Key != "interest" || got[0].Ordinal != 0 || got[1].Ordinal != 1 {
		t.Fatalf("ordinals not renumbered: %+v", got)
	}

	// Replace drops previous steps entirely.
	if err := ReplaceFlow(ctx, db, []domain.FlowStep{{Key: "only", Ask: "?"}}); err != nil {
		t.Fatalf("ReplaceFlow again: %v", err)
	}
	got, _ = LoadFlow(ctx, db)
	if len(got) != 1 || got[0].Key != "only" {
		t.Fatalf("old steps survived replace: %+v", got)
	}
}

func TestSaveCriteria_SingleRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := SaveCriteria(ctx, db, &domain.QualificationCriteria{MinExperienceYears: 1}); err != nil {
		t.Fatalf("SaveCriteria: %v", err)
	}
	if err := SaveCriteria(ctx, db, &domain.QualificationCriteria{MinExperienceYears: 5}); err != nil {
		t.Fatalf("SaveCriteria overwrite: %v", err)
	}
	got, err := LoadCriteria(ctx, db)
	if err != nil {
		t.Fatalf("LoadCriteria: %v", err)
	}
	if got.MinExperienceYears != 5 {
		t.Fatalf("criteria not overwritten: %+v", got)
	}
}
