// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the screening
// configuration: the flow script, the FAQ table, and qualification criteria.
//
// Configuration is read by the engine at the start of each message and
// written by the dashboard API. Writes replace whole tables (flow, FAQs) or
// the single criteria row; in-flight conversations keep the snapshot they
// already loaded.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// criteriaRowID is the primary key of the single qualification criteria row.
const criteriaRowID = "default"

// LoadFlow returns the flow steps ordered by ordinal.
func LoadFlow(ctx context.Context, db *gorm.DB) ([]domain.FlowStep, error) {
	var out []domain.FlowStep
	err := db.WithContext(ctx).Order("ordinal ASC").Find(&out).Error
	return out, err
}

// ReplaceFlow swaps the whole flow script in one transaction. Ordinals are
// renumbered from the given slice order; IDs are regenerated.
func ReplaceFlow(ctx context.Context, db *gorm.DB, steps []domain.FlowStep) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.FlowStep{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range steps {
			steps[i].ID = uuid.NewString()
			steps[i].Ordinal = i
			steps[i].CreatedAt = now
			if err := tx.Create(&steps[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadFAQs returns all FAQ entries ordered by key.
func LoadFAQs(ctx context.Context, db *gorm.DB) ([]domain.FAQEntry, error) {
	var out []domain.FAQEntry
	err := db.WithContext(ctx).Order("key ASC").Find(&out).Error
	return out, err
}

// ReplaceFAQs swaps the whole FAQ table in one transaction.
func ReplaceFAQs(ctx context.Context, db *gorm.DB, faqs []domain.FAQEntry) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.FAQEntry{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range faqs {
			faqs[i].ID = uuid.NewString()
			faqs[i].CreatedAt = now
			if err := tx.Create(&faqs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadCriteria returns the qualification criteria row, or ErrNotFound when
// the table has not been seeded.
func LoadCriteria(ctx context.Context, db *gorm.DB) (*domain.QualificationCriteria, error) {
	var q domain.QualificationCriteria
	err := db.WithContext(ctx).
		Where("id = ?", criteriaRowID).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// SaveCriteria inserts or replaces the single criteria row.
func SaveCriteria(ctx context.Context, db *gorm.DB, q *domain.QualificationCriteria) error {
	q.ID = criteriaRowID
	return db.WithContext(ctx).Save(q).Error
}

// SeedDefaults populates an empty database with the reference recruitment
// script, FAQ table, and criteria so a fresh install answers candidates
// immediately. Existing rows are left untouched.
func SeedDefaults(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.FlowStep{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		if err := ReplaceFlow(ctx, db, defaultFlow()); err != nil {
			return err
		}
	}

	if err := db.WithContext(ctx).Model(&domain.FAQEntry{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		if err := ReplaceFAQs(ctx, db, defaultFAQs()); err != nil {
			return err
		}
	}

	if _, err := LoadCriteria(ctx, db); err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := SaveCriteria(ctx, db, defaultCriteria()); err != nil {
			return err
		}
	}
	return nil
}

// defaultFlow is the reference screening script: interest gate, identity
// questions, the employment branch, then the numeric qualification answers,
// ending with CV collection as the terminal step.
func defaultFlow() []domain.FlowStep {
	return []domain.FlowStep{
		{
			Key:   "interest",
			Ask:   "Hi! We are hiring for sales roles in home loan products. Are you interested in this opportunity?",
			Match: "yes|interested|sure|okay|ok|haan|ha|theek hai|chalega|bilkul|zaroor|ready|done|i am interested",
		},
		{Key: "name", Ask: "Great! May I know your full name?"},
		{Key: "company", Ask: "Thanks {name}. Which company are you currently working with?"},
		{
			Key:                "prev_company",
			Ask:                "Ok, which company were you working with previously?",
			OnlyWhenUnemployed: true,
		},
		{Key: "experience", Ask: "How many years of work experience do you have?"},
		{
			Key:                "notice",
			Ask:                "What is your notice period (in days)?",
			SkipWhenUnemployed: true,
		},
		{Key: "ctc", Ask: "What is your current CTC (in LPA)?"},
		{Key: "product", Ask: "Which loan product have you been handling?"},
		{Key: "cv", Ask: "Almost done! Please share your updated CV here."},
	}
}

// defaultFAQs mirrors the informational replies candidates ask for most,
// keyed by the containment keyword.
func defaultFAQs() []domain.FAQEntry {
	return []domain.FAQEntry{
		{Key: "ctc", Response: "The CTC range for this role is 1 to 6 LPA depending on experience."},
		{Key: "location", Response: "The role is based at our branch offices; the exact branch is shared after screening."},
		{Key: "profile", Response: "This is a field sales role for secured loan products (HL / LAP / Mortgage)."},
		{Key: "company", Response: "We are hiring on behalf of a leading housing finance company."},
		{Key: "work from home", Response: "This is an on-site role; work from home is not available."},
	}
}

// defaultCriteria matches the reference qualification bar.
func defaultCriteria() *domain.QualificationCriteria {
	return &domain.QualificationCriteria{
		MinExperienceYears:  2,
		MaxNoticePeriodDays: 60,
		MinCTC:              1,
		MaxCTC:              6,
		AllowedProducts:     "home loan|housing loan|hl|loan against property|lap|mortgage loan|home finance",
	}
}
