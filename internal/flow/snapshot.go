package flow

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// Snapshot is an immutable view of the screening configuration: the flow
// script, the FAQ table, and the qualification criteria. The engine reads
// one Snapshot at the start of each message so a conversation never observes
// a half-updated configuration.
type Snapshot struct {
	Steps    []domain.FlowStep
	FAQs     []domain.FAQEntry
	Criteria domain.QualificationCriteria
}

// Len returns the number of flow steps.
func (s *Snapshot) Len() int { return len(s.Steps) }

// Step returns the step at ordinal i.
func (s *Snapshot) Step(i int) domain.FlowStep { return s.Steps[i] }

// NextOrdinal returns the ordinal of the next step to ask after `from`,
// honoring the employment branch: OnlyWhenUnemployed steps are skipped for
// employed candidates and SkipWhenUnemployed steps for unemployed ones.
// It returns Len() when the flow is exhausted.
func (s *Snapshot) NextOrdinal(from int, unemployed bool) int {
	next := from + 1
	for next < len(s.Steps) {
		step := s.Steps[next]
		if unemployed && step.SkipWhenUnemployed {
			next++
			continue
		}
		if !unemployed && step.OnlyWhenUnemployed {
			next++
			continue
		}
		return next
	}
	return len(s.Steps)
}

// RenderAsk substitutes `{key}` placeholders in a step's ask text with
// collected answers. Unknown placeholders are left untouched.
func RenderAsk(ask string, answers map[string]string) string {
	if !strings.Contains(ask, "{") {
		return ask
	}
	out := ask
	for k, v := range answers {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

// Loader is the configuration read surface the Provider pulls from
// (implemented by the repo layer).
type Loader interface {
	LoadFlow(ctx context.Context) ([]domain.FlowStep, error)
	LoadFAQs(ctx context.Context) ([]domain.FAQEntry, error)
	LoadCriteria(ctx context.Context) (*domain.QualificationCriteria, error)
}

// Provider hands out configuration snapshots. Snapshots are cached and
// swapped atomically; Invalidate marks the cache stale after a dashboard
// config write, so in-flight conversations keep the snapshot they already
// hold while the next message sees the new configuration.
type Provider struct {
	loader Loader
	cur    atomic.Pointer[Snapshot]
}

// NewProvider returns a Provider reading through the given loader.
func NewProvider(loader Loader) *Provider {
	return &Provider{loader: loader}
}

// Snapshot returns the current configuration snapshot, loading it from the
// store when the cache is empty or invalidated.
func (p *Provider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := p.cur.Load(); snap != nil {
		return snap, nil
	}

	steps, err := p.loader.LoadFlow(ctx)
	if err != nil {
		return nil, err
	}
	faqs, err := p.loader.LoadFAQs(ctx)
	if err != nil {
		return nil, err
	}
	crit, err := p.loader.LoadCriteria(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Steps: steps, FAQs: faqs, Criteria: *crit}
	p.cur.Store(snap)
	return snap, nil
}

// Invalidate drops the cached snapshot; the next Snapshot call reloads.
func (p *Provider) Invalidate() {
	p.cur.Store(nil)
}
