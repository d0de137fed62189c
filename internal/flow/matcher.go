// Package flow holds the pure decision pieces of the screening conversation:
// the reply matcher, the qualification evaluator, and the immutable
// configuration snapshot the engine reads per message. Nothing in this
// package touches the database or the transport.
package flow

import (
	"regexp"
	"strings"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// OutcomeKind classifies an inbound reply against the current step.
type OutcomeKind int

const (
	// OutcomeIgnored means empty/whitespace-only input: no state change, no reply.
	OutcomeIgnored OutcomeKind = iota
	// OutcomeAffirmative means the reply hit one of the step's trigger phrases.
	OutcomeAffirmative
	// OutcomeNegative means the reply hit the negative vocabulary.
	OutcomeNegative
	// OutcomeFAQ means an FAQ keyword was detected; the flow does not advance.
	OutcomeFAQ
	// OutcomeFreeform means a non-empty reply to a step without a match pattern.
	OutcomeFreeform
)

// Outcome is the matcher verdict for one inbound message.
type Outcome struct {
	Kind OutcomeKind
	// Answer carries the text to record under the step key (trimmed original
	// casing, not the normalized form). Set for Affirmative/Negative/Freeform.
	Answer string
	// FAQKey/FAQResponse are set when Kind is OutcomeFAQ.
	FAQKey      string
	FAQResponse string
}

// Matcher classifies free text against step trigger phrases, the negative
// vocabulary, and the FAQ table. It is stateless and safe for concurrent use.
type Matcher struct {
	// Negatives is the vocabulary that counts as declining a pattern step.
	Negatives []string
	// Unemployed phrases mark a company answer as "not currently working".
	Unemployed []string
	// Freshers phrases mark a candidate as having no prior experience.
	Freshers []string
}

// NewMatcher returns a Matcher with the reference vocabularies.
func NewMatcher() *Matcher {
	return &Matcher{
		Negatives: []string{
			"no", "not interested", "nahi", "na", "nope", "not intrested",
		},
		Unemployed: []string{
			"berozgar", "naukri nahi", "no job", "not working", "jobless",
			"unemployed", "job nahi hai", "kahi nahi", "kaam nahi",
		},
		Freshers: []string{
			"fresher", "no experience", "zero experience", "0 years",
			"koi anubhav nahi",
		},
	}
}

// Classify maps inbound text to an Outcome given the current step and the
// FAQ table.
//
// Precedence: for steps with a match pattern, an exact affirmative or
// negative hit wins over an FAQ keyword appearing in the same message; the
// FAQ lookup runs only when the pattern missed. Steps without a pattern
// accept any non-empty reply verbatim, after the FAQ check.
func (m *Matcher) Classify(text string, step domain.FlowStep, faqs []domain.FAQEntry) Outcome {
	raw := strings.TrimSpace(text)
	norm := normalize(raw)
	if norm == "" {
		return Outcome{Kind: OutcomeIgnored}
	}

	phrases := step.MatchPhrases()
	if len(phrases) > 0 {
		if matchPhrases(norm, phrases) {
			return Outcome{Kind: OutcomeAffirmative, Answer: raw}
		}
		if m.isNegative(norm) {
			return Outcome{Kind: OutcomeNegative, Answer: raw}
		}
		if out, ok := lookupFAQ(norm, faqs); ok {
			return out
		}
		return Outcome{Kind: OutcomeIgnored}
	}

	if out, ok := lookupFAQ(norm, faqs); ok {
		return out
	}
	return Outcome{Kind: OutcomeFreeform, Answer: raw}
}

// IsUnemployed reports whether a company answer says the candidate is not
// currently working (triggers the previous-employment branch).
func (m *Matcher) IsUnemployed(text string) bool {
	return containsAny(normalize(text), m.Unemployed)
}

// IsFresher reports whether the text declares zero prior experience.
func (m *Matcher) IsFresher(text string) bool {
	return containsAny(normalize(text), m.Freshers)
}

func (m *Matcher) isNegative(norm string) bool {
	return matchPhrases(norm, m.Negatives)
}

// matchPhrases checks trigger phrases against normalized text. Single-word
// phrases must match a whole word ("no" must not fire on "know");
// multi-word phrases match by containment.
func matchPhrases(norm string, phrases []string) bool {
	if norm == "" {
		return false
	}
	var words map[string]struct{}
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(p, " ") {
			if strings.Contains(norm, p) {
				return true
			}
			continue
		}
		if words == nil {
			words = map[string]struct{}{}
			for _, w := range wordRE.FindAllString(norm, -1) {
				words[w] = struct{}{}
			}
		}
		if _, ok := words[p]; ok {
			return true
		}
	}
	return false
}

// lookupFAQ scans the FAQ table for keyword containment in the normalized
// text. Longer keywords win when several match so "work from home" beats
// "home" style collisions.
func lookupFAQ(norm string, faqs []domain.FAQEntry) (Outcome, bool) {
	best := -1
	for i, f := range faqs {
		key := strings.ToLower(strings.TrimSpace(f.Key))
		if key == "" || !strings.Contains(norm, key) {
			continue
		}
		if best == -1 || len(key) > len(strings.ToLower(faqs[best].Key)) {
			best = i
		}
	}
	if best == -1 {
		return Outcome{}, false
	}
	return Outcome{
		Kind:        OutcomeFAQ,
		FAQKey:      faqs[best].Key,
		FAQResponse: faqs[best].Response,
	}, true
}

// wordRE tokenizes normalized text into letter/digit runs.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// punctRE strips everything that is not a letter, digit, or space.
var punctRE = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// normalize lowercases, strips punctuation, and collapses whitespace.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRE.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(norm string, phrases []string) bool {
	if norm == "" {
		return false
	}
	for _, p := range phrases {
		if p != "" && strings.Contains(norm, p) {
			return true
		}
	}
	return false
}
