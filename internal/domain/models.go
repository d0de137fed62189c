// Package domain defines the persistence models for candidates, chat
// transcripts, conversation state, and screening configuration. These types
// are mapped with GORM and form the core data layer of the screening backend.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Candidate status values. A candidate starts as pending and transitions to
// exactly one terminal status; terminal statuses are never reversed.
const (
	StatusPending      = "pending"
	StatusQualified    = "qualified"
	StatusDisqualified = "disqualified"
)

// Chat message sender values.
const (
	SenderBot  = "bot"
	SenderUser = "user"
)

// Candidate represents one screened person, keyed by the messaging identity
// (a phone-like string treated as an opaque unique key). Answer fields are
// filled in as the conversation progresses and may be empty until then.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Identity: messaging endpoint of the candidate; unique.
//   - Name/Company/PrevCompany/NoticePeriod/CTC/Experience/Product: raw
//     answers as given by the candidate (free text, units included).
//   - Status: pending | qualified | disqualified (enforced by DB constraint).
//   - DisqualificationReason: set iff Status is disqualified.
//   - CreatedAt: first-contact time, immutable afterwards.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Candidate struct {
	ID                     string         `json:"id"                      gorm:"type:char(36);primaryKey"`
	Identity               string         `json:"identity"                gorm:"type:varchar(64);not null;uniqueIndex:ux_candidate_identity"`
	Name                   string         `json:"name,omitempty"          gorm:"type:varchar(255)"`
	Company                string         `json:"company,omitempty"       gorm:"type:varchar(255)"`
	PrevCompany            string         `json:"prev_company,omitempty"  gorm:"type:varchar(255)"`
	NoticePeriod           string         `json:"notice_period,omitempty" gorm:"type:varchar(64)"`
	CTC                    string         `json:"ctc,omitempty"           gorm:"type:varchar(64)"`
	Experience             string         `json:"experience,omitempty"    gorm:"type:varchar(64)"`
	Product                string         `json:"product,omitempty"       gorm:"type:varchar(255)"`
	Status                 string         `json:"status"                  gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','qualified','disqualified')"`
	DisqualificationReason string         `json:"disqualification_reason,omitempty" gorm:"type:varchar(255)"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `json:"-"                       gorm:"index"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string { return "candidates" }

// Terminal reports whether the candidate has reached a final disposition.
func (c *Candidate) Terminal() bool {
	return c.Status == StatusQualified || c.Status == StatusDisqualified
}

// ChatMessage is a single transcript entry for a candidate identity. The
// transcript is append-only: rows are never updated or deleted, and
// timestamps are non-decreasing per identity.
//
// Seq is a per-identity monotonic sequence assigned on insert. One inbound
// message can produce several rows sharing a timestamp (the user message, an
// FAQ answer, the repeated question); Seq keeps them in causal order.
//
// StepKey is set only on bot-authored messages that correspond to a flow
// step question; FAQ replies and closing acknowledgments leave it empty.
type ChatMessage struct {
	ID        string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	Identity  string    `json:"identity"           gorm:"type:varchar(64);not null;index:idx_chatlog,priority:1"`
	Seq       int64     `json:"-"                  gorm:"not null;index:idx_chatlog,priority:2"`
	Sender    string    `json:"sender"             gorm:"type:varchar(8);not null;check:sender IN ('bot','user')"`
	Text      string    `json:"text"               gorm:"type:text;not null"`
	StepKey   string    `json:"step,omitempty"     gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"timestamp"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// ConversationState is the per-identity dialogue position: the current step
// ordinal and answers collected so far. It exists only while a conversation
// is in progress; the row is removed once a disposition is recorded (the
// Candidate row then carries the terminal status).
//
// Answers is a JSON object keyed by step key; use AnswerMap/SetAnswerMap
// rather than touching the raw column.
type ConversationState struct {
	Identity    string    `json:"identity"     gorm:"type:varchar(64);primaryKey"`
	StepOrdinal int       `json:"step_ordinal" gorm:"not null;default:0"`
	Answers     string    `json:"-"            gorm:"type:text;not null;default:'{}'"`
	Unemployed  bool      `json:"unemployed"   gorm:"not null;default:false"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for ConversationState.
func (ConversationState) TableName() string { return "conversation_states" }

// AnswerMap decodes the collected answers. A blank column decodes to an
// empty, non-nil map.
func (s *ConversationState) AnswerMap() (map[string]string, error) {
	out := map[string]string{}
	raw := strings.TrimSpace(s.Answers)
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAnswerMap encodes answers into the Answers column.
func (s *ConversationState) SetAnswerMap(m map[string]string) error {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s.Answers = string(b)
	return nil
}

// FlowStep is one question of the recruitment script.
//
// Match holds pipe-separated trigger phrases ("yes|interested|sure"); a
// blank Match means the step accepts any non-empty reply verbatim. The two
// branch flags carry the employment branch of the reference script:
// OnlyWhenUnemployed steps are asked only after an unemployed company
// answer, SkipWhenUnemployed steps are skipped for those candidates.
type FlowStep struct {
	ID                 string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	Ordinal            int       `json:"ordinal"              gorm:"not null;uniqueIndex:ux_flow_ordinal"`
	Key                string    `json:"step"                 gorm:"type:varchar(64);not null;uniqueIndex:ux_flow_key"`
	Ask                string    `json:"ask"                  gorm:"type:text;not null"`
	Match              string    `json:"match,omitempty"      gorm:"type:text"`
	OnlyWhenUnemployed bool      `json:"only_when_unemployed" gorm:"not null;default:false"`
	SkipWhenUnemployed bool      `json:"skip_when_unemployed" gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName returns the database table name for FlowStep.
func (FlowStep) TableName() string { return "flow_steps" }

// MatchPhrases splits the Match column into trimmed, lowercased trigger
// phrases. A blank Match yields nil (freeform step).
func (f *FlowStep) MatchPhrases() []string {
	raw := strings.TrimSpace(f.Match)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FAQEntry is a keyword-triggered informational reply. Lookup is substring
// containment against inbound text and is independent of flow position;
// an FAQ reply never advances the script.
type FAQEntry struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	Key       string    `json:"key"      gorm:"type:varchar(64);not null;uniqueIndex:ux_faq_key"`
	Response  string    `json:"response" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for FAQEntry.
func (FAQEntry) TableName() string { return "faq_entries" }

// QualificationCriteria is the single-row qualification rule set consulted
// when a conversation completes. AllowedProducts holds pipe-separated
// keywords matched case-insensitively as substrings of the product answer.
type QualificationCriteria struct {
	ID                  string    `json:"-"                      gorm:"type:varchar(16);primaryKey"`
	MinExperienceYears  float64   `json:"min_experience_years"   gorm:"not null;default:0"`
	MaxNoticePeriodDays float64   `json:"max_notice_period_days" gorm:"not null;default:0"`
	MinCTC              float64   `json:"min_ctc"                gorm:"not null;default:0"`
	MaxCTC              float64   `json:"max_ctc"                gorm:"not null;default:0"`
	AllowedProducts     string    `json:"allowed_products"       gorm:"type:text"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName returns the database table name for QualificationCriteria.
func (QualificationCriteria) TableName() string { return "qualification_criteria" }

// AllowedProductList splits AllowedProducts into trimmed, lowercased
// keywords.
func (q *QualificationCriteria) AllowedProductList() []string {
	raw := strings.TrimSpace(q.AllowedProducts)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
