package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
	"github.com/hirescreen/go-screening-backend/internal/flow"
	"github.com/hirescreen/go-screening-backend/internal/repo"
)

// Closing messages sent when a conversation finishes.
const (
	msgDeclined = "No problem, thank you for your time. Feel free to message us again if you change your mind."
	msgFresher  = "Thank you for your interest. This role requires prior work experience, so we cannot take your application forward right now."
	msgRejected = "Thank you for your time. Unfortunately your profile does not match the current requirements for this role."
	msgAccepted = "Thank you! Your details have been shared with our HR team, who will reach out to you shortly with the next steps."
)

// Transport delivers outbound messages to candidates and notifications to
// the recruitment team. Implementations must be safe for concurrent use.
type Transport interface {
	// Send delivers text to a candidate identity.
	Send(ctx context.Context, identity, text string) error
	// Notify delivers text to the admin channel.
	Notify(ctx context.Context, text string) error
}

// outbound is a reply queued during the transaction and delivered after
// commit, so a rolled-back transition never produces a visible message.
type outbound struct {
	identity string
	text     string
	notify   bool
}

// Engine runs the screening conversation state machine. One instance
// serves all identities; messages for the same identity are serialized,
// distinct identities proceed concurrently.
type Engine struct {
	DB        *gorm.DB
	Flows     *flow.Provider
	Matcher   *flow.Matcher
	Evaluator *flow.Evaluator
	Transport Transport

	// MaxMessageRunes caps inbound message length.
	MaxMessageRunes int
	// IdleExpiry restarts a conversation whose last activity is older than
	// this. Zero disables expiry.
	IdleExpiry time.Duration
	// SendMaxRetries and SendBackoff bound outbound delivery attempts.
	SendMaxRetries int
	SendBackoff    time.Duration

	locks *identityLocks
}

// New constructs an Engine with the reference matcher and evaluator and
// sane delivery defaults.
func New(db *gorm.DB, flows *flow.Provider, tr Transport) *Engine {
	return &Engine{
		DB:              db,
		Flows:           flows,
		Matcher:         flow.NewMatcher(),
		Evaluator:       flow.NewEvaluator(),
		Transport:       tr,
		MaxMessageRunes: 4000,
		IdleExpiry:      168 * time.Hour,
		SendMaxRetries:  3,
		SendBackoff:     500 * time.Millisecond,
		locks:           newIdentityLocks(),
	}
}

// HandleMessage processes one inbound candidate message end to end: it
// classifies the text against the current step, applies the transition in a
// single transaction, and delivers the queued replies after commit.
func (e *Engine) HandleMessage(ctx context.Context, identity, text string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrEmptyIdentity
	}
	text = strings.TrimSpace(text)
	if e.MaxMessageRunes > 0 && utf8.RuneCountInString(text) > e.MaxMessageRunes {
		return ErrMessageTooLong
	}
	if text == "" {
		inboundMsgs.WithLabelValues("ignored").Inc()
		return nil
	}

	tr := otel.Tracer("engine/Engine")
	ctx, span := tr.Start(ctx, "HandleMessage",
		trace.WithAttributes(attribute.String("candidate.identity", identity)),
	)
	defer span.End()

	release := e.locks.acquire(identity)
	defer release()

	snap, err := e.Flows.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Len() == 0 {
		return ErrNoFlow
	}

	now := time.Now().UTC()

	var (
		queue       []outbound
		outcome     string
		disposition string
	)
	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		queue = queue[:0]
		outcome, disposition = "", ""

		cand, err := repo.GetCandidate(ctx, tx, identity)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		// A finished candidate stays finished; keep the transcript, send
		// nothing.
		if cand != nil && cand.Terminal() {
			outcome = "ignored"
			_, err := repo.AppendChatMessage(ctx, tx, identity, domain.SenderUser, text, "", now)
			return err
		}

		state, err := repo.LoadState(ctx, tx, identity)
		fresh := errors.Is(err, repo.ErrNotFound)
		if err != nil && !fresh {
			return err
		}
		if !fresh && e.IdleExpiry > 0 && now.Sub(state.UpdatedAt) > e.IdleExpiry {
			// Stale conversation; restart from the top.
			if err := repo.DeleteState(ctx, tx, identity); err != nil {
				return err
			}
			fresh = true
		}

		if _, err := repo.AppendChatMessage(ctx, tx, identity, domain.SenderUser, text, "", now); err != nil {
			return err
		}

		if fresh {
			outcome = "freeform"
			return e.begin(ctx, tx, &queue, identity, cand, snap, now)
		}

		ord := state.StepOrdinal
		if ord >= snap.Len() {
			// The flow shrank under an in-flight conversation; resume at
			// the new last step.
			ord = snap.Len() - 1
		}
		step := snap.Step(ord)

		answers, err := state.AnswerMap()
		if err != nil {
			return err
		}

		verdictOut := e.Matcher.Classify(text, step, snap.FAQs)
		outcome = outcomeLabel(verdictOut.Kind)

		switch verdictOut.Kind {
		case flow.OutcomeIgnored:
			// Unrecognized reply to a yes/no question; repeat it.
			return e.ask(ctx, tx, &queue, identity, snap, ord, answers, now)

		case flow.OutcomeFAQ:
			// Answer the question, then repeat the pending step.
			if err := e.say(ctx, tx, &queue, identity, verdictOut.FAQResponse, "", now); err != nil {
				return err
			}
			return e.ask(ctx, tx, &queue, identity, snap, ord, answers, now)

		case flow.OutcomeNegative:
			disposition = domain.StatusDisqualified
			return e.finish(ctx, tx, &queue, identity, cand, snap, answers,
				flow.Verdict{Reason: flow.ReasonDeclined}, msgDeclined, now)
		}

		// Affirmative or freeform: record the answer and advance.
		answers[step.Key] = verdictOut.Answer
		unemployed := state.Unemployed

		switch step.Key {
		case "company":
			if e.Matcher.IsUnemployed(verdictOut.Answer) {
				unemployed = true
			}
		case "experience":
			if e.Matcher.IsFresher(verdictOut.Answer) {
				disposition = domain.StatusDisqualified
				return e.finish(ctx, tx, &queue, identity, cand, snap, answers,
					flow.Verdict{Reason: flow.ReasonFresher}, msgFresher, now)
			}
		case "ctc":
			if ok, parseable := e.Evaluator.CheckCTC(verdictOut.Answer, snap.Criteria); parseable && !ok {
				disposition = domain.StatusDisqualified
				return e.finish(ctx, tx, &queue, identity, cand, snap, answers,
					flow.Verdict{Reason: flow.ReasonCTCOutOfRange}, msgRejected, now)
			}
		}

		next := snap.NextOrdinal(ord, unemployed)
		if next >= snap.Len() {
			verdict := e.Evaluator.Evaluate(answers, snap.Criteria)
			if verdict.Qualified {
				disposition = domain.StatusQualified
				return e.finish(ctx, tx, &queue, identity, cand, snap, answers, verdict, msgAccepted, now)
			}
			disposition = domain.StatusDisqualified
			return e.finish(ctx, tx, &queue, identity, cand, snap, answers, verdict, msgRejected, now)
		}

		state.StepOrdinal = next
		state.Unemployed = unemployed
		if err := state.SetAnswerMap(answers); err != nil {
			return err
		}
		if err := repo.SaveState(ctx, tx, state); err != nil {
			return err
		}
		return e.ask(ctx, tx, &queue, identity, snap, next, answers, now)
	})
	if err != nil {
		// Best effort; the recruitment team should hear about a stuck
		// conversation before the candidate does.
		if nerr := e.Transport.Notify(ctx, "bot error for "+identity); nerr != nil {
			log.Warn().Err(nerr).Str("identity", identity).Msg("error notification failed")
		}
		return err
	}

	if outcome != "" {
		inboundMsgs.WithLabelValues(outcome).Inc()
	}
	if disposition != "" {
		dispositions.WithLabelValues(disposition).Inc()
	}

	e.deliver(ctx, queue)
	return nil
}

// begin registers a first-contact candidate and asks the opening question.
func (e *Engine) begin(ctx context.Context, tx *gorm.DB, queue *[]outbound, identity string, cand *domain.Candidate, snap *flow.Snapshot, now time.Time) error {
	if cand == nil {
		cand = &domain.Candidate{Identity: identity, Status: domain.StatusPending}
	}
	if err := repo.UpsertCandidate(ctx, tx, cand); err != nil {
		return err
	}
	st := &domain.ConversationState{Identity: identity, StartedAt: now}
	if err := st.SetAnswerMap(map[string]string{}); err != nil {
		return err
	}
	if err := repo.SaveState(ctx, tx, st); err != nil {
		return err
	}
	return e.ask(ctx, tx, queue, identity, snap, 0, nil, now)
}

// ask logs and queues the question for the given step ordinal.
func (e *Engine) ask(ctx context.Context, tx *gorm.DB, queue *[]outbound, identity string, snap *flow.Snapshot, ord int, answers map[string]string, now time.Time) error {
	step := snap.Step(ord)
	return e.say(ctx, tx, queue, identity, flow.RenderAsk(step.Ask, answers), step.Key, now)
}

// say logs a bot message and queues it for post-commit delivery.
func (e *Engine) say(ctx context.Context, tx *gorm.DB, queue *[]outbound, identity, text, stepKey string, now time.Time) error {
	if _, err := repo.AppendChatMessage(ctx, tx, identity, domain.SenderBot, text, stepKey, now); err != nil {
		return err
	}
	*queue = append(*queue, outbound{identity: identity, text: text})
	return nil
}

// finish closes the conversation: it stamps the candidate with the verdict
// and the collected answers, drops the state row, and queues the closing
// message. Every completion also queues an admin notification, except a
// candidate who declined before answering anything.
func (e *Engine) finish(ctx context.Context, tx *gorm.DB, queue *[]outbound, identity string, cand *domain.Candidate, snap *flow.Snapshot, answers map[string]string, verdict flow.Verdict, closing string, now time.Time) error {
	if cand == nil {
		cand = &domain.Candidate{Identity: identity}
	}
	applyAnswers(cand, answers)
	if verdict.Qualified {
		cand.Status = domain.StatusQualified
		cand.DisqualificationReason = ""
	} else {
		cand.Status = domain.StatusDisqualified
		cand.DisqualificationReason = verdict.Reason
	}
	if err := repo.UpsertCandidate(ctx, tx, cand); err != nil {
		return err
	}
	if err := repo.DeleteState(ctx, tx, identity); err != nil {
		return err
	}
	if err := e.say(ctx, tx, queue, identity, closing, "", now); err != nil {
		return err
	}
	if verdict.Reason != flow.ReasonDeclined {
		*queue = append(*queue, outbound{text: summarize(identity, snap, answers, verdict), notify: true})
	}
	return nil
}

// nameCaser normalizes candidate names for the dashboard ("asha verma"
// becomes "Asha Verma"). Casers are not safe for concurrent use, so each
// call takes a fresh one.
func nameCaser() cases.Caser { return cases.Title(language.English) }

// applyAnswers copies collected answers onto the candidate record.
func applyAnswers(c *domain.Candidate, answers map[string]string) {
	if v, ok := answers["name"]; ok {
		c.Name = nameCaser().String(v)
	}
	if v, ok := answers["company"]; ok {
		c.Company = v
	}
	if v, ok := answers["prev_company"]; ok {
		c.PrevCompany = v
	}
	if v, ok := answers["notice"]; ok {
		c.NoticePeriod = v
	}
	if v, ok := answers["ctc"]; ok {
		c.CTC = v
	}
	if v, ok := answers["experience"]; ok {
		c.Experience = v
	}
	if v, ok := answers["product"]; ok {
		c.Product = v
	}
}

// summarize builds the completion notification, listing collected answers
// in flow order.
func summarize(identity string, snap *flow.Snapshot, answers map[string]string, verdict flow.Verdict) string {
	var b strings.Builder
	if verdict.Qualified {
		fmt.Fprintf(&b, "Qualified candidate %s", identity)
	} else {
		fmt.Fprintf(&b, "Disqualified candidate %s (%s)", identity, verdict.Reason)
	}
	for _, step := range snap.Steps {
		if v, ok := answers[step.Key]; ok && v != "" {
			fmt.Fprintf(&b, "\n%s: %s", step.Key, v)
		}
	}
	return b.String()
}

// deliver sends queued messages with a bounded retry budget. Delivery runs
// after the transaction committed, so a failed send never rolls back state;
// it is logged and counted instead.
func (e *Engine) deliver(ctx context.Context, queue []outbound) {
	for _, o := range queue {
		var err error
		for attempt := 0; attempt <= e.SendMaxRetries; attempt++ {
			if attempt > 0 {
				sendRetries.Inc()
				select {
				case <-ctx.Done():
					err = ctx.Err()
				case <-time.After(e.SendBackoff):
				}
				if err != nil {
					break
				}
			}
			if o.notify {
				err = e.Transport.Notify(ctx, o.text)
			} else {
				err = e.Transport.Send(ctx, o.identity, o.text)
			}
			if err == nil {
				break
			}
		}
		if err != nil {
			sendFailures.Inc()
			log.Error().Err(err).
				Str("identity", o.identity).
				Bool("notify", o.notify).
				Msg("outbound delivery dropped after retries")
		}
	}
}

func outcomeLabel(k flow.OutcomeKind) string {
	switch k {
	case flow.OutcomeAffirmative:
		return "affirmative"
	case flow.OutcomeNegative:
		return "negative"
	case flow.OutcomeFAQ:
		return "faq"
	case flow.OutcomeFreeform:
		return "freeform"
	default:
		return "ignored"
	}
}
