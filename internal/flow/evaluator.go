package flow

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hirescreen/go-screening-backend/internal/domain"
)

// Disqualification reasons, stored verbatim on the candidate record and
// surfaced on the dashboard.
const (
	ReasonDeclined       = "declined interest"
	ReasonFresher        = "no prior experience"
	ReasonExperienceLow  = "experience below minimum"
	ReasonNoticeHigh     = "notice period exceeds maximum"
	ReasonCTCOutOfRange  = "CTC outside allowed range"
	ReasonProductBlocked = "product not in allowed list"
)

// Verdict is the evaluator's decision for a completed conversation.
type Verdict struct {
	Qualified bool
	// Reason is set when Qualified is false.
	Reason string
}

// Evaluator applies the qualification criteria to collected answers.
// Rules run in a fixed order (experience, notice, CTC, product) and the
// first failure wins, so the recorded reason is deterministic.
type Evaluator struct{}

// NewEvaluator returns an Evaluator.
func NewEvaluator() *Evaluator { return &Evaluator{} }

// Evaluate scores the answer map against the criteria. An answer that
// cannot be parsed disqualifies with an "unparseable" reason rather than
// passing silently. A missing notice answer is skipped: unemployed
// candidates are never asked for one.
func (e *Evaluator) Evaluate(answers map[string]string, c domain.QualificationCriteria) Verdict {
	expText := answers["experience"]
	exp, ok := parseYears(expText)
	if !ok {
		return Verdict{Reason: "unparseable experience"}
	}
	if exp < c.MinExperienceYears {
		return Verdict{Reason: ReasonExperienceLow}
	}

	if noticeText, asked := answers["notice"]; asked {
		days, ok := parseDays(noticeText)
		if !ok {
			return Verdict{Reason: "unparseable notice period"}
		}
		if days > c.MaxNoticePeriodDays {
			return Verdict{Reason: ReasonNoticeHigh}
		}
	}

	ctc, ok := ParseCTC(answers["ctc"])
	if !ok {
		return Verdict{Reason: "unparseable CTC"}
	}
	if ctc < c.MinCTC || ctc > c.MaxCTC {
		return Verdict{Reason: ReasonCTCOutOfRange}
	}

	if !productAllowed(answers["product"], c.AllowedProductList()) {
		return Verdict{Reason: ReasonProductBlocked}
	}

	return Verdict{Qualified: true}
}

// CheckCTC applies only the CTC band, for the early rejection at the CTC
// step before the flow continues.
func (e *Evaluator) CheckCTC(text string, c domain.QualificationCriteria) (ok, parseable bool) {
	ctc, parsed := ParseCTC(text)
	if !parsed {
		return false, false
	}
	return ctc >= c.MinCTC && ctc <= c.MaxCTC, true
}

func productAllowed(answer string, allowed []string) bool {
	norm := normalize(answer)
	if norm == "" {
		return false
	}
	for _, a := range allowed {
		a = normalize(a)
		if a != "" && strings.Contains(norm, a) {
			return true
		}
	}
	return false
}

// numRE pulls the first decimal number out of free text ("3.5 years",
// "around 30 days").
var numRE = regexp.MustCompile(`\d+(?:\.\d+)?`)

func firstNumber(s string) (float64, bool) {
	m := numRE.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseYears reads an experience answer in years. Month units are
// converted ("6 months" is half a year).
//
// Numbers are pulled from the raw text, not the normalized form, because
// normalization strips the decimal point out of "3.5 years".
func parseYears(s string) (float64, bool) {
	norm := normalize(s)
	v, ok := firstNumber(s)
	if !ok {
		return 0, false
	}
	if strings.Contains(norm, "month") || strings.Contains(norm, "mahina") {
		return v / 12, true
	}
	return v, true
}

// parseDays reads a notice period answer in days. Month and week units
// are converted; "immediate" counts as zero.
func parseDays(s string) (float64, bool) {
	norm := normalize(s)
	if strings.Contains(norm, "immediate") || strings.Contains(norm, "abhi") {
		return 0, true
	}
	v, ok := firstNumber(s)
	if !ok {
		return 0, false
	}
	switch {
	case strings.Contains(norm, "month") || strings.Contains(norm, "mahina"):
		return v * 30, true
	case strings.Contains(norm, "week"):
		return v * 7, true
	}
	return v, true
}

// ParseCTC reads a CTC answer normalized to lakhs per annum. A "k" unit
// is taken as thousands and divided down ("450k" reads as 4.5); "lakh",
// "lac" and "lpa" are already in the target unit; a bare number is
// assumed to be LPA.
func ParseCTC(s string) (float64, bool) {
	norm := normalize(s)
	v, ok := firstNumber(s)
	if !ok {
		return 0, false
	}
	if hasWord(norm, "k") || strings.Contains(norm, "thousand") || strings.Contains(norm, "hazar") {
		return v / 100, true
	}
	return v, true
}

// hasWord reports whether the normalized text contains w as a standalone
// token or glued to a number ("50k").
func hasWord(norm, w string) bool {
	for _, tok := range strings.Fields(norm) {
		if tok == w || strings.HasSuffix(tok, w) && numRE.MatchString(strings.TrimSuffix(tok, w)) {
			return true
		}
	}
	return false
}
