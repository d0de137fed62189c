// Screening configuration HTTP handlers.
//
// This file exposes the dashboard's config endpoints:
//   - GET/PUT /config/flow       (the question script)
//   - GET/PUT /config/faqs       (keyword-triggered informational replies)
//   - GET/PUT /config/criteria   (the qualification bar)
//
// Writes replace the whole table atomically and invalidate the engine's
// configuration snapshot, so in-flight conversations keep the snapshot they
// already hold while the next message sees the new configuration.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hirescreen/go-screening-backend/internal/domain"
	"github.com/hirescreen/go-screening-backend/internal/repo"
)

// GetFlow godoc
// @ID          getFlow
// @Summary     Fetch the screening flow
// @Tags        Config
// @Produce     json
// @Success     200  {array}  domain.FlowStep
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/flow [get]
func (h *Handlers) GetFlow(c *gin.Context) {
	steps, err := repo.LoadFlow(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, steps)
}

// PutFlow godoc
// @ID          putFlow
// @Summary     Replace the screening flow
// @Description Replaces the whole question script. Steps are stored in the
// @Description given order; ordinals in the payload are ignored.
// @Tags        Config
// @Accept      json
// @Produce     json
// @Param       body  body  []domain.FlowStep  true  "New flow"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid flow"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/flow [put]
func (h *Handlers) PutFlow(c *gin.Context) {
	var steps []domain.FlowStep
	if err := c.ShouldBindJSON(&steps); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if msg := validateFlow(steps); msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeConfigInvalid, msg)
		return
	}

	if err := repo.ReplaceFlow(c.Request.Context(), h.db, steps); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.flows.Invalidate()
	noContent(c)
}

// GetFAQs godoc
// @ID          getFAQs
// @Summary     Fetch the FAQ table
// @Tags        Config
// @Produce     json
// @Success     200  {array}  domain.FAQEntry
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/faqs [get]
func (h *Handlers) GetFAQs(c *gin.Context) {
	faqs, err := repo.LoadFAQs(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, faqs)
}

// PutFAQs godoc
// @ID          putFAQs
// @Summary     Replace the FAQ table
// @Tags        Config
// @Accept      json
// @Produce     json
// @Param       body  body  []domain.FAQEntry  true  "New FAQ table"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid FAQ table"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/faqs [put]
func (h *Handlers) PutFAQs(c *gin.Context) {
	var faqs []domain.FAQEntry
	if err := c.ShouldBindJSON(&faqs); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if msg := validateFAQs(faqs); msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeConfigInvalid, msg)
		return
	}

	if err := repo.ReplaceFAQs(c.Request.Context(), h.db, faqs); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.flows.Invalidate()
	noContent(c)
}

// GetCriteria godoc
// @ID          getCriteria
// @Summary     Fetch the qualification criteria
// @Tags        Config
// @Produce     json
// @Success     200  {object} domain.QualificationCriteria
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/criteria [get]
func (h *Handlers) GetCriteria(c *gin.Context) {
	crit, err := repo.LoadCriteria(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, crit)
}

// PutCriteria godoc
// @ID          putCriteria
// @Summary     Replace the qualification criteria
// @Tags        Config
// @Accept      json
// @Produce     json
// @Param       body  body  domain.QualificationCriteria  true  "New criteria"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid criteria"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /config/criteria [put]
func (h *Handlers) PutCriteria(c *gin.Context) {
	var crit domain.QualificationCriteria
	if err := c.ShouldBindJSON(&crit); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if msg := validateCriteria(&crit); msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeConfigInvalid, msg)
		return
	}

	if err := repo.SaveCriteria(c.Request.Context(), h.db, &crit); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.flows.Invalidate()
	noContent(c)
}

//
// Validation
//

func validateFlow(steps []domain.FlowStep) string {
	if len(steps) == 0 {
		return "flow must have at least one step"
	}
	seen := make(map[string]struct{}, len(steps))
	for i := range steps {
		key := strings.TrimSpace(steps[i].Key)
		if key == "" {
			return "every step needs a key"
		}
		if _, dup := seen[key]; dup {
			return "duplicate step key: " + key
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(steps[i].Ask) == "" {
			return "step " + key + " has no ask text"
		}
		if steps[i].OnlyWhenUnemployed && steps[i].SkipWhenUnemployed {
			return "step " + key + " cannot be both branch-only and branch-skipped"
		}
	}
	return ""
}

func validateFAQs(faqs []domain.FAQEntry) string {
	seen := make(map[string]struct{}, len(faqs))
	for i := range faqs {
		key := strings.ToLower(strings.TrimSpace(faqs[i].Key))
		if key == "" {
			return "every FAQ needs a keyword"
		}
		if _, dup := seen[key]; dup {
			return "duplicate FAQ keyword: " + key
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(faqs[i].Response) == "" {
			return "FAQ " + key + " has no response"
		}
	}
	return ""
}

func validateCriteria(q *domain.QualificationCriteria) string {
	switch {
	case q.MinExperienceYears < 0:
		return "min_experience_years must be >= 0"
	case q.MaxNoticePeriodDays < 0:
		return "max_notice_period_days must be >= 0"
	case q.MinCTC < 0:
		return "min_ctc must be >= 0"
	case q.MaxCTC < q.MinCTC:
		return "max_ctc must be >= min_ctc"
	case len(q.AllowedProductList()) == 0:
		return "allowed_products must not be empty"
	}
	return ""
}
