// Candidate HTTP handlers.
//
// This file exposes the recruiter dashboard read endpoints:
//   - GET /candidates                      (list, paginated, status filter)
//   - GET /candidates/{identity}           (single candidate)
//   - GET /candidates/{identity}/chatlog   (conversation transcript, paginated)
//   - GET /stats                           (dashboard aggregates)
//
// Handlers are transport-thin: they validate input, call the repo layer, and
// translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hirescreen/go-screening-backend/internal/domain"
	"github.com/hirescreen/go-screening-backend/internal/repo"
	"github.com/hirescreen/go-screening-backend/internal/utils"
)

// MessageHandler processes one inbound candidate message (implemented by the
// conversation engine). Implementations must be safe for concurrent use and
// must honor the provided context.
type MessageHandler interface {
	HandleMessage(ctx context.Context, identity, text string) error
}

// ConfigInvalidator drops cached configuration snapshots after a dashboard
// config write.
type ConfigInvalidator interface {
	Invalidate()
}

// Handlers groups the HTTP endpoints for candidates, chat logs, screening
// configuration, stats, and the inbound message webhook.
type Handlers struct {
	db    *gorm.DB
	msgs  MessageHandler
	flows ConfigInvalidator

	// IdempotencyTTL bounds how long a webhook Idempotency-Key is honored.
	IdempotencyTTL time.Duration
	// StatsWindow is the "recent" window for dashboard aggregates.
	StatsWindow time.Duration
}

// New constructs a Handlers instance bound to the given database, message
// handler, and snapshot invalidator.
func New(db *gorm.DB, msgs MessageHandler, flows ConfigInvalidator) *Handlers {
	return &Handlers{
		db:             db,
		msgs:           msgs,
		flows:          flows,
		IdempotencyTTL: 24 * time.Hour,
		StatsWindow:    24 * time.Hour,
	}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCandidatesResponse wraps a page of candidates and pagination information.
type ListCandidatesResponse struct {
	Candidates []domain.Candidate `json:"candidates"`
	Pagination Pagination         `json:"pagination"`
}

// ChatLogResponse wraps a page of chat messages and pagination information.
type ChatLogResponse struct {
	Identity   string               `json:"identity"`
	Messages   []domain.ChatMessage `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

func paginationOf(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// ListCandidates godoc
// @ID          listCandidates
// @Summary     List candidates (paginated)
// @Description Returns a page of screened candidates, most recent first.
// @Tags        Candidates
// @Produce     json
//
// @Param       status     query  string  false "Filter by status"  Enums(pending, qualified, disqualified)
// @Param       page       query  int     false "Page number"       minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"    minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCandidatesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /candidates [get]
func (h *Handlers) ListCandidates(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	status := strings.TrimSpace(c.Query("status"))
	switch status {
	case "", domain.StatusPending, domain.StatusQualified, domain.StatusDisqualified:
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be pending, qualified, or disqualified")
		return
	}

	total, err := repo.CountCandidates(ctx, h.db, status)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	items, err := repo.ListCandidatesPage(ctx, h.db, status, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Candidate{}
	}

	ok(c, http.StatusOK, ListCandidatesResponse{
		Candidates: items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// GetCandidate godoc
// @ID          getCandidate
// @Summary     Fetch a candidate
// @Description Returns the candidate record for a channel identity.
// @Tags        Candidates
// @Produce     json
//
// @Param       identity  path  string  true  "Channel identity (e.g. phone number)"
//
// @Success     200  {object} domain.Candidate
// @Failure     404  {object} handlers.ErrorResponse "Candidate not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /candidates/{identity} [get]
func (h *Handlers) GetCandidate(c *gin.Context) {
	identity := strings.TrimSpace(c.Param("identity"))

	cand, err := repo.GetCandidate(c.Request.Context(), h.db, identity)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "candidate not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cand)
}

// ListChatLog godoc
// @ID          listChatLog
// @Summary     Fetch a candidate's transcript (paginated)
// @Description Returns the chat log for a candidate in chronological order.
// @Tags        Candidates
// @Produce     json
//
// @Param       identity   path   string  true  "Channel identity"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ChatLogResponse
// @Failure     404  {object} handlers.ErrorResponse "Candidate not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /candidates/{identity}/chatlog [get]
func (h *Handlers) ListChatLog(c *gin.Context) {
	ctx := c.Request.Context()
	identity := strings.TrimSpace(c.Param("identity"))
	page, pageSize := clampPagination(c)

	if _, err := repo.GetCandidate(ctx, h.db, identity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "candidate not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	total, err := repo.CountChatMessages(ctx, h.db, identity)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	msgs, err := repo.ListChatLogPage(ctx, h.db, identity, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}

	ok(c, http.StatusOK, ChatLogResponse{
		Identity:   identity,
		Messages:   msgs,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// GetStats godoc
// @ID          getStats
// @Summary     Dashboard aggregates
// @Description Returns candidate counts by status and recent activity.
// @Tags        Stats
// @Produce     json
//
// @Success     200  {object} repo.DashboardStats
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := repo.LoadDashboardStats(c.Request.Context(), h.db, h.StatsWindow)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
