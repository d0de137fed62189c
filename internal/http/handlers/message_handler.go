// Inbound message webhook.
//
// This file exposes POST /messages, the HTTP entry point for channel bridges
// (WhatsApp, SMS, web chat) that do not speak NATS. The webhook is
// fire-and-forget from the bridge's point of view: replies travel back over
// the bridge's outbound path, so a successful call returns 202 Accepted with
// no reply payload.
//
// Retries are deduplicated with the Idempotency-Key header: a replayed key
// for the same identity short-circuits without re-running the conversation.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hirescreen/go-screening-backend/internal/engine"
	"github.com/hirescreen/go-screening-backend/internal/http/middleware"
	"github.com/hirescreen/go-screening-backend/internal/repo"
)

// InboundMessageRequest is the JSON payload for the message webhook.
type InboundMessageRequest struct {
	// Identity is the candidate's channel identity (e.g. phone number).
	Identity string `json:"identity" binding:"required" example:"919900112233"`
	// Text is the raw message body.
	Text string `json:"text" example:"yes, I am interested"`
}

// InboundMessageResponse acknowledges webhook acceptance.
type InboundMessageResponse struct {
	Status string `json:"status" example:"accepted"`
	// Replay is true when an Idempotency-Key replay was served.
	Replay bool `json:"replay,omitempty"`
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Deliver an inbound candidate message
// @Description Feeds one candidate message into the screening conversation.
// @Description Replies are delivered out-of-band via the message bus.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Deduplicates bridge retries"
// @Param       body             body    handlers.InboundMessageRequest  true  "Inbound message"
//
// @Success     202  {object} handlers.InboundMessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Processing failed"
// @Router      /messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	var req InboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "identity is required")
		return
	}
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "identity is required")
		return
	}

	ctx := c.Request.Context()

	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey {
		if rec, err := repo.GetIdempotency(ctx, h.db, identity, key, time.Now().UTC()); err == nil && rec != nil {
			ok(c, rec.Status, InboundMessageResponse{Status: "accepted", Replay: true})
			return
		}
	}

	if err := h.msgs.HandleMessage(ctx, identity, req.Text); err != nil {
		switch {
		case errors.Is(err, engine.ErrEmptyIdentity):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "identity is required")
		case errors.Is(err, engine.ErrMessageTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message too long")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeHandleFailed, err.Error())
		}
		return
	}

	if hasKey {
		// Best effort; a lost record only means one redundant re-run.
		if _, err := repo.CreateIdempotency(ctx, h.db, identity, key, http.StatusAccepted, h.IdempotencyTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			lg := middleware.LoggerFrom(c)
			lg.Warn().Err(err).Str("identity", identity).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusAccepted, InboundMessageResponse{Status: "accepted"})
}
