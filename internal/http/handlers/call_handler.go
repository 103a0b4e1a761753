// Call HTTP handlers.
//
// This file exposes the webhook front door and the ledger inspection
// endpoints:
//   - POST /calls              (telephony call-completion webhook)
//   - GET  /calls              (list ledger rows, paginated)
//   - GET  /calls/{id}         (inspect one ledger row)
//   - POST /directory/reload   (reload the agent directory)
//
// Handlers are transport-thin: they validate input, call the pipeline
// coordinator or repository, and translate results into HTTP responses.
package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nkhandel/go-call-digest-backend/internal/domain"
	"github.com/nkhandel/go-call-digest-backend/internal/repo"
	"github.com/nkhandel/go-call-digest-backend/internal/services"
	"github.com/nkhandel/go-call-digest-backend/internal/utils"
)

// HeaderWebhookToken carries the shared webhook secret, when configured.
const HeaderWebhookToken = "X-Webhook-Token"

//
// Service contracts (context-aware)
//

// CallPipeline is the coordinator surface consumed by the webhook handler.
//
// Implementations must be safe for concurrent use; Submit returns quickly and
// runs the expensive work asynchronously.
type CallPipeline interface {
	// Submit claims the event and starts processing on a fresh claim.
	Submit(ctx context.Context, ev domain.CallEvent) (*services.Task, error)
}

// DirectoryReloader is the operational surface for the agent directory.
type DirectoryReloader interface {
	// Reload rebuilds the directory snapshot from its source file.
	Reload() error
	// Len reports the number of loaded agents.
	Len() int
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for the call pipeline. Ledger reads go
// straight to the repository with the injected DB handle; writes only ever
// happen through the pipeline.
type Handlers struct {
	db       *gorm.DB
	pipeline CallPipeline
	dir      DirectoryReloader

	// webhookToken guards POST /calls when non-empty.
	webhookToken string
}

// New constructs a Handlers instance bound to the given dependencies.
func New(db *gorm.DB, pipeline CallPipeline, dir DirectoryReloader, webhookToken string) *Handlers {
	return &Handlers{db: db, pipeline: pipeline, dir: dir, webhookToken: webhookToken}
}

//
// DTOs
//

// CallWebhookRequest is the JSON payload delivered by the telephony provider
// on call completion. Field names follow the provider's webhook schema.
type CallWebhookRequest struct {
	// CallID is the telephony session id; required, the dedup key.
	CallID string `json:"call_id" example:"CAb1c2d3e4"`
	// FromNumber is the caller in provider formatting.
	FromNumber string `json:"from_number" binding:"required" example:"+919876543210"`
	// ToNumber is the callee in provider formatting.
	ToNumber string `json:"to_number" binding:"required" example:"09631084471"`
	// Duration is the call length in seconds.
	Duration int `json:"duration" example:"95"`
	// RecordingURL points at the call audio; optional.
	RecordingURL string `json:"recording_url" example:"https://recordings.exotel.com/x.mp3"`
	// Timestamp is the call completion time, RFC 3339.
	Timestamp string `json:"timestamp" example:"2025-03-14T09:30:00Z"`
	// Status is the provider call status; only completed calls are processed.
	Status string `json:"status" example:"completed"`

	// Optional manual overrides for the displayed agent identity.
	AgentName        string `json:"agent_name,omitempty"`
	AgentSlackHandle string `json:"agent_slack_handle,omitempty"`
	Department       string `json:"department,omitempty"`

	CustomerSegment string `json:"customer_segment,omitempty" example:"enterprise"`
}

// AcceptedResponse acknowledges a webhook delivery.
type AcceptedResponse struct {
	Status string `json:"status" example:"accepted"`
	CallID string `json:"call_id" example:"CAb1c2d3e4"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCallsResponse wraps a page of ledger rows and pagination information.
type ListCallsResponse struct {
	Calls      []domain.CallRecord `json:"calls"`
	Pagination Pagination          `json:"pagination"`
}

// ReloadResponse reports the directory size after a reload.
type ReloadResponse struct {
	Status string `json:"status" example:"reloaded"`
	Agents int    `json:"agents" example:"12"`
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
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// toEvent converts the wire DTO into the internal event. A timestamp that
// does not parse as RFC 3339 is dropped; the formatter substitutes now().
func (r CallWebhookRequest) toEvent() domain.CallEvent {
	ev := domain.CallEvent{
		CallID:          strings.TrimSpace(r.CallID),
		FromNumber:      r.FromNumber,
		ToNumber:        r.ToNumber,
		DurationSeconds: r.Duration,
		RecordingURL:    r.RecordingURL,
		Status:          r.Status,
		AgentName:       r.AgentName,
		AgentHandle:     r.AgentSlackHandle,
		Department:      r.Department,
		CustomerSegment: r.CustomerSegment,
	}
	if r.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
			ev.Timestamp = ts.UTC()
		}
	}
	return ev
}

// authorized checks the shared webhook secret in constant time.
func (h *Handlers) authorized(c *gin.Context) bool {
	if h.webhookToken == "" {
		return true
	}
	got := c.GetHeader(HeaderWebhookToken)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookToken)) == 1
}

//
// Handlers
//

// PostCall godoc
// @ID          postCall
// @Summary     Ingest a call-completion event
// @Description Accepts a telephony webhook delivery, claims the call id for exactly-once processing, and runs the transcription pipeline asynchronously. Re-deliveries of an already claimed call id are acknowledged as duplicates.
// @Tags        Calls
// @Accept      json
// @Produce     json
//
// @Param       X-Webhook-Token  header  string  false "Shared webhook secret (when configured)"
// @Param       body             body    handlers.CallWebhookRequest  true  "Call completion payload"
//
// @Success     202  {object}  handlers.AcceptedResponse
// @Success     200  {object}  handlers.AcceptedResponse "Duplicate delivery"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Bad webhook token"
// @Failure     503  {object}  handlers.ErrorResponse "Shutting down"
// @Router      /calls [post]
func (h *Handlers) PostCall(c *gin.Context) {
	if !h.authorized(c) {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid webhook token")
		return
	}

	var req CallWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CallID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "call_id is required")
		return
	}

	_, err := h.pipeline.Submit(c.Request.Context(), req.toEvent())
	switch {
	case err == nil:
		ok(c, http.StatusAccepted, AcceptedResponse{Status: "accepted", CallID: req.CallID})
	case errors.Is(err, services.ErrDuplicateCall):
		ok(c, http.StatusOK, AcceptedResponse{Status: "duplicate", CallID: req.CallID})
	case errors.Is(err, services.ErrMissingCallID), errors.Is(err, services.ErrNotCompleted):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrShuttingDown):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "shutting down")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeAcceptFailed, err.Error())
	}
}

// ListCalls godoc
// @ID          listCalls
// @Summary     List processed calls (paginated)
// @Description Returns a page of ledger rows, most recently claimed first.
// @Tags        Calls
// @Produce     json
//
// @Param       page       query  int  false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCallsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /calls [get]
func (h *Handlers) ListCalls(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	total, err := repo.CountCalls(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	items := []domain.CallRecord{}
	if total > 0 {
		offset := (page - 1) * pageSize
		items, err = repo.ListCallsPage(ctx, h.db, offset, pageSize)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListCallsResponse{
		Calls: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetCall godoc
// @ID          getCall
// @Summary     Inspect one call
// @Description Returns the ledger row for a call id, including the stored transcript and summary for published calls.
// @Tags        Calls
// @Produce     json
//
// @Param       id  path  string  true "Call ID" example(CAb1c2d3e4)
//
// @Success     200  {object} domain.CallRecord
// @Failure     404  {object} handlers.ErrorResponse "Call not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /calls/{id} [get]
func (h *Handlers) GetCall(c *gin.Context) {
	rec, err := repo.GetCall(c.Request.Context(), h.db, c.Param("id"))
	switch {
	case err == nil:
		ok(c, http.StatusOK, rec)
	case errors.Is(err, repo.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "call not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// GetStats godoc
// @ID          getStats
// @Summary     Ledger totals by status
// @Description Returns row counts per lifecycle status for dashboards and smoke checks.
// @Tags        Stats
// @Produce     json
//
// @Success     200  {object} repo.LedgerStats
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	s, err := repo.CallStats(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, s)
}

// ReloadDirectory godoc
// @ID          reloadDirectory
// @Summary     Reload the agent directory
// @Description Re-reads the agent directory file and swaps in the new snapshot. On failure the previous snapshot stays active.
// @Tags        Directory
// @Produce     json
//
// @Success     200  {object} handlers.ReloadResponse
// @Failure     500  {object} handlers.ErrorResponse "Reload failed"
// @Router      /directory/reload [post]
func (h *Handlers) ReloadDirectory(c *gin.Context) {
	if err := h.dir.Reload(); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeReloadFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ReloadResponse{Status: "reloaded", Agents: h.dir.Len()})
}
