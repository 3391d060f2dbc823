// Package handler exposes the admin HTTP API: domain inspection, blacklist
// management, and per-session judgment review.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dqmodels "northstar/internal/domainquality/models"
	"northstar/internal/judging/ports"
	"northstar/internal/judging/tld"
	id "northstar/pkg/domain"
	dErrors "northstar/pkg/domain-errors"
	"northstar/pkg/platform/httputil"
	"northstar/pkg/requestcontext"
)

// Tracker defines the domain quality operations the admin API exposes.
type Tracker interface {
	Get(ctx context.Context, domainName string) (*dqmodels.DomainRecord, error)
	Blacklist(ctx context.Context, domainName, reason, actor string) (*dqmodels.DomainRecord, error)
	Unblacklist(ctx context.Context, domainName string) (*dqmodels.DomainRecord, error)
	MarkNoFundsThisYear(ctx context.Context, domainName string, year int) (*dqmodels.DomainRecord, error)
	ClearNoFundsFlag(ctx context.Context, domainName string) (*dqmodels.DomainRecord, error)
	SetNotes(ctx context.Context, domainName, notes string) (*dqmodels.DomainRecord, error)
	DomainsByTier(ctx context.Context, tier dqmodels.QualityTier, limit int) ([]*dqmodels.DomainRecord, error)
	DomainsByStatus(ctx context.Context, status dqmodels.DomainStatus, limit int) ([]*dqmodels.DomainRecord, error)
	SearchDomains(ctx context.Context, query string, limit int) ([]*dqmodels.DomainRecord, error)
}

// Handler wires admin endpoints to the tracker and the judgment stores.
type Handler struct {
	tracker    Tracker
	judgments  ports.JudgmentStore
	candidates ports.CandidateStore
	logger     *slog.Logger
}

// New constructs an admin handler with its dependencies.
func New(tracker Tracker, judgments ports.JudgmentStore, candidates ports.CandidateStore, logger *slog.Logger) *Handler {
	return &Handler{
		tracker:    tracker,
		judgments:  judgments,
		candidates: candidates,
		logger:     logger,
	}
}

// Register mounts admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/domains", h.HandleListDomains)
		r.Get("/domains/search", h.HandleSearchDomains)
		r.Get("/domains/{domain}", h.HandleGetDomain)
		r.Post("/domains/{domain}/blacklist", h.HandleBlacklist)
		r.Post("/domains/{domain}/unblacklist", h.HandleUnblacklist)
		r.Post("/domains/{domain}/no-funds", h.HandleMarkNoFunds)
		r.Delete("/domains/{domain}/no-funds", h.HandleClearNoFunds)
		r.Put("/domains/{domain}/notes", h.HandleSetNotes)
		r.Get("/sessions/{session_id}/candidates", h.HandleSessionCandidates)
		r.Get("/sessions/{session_id}/judgments", h.HandleSessionJudgments)
	})
}

// domainParam extracts and normalizes the domain path parameter so admin
// lookups use the same key the pipeline writes.
func domainParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "domain")
	if raw == "" {
		return "", dErrors.New(dErrors.CodeValidation, "domain is required")
	}
	return tld.NormalizeHost(raw)
}

// HandleGetDomain handles GET /admin/domains/{domain}.
func (h *Handler) HandleGetDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domainName, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.tracker.Get(ctx, domainName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDomain(rec))
}

// HandleBlacklist handles POST /admin/domains/{domain}/blacklist.
func (h *Handler) HandleBlacklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	domainName, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[BlacklistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.tracker.Blacklist(ctx, domainName, req.Reason, req.Actor)
	if err != nil {
		h.logger.ErrorContext(ctx, "blacklist failed",
			"request_id", requestID,
			"domain", domainName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain blacklisted via admin api",
		"request_id", requestID,
		"domain", domainName,
		"actor", req.Actor,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDomain(rec))
}

// HandleUnblacklist handles POST /admin/domains/{domain}/unblacklist.
func (h *Handler) HandleUnblacklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domainName, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.tracker.Unblacklist(ctx, domainName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain unblacklisted via admin api", "domain", domainName)
	httputil.WriteJSON(w, http.StatusOK, FromDomain(rec))
}

// HandleMarkNoFunds handles POST /admin/domains/{domain}/no-funds.
func (h *Handler) HandleMarkNoFunds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	domainName, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[NoFundsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.tracker.MarkNoFundsThisYear(ctx, domainName, req.Year)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain marked no-funds",
		"request_id", requestID, "domain", domainName, "year", req.Year)
	httputil.WriteJSON(w, http.StatusOK, FromDomain(rec))
}

// HandleClearNoFunds handles DELETE /admin/domains/{domain}/no-funds.
func (h *Handler) HandleClearNoFunds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domainName, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.tracker.ClearNoFundsFlag(ctx, domainName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDomain(rec))
}

// HandleSetNotes handles PUT /admin/domains/{domain}/notes.
func (h *Handler) HandleSetNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	domainName, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[NotesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.tracker.SetNotes(ctx, domainName, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDomain(rec))
}

// HandleListDomains handles GET /admin/domains?tier=...|status=...&limit=...
func (h *Handler) HandleListDomains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := queryLimit(r)

	if tierParam := r.URL.Query().Get("tier"); tierParam != "" {
		tier, err := dqmodels.ParseQualityTier(tierParam)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		recs, err := h.tracker.DomainsByTier(ctx, tier, limit)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, FromDomains(recs))
		return
	}

	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := dqmodels.DomainStatus(statusParam)
		recs, err := h.tracker.DomainsByStatus(ctx, status, limit)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, FromDomains(recs))
		return
	}

	httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "tier or status query parameter is required"))
}

// HandleSearchDomains handles GET /admin/domains/search?q=...
func (h *Handler) HandleSearchDomains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	recs, err := h.tracker.SearchDomains(ctx, query, queryLimit(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDomains(recs))
}

// HandleSessionCandidates handles GET /admin/sessions/{session_id}/candidates.
func (h *Handler) HandleSessionCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidates, err := h.candidates.ListBySession(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCandidates(candidates))
}

// HandleSessionJudgments handles GET /admin/sessions/{session_id}/judgments.
func (h *Handler) HandleSessionJudgments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	judgments, err := h.judgments.ListBySession(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromJudgments(judgments))
}

func queryLimit(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
