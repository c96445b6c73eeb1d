// Package api exposes the portal's HTTP surface: letter generation,
// grievance submission, the recent-issues listing, the static reference
// lists, and the single-page front end.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/svsu-dev/samadhan/internal/domain"
	"github.com/svsu-dev/samadhan/internal/pkg/httputil"
	"github.com/svsu-dev/samadhan/internal/pkg/logger"
	"github.com/svsu-dev/samadhan/internal/reference"
	"github.com/svsu-dev/samadhan/internal/service/issues"
)

// GenerationService drafts application letters.
type GenerationService interface {
	Generate(ctx context.Context, in domain.GenerationInput) (domain.DraftApplication, error)
}

// IssueService persists submissions and lists recent issues.
type IssueService interface {
	Submit(ctx context.Context, in issues.SubmissionInput) (issues.SubmissionResult, error)
	ListRecent(ctx context.Context) ([]domain.IssueSummary, error)
}

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	generation GenerationService
	issues     IssueService
	reference  *reference.Service
}

// NewHandlers wires the handler set.
func NewHandlers(gen GenerationService, iss IssueService, ref *reference.Service) *Handlers {
	return &Handlers{generation: gen, issues: iss, reference: ref}
}

// GenerateApplication handles POST /generate-application. Nothing is
// persisted: the draft goes back to the client for review and editing.
func (h *Handlers) GenerateApplication(w http.ResponseWriter, r *http.Request) {
	var in domain.GenerationInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	draft, err := h.generation.Generate(r.Context(), in)
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}
	httputil.OK(w, draft)
}

func (h *Handlers) writeGenerationError(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		httputil.BadRequest(w, ve.Message)
		return
	}
	switch {
	case errors.Is(err, domain.ErrGenerationUnavailable):
		httputil.Error(w, http.StatusInternalServerError,
			"The application could not be generated right now. Please try again.")
	case errors.Is(err, domain.ErrMalformedResponse):
		httputil.Error(w, http.StatusInternalServerError,
			"The generated letter could not be prepared. Please try again.")
	default:
		httputil.InternalError(w, "/generate-application", err)
	}
}

// SubmitIssue handles POST /submit-issue: validates the reviewed letter,
// persists it, and returns the compose links for the routed department.
func (h *Handlers) SubmitIssue(w http.ResponseWriter, r *http.Request) {
	var in issues.SubmissionInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	res, err := h.issues.Submit(r.Context(), in)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			httputil.BadRequest(w, ve.Message)
			return
		}
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			logger.Error("submission persistence failed", "op", pe.Op, "error", pe.Err)
			httputil.Error(w, http.StatusInternalServerError,
				"Server error while submitting the issue.")
			return
		}
		httputil.InternalError(w, "/submit-issue", err)
		return
	}
	httputil.OK(w, res)
}

// ListIssues handles GET /issues: the ten most recent submissions,
// subject/department/timestamp only.
func (h *Handlers) ListIssues(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.issues.ListRecent(r.Context())
	if err != nil {
		logger.Error("recent-issues read failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "Failed to fetch issues.")
		return
	}
	httputil.OK(w, summaries)
}

// AdminIssues handles GET /admin-issues.
func (h *Handlers) AdminIssues(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.reference.AdminIssues())
}

// InfraIssues handles GET /infra-issues.
func (h *Handlers) InfraIssues(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.reference.InfraIssues())
}

// Notices handles GET /notices. An unconfigured feed yields an empty list
// so the front end can render the section unconditionally.
func (h *Handlers) Notices(w http.ResponseWriter, r *http.Request) {
	if !h.reference.NoticesEnabled() {
		httputil.OK(w, []reference.Notice{})
		return
	}
	notices, err := h.reference.Notices(r.Context())
	if err != nil {
		logger.Error("notices feed fetch failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "Failed to fetch notices.")
		return
	}
	httputil.OK(w, notices)
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}
