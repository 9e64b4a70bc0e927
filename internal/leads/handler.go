package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vedang2003/tax-calculator-form/internal/observability/metrics"
	"github.com/vedang2003/tax-calculator-form/pkg/logging"
)

// SheetAppender records a lead in the durable spreadsheet store.
type SheetAppender interface {
	Append(ctx context.Context, lead *Lead) error
}

// Notifier emails the tax calculator to a submitter.
type Notifier interface {
	SendTaxCalculator(ctx context.Context, lead *Lead) error
}

// Handler handles HTTP requests for lead capture
type Handler struct {
	sheets   SheetAppender
	notifier Notifier
	metrics  *metrics.SubmissionMetrics
	logger   *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(sheets SheetAppender, notifier Notifier, m *metrics.SubmissionMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sheets:   sheets,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Submit handles POST /submit requests. The spreadsheet append and the email
// send are independent: each is attempted regardless of the other's outcome,
// and the response never reveals which half failed.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse form", "error", err)
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid form data"})
		return
	}

	lead := FromSubmission(map[string]string{
		"fullName": r.PostFormValue("fullName"),
		"email":    r.PostFormValue("email"),
		"phone":    r.PostFormValue("phone"),
		"state":    r.PostFormValue("state"),
		"district": r.PostFormValue("district"),
	})

	if err := lead.Validate(); err != nil {
		h.logger.Warn("submission missing required fields", "name", lead.FullName, "email", lead.Email)
		h.metrics.ObserveSubmission("invalid")
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Name and email are required"})
		return
	}

	ctx := r.Context()
	sheetsErr := h.appendLead(ctx, lead)
	mailErr := h.sendCalculator(ctx, lead)

	if sheetsErr == nil && mailErr == nil {
		h.logger.Info("successfully processed lead", "email", lead.Email)
		h.metrics.ObserveSubmission("success")
		respondJSON(w, http.StatusOK, messageResponse{Message: "Success"})
		return
	}

	h.logger.Error("partial failure processing lead",
		"email", lead.Email,
		"sheets_error", sheetsErr,
		"mail_error", mailErr,
	)
	h.metrics.ObserveSubmission("downstream_failure")
	respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "Service temporarily unavailable"})
}

// appendLead shields the dispatch from a panicking collaborator so the email
// send is still attempted.
func (h *Handler) appendLead(ctx context.Context, lead *Lead) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sheets append panicked: %v", rec)
		}
	}()
	return h.sheets.Append(ctx, lead)
}

func (h *Handler) sendCalculator(ctx context.Context, lead *Lead) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notification send panicked: %v", rec)
		}
	}()
	return h.notifier.SendTaxCalculator(ctx, lead)
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /health requests
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
