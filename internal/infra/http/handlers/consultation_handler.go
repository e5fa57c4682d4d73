package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/consult-intake/internal/entity"
	"github.com/xavierca1/consult-intake/internal/infra/http/middleware"
	"github.com/xavierca1/consult-intake/internal/usecase"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type SubmitConsultationExecutor interface {
	Execute(ctx context.Context, input usecase.SubmitConsultationInput, meta usecase.RequestMeta) (*usecase.SubmitConsultationOutput, error)
}

type ConsultationGetter interface {
	Execute(ctx context.Context, submissionID string) (*usecase.ConsultationView, error)
}

type StatsReader interface {
	Execute(ctx context.Context) (*entity.ConsultationStats, error)
	CountSubmissions(ctx context.Context) (int64, error)
}

// DiagnosticsConfig reports which integrations are configured, never their values.
type DiagnosticsConfig struct {
	Database      bool `json:"database"`
	WebhookURL    bool `json:"webhookUrl"`
	WebhookSecret bool `json:"webhookSecret"`
	Redis         bool `json:"redis"`
	AMQP          bool `json:"amqp"`
	SMTP          bool `json:"smtp"`
}

type ConsultationHandler struct {
	submit        SubmitConsultationExecutor
	get           ConsultationGetter
	stats         StatsReader
	diagnostics   DiagnosticsConfig
	log           *zap.Logger
	exposeDetails bool
}

func NewConsultationHandler(
	submit SubmitConsultationExecutor,
	get ConsultationGetter,
	stats StatsReader,
	diagnostics DiagnosticsConfig,
	log *zap.Logger,
	exposeDetails bool,
) *ConsultationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsultationHandler{
		submit:        submit,
		get:           get,
		stats:         stats,
		diagnostics:   diagnostics,
		log:           log.Named("consultation_handler"),
		exposeDetails: exposeDetails,
	}
}

type validationResponse struct {
	Success bool                      `json:"success"`
	Error   string                    `json:"error"`
	Issues  []usecase.ValidationError `json:"issues"`
}

type viewResponse struct {
	Success bool                      `json:"success"`
	Data    *usecase.ConsultationView `json:"data"`
}

type statsResponse struct {
	Success bool `json:"success"`
	*entity.ConsultationStats
}

type diagnosticsResponse struct {
	Success bool              `json:"success"`
	Count   int64             `json:"count"`
	Config  DiagnosticsConfig `json:"config"`
}

// Submit handles POST /api/consultation.
func (h *ConsultationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input usecase.SubmitConsultationInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "Validation failed",
			Issues: []usecase.ValidationError{{Field: "body", Message: "must be a valid JSON object"}},
		})
		return
	}

	meta := usecase.RequestMeta{
		IPAddress: getClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}

	// The pipeline must finish even if the client hangs up mid-request.
	out, err := h.submit.Execute(context.WithoutCancel(r.Context()), input, meta)
	if err != nil {
		if vErr, ok := usecase.AsValidationFailed(err); ok {
			writeJSON(w, http.StatusBadRequest, validationResponse{
				Error:  "Validation failed",
				Issues: vErr.Issues,
			})
			return
		}
		h.log.Error("submission failed", zap.Error(err))
		writeInternalError(w, err, h.exposeDetails)
		return
	}

	status := http.StatusCreated
	if out.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, out)
}

// Get handles GET /api/consultation/{submissionId}.
func (h *ConsultationHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.get.Execute(r.Context(), chi.URLParam(r, "submissionId"))
	if errors.Is(err, entity.ErrSubmissionNotFound) {
		writeError(w, http.StatusNotFound, "Consultation not found")
		return
	}
	if err != nil {
		h.log.Error("failed to load consultation", zap.Error(err))
		writeInternalError(w, err, h.exposeDetails)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{Success: true, Data: view})
}

// Stats handles GET /api/consultation/stats.
func (h *ConsultationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Execute(r.Context())
	if err != nil {
		h.log.Error("failed to load stats", zap.Error(err))
		writeInternalError(w, err, h.exposeDetails)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Success: true, ConsultationStats: stats})
}

// TestDB handles GET /api/consultation/test-db.
func (h *ConsultationHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		h.log.Info("storage diagnostics requested", zap.String("by", claims.Email))
	}

	count, err := h.stats.CountSubmissions(r.Context())
	if err != nil {
		h.log.Error("storage diagnostics failed", zap.Error(err))
		writeInternalError(w, err, h.exposeDetails)
		return
	}

	writeJSON(w, http.StatusOK, diagnosticsResponse{Success: true, Count: count, Config: h.diagnostics})
}
