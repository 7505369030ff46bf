package report

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"frontera/internal/identity"
	"frontera/internal/platform/middleware"
	"frontera/pkg/platform/httputil"
	"frontera/pkg/requestcontext"
)

// Handler wires reporting endpoints to the service.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func NewHandler(service *Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validator: validator}
}

// Register mounts reporting endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))
		pr.Use(middleware.RequireAnyPermission(h.logger,
			identity.PermReports, identity.PermAdmin))

		pr.Get("/reports/summary", h.handleSummary)
		pr.Get("/reports/traffic", h.handleTraffic)
		pr.Get("/reports/issues", h.handleIssues)
		pr.Get("/reports/export", h.handleExport)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleTraffic(w http.ResponseWriter, r *http.Request) {
	window := Window(r.URL.Query().Get("window"))
	if window == "" {
		window = WindowDay
	}
	traffic, err := h.service.TrafficReport(r.Context(), window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, traffic)
}

func (h *Handler) handleIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.OutstandingIssues(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issues)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Buffer the workbook so a generation failure returns a clean error
	// response instead of a truncated file.
	var buf bytes.Buffer
	if err := h.service.ExportCSV(ctx, &buf); err != nil {
		h.logger.ErrorContext(ctx, "report export failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="frontera-report.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
