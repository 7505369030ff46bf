package declaration

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"frontera/internal/identity"
	"frontera/internal/lifecycle"
	"frontera/internal/platform/middleware"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/platform/httputil"
	"frontera/pkg/requestcontext"
)

// Handler wires declaration endpoints to the service.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func NewHandler(service *Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validator: validator}
}

// Register mounts declaration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))

		pr.Get("/declarations", h.handleList)
		pr.With(middleware.RequireAnyPermission(h.logger,
			identity.PermDeclarations, identity.PermAdmin)).
			Post("/declarations", h.handleCreate)

		review := middleware.RequireAnyPermission(h.logger,
			identity.PermFoodValidation, identity.PermPetValidation, identity.PermAdmin)
		pr.With(review).Post("/declarations/{id}/status", h.handleSetStatus)
		pr.With(review).Post("/declarations/{id}/reopen", h.handleReopen)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	category := Category(query.Get("category"))
	if category != "" && !category.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown category filter"))
		return
	}
	status := lifecycle.Status(query.Get("status"))
	if status != "" && !status.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown status filter"))
		return
	}

	declarations, err := h.service.List(r.Context(), ListQuery{
		Category: category,
		Status:   status,
		Search:   query.Get("q"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, declarations)
}

type createDeclarationRequest struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
	Traveler string   `json:"traveler"`
}

func (r *createDeclarationRequest) Normalize() {
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Traveler = strings.TrimSpace(r.Traveler)
}

func (r *createDeclarationRequest) Validate() error {
	if !Category(r.Category).Valid() {
		return dErrors.New(dErrors.CodeValidation, "category must be food or pet")
	}
	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one declared item is required")
	}
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createDeclarationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Create(ctx, CreateRequest{
		Category: Category(req.Category),
		Items:    req.Items,
		Traveler: req.Traveler,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}

type reviewRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (r *reviewRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.Note = strings.TrimSpace(r.Note)
}

func (r *reviewRequest) Validate() error {
	switch lifecycle.Status(r.Status) {
	case lifecycle.StatusApproved, lifecycle.StatusRejected:
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "status must be approved or rejected")
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[reviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.SetStatus(ctx, chi.URLParam(r, "id"), lifecycle.Status(req.Status), req.Note)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Reopen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
