package minor

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"frontera/internal/platform/middleware"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/platform/httputil"
	"frontera/pkg/requestcontext"
)

// Handler wires travel-authorization endpoints to the service.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func NewHandler(service *Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validator: validator}
}

// Register mounts minor endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))

		pr.Get("/minors", h.handleList)
		pr.Post("/minors", h.handleCreate)
		pr.Post("/minors/{id}/documents", h.handleAttachDocument)
		pr.Delete("/minors/{id}/documents/{label}", h.handleRemoveDocument)

		pr.Get("/tourist/minors", h.handleListTourist)
		pr.Post("/tourist/minors", h.handleCreateTourist)
		pr.Post("/tourist/minors/{id}/documents", h.handleAttachTouristDocument)
		pr.Delete("/tourist/minors/{id}/documents/{slot}", h.handleRemoveTouristDocument)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	minors, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, minors)
}

type createMinorRequest struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Guardian string `json:"guardian"`
}

func (r *createMinorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Guardian = strings.TrimSpace(r.Guardian)
}

func (r *createMinorRequest) Validate() error {
	return validateMinor(r.Name, r.Age, r.Guardian)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createMinorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.Create(ctx, CreateRequest{
		Name:     req.Name,
		Age:      req.Age,
		Guardian: req.Guardian,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

type attachLabelRequest struct {
	Label string `json:"label"`
}

func (r *attachLabelRequest) Normalize() {
	r.Label = strings.TrimSpace(r.Label)
}

func (r *attachLabelRequest) Validate() error {
	if r.Label == "" {
		return dErrors.New(dErrors.CodeValidation, "document label is required")
	}
	return nil
}

func (h *Handler) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[attachLabelRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.AttachDocument(ctx, chi.URLParam(r, "id"), req.Label)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.RemoveDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "label"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

// touristMinorResponse adds the dynamic required-document progress.
type touristMinorResponse struct {
	TouristMinor
	Progress DocumentProgress `json:"progress"`
}

func touristResponse(m TouristMinor) touristMinorResponse {
	return touristMinorResponse{TouristMinor: m, Progress: m.Progress()}
}

func (h *Handler) handleListTourist(w http.ResponseWriter, r *http.Request) {
	minors, err := h.service.ListTourist(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]touristMinorResponse, 0, len(minors))
	for _, m := range minors {
		out = append(out, touristResponse(m))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type createTouristMinorRequest struct {
	Name           string      `json:"name"`
	Age            int         `json:"age"`
	Guardian       string      `json:"guardian"`
	IsDirectFamily bool        `json:"is_direct_family"`
	Documents      DocumentSet `json:"documents"`
}

func (r *createTouristMinorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Guardian = strings.TrimSpace(r.Guardian)
}

func (r *createTouristMinorRequest) Validate() error {
	return validateMinor(r.Name, r.Age, r.Guardian)
}

func (h *Handler) handleCreateTourist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createTouristMinorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.CreateTourist(ctx, CreateTouristRequest{
		Name:           req.Name,
		Age:            req.Age,
		Guardian:       req.Guardian,
		IsDirectFamily: req.IsDirectFamily,
		Documents:      req.Documents,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, touristResponse(m))
}

type attachSlotRequest struct {
	Slot     string `json:"slot"`
	FileName string `json:"file_name"`
}

func (r *attachSlotRequest) Normalize() {
	r.Slot = strings.ToLower(strings.TrimSpace(r.Slot))
	r.FileName = strings.TrimSpace(r.FileName)
}

func (r *attachSlotRequest) Validate() error {
	if r.Slot == "" {
		return dErrors.New(dErrors.CodeValidation, "document slot is required")
	}
	if r.FileName == "" {
		return dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	return nil
}

func (h *Handler) handleAttachTouristDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[attachSlotRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.AttachTouristDocument(ctx, chi.URLParam(r, "id"), req.Slot, req.FileName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, touristResponse(m))
}

func (h *Handler) handleRemoveTouristDocument(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.RemoveTouristDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "slot"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, touristResponse(m))
}
