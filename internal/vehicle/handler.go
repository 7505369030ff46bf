package vehicle

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"frontera/internal/identity"
	"frontera/internal/lifecycle"
	"frontera/internal/platform/middleware"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/platform/httputil"
	"frontera/pkg/requestcontext"
)

// Handler wires vehicle endpoints to the service.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func NewHandler(service *Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validator: validator}
}

// Register mounts vehicle endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))

		pr.Get("/vehicles", h.handleList)
		pr.With(middleware.RequireAnyPermission(h.logger,
			identity.PermVehicles, identity.PermUpload, identity.PermAdmin)).
			Post("/vehicles", h.handleCreate)
		pr.With(middleware.RequireAnyPermission(h.logger,
			identity.PermValidate, identity.PermAdmin)).
			Post("/vehicles/{id}/status", h.handleSetStatus)
		pr.With(middleware.RequireAnyPermission(h.logger,
			identity.PermValidate, identity.PermAdmin)).
			Post("/vehicles/{id}/reopen", h.handleReopen)

		pr.Get("/tourist/vehicles", h.handleListTourist)
		pr.Post("/tourist/vehicles", h.handleCreateTourist)
		pr.Post("/tourist/vehicles/{id}/documents", h.handleAttachDocument)
		pr.Delete("/tourist/vehicles/{id}/documents/{slot}", h.handleRemoveDocument)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := lifecycle.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown status filter"))
		return
	}

	vehicles, err := h.service.List(ctx, ListQuery{
		Search: r.URL.Query().Get("q"),
		Status: status,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vehicles)
}

type createVehicleRequest struct {
	Plate string `json:"plate"`
	Type  string `json:"type"`
	Owner string `json:"owner"`
}

func (r *createVehicleRequest) Normalize() {
	r.Plate = NormalizePlate(r.Plate)
	r.Type = strings.TrimSpace(r.Type)
	r.Owner = strings.TrimSpace(r.Owner)
}

func (r *createVehicleRequest) Validate() error {
	if r.Plate == "" {
		return dErrors.New(dErrors.CodeValidation, "plate is required")
	}
	if !govalidator.IsAlphanumeric(r.Plate) {
		return dErrors.New(dErrors.CodeValidation, "plate must be alphanumeric")
	}
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "vehicle type is required")
	}
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createVehicleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.Create(ctx, CreateRequest{
		Plate: req.Plate,
		Type:  req.Type,
		Owner: req.Owner,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (r *setStatusRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *setStatusRequest) Validate() error {
	switch lifecycle.Status(r.Status) {
	case lifecycle.StatusApproved, lifecycle.StatusRejected:
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "status must be approved or rejected")
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[setStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.SetStatus(ctx, chi.URLParam(r, "id"), lifecycle.Status(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Reopen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// touristVehicleResponse adds the document progress clients render next to
// each record.
type touristVehicleResponse struct {
	TouristVehicle
	Progress DocumentProgress `json:"progress"`
}

func touristResponse(v TouristVehicle) touristVehicleResponse {
	return touristVehicleResponse{TouristVehicle: v, Progress: v.Documents.Progress()}
}

func (h *Handler) handleListTourist(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.ListTourist(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]touristVehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, touristResponse(v))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type createTouristVehicleRequest struct {
	Plate     string      `json:"plate"`
	Type      string      `json:"type"`
	Owner     string      `json:"owner"`
	Documents DocumentSet `json:"documents"`
}

func (r *createTouristVehicleRequest) Normalize() {
	r.Plate = NormalizePlate(r.Plate)
	r.Type = strings.TrimSpace(r.Type)
	r.Owner = strings.TrimSpace(r.Owner)
}

func (r *createTouristVehicleRequest) Validate() error {
	if r.Plate == "" {
		return dErrors.New(dErrors.CodeValidation, "plate is required")
	}
	if !govalidator.IsAlphanumeric(r.Plate) {
		return dErrors.New(dErrors.CodeValidation, "plate must be alphanumeric")
	}
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "vehicle type is required")
	}
	return nil
}

func (h *Handler) handleCreateTourist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createTouristVehicleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.CreateTourist(ctx, CreateTouristRequest{
		Plate:     req.Plate,
		Type:      req.Type,
		Owner:     req.Owner,
		Documents: req.Documents,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, touristResponse(v))
}

type attachDocumentRequest struct {
	Slot     string `json:"slot"`
	FileName string `json:"file_name"`
}

func (r *attachDocumentRequest) Normalize() {
	r.Slot = strings.ToLower(strings.TrimSpace(r.Slot))
	r.FileName = strings.TrimSpace(r.FileName)
}

func (r *attachDocumentRequest) Validate() error {
	if r.Slot == "" {
		return dErrors.New(dErrors.CodeValidation, "document slot is required")
	}
	if r.FileName == "" {
		return dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	return nil
}

func (h *Handler) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[attachDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.AttachDocument(ctx, chi.URLParam(r, "id"), req.Slot, req.FileName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, touristResponse(v))
}

func (h *Handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.RemoveDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "slot"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, touristResponse(v))
}
