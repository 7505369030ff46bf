package vehicle

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"frontera/internal/access"
	"frontera/internal/events"
	"frontera/internal/identity"
	"frontera/internal/lifecycle"
	"frontera/internal/platform/metrics"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/platform/sentinel"
	"frontera/pkg/requestcontext"
)

// AuditPublisher receives record-mutation events for the audit trail.
type AuditPublisher interface {
	EmitRecord(ctx context.Context, collection, recordID, action, detail string)
}

// Service orchestrates vehicle crossing permits and tourist self-service
// vehicles: creation, review decisions, and document handling.
type Service struct {
	store   Store
	tourist TouristStore
	bus     *events.Bus
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(audit AuditPublisher) Option {
	return func(s *Service) { s.audit = audit }
}

// New constructs a Service.
func New(store Store, tourist TouristStore, bus *events.Bus, opts ...Option) *Service {
	s := &Service{store: store, tourist: tourist, bus: bus}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListQuery narrows a listing after the access filter has run.
type ListQuery struct {
	Search string
	Status lifecycle.Status
}

// List returns the vehicles the caller may see, optionally narrowed by a
// plate/owner search and a status filter.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Vehicle, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vehicles")
	}
	user := identity.FromContext(ctx)
	visible := access.Visible(user, all, func(v Vehicle) access.Ownership {
		return access.Ownership{OwnerID: v.OwnerID, OwnerName: v.Owner, RecordID: v.ID}
	})

	out := make([]Vehicle, 0, len(visible))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, v := range visible {
		if q.Status != "" && v.Status != q.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(v.Plate), needle) &&
			!strings.Contains(strings.ToLower(v.Owner), needle) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateRequest carries the desk registration form.
type CreateRequest struct {
	Plate string
	Type  string
	Owner string
}

// Create registers a crossing permit. The record starts pending, stamped
// with the creator's user id; the owner name defaults to the creator.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Vehicle, error) {
	user := identity.FromContext(ctx)
	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		owner = user.Name
	}

	v := Vehicle{
		ID:      uuid.NewString(),
		Plate:   NormalizePlate(req.Plate),
		Type:    strings.TrimSpace(req.Type),
		Owner:   owner,
		OwnerID: user.ID,
		Status:  lifecycle.StatusPending,
		Date:    requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, v); err != nil {
		return Vehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save vehicle")
	}

	s.metrics.IncRecordCreated(CollectionVehicles)
	s.publish(ctx, CollectionVehicles, v.ID, events.ActionCreated, "plate "+v.Plate)
	return v, nil
}

// SetStatus applies a review decision. Terminal records are locked; the
// caller must reopen them first.
func (s *Service) SetStatus(ctx context.Context, id string, next lifecycle.Status) (Vehicle, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}

	updated, err := lifecycle.Transition(v.Status, next)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return Vehicle{}, dErrors.New(dErrors.CodeConflict, "record is not pending")
		}
		return Vehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to transition vehicle")
	}
	v.Status = updated
	if err := s.store.Save(ctx, v); err != nil {
		return Vehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save vehicle")
	}

	s.metrics.IncStatusTransition(CollectionVehicles, string(updated))
	s.publish(ctx, CollectionVehicles, v.ID, events.ActionStatusChanged, string(updated))
	return v, nil
}

// Reopen returns a terminal record to pending for re-review.
func (s *Service) Reopen(ctx context.Context, id string) (Vehicle, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}

	updated, err := lifecycle.Reopen(v.Status)
	if err != nil {
		return Vehicle{}, dErrors.New(dErrors.CodeConflict, "record is not in a terminal status")
	}
	v.Status = updated
	if err := s.store.Save(ctx, v); err != nil {
		return Vehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save vehicle")
	}

	s.metrics.IncStatusTransition(CollectionVehicles, string(updated))
	s.publish(ctx, CollectionVehicles, v.ID, events.ActionStatusChanged, "reopened")
	return v, nil
}

// ListTourist returns the caller's tourist vehicles, or all of them for
// elevated users.
func (s *Service) ListTourist(ctx context.Context) ([]TouristVehicle, error) {
	all, err := s.tourist.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tourist vehicles")
	}
	user := identity.FromContext(ctx)
	return access.Visible(user, all, func(v TouristVehicle) access.Ownership {
		return access.Ownership{OwnerID: v.OwnerID, OwnerName: v.Owner, RecordID: v.ID}
	}), nil
}

// CreateTouristRequest carries the self-service form, document slots
// included: tourists often file everything in one pass.
type CreateTouristRequest struct {
	Plate     string
	Type      string
	Owner     string
	Documents DocumentSet
}

// CreateTourist files a self-service vehicle. The derived status is
// computed from whatever documents came with the form.
func (s *Service) CreateTourist(ctx context.Context, req CreateTouristRequest) (TouristVehicle, error) {
	user := identity.FromContext(ctx)
	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		owner = user.Name
	}

	v := TouristVehicle{
		ID:        uuid.NewString(),
		Plate:     NormalizePlate(req.Plate),
		Type:      strings.TrimSpace(req.Type),
		Owner:     owner,
		OwnerID:   user.ID,
		Status:    req.Documents.Status(),
		Date:      requestcontext.Now(ctx),
		Documents: req.Documents,
	}
	if err := s.tourist.Save(ctx, v); err != nil {
		return TouristVehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tourist vehicle")
	}

	s.metrics.IncRecordCreated(CollectionTouristVehicles)
	s.publish(ctx, CollectionTouristVehicles, v.ID, events.ActionCreated, "plate "+v.Plate)
	return v, nil
}

// AttachDocument stores a document in a named slot and recomputes the
// derived status. Only the owner or an elevated user may modify documents.
func (s *Service) AttachDocument(ctx context.Context, id, slot, fileName string) (TouristVehicle, error) {
	v, err := s.findTouristOwned(ctx, id)
	if err != nil {
		return TouristVehicle{}, err
	}
	if err := v.Documents.Attach(slot, fileName); err != nil {
		return TouristVehicle{}, err
	}
	v.Status = v.Documents.Status()
	if err := s.tourist.Save(ctx, v); err != nil {
		return TouristVehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tourist vehicle")
	}

	s.metrics.IncDocumentAttached(CollectionTouristVehicles)
	s.publish(ctx, CollectionTouristVehicles, v.ID, events.ActionDocumentAttached, slot)
	return v, nil
}

// RemoveDocument clears a named slot and recomputes the derived status.
func (s *Service) RemoveDocument(ctx context.Context, id, slot string) (TouristVehicle, error) {
	v, err := s.findTouristOwned(ctx, id)
	if err != nil {
		return TouristVehicle{}, err
	}
	if err := v.Documents.Clear(slot); err != nil {
		return TouristVehicle{}, err
	}
	v.Status = v.Documents.Status()
	if err := s.tourist.Save(ctx, v); err != nil {
		return TouristVehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tourist vehicle")
	}

	s.publish(ctx, CollectionTouristVehicles, v.ID, events.ActionDocumentRemoved, slot)
	return v, nil
}

func (s *Service) find(ctx context.Context, id string) (Vehicle, error) {
	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Vehicle{}, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return Vehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicle")
	}
	return v, nil
}

func (s *Service) findTouristOwned(ctx context.Context, id string) (TouristVehicle, error) {
	v, err := s.tourist.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return TouristVehicle{}, dErrors.New(dErrors.CodeNotFound, "tourist vehicle not found")
		}
		return TouristVehicle{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tourist vehicle")
	}
	user := identity.FromContext(ctx)
	ownership := access.Ownership{OwnerID: v.OwnerID, OwnerName: v.Owner, RecordID: v.ID}
	if !access.Elevated(user) && !access.Owned(user, ownership) {
		return TouristVehicle{}, dErrors.New(dErrors.CodeForbidden, "record belongs to another user")
	}
	return v, nil
}

func (s *Service) publish(ctx context.Context, collection, recordID string, action events.Action, detail string) {
	if s.bus != nil {
		s.bus.Publish(events.Change{
			Collection: collection,
			RecordID:   recordID,
			Action:     action,
			At:         requestcontext.Now(ctx),
		})
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"request_id", requestcontext.RequestID(ctx),
			"user_id", requestcontext.UserID(ctx),
			"collection", collection,
			"record_id", recordID,
			"log_type", "audit",
		)
	}
	if s.audit != nil {
		s.audit.EmitRecord(ctx, collection, recordID, string(action), detail)
	}
}
