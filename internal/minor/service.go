package minor

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"frontera/internal/access"
	"frontera/internal/events"
	"frontera/internal/identity"
	"frontera/internal/platform/metrics"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/platform/sentinel"
	"frontera/pkg/requestcontext"
)

// AuditPublisher receives record-mutation events for the audit trail.
type AuditPublisher interface {
	EmitRecord(ctx context.Context, collection, recordID, action, detail string)
}

// Service orchestrates minors' travel authorizations, legacy and tourist
// self-service alike. There is no review workflow here: status is always
// derived from the documents on file.
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

func New(store Store, tourist TouristStore, bus *events.Bus, opts ...Option) *Service {
	s := &Service{store: store, tourist: tourist, bus: bus}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the legacy minors the caller may see.
func (s *Service) List(ctx context.Context) ([]Minor, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list minors")
	}
	user := identity.FromContext(ctx)
	return access.Visible(user, all, func(m Minor) access.Ownership {
		return access.Ownership{OwnerID: m.OwnerID, OwnerName: m.Guardian, RecordID: m.ID}
	}), nil
}

// CreateRequest carries the desk form for a legacy minor.
type CreateRequest struct {
	Name     string
	Age      int
	Guardian string
}

func validateMinor(name string, age int, guardian string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "minor name is required")
	}
	if age < 0 || age > 17 {
		return dErrors.New(dErrors.CodeValidation, "age must be between 0 and 17")
	}
	if guardian == "" {
		return dErrors.New(dErrors.CodeValidation, "guardian name is required")
	}
	return nil
}

// Create registers a legacy minor. With no documents yet the record starts
// incomplete.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Minor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Guardian = strings.TrimSpace(req.Guardian)
	if err := validateMinor(req.Name, req.Age, req.Guardian); err != nil {
		return Minor{}, err
	}

	user := identity.FromContext(ctx)
	m := Minor{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Age:      req.Age,
		Guardian: req.Guardian,
		OwnerID:  user.ID,
		Date:     requestcontext.Now(ctx),
	}
	m.DeriveStatus()
	if err := s.store.Save(ctx, m); err != nil {
		return Minor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save minor")
	}

	s.metrics.IncRecordCreated(CollectionMinors)
	s.publish(ctx, CollectionMinors, m.ID, events.ActionCreated, m.Name)
	return m, nil
}

// AttachDocument adds a document label to a legacy minor and recomputes
// the derived status.
func (s *Service) AttachDocument(ctx context.Context, id, label string) (Minor, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Minor{}, dErrors.New(dErrors.CodeValidation, "document label is required")
	}
	m, err := s.findOwned(ctx, id)
	if err != nil {
		return Minor{}, err
	}
	m.AttachDocument(label)
	if err := s.store.Save(ctx, m); err != nil {
		return Minor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save minor")
	}

	s.metrics.IncDocumentAttached(CollectionMinors)
	s.publish(ctx, CollectionMinors, m.ID, events.ActionDocumentAttached, label)
	return m, nil
}

// RemoveDocument drops a document label and recomputes the derived status.
func (s *Service) RemoveDocument(ctx context.Context, id, label string) (Minor, error) {
	m, err := s.findOwned(ctx, id)
	if err != nil {
		return Minor{}, err
	}
	m.RemoveDocument(label)
	if err := s.store.Save(ctx, m); err != nil {
		return Minor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save minor")
	}

	s.publish(ctx, CollectionMinors, m.ID, events.ActionDocumentRemoved, label)
	return m, nil
}

// ListTourist returns the tourist minors the caller may see.
func (s *Service) ListTourist(ctx context.Context) ([]TouristMinor, error) {
	all, err := s.tourist.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tourist minors")
	}
	user := identity.FromContext(ctx)
	return access.Visible(user, all, func(m TouristMinor) access.Ownership {
		return access.Ownership{OwnerID: m.OwnerID, OwnerName: m.Guardian, RecordID: m.ID}
	}), nil
}

// CreateTouristRequest carries the self-service form, document slots
// included.
type CreateTouristRequest struct {
	Name           string
	Age            int
	Guardian       string
	IsDirectFamily bool
	Documents      DocumentSet
}

// CreateTourist files a self-service travel authorization. Status is
// derived from whatever documents came with the form.
func (s *Service) CreateTourist(ctx context.Context, req CreateTouristRequest) (TouristMinor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Guardian = strings.TrimSpace(req.Guardian)
	if err := validateMinor(req.Name, req.Age, req.Guardian); err != nil {
		return TouristMinor{}, err
	}

	user := identity.FromContext(ctx)
	m := TouristMinor{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Age:            req.Age,
		Guardian:       req.Guardian,
		IsDirectFamily: req.IsDirectFamily,
		OwnerID:        user.ID,
		Date:           requestcontext.Now(ctx),
		Documents:      req.Documents,
	}
	m.DeriveStatus()
	if err := s.tourist.Save(ctx, m); err != nil {
		return TouristMinor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tourist minor")
	}

	s.metrics.IncRecordCreated(CollectionTouristMinors)
	s.publish(ctx, CollectionTouristMinors, m.ID, events.ActionCreated, m.Name)
	return m, nil
}

// AttachTouristDocument stores a document in a named slot and recomputes
// the derived status.
func (s *Service) AttachTouristDocument(ctx context.Context, id, slot, fileName string) (TouristMinor, error) {
	m, err := s.findTouristOwned(ctx, id)
	if err != nil {
		return TouristMinor{}, err
	}
	if err := m.Documents.Attach(slot, fileName); err != nil {
		return TouristMinor{}, err
	}
	m.DeriveStatus()
	if err := s.tourist.Save(ctx, m); err != nil {
		return TouristMinor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tourist minor")
	}

	s.metrics.IncDocumentAttached(CollectionTouristMinors)
	s.publish(ctx, CollectionTouristMinors, m.ID, events.ActionDocumentAttached, slot)
	return m, nil
}

// RemoveTouristDocument clears a named slot and recomputes the derived
// status.
func (s *Service) RemoveTouristDocument(ctx context.Context, id, slot string) (TouristMinor, error) {
	m, err := s.findTouristOwned(ctx, id)
	if err != nil {
		return TouristMinor{}, err
	}
	if err := m.Documents.Clear(slot); err != nil {
		return TouristMinor{}, err
	}
	m.DeriveStatus()
	if err := s.tourist.Save(ctx, m); err != nil {
		return TouristMinor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tourist minor")
	}

	s.publish(ctx, CollectionTouristMinors, m.ID, events.ActionDocumentRemoved, slot)
	return m, nil
}

func (s *Service) findOwned(ctx context.Context, id string) (Minor, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Minor{}, dErrors.New(dErrors.CodeNotFound, "minor not found")
		}
		return Minor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load minor")
	}
	user := identity.FromContext(ctx)
	ownership := access.Ownership{OwnerID: m.OwnerID, OwnerName: m.Guardian, RecordID: m.ID}
	if !access.Elevated(user) && !access.Owned(user, ownership) {
		return Minor{}, dErrors.New(dErrors.CodeForbidden, "record belongs to another user")
	}
	return m, nil
}

func (s *Service) findTouristOwned(ctx context.Context, id string) (TouristMinor, error) {
	m, err := s.tourist.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return TouristMinor{}, dErrors.New(dErrors.CodeNotFound, "tourist minor not found")
		}
		return TouristMinor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tourist minor")
	}
	user := identity.FromContext(ctx)
	ownership := access.Ownership{OwnerID: m.OwnerID, OwnerName: m.Guardian, RecordID: m.ID}
	if !access.Elevated(user) && !access.Owned(user, ownership) {
		return TouristMinor{}, dErrors.New(dErrors.CodeForbidden, "record belongs to another user")
	}
	return m, nil
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
