package declaration

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

// Service orchestrates customs declarations: filing, category-scoped
// review, and reopening.
type Service struct {
	store   Store
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

func New(store Store, bus *events.Bus, opts ...Option) *Service {
	s := &Service{store: store, bus: bus}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListQuery narrows a listing after the access rules have run.
type ListQuery struct {
	Category Category
	Status   lifecycle.Status
	Search   string
}

// List returns the declarations the caller may see. Category validators get
// the full collection narrowed to their category; everyone else gets records
// they own.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Declaration, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list declarations")
	}
	user := identity.FromContext(ctx)
	elevated := access.ElevatedForDeclarations(user)

	out := make([]Declaration, 0, len(all))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, d := range all {
		if elevated {
			if !access.CategoryAllowed(user, string(d.Category)) {
				continue
			}
		} else if !access.Owned(user, ownership(d)) {
			continue
		}
		if q.Category != "" && d.Category != q.Category {
			continue
		}
		if q.Status != "" && d.Status != q.Status {
			continue
		}
		if needle != "" && !matches(d, needle) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func ownership(d Declaration) access.Ownership {
	return access.Ownership{OwnerID: d.OwnerID, OwnerName: d.Traveler, RecordID: d.ID}
}

func matches(d Declaration, needle string) bool {
	if strings.Contains(strings.ToLower(d.Traveler), needle) {
		return true
	}
	for _, item := range d.Items {
		if strings.Contains(strings.ToLower(item), needle) {
			return true
		}
	}
	return false
}

// CreateRequest carries the declaration form.
type CreateRequest struct {
	Category Category
	Items    []string
	Traveler string
}

// Create files a declaration. The record starts pending; the traveler name
// defaults to the creator.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Declaration, error) {
	if !req.Category.Valid() {
		return Declaration{}, dErrors.New(dErrors.CodeValidation, "category must be food or pet")
	}
	items := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return Declaration{}, dErrors.New(dErrors.CodeValidation, "at least one declared item is required")
	}

	user := identity.FromContext(ctx)
	traveler := strings.TrimSpace(req.Traveler)
	if traveler == "" {
		traveler = user.Name
	}

	d := Declaration{
		ID:       uuid.NewString(),
		Category: req.Category,
		Items:    items,
		Traveler: traveler,
		OwnerID:  user.ID,
		Status:   lifecycle.StatusPending,
		Date:     requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, d); err != nil {
		return Declaration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save declaration")
	}

	s.metrics.IncRecordCreated(Collection)
	s.publish(ctx, d.ID, events.ActionCreated, string(d.Category))
	return d, nil
}

// SetStatus applies an inspector's decision and stores the review note.
// Inspectors decide only within their category.
func (s *Service) SetStatus(ctx context.Context, id string, next lifecycle.Status, note string) (Declaration, error) {
	d, err := s.findForReview(ctx, id)
	if err != nil {
		return Declaration{}, err
	}

	updated, err := lifecycle.Transition(d.Status, next)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return Declaration{}, dErrors.New(dErrors.CodeConflict, "record is not pending")
		}
		return Declaration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to transition declaration")
	}
	d.Status = updated
	d.Notes = strings.TrimSpace(note)
	if err := s.store.Save(ctx, d); err != nil {
		return Declaration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save declaration")
	}

	s.metrics.IncStatusTransition(Collection, string(updated))
	s.publish(ctx, d.ID, events.ActionStatusChanged, string(updated))
	return d, nil
}

// Reopen returns a terminal declaration to pending and clears the previous
// review note.
func (s *Service) Reopen(ctx context.Context, id string) (Declaration, error) {
	d, err := s.findForReview(ctx, id)
	if err != nil {
		return Declaration{}, err
	}

	updated, err := lifecycle.Reopen(d.Status)
	if err != nil {
		return Declaration{}, dErrors.New(dErrors.CodeConflict, "record is not in a terminal status")
	}
	d.Status = updated
	d.Notes = ""
	if err := s.store.Save(ctx, d); err != nil {
		return Declaration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save declaration")
	}

	s.metrics.IncStatusTransition(Collection, string(updated))
	s.publish(ctx, d.ID, events.ActionStatusChanged, "reopened")
	return d, nil
}

func (s *Service) findForReview(ctx context.Context, id string) (Declaration, error) {
	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Declaration{}, dErrors.New(dErrors.CodeNotFound, "declaration not found")
		}
		return Declaration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load declaration")
	}
	user := identity.FromContext(ctx)
	if !access.CategoryAllowed(user, string(d.Category)) {
		return Declaration{}, dErrors.New(dErrors.CodeForbidden, "declaration is outside your category")
	}
	return d, nil
}

func (s *Service) publish(ctx context.Context, recordID string, action events.Action, detail string) {
	if s.bus != nil {
		s.bus.Publish(events.Change{
			Collection: Collection,
			RecordID:   recordID,
			Action:     action,
			At:         requestcontext.Now(ctx),
		})
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"request_id", requestcontext.RequestID(ctx),
			"user_id", requestcontext.UserID(ctx),
			"collection", Collection,
			"record_id", recordID,
			"log_type", "audit",
		)
	}
	if s.audit != nil {
		s.audit.EmitRecord(ctx, Collection, recordID, string(action), detail)
	}
}
