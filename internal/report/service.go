package report

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"frontera/internal/declaration"
	"frontera/internal/events"
	"frontera/internal/minor"
	"frontera/internal/platform/metrics"
	"frontera/internal/vehicle"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/requestcontext"
)

// Service aggregates over every collection. It reads the stores directly:
// reporting is guarded by its own permission, not by per-record ownership.
type Service struct {
	vehicles        vehicle.Store
	touristVehicles vehicle.TouristStore
	declarations    declaration.Store
	minors          minor.Store
	touristMinors   minor.TouristStore
	bus             *events.Bus
	logger          *slog.Logger
	metrics         *metrics.Metrics

	mu       sync.Mutex
	snapshot []Record
	fresh    bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(
	vehicles vehicle.Store,
	touristVehicles vehicle.TouristStore,
	declarations declaration.Store,
	minors minor.Store,
	touristMinors minor.TouristStore,
	bus *events.Bus,
	opts ...Option,
) *Service {
	s := &Service{
		vehicles:        vehicles,
		touristVehicles: touristVehicles,
		declarations:    declarations,
		minors:          minors,
		touristMinors:   touristMinors,
		bus:             bus,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch invalidates the cached snapshot on every record change. Run it in
// the server's run group; it returns when the context ends.
func (s *Service) Watch(ctx context.Context) error {
	ch, cancel := s.bus.Subscribe(64)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			s.mu.Lock()
			s.fresh = false
			s.mu.Unlock()
		}
	}
}

func (s *Service) records(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fresh {
		return s.snapshot, nil
	}

	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot = snapshot
	s.fresh = true
	return snapshot, nil
}

func (s *Service) load(ctx context.Context) ([]Record, error) {
	var out []Record

	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicles")
	}
	for _, v := range vehicles {
		out = append(out, Record{
			Collection: vehicle.CollectionVehicles,
			ID:         v.ID, Label: v.Plate, Status: string(v.Status), Date: v.Date,
		})
	}

	touristVehicles, err := s.touristVehicles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tourist vehicles")
	}
	for _, v := range touristVehicles {
		out = append(out, Record{
			Collection: vehicle.CollectionTouristVehicles,
			ID:         v.ID, Label: v.Plate, Status: v.Status, Date: v.Date,
		})
	}

	declarations, err := s.declarations.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load declarations")
	}
	for _, d := range declarations {
		out = append(out, Record{
			Collection: declaration.Collection,
			ID:         d.ID, Label: d.Traveler, Category: string(d.Category),
			Status: string(d.Status), Date: d.Date,
		})
	}

	minors, err := s.minors.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load minors")
	}
	for _, m := range minors {
		out = append(out, Record{
			Collection: minor.CollectionMinors,
			ID:         m.ID, Label: m.Name, Status: m.Status, Date: m.Date,
		})
	}

	touristMinors, err := s.touristMinors.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tourist minors")
	}
	for _, m := range touristMinors {
		out = append(out, Record{
			Collection: minor.CollectionTouristMinors,
			ID:         m.ID, Label: m.Name, Status: m.Status, Date: m.Date,
		})
	}

	return out, nil
}

func byCollection(records []Record, collections ...string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		for _, c := range collections {
			if r.Collection == c {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Summary is the per-category dashboard breakdown. Minors merge the legacy
// and tourist variants: both carry the same derived status. Tourist
// vehicles stay separate from desk vehicles because the two run different
// status models.
type Summary struct {
	Vehicles        StatusCounts     `json:"vehicles"`
	TouristVehicles CompletionCounts `json:"tourist_vehicles"`
	Declarations    StatusCounts     `json:"declarations"`
	Food            StatusCounts     `json:"food"`
	Pet             StatusCounts     `json:"pet"`
	Minors          CompletionCounts `json:"minors"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Summarize computes the dashboard counts over the full collections.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	records, err := s.records(ctx)
	if err != nil {
		return Summary{}, err
	}

	declarations := byCollection(records, declaration.Collection)
	food := make([]Record, 0, len(declarations))
	pet := make([]Record, 0, len(declarations))
	for _, d := range declarations {
		if d.Category == string(declaration.CategoryFood) {
			food = append(food, d)
		} else {
			pet = append(pet, d)
		}
	}

	return Summary{
		Vehicles:        SummarizeStatus(byCollection(records, vehicle.CollectionVehicles)),
		TouristVehicles: SummarizeCompletion(byCollection(records, vehicle.CollectionTouristVehicles)),
		Declarations:    SummarizeStatus(declarations),
		Food:            SummarizeStatus(food),
		Pet:             SummarizeStatus(pet),
		Minors:          SummarizeCompletion(byCollection(records, minor.CollectionMinors, minor.CollectionTouristMinors)),
		GeneratedAt:     requestcontext.Now(ctx),
	}, nil
}

// Traffic is the windowed crossing-volume view.
type Traffic struct {
	Window       Window         `json:"window"`
	Since        time.Time      `json:"since"`
	Total        int            `json:"total"`
	ByCollection map[string]int `json:"by_collection"`
	Hourly       [24]int        `json:"hourly"`
}

// TrafficReport counts records created inside the window, bucketed by hour
// of day.
func (s *Service) TrafficReport(ctx context.Context, window Window) (Traffic, error) {
	if !window.Valid() {
		return Traffic{}, dErrors.New(dErrors.CodeValidation, "window must be day, week or month")
	}
	records, err := s.records(ctx)
	if err != nil {
		return Traffic{}, err
	}

	since := WindowStart(requestcontext.Now(ctx), window)
	windowed := Since(records, since)

	counts := make(map[string]int, 5)
	for _, r := range windowed {
		counts[r.Collection]++
	}

	return Traffic{
		Window:       window,
		Since:        since,
		Total:        len(windowed),
		ByCollection: counts,
		Hourly:       BucketByHour(windowed),
	}, nil
}

// OutstandingIssues lists pending reviews and incomplete document sets.
func (s *Service) OutstandingIssues(ctx context.Context) ([]Issue, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return Issues(records), nil
}
