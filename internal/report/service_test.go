package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"frontera/internal/declaration"
	"frontera/internal/events"
	"frontera/internal/lifecycle"
	"frontera/internal/minor"
	"frontera/internal/vehicle"
)

// =============================================================================
// Report Service Test Suite
// =============================================================================

type ReportServiceSuite struct {
	suite.Suite
	vehicles        *vehicle.InMemoryStore
	touristVehicles *vehicle.InMemoryTouristStore
	declarations    *declaration.InMemoryStore
	minors          *minor.InMemoryStore
	touristMinors   *minor.InMemoryTouristStore
	bus             *events.Bus
	service         *Service
}

func TestReportServiceSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func (s *ReportServiceSuite) SetupTest() {
	s.vehicles = vehicle.NewInMemoryStore()
	s.touristVehicles = vehicle.NewInMemoryTouristStore()
	s.declarations = declaration.NewInMemoryStore()
	s.minors = minor.NewInMemoryStore()
	s.touristMinors = minor.NewInMemoryTouristStore()
	s.bus = events.NewBus()
	s.service = New(s.vehicles, s.touristVehicles, s.declarations, s.minors, s.touristMinors, s.bus)
}

func (s *ReportServiceSuite) seed() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.vehicles.Save(ctx, vehicle.Vehicle{
		ID: "v1", Plate: "AB1234", Status: lifecycle.StatusPending, Date: now,
	}))
	s.Require().NoError(s.vehicles.Save(ctx, vehicle.Vehicle{
		ID: "v2", Plate: "CD5678", Status: lifecycle.StatusApproved, Date: now,
	}))
	s.Require().NoError(s.touristVehicles.Save(ctx, vehicle.TouristVehicle{
		ID: "tv1", Plate: "EF9012", Status: vehicle.StatusIncomplete, Date: now,
	}))
	s.Require().NoError(s.declarations.Save(ctx, declaration.Declaration{
		ID: "d1", Category: declaration.CategoryFood, Traveler: "María García",
		Status: lifecycle.StatusPending, Date: now,
	}))
	s.Require().NoError(s.declarations.Save(ctx, declaration.Declaration{
		ID: "d2", Category: declaration.CategoryPet, Traveler: "Roberto Silva",
		Status: lifecycle.StatusRejected, Date: now,
	}))
	s.Require().NoError(s.minors.Save(ctx, minor.Minor{
		ID: "m1", Name: "Pedro", Status: minor.StatusIncomplete, Date: now,
	}))
	s.Require().NoError(s.touristMinors.Save(ctx, minor.TouristMinor{
		ID: "tm1", Name: "Lucía", Status: minor.StatusComplete, Date: now,
	}))
}

func (s *ReportServiceSuite) TestSummarize() {
	s.seed()

	summary, err := s.service.Summarize(context.Background())
	s.Require().NoError(err)

	s.Equal(2, summary.Vehicles.Total)
	s.Equal(1, summary.Vehicles.Pending)
	s.Equal(1, summary.Vehicles.Approved)
	s.Equal(summary.Vehicles.Total,
		summary.Vehicles.Approved+summary.Vehicles.Rejected+summary.Vehicles.Pending)

	s.Equal(1, summary.TouristVehicles.Total)
	s.Equal(1, summary.TouristVehicles.Incomplete)

	s.Equal(2, summary.Declarations.Total)
	s.Equal(1, summary.Food.Total)
	s.Equal(1, summary.Food.Pending)
	s.Equal(1, summary.Pet.Total)
	s.Equal(1, summary.Pet.Rejected)

	// Legacy and tourist minors merge into one completion breakdown.
	s.Equal(2, summary.Minors.Total)
	s.Equal(1, summary.Minors.Complete)
	s.Equal(1, summary.Minors.Incomplete)
}

func (s *ReportServiceSuite) TestTrafficWindowing() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.vehicles.Save(ctx, vehicle.Vehicle{
		ID: "old", Plate: "OL0001", Status: lifecycle.StatusPending, Date: now.AddDate(0, -2, 0),
	}))
	s.Require().NoError(s.vehicles.Save(ctx, vehicle.Vehicle{
		ID: "recent", Plate: "RC0001", Status: lifecycle.StatusPending, Date: now.Add(-time.Hour),
	}))

	traffic, err := s.service.TrafficReport(ctx, WindowWeek)
	s.Require().NoError(err)
	s.Equal(1, traffic.Total)
	s.Equal(1, traffic.ByCollection[vehicle.CollectionVehicles])

	_, err = s.service.TrafficReport(ctx, Window("year"))
	s.Error(err)
}

func (s *ReportServiceSuite) TestSnapshotInvalidation() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.service.Watch(ctx) }()

	summary, err := s.service.Summarize(ctx)
	s.Require().NoError(err)
	s.Zero(summary.Vehicles.Total)

	// Without an event the cached snapshot keeps serving.
	s.Require().NoError(s.vehicles.Save(ctx, vehicle.Vehicle{
		ID: "v1", Plate: "AB1234", Status: lifecycle.StatusPending, Date: time.Now(),
	}))
	summary, err = s.service.Summarize(ctx)
	s.Require().NoError(err)
	s.Zero(summary.Vehicles.Total)

	// Publishing inside the poll avoids racing the Watch goroutine's
	// subscription; invalidation is idempotent.
	s.Eventually(func() bool {
		s.bus.Publish(events.Change{
			Collection: vehicle.CollectionVehicles, RecordID: "v1", Action: events.ActionCreated,
		})
		summary, err := s.service.Summarize(ctx)
		return err == nil && summary.Vehicles.Total == 1
	}, time.Second, 10*time.Millisecond)
}

func (s *ReportServiceSuite) TestOutstandingIssues() {
	s.seed()

	issues, err := s.service.OutstandingIssues(context.Background())
	s.Require().NoError(err)

	// Pending vehicle, incomplete tourist vehicle, pending declaration,
	// incomplete minor.
	s.Len(issues, 4)
}
