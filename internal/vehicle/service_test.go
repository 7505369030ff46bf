package vehicle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"frontera/internal/events"
	"frontera/internal/identity"
	"frontera/internal/lifecycle"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/requestcontext"
)

// =============================================================================
// Vehicle Service Test Suite
// =============================================================================
// The service carries the review workflow, ownership filtering, and derived
// tourist-vehicle status. Those rules are easier to pin down here than
// through the HTTP layer.

type VehicleServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	tourist *InMemoryTouristStore
	bus     *events.Bus
	service *Service
}

func TestVehicleServiceSuite(t *testing.T) {
	suite.Run(t, new(VehicleServiceSuite))
}

func (s *VehicleServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.tourist = NewInMemoryTouristStore()
	s.bus = events.NewBus()
	s.service = New(s.store, s.tourist, s.bus)
}

var (
	adminUser = identity.User{
		ID:          "ADFU12",
		Name:        "Carlos Mendoza",
		Permissions: []string{identity.PermAdmin, identity.PermValidate},
	}
	touristUser = identity.User{
		ID:          "TUR001",
		Name:        "María García",
		Permissions: []string{identity.PermDeclarations, identity.PermUpload},
	}
	carrierUser = identity.User{
		ID:          "TRANS202",
		Name:        "Roberto Silva",
		Permissions: []string{identity.PermVehicles, identity.PermStatus},
	}
)

func authCtx(u identity.User) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), u.ID)
	ctx = requestcontext.WithUserName(ctx, u.Name)
	return requestcontext.WithPermissions(ctx, u.Permissions)
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *VehicleServiceSuite) TestCreate() {
	s.Run("stamps owner id and starts pending", func() {
		v, err := s.service.Create(authCtx(carrierUser), CreateRequest{
			Plate: "ab cd 12", Type: "truck",
		})
		s.Require().NoError(err)
		s.Equal("AB CD 12", v.Plate)
		s.Equal(lifecycle.StatusPending, v.Status)
		s.Equal(carrierUser.ID, v.OwnerID)
		s.Equal(carrierUser.Name, v.Owner)
		s.NotEmpty(v.ID)
	})

	s.Run("keeps an explicit owner name", func() {
		v, err := s.service.Create(authCtx(carrierUser), CreateRequest{
			Plate: "XY9876", Type: "car", Owner: "Frontera Cargo SpA",
		})
		s.Require().NoError(err)
		s.Equal("Frontera Cargo SpA", v.Owner)
		s.Equal(carrierUser.ID, v.OwnerID)
	})

	s.Run("uses the request timestamp", func() {
		at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(authCtx(carrierUser), at)
		v, err := s.service.Create(ctx, CreateRequest{Plate: "TS1234", Type: "car"})
		s.Require().NoError(err)
		s.True(v.Date.Equal(at))
	})

	s.Run("publishes a created event", func() {
		ch, cancel := s.bus.Subscribe(4)
		defer cancel()

		v, err := s.service.Create(authCtx(carrierUser), CreateRequest{Plate: "EV1111", Type: "car"})
		s.Require().NoError(err)

		change := <-ch
		s.Equal(CollectionVehicles, change.Collection)
		s.Equal(v.ID, change.RecordID)
		s.Equal(events.ActionCreated, change.Action)
	})
}

// =============================================================================
// Status Transition Tests
// =============================================================================

func (s *VehicleServiceSuite) TestSetStatus() {
	s.Run("approves a pending record", func() {
		v, err := s.service.Create(authCtx(carrierUser), CreateRequest{Plate: "AP0001", Type: "car"})
		s.Require().NoError(err)

		updated, err := s.service.SetStatus(authCtx(adminUser), v.ID, lifecycle.StatusApproved)
		s.NoError(err)
		s.Equal(lifecycle.StatusApproved, updated.Status)
	})

	s.Run("terminal record is locked", func() {
		v, err := s.service.Create(authCtx(carrierUser), CreateRequest{Plate: "LK0001", Type: "car"})
		s.Require().NoError(err)

		_, err = s.service.SetStatus(authCtx(adminUser), v.ID, lifecycle.StatusApproved)
		s.Require().NoError(err)

		_, err = s.service.SetStatus(authCtx(adminUser), v.ID, lifecycle.StatusRejected)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		stored, err := s.store.FindByID(context.Background(), v.ID)
		s.Require().NoError(err)
		s.Equal(lifecycle.StatusApproved, stored.Status)
	})

	s.Run("unknown record", func() {
		_, err := s.service.SetStatus(authCtx(adminUser), "missing", lifecycle.StatusApproved)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *VehicleServiceSuite) TestReopen() {
	s.Run("re-review goes through reopen", func() {
		v, err := s.service.Create(authCtx(carrierUser), CreateRequest{Plate: "RO0001", Type: "car"})
		s.Require().NoError(err)

		_, err = s.service.SetStatus(authCtx(adminUser), v.ID, lifecycle.StatusApproved)
		s.Require().NoError(err)

		reopened, err := s.service.Reopen(authCtx(adminUser), v.ID)
		s.Require().NoError(err)
		s.Equal(lifecycle.StatusPending, reopened.Status)

		updated, err := s.service.SetStatus(authCtx(adminUser), v.ID, lifecycle.StatusRejected)
		s.NoError(err)
		s.Equal(lifecycle.StatusRejected, updated.Status)
	})

	s.Run("pending record cannot be reopened", func() {
		v, err := s.service.Create(authCtx(carrierUser), CreateRequest{Plate: "RO0002", Type: "car"})
		s.Require().NoError(err)

		_, err = s.service.Reopen(authCtx(adminUser), v.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

// =============================================================================
// Listing and Access Tests
// =============================================================================

func (s *VehicleServiceSuite) TestList() {
	mine, err := s.service.Create(authCtx(carrierUser), CreateRequest{Plate: "MI0001", Type: "truck"})
	s.Require().NoError(err)
	_, err = s.service.Create(authCtx(touristUser), CreateRequest{Plate: "OT0001", Type: "car"})
	s.Require().NoError(err)

	s.Run("admin sees everything", func() {
		got, err := s.service.List(authCtx(adminUser), ListQuery{})
		s.NoError(err)
		s.Len(got, 2)
	})

	s.Run("carrier sees only own records", func() {
		got, err := s.service.List(authCtx(carrierUser), ListQuery{})
		s.NoError(err)
		s.Require().Len(got, 1)
		s.Equal(mine.ID, got[0].ID)
	})

	s.Run("legacy records match by owner name substring", func() {
		legacy := Vehicle{
			ID: "legacy-1", Plate: "LG0001", Type: "car",
			Owner: "Sra. María García Pérez", Status: lifecycle.StatusPending,
			Date: time.Now(),
		}
		s.Require().NoError(s.store.Save(context.Background(), legacy))

		got, err := s.service.List(authCtx(touristUser), ListQuery{})
		s.NoError(err)
		ids := make([]string, 0, len(got))
		for _, v := range got {
			ids = append(ids, v.ID)
		}
		s.Contains(ids, "legacy-1")
	})

	s.Run("status filter", func() {
		_, err := s.service.SetStatus(authCtx(adminUser), mine.ID, lifecycle.StatusApproved)
		s.Require().NoError(err)

		got, err := s.service.List(authCtx(adminUser), ListQuery{Status: lifecycle.StatusApproved})
		s.NoError(err)
		s.Require().Len(got, 1)
		s.Equal(mine.ID, got[0].ID)
	})

	s.Run("search matches plate and owner case-insensitively", func() {
		got, err := s.service.List(authCtx(adminUser), ListQuery{Search: "mi00"})
		s.NoError(err)
		s.Require().Len(got, 1)
		s.Equal(mine.ID, got[0].ID)

		got, err = s.service.List(authCtx(adminUser), ListQuery{Search: "roberto"})
		s.NoError(err)
		s.Len(got, 1)
	})
}

// =============================================================================
// Tourist Vehicle Tests
// =============================================================================

func (s *VehicleServiceSuite) TestTouristVehicles() {
	s.Run("status derives from required slots", func() {
		v, err := s.service.CreateTourist(authCtx(touristUser), CreateTouristRequest{
			Plate: "TV0001", Type: "car",
			Documents: DocumentSet{CirculationPermit: "permit.pdf"},
		})
		s.Require().NoError(err)
		s.Equal(StatusIncomplete, v.Status)

		v, err = s.service.AttachDocument(authCtx(touristUser), v.ID, SlotDriverLicense, "license.pdf")
		s.Require().NoError(err)
		s.Equal(StatusIncomplete, v.Status)

		v, err = s.service.AttachDocument(authCtx(touristUser), v.ID, SlotIDCard, "id.png")
		s.Require().NoError(err)
		s.Equal(StatusComplete, v.Status)
		s.True(v.Documents.Progress().Complete)
	})

	s.Run("optional slots never affect completeness", func() {
		v, err := s.service.CreateTourist(authCtx(touristUser), CreateTouristRequest{
			Plate: "TV0002", Type: "car",
			Documents: DocumentSet{Insurance: "soap.pdf", VehicleRegistry: "registry.pdf"},
		})
		s.Require().NoError(err)
		s.Equal(StatusIncomplete, v.Status)
	})

	s.Run("removing a required document flips back to incomplete", func() {
		v, err := s.service.CreateTourist(authCtx(touristUser), CreateTouristRequest{
			Plate: "TV0003", Type: "car",
			Documents: DocumentSet{
				CirculationPermit: "permit.pdf",
				DriverLicense:     "license.pdf",
				IDCard:            "id.png",
			},
		})
		s.Require().NoError(err)
		s.Equal(StatusComplete, v.Status)

		v, err = s.service.RemoveDocument(authCtx(touristUser), v.ID, SlotIDCard)
		s.Require().NoError(err)
		s.Equal(StatusIncomplete, v.Status)
	})

	s.Run("unknown slot is rejected", func() {
		v, err := s.service.CreateTourist(authCtx(touristUser), CreateTouristRequest{
			Plate: "TV0004", Type: "car",
		})
		s.Require().NoError(err)

		_, err = s.service.AttachDocument(authCtx(touristUser), v.ID, "passport", "p.pdf")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("another user's record is off limits", func() {
		v, err := s.service.CreateTourist(authCtx(touristUser), CreateTouristRequest{
			Plate: "TV0005", Type: "car",
		})
		s.Require().NoError(err)

		_, err = s.service.AttachDocument(authCtx(carrierUser), v.ID, SlotIDCard, "id.png")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		// Validators may complete records on a tourist's behalf.
		_, err = s.service.AttachDocument(authCtx(adminUser), v.ID, SlotIDCard, "id.png")
		s.NoError(err)
	})

	s.Run("listing is scoped to the owner", func() {
		got, err := s.service.ListTourist(authCtx(carrierUser))
		s.NoError(err)
		for _, v := range got {
			s.Equal(carrierUser.ID, v.OwnerID)
		}
	})
}
