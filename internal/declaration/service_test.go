package declaration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"frontera/internal/events"
	"frontera/internal/identity"
	"frontera/internal/lifecycle"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/requestcontext"
)

// =============================================================================
// Declaration Service Test Suite
// =============================================================================
// Category-scoped review is the interesting rule here: an inspector with the
// food permission must never decide or even list pet declarations.

type DeclarationServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
}

func TestDeclarationServiceSuite(t *testing.T) {
	suite.Run(t, new(DeclarationServiceSuite))
}

func (s *DeclarationServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.service = New(s.store, events.NewBus())
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
	foodInspector = identity.User{
		ID:          "SAG_AGENT",
		Name:        "Ana López",
		Permissions: []string{identity.PermFoodValidation},
	}
)

func authCtx(u identity.User) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), u.ID)
	ctx = requestcontext.WithUserName(ctx, u.Name)
	return requestcontext.WithPermissions(ctx, u.Permissions)
}

func (s *DeclarationServiceSuite) file(u identity.User, category Category, items ...string) Declaration {
	d, err := s.service.Create(authCtx(u), CreateRequest{Category: category, Items: items})
	s.Require().NoError(err)
	return d
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *DeclarationServiceSuite) TestCreate() {
	s.Run("starts pending with the creator as traveler", func() {
		d := s.file(touristUser, CategoryFood, "cheese", "honey")
		s.Equal(lifecycle.StatusPending, d.Status)
		s.Equal(touristUser.Name, d.Traveler)
		s.Equal(touristUser.ID, d.OwnerID)
		s.Equal([]string{"cheese", "honey"}, d.Items)
	})

	s.Run("rejects an unknown category", func() {
		_, err := s.service.Create(authCtx(touristUser), CreateRequest{
			Category: "weapons", Items: []string{"x"},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects an empty item list", func() {
		_, err := s.service.Create(authCtx(touristUser), CreateRequest{
			Category: CategoryPet, Items: []string{"  "},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Category Scoping Tests
// =============================================================================

func (s *DeclarationServiceSuite) TestCategoryScoping() {
	food := s.file(touristUser, CategoryFood, "cheese")
	pet := s.file(touristUser, CategoryPet, "one dog")

	s.Run("food inspector lists only food declarations", func() {
		got, err := s.service.List(authCtx(foodInspector), ListQuery{})
		s.NoError(err)
		s.Require().Len(got, 1)
		s.Equal(food.ID, got[0].ID)
	})

	s.Run("admin lists both categories", func() {
		got, err := s.service.List(authCtx(adminUser), ListQuery{})
		s.NoError(err)
		s.Len(got, 2)
	})

	s.Run("owner lists own declarations regardless of category", func() {
		got, err := s.service.List(authCtx(touristUser), ListQuery{})
		s.NoError(err)
		s.Len(got, 2)
	})

	s.Run("food inspector cannot decide a pet declaration", func() {
		_, err := s.service.SetStatus(authCtx(foodInspector), pet.ID, lifecycle.StatusApproved, "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("food inspector decides a food declaration", func() {
		got, err := s.service.SetStatus(authCtx(foodInspector), food.ID, lifecycle.StatusRejected, "undeclared dairy")
		s.NoError(err)
		s.Equal(lifecycle.StatusRejected, got.Status)
		s.Equal("undeclared dairy", got.Notes)
	})
}

// =============================================================================
// Review Workflow Tests
// =============================================================================

func (s *DeclarationServiceSuite) TestReviewWorkflow() {
	s.Run("terminal record is locked", func() {
		d := s.file(touristUser, CategoryFood, "cheese")

		_, err := s.service.SetStatus(authCtx(adminUser), d.ID, lifecycle.StatusApproved, "ok")
		s.Require().NoError(err)

		_, err = s.service.SetStatus(authCtx(adminUser), d.ID, lifecycle.StatusRejected, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("reopen clears the review note", func() {
		d := s.file(touristUser, CategoryPet, "two cats")

		_, err := s.service.SetStatus(authCtx(adminUser), d.ID, lifecycle.StatusRejected, "missing vaccine card")
		s.Require().NoError(err)

		reopened, err := s.service.Reopen(authCtx(adminUser), d.ID)
		s.Require().NoError(err)
		s.Equal(lifecycle.StatusPending, reopened.Status)
		s.Empty(reopened.Notes)
	})

	s.Run("unknown record", func() {
		_, err := s.service.SetStatus(authCtx(adminUser), "missing", lifecycle.StatusApproved, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
