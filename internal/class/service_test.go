package class

import (
	"context"
	"testing"
	"time"

	"fitclass/internal/access"
	"fitclass/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateClass(ctx context.Context, s Session) (*Session, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) GetClassByID(ctx context.Context, id int) (*Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) ListClasses(ctx context.Context, filter ListFilter) ([]Session, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}

func (m *MockRepository) DeleteClass(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUpdater struct {
	mock.Mock
}

func (m *MockUpdater) ApplyPatch(ctx context.Context, classID int, patch Patch) (*Session, error) {
	args := m.Called(ctx, classID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

var (
	admin   = access.Actor{ID: 1, Roles: access.NewRoles(access.Admin)}
	trainer = access.Actor{ID: 9, Roles: access.NewRoles(access.Trainer)}
	other   = access.Actor{ID: 10, Roles: access.NewRoles(access.Trainer)}
	member  = access.Actor{ID: 20, Roles: access.NewRoles(access.Member)}
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	s := validSession()
	req := CreateRequest{GymID: s.GymID, Name: "  Spin ", StartAt: s.StartAt, EndAt: s.EndAt, Capacity: s.Capacity}

	t.Run("trainer defaults to self", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockUpdater))

		repo.On("CreateClass", ctx, mock.MatchedBy(func(in Session) bool {
			return in.TrainerID == trainer.ID && in.Name == "Spin"
		})).Return(&Session{ID: 3, TrainerID: trainer.ID, Name: "Spin"}, nil)

		created, err := svc.Create(ctx, trainer, req)
		require.NoError(t, err)
		assert.Equal(t, 3, created.ID)
		repo.AssertExpectations(t)
	})

	t.Run("trainer cannot create for another trainer", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockUpdater))

		r := req
		r.TrainerID = other.ID
		_, err := svc.Create(ctx, trainer, r)
		assert.ErrorIs(t, err, ErrCreateDenied)
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
		repo.AssertNotCalled(t, "CreateClass", mock.Anything, mock.Anything)
	})

	t.Run("member cannot create", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockUpdater))
		r := req
		r.TrainerID = 9
		_, err := svc.Create(ctx, member, r)
		assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
	})

	t.Run("admin must name a trainer", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockUpdater))
		_, err := svc.Create(ctx, admin, req)
		assert.ErrorIs(t, err, ErrInvalidClass)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockUpdater))
		r := req
		r.Capacity = 0
		_, err := svc.Create(ctx, trainer, r)
		assert.ErrorIs(t, err, ErrInvalidClass)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		actor       access.Actor
		includePast bool
		want        ListFilter
	}{
		{"admin all", admin, true, ListFilter{}},
		{"admin upcoming", admin, false, ListFilter{StartsAfter: &now}},
		{"trainer own", trainer, true, ListFilter{TrainerID: trainer.ID}},
		{"member upcoming only", member, true, ListFilter{StartsAfter: &now}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, new(MockUpdater), WithClock(func() time.Time { return now }))

			repo.On("ListClasses", ctx, tt.want).Return([]Session{{ID: 1}}, nil)

			got, err := svc.List(ctx, tt.actor, tt.includePast)
			require.NoError(t, err)
			assert.Len(t, got, 1)
			repo.AssertExpectations(t)
		})
	}

	t.Run("no roles", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockUpdater))
		_, err := svc.List(ctx, access.Actor{ID: 5}, false)
		assert.ErrorIs(t, err, ErrListDenied)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	current := validSession()
	current.ID = 4
	capacity := 2
	patch := Patch{Capacity: &capacity}

	t.Run("owner updates through updater", func(t *testing.T) {
		repo := new(MockRepository)
		upd := new(MockUpdater)
		svc := NewService(repo, upd)

		repo.On("GetClassByID", ctx, 4).Return(&current, nil)
		updated := current
		updated.Capacity = 2
		upd.On("ApplyPatch", ctx, 4, patch).Return(&updated, nil)

		got, err := svc.Update(ctx, trainer, 4, patch)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Capacity)
		upd.AssertExpectations(t)
	})

	t.Run("non owner denied", func(t *testing.T) {
		repo := new(MockRepository)
		upd := new(MockUpdater)
		svc := NewService(repo, upd)
		repo.On("GetClassByID", ctx, 4).Return(&current, nil)

		_, err := svc.Update(ctx, other, 4, patch)
		assert.ErrorIs(t, err, ErrManageDenied)
		upd.AssertNotCalled(t, "ApplyPatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty patch", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockUpdater))
		repo.On("GetClassByID", ctx, 4).Return(&current, nil)

		_, err := svc.Update(ctx, admin, 4, Patch{})
		assert.ErrorIs(t, err, ErrEmptyPatch)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockUpdater))
		repo.On("GetClassByID", ctx, 4).Return(nil, ErrClassNotFound)

		_, err := svc.Update(ctx, admin, 4, patch)
		assert.ErrorIs(t, err, ErrClassNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	current := validSession()
	current.ID = 4

	repo := new(MockRepository)
	svc := NewService(repo, new(MockUpdater))
	repo.On("GetClassByID", ctx, 4).Return(&current, nil)
	repo.On("DeleteClass", ctx, 4).Return(nil).Once()

	assert.ErrorIs(t, svc.Delete(ctx, member, 4), ErrManageDenied)
	assert.NoError(t, svc.Delete(ctx, admin, 4))
	repo.AssertExpectations(t)
}
