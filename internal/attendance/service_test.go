package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitclass/internal/access"
	"fitclass/internal/booking"
	"fitclass/internal/class"
	"fitclass/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetBookingRef(ctx context.Context, bookingID int) (*BookingRef, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingRef), args.Error(1)
}

func (m *MockRepository) UpsertAttendance(ctx context.Context, bookingID int, present bool) (*Attendance, error) {
	args := m.Called(ctx, bookingID, present)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Attendance), args.Error(1)
}

func (m *MockRepository) ListAttendanceByClass(ctx context.Context, classID int) ([]ClassAttendance, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClassAttendance), args.Error(1)
}

func (m *MockRepository) ListAttendanceByMember(ctx context.Context, memberID int) ([]MemberAttendance, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MemberAttendance), args.Error(1)
}

func (m *MockRepository) DeleteAttendance(ctx context.Context, bookingID int) error {
	return m.Called(ctx, bookingID).Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetClassByID(ctx context.Context, id int) (*class.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*class.Session), args.Error(1)
}

type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.events = append(p.events, evts...)
	return nil
}

var (
	admin   = access.Actor{ID: 1, Roles: access.NewRoles(access.Admin)}
	trainer = access.Actor{ID: 9, Roles: access.NewRoles(access.Trainer)}
	other   = access.Actor{ID: 10, Roles: access.NewRoles(access.Trainer)}
	member  = access.Actor{ID: 20, Roles: access.NewRoles(access.Member)}
)

func bookedRef(status booking.Status) *BookingRef {
	return &BookingRef{BookingID: 11, ClassID: 3, MemberID: 20, TrainerID: 9, Status: status}
}

func TestMarkAttendance(t *testing.T) {
	repo := new(MockRepository)
	pub := &capturePublisher{}
	now := time.Date(2026, 3, 2, 18, 5, 0, 0, time.UTC)
	svc := NewService(repo, new(MockCatalog), WithPublisher(pub), WithClock(func() time.Time { return now }))

	repo.On("GetBookingRef", mock.Anything, 11).Return(bookedRef(booking.StatusBooked), nil)
	repo.On("UpsertAttendance", mock.Anything, 11, true).
		Return(&Attendance{ID: 1, BookingID: 11, Present: true, CheckedAt: now}, nil)

	a, err := svc.MarkAttendance(context.Background(), trainer, 11, true)
	require.NoError(t, err)
	assert.True(t, a.Present)

	require.Len(t, pub.events, 1)
	e := pub.events[0]
	assert.Equal(t, events.AttendanceMarked, e.Type)
	assert.Equal(t, 3, e.ClassID)
	require.NotNil(t, e.Present)
	assert.True(t, *e.Present)
	repo.AssertExpectations(t)
}

func TestMarkAttendance_Denied(t *testing.T) {
	for _, actor := range []access.Actor{other, member} {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCatalog))
		repo.On("GetBookingRef", mock.Anything, 11).Return(bookedRef(booking.StatusBooked), nil)

		_, err := svc.MarkAttendance(context.Background(), actor, 11, true)
		assert.ErrorIs(t, err, ErrMarkDenied)
		repo.AssertNotCalled(t, "UpsertAttendance", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestMarkAttendance_RequiresBooked(t *testing.T) {
	for _, status := range []booking.Status{booking.StatusWaitlist, booking.StatusCancelled} {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCatalog))
		repo.On("GetBookingRef", mock.Anything, 11).Return(bookedRef(status), nil)

		_, err := svc.MarkAttendance(context.Background(), admin, 11, false)
		assert.ErrorIs(t, err, ErrNotConfirmed, status)
	}
}

func TestMarkAttendance_CancelledMeanwhile(t *testing.T) {
	repo := new(MockRepository)
	pub := &capturePublisher{}
	svc := NewService(repo, new(MockCatalog), WithPublisher(pub))
	repo.On("GetBookingRef", mock.Anything, 11).Return(bookedRef(booking.StatusBooked), nil)
	repo.On("UpsertAttendance", mock.Anything, 11, true).Return(nil, ErrNotConfirmed)

	_, err := svc.MarkAttendance(context.Background(), admin, 11, true)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, pub.events)
}

func TestMarkAttendance_UnknownBooking(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCatalog))
	repo.On("GetBookingRef", mock.Anything, 99).Return(nil, booking.ErrBookingNotFound)

	_, err := svc.MarkAttendance(context.Background(), admin, 99, true)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestListByClass(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	svc := NewService(repo, catalog)

	catalog.On("GetClassByID", mock.Anything, 3).Return(&class.Session{ID: 3, TrainerID: 9}, nil)
	catalog.On("GetClassByID", mock.Anything, 4).Return(nil, class.ErrClassNotFound)
	repo.On("ListAttendanceByClass", mock.Anything, 3).Return([]ClassAttendance{{MemberID: 20}}, nil)

	list, err := svc.ListByClass(context.Background(), trainer, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListByClass(context.Background(), other, 3)
	assert.ErrorIs(t, err, ErrViewDenied)

	_, err = svc.ListByClass(context.Background(), member, 3)
	assert.ErrorIs(t, err, ErrViewDenied)

	_, err = svc.ListByClass(context.Background(), admin, 4)
	assert.ErrorIs(t, err, class.ErrClassNotFound)
}

func TestListByMember(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCatalog))
	repo.On("ListAttendanceByMember", mock.Anything, 20).Return([]MemberAttendance{}, nil)

	_, err := svc.ListByMember(context.Background(), member, 20)
	require.NoError(t, err)

	_, err = svc.ListByMember(context.Background(), trainer, 20)
	assert.ErrorIs(t, err, ErrViewDenied)
}

func TestDelete(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCatalog))
	repo.On("DeleteAttendance", mock.Anything, 11).Return(nil)
	repo.On("DeleteAttendance", mock.Anything, 12).Return(ErrAttendanceNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), trainer, 11), ErrDeleteDenied)
	assert.NoError(t, svc.Delete(context.Background(), admin, 11))
	assert.True(t, errors.Is(svc.Delete(context.Background(), admin, 12), ErrAttendanceNotFound))
}
