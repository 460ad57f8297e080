package attendance

import (
	"context"
	"time"

	"fitclass/internal/access"
	"fitclass/internal/booking"
	"fitclass/internal/events"
	"fitclass/internal/logger"
	"fitclass/internal/metrics"
)

type Service interface {
	MarkAttendance(ctx context.Context, actor access.Actor, bookingID int, present bool) (*Attendance, error)
	ListByClass(ctx context.Context, actor access.Actor, classID int) ([]ClassAttendance, error)
	ListByMember(ctx context.Context, actor access.Actor, memberID int) ([]MemberAttendance, error)
	Delete(ctx context.Context, actor access.Actor, bookingID int) error
}

type Option func(*service)

func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	repo      Repository
	catalog   Catalog
	publisher events.Publisher
	now       func() time.Time
}

func NewService(repo Repository, catalog Catalog, opts ...Option) Service {
	s := &service{
		repo:      repo,
		catalog:   catalog,
		publisher: events.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkAttendance records presence for a confirmed booking. Re-marking
// overwrites the previous mark.
func (s *service) MarkAttendance(ctx context.Context, actor access.Actor, bookingID int, present bool) (*Attendance, error) {
	ref, err := s.repo.GetBookingRef(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !access.CanMarkAttendance(actor, ref.TrainerID) {
		return nil, ErrMarkDenied
	}
	if ref.Status != booking.StatusBooked {
		return nil, ErrNotConfirmed
	}

	a, err := s.repo.UpsertAttendance(ctx, bookingID, present)
	if err != nil {
		return nil, err
	}

	metrics.RecordAttendance(present)
	e := events.New(events.AttendanceMarked, ref.ClassID, ref.BookingID, ref.MemberID, string(ref.Status), s.now())
	e.Present = &present
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		logger.Warn("failed to publish attendance event", "booking_id", bookingID, "error", err)
	}
	return a, nil
}

func (s *service) ListByClass(ctx context.Context, actor access.Actor, classID int) ([]ClassAttendance, error) {
	c, err := s.catalog.GetClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewClassAttendance(actor, c.TrainerID) {
		return nil, ErrViewDenied
	}
	return s.repo.ListAttendanceByClass(ctx, classID)
}

func (s *service) ListByMember(ctx context.Context, actor access.Actor, memberID int) ([]MemberAttendance, error) {
	if !access.CanListMemberAttendance(actor, memberID) {
		return nil, ErrViewDenied
	}
	return s.repo.ListAttendanceByMember(ctx, memberID)
}

func (s *service) Delete(ctx context.Context, actor access.Actor, bookingID int) error {
	if !access.CanDeleteAttendance(actor) {
		return ErrDeleteDenied
	}
	return s.repo.DeleteAttendance(ctx, bookingID)
}
