package booking

import (
	"context"
	"errors"
	"time"

	"fitclass/internal/access"
	"fitclass/internal/apperr"
	"fitclass/internal/class"
	"fitclass/internal/events"
	"fitclass/internal/logger"
	"fitclass/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// sideEffectTimeout bounds the post-commit publish and notify calls.
const sideEffectTimeout = 5 * time.Second

type Service interface {
	Create(ctx context.Context, actor access.Actor, classID, memberID int) (*Booking, error)
	Cancel(ctx context.Context, actor access.Actor, bookingID int) (*Booking, error)
	SeatsLeft(ctx context.Context, classID int) (*Seats, error)
	ListByClass(ctx context.Context, actor access.Actor, classID int) (*ClassListing, error)
	ListByUser(ctx context.Context, actor access.Actor, memberID int) ([]MemberBooking, error)

	// ApplyPatch updates a class and moves bookings between the seat set and
	// the waitlist so the booked count matches the new capacity.
	ApplyPatch(ctx context.Context, classID int, patch class.Patch) (*class.Session, error)
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *service) { s.notifier = n }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *service) { s.tracer = t }
}

type service struct {
	repo      Repository
	catalog   Catalog
	publisher events.Publisher
	notifier  Notifier
	tracer    trace.Tracer
	now       func() time.Time
}

func NewService(repo Repository, catalog Catalog, opts ...Option) Service {
	s := &service{
		repo:      repo,
		catalog:   catalog,
		publisher: events.Nop{},
		tracer:    otel.Tracer("fitclass/booking"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// change is a committed status transition, replayed as side effects.
type change struct {
	event   events.Type
	from    Status
	booking Booking
}

type outcome struct {
	class   class.Session
	changes []change
}

func (s *service) Create(ctx context.Context, actor access.Actor, classID, memberID int) (b *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.Int("class.id", classID),
		attribute.Int("member.id", memberID),
	))
	defer func() { endSpan(span, err) }()

	if !access.CanBook(actor, memberID) {
		return nil, ErrBookDenied
	}

	var out outcome
	err = s.repo.WithinClass(ctx, classID, func(ctx context.Context, tx Tx) error {
		c := tx.Class()
		if c.Started(s.now()) {
			return ErrClassStarted
		}

		active, err := tx.HasActive(ctx, memberID)
		if err != nil {
			return err
		}
		if active {
			return ErrAlreadyBooked
		}

		booked, err := tx.CountBooked(ctx)
		if err != nil {
			return err
		}
		status := StatusWaitlist
		if booked < c.Capacity {
			status = StatusBooked
		}

		created, err := tx.Insert(ctx, memberID, status)
		if err != nil {
			return err
		}
		b = created
		out.class = c
		out.changes = append(out.changes, change{event: events.BookingCreated, booking: *created})
		return nil
	})
	if err != nil {
		s.recordFailure("create", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.status", string(b.Status)))
	logger.Info("booking created", "booking_id", b.ID, "class_id", classID, "member_id", memberID, "status", b.Status)
	s.afterCommit(ctx, out)
	return b, nil
}

func (s *service) Cancel(ctx context.Context, actor access.Actor, bookingID int) (b *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Cancel", trace.WithAttributes(attribute.Int("booking.id", bookingID)))
	defer func() { endSpan(span, err) }()

	existing, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var out outcome
	err = s.repo.WithinClass(ctx, existing.ClassID, func(ctx context.Context, tx Tx) error {
		current, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		c := tx.Class()
		if !access.CanCancel(actor, current.MemberID, c.TrainerID) {
			return ErrCancelDenied
		}

		b = current
		if current.Status == StatusCancelled {
			return nil
		}

		was := current.Status
		if err := tx.SetStatus(ctx, current.ID, StatusCancelled); err != nil {
			return err
		}
		current.Status = StatusCancelled
		out.class = c
		out.changes = append(out.changes, change{event: events.BookingCancelled, from: was, booking: *current})

		if was == StatusBooked {
			return promote(ctx, tx, &out.changes)
		}
		return nil
	})
	if errors.Is(err, class.ErrClassNotFound) {
		err = ErrBookingNotFound
	}
	if err != nil {
		s.recordFailure("cancel", err)
		return nil, err
	}

	if len(out.changes) > 0 {
		logger.Info("booking cancelled", "booking_id", b.ID, "class_id", b.ClassID, "promoted", len(out.changes)-1)
	}
	s.afterCommit(ctx, out)
	return b, nil
}

func (s *service) ApplyPatch(ctx context.Context, classID int, patch class.Patch) (c *class.Session, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.ApplyPatch", trace.WithAttributes(attribute.Int("class.id", classID)))
	defer func() { endSpan(span, err) }()

	var out outcome
	err = s.repo.WithinClass(ctx, classID, func(ctx context.Context, tx Tx) error {
		updated, err := patch.Apply(tx.Class())
		if err != nil {
			return err
		}
		if err := tx.UpdateClass(ctx, updated); err != nil {
			return err
		}
		if err := demote(ctx, tx, &out.changes); err != nil {
			return err
		}
		if err := promote(ctx, tx, &out.changes); err != nil {
			return err
		}
		out.class = tx.Class()
		return nil
	})
	if err != nil {
		s.recordFailure("update_class", err)
		return nil, err
	}

	logger.Info("class updated", "class_id", classID, "capacity", out.class.Capacity, "moved", len(out.changes))
	s.afterCommit(ctx, out)
	return &out.class, nil
}

// promote fills free seats from the waitlist, oldest request first.
func promote(ctx context.Context, tx Tx, changes *[]change) error {
	capacity := tx.Class().Capacity
	for {
		booked, err := tx.CountBooked(ctx)
		if err != nil {
			return err
		}
		if booked >= capacity {
			return nil
		}

		next, err := tx.OldestWaitlisted(ctx)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		if err := tx.SetStatus(ctx, next.ID, StatusBooked); err != nil {
			return err
		}
		next.Status = StatusBooked
		*changes = append(*changes, change{event: events.BookingPromoted, from: StatusWaitlist, booking: *next})
	}
}

// demote moves the most recent seat holders back to the waitlist until the
// booked count fits the capacity. booked_at is kept, so a demoted booking
// re-enters the queue at its original request time.
func demote(ctx context.Context, tx Tx, changes *[]change) error {
	capacity := tx.Class().Capacity
	booked, err := tx.CountBooked(ctx)
	if err != nil {
		return err
	}

	for ; booked > capacity; booked-- {
		newest, err := tx.NewestBooked(ctx)
		if err != nil {
			return err
		}
		if newest == nil {
			return nil
		}

		if err := tx.SetStatus(ctx, newest.ID, StatusWaitlist); err != nil {
			return err
		}
		newest.Status = StatusWaitlist
		*changes = append(*changes, change{event: events.BookingDemoted, from: StatusBooked, booking: *newest})
	}
	return nil
}

func (s *service) SeatsLeft(ctx context.Context, classID int) (*Seats, error) {
	seats, err := s.repo.Seats(ctx, classID)
	if err != nil {
		return nil, err
	}
	seats.Left = max(0, seats.Capacity-seats.Booked)
	return seats, nil
}

func (s *service) ListByClass(ctx context.Context, actor access.Actor, classID int) (*ClassListing, error) {
	c, err := s.catalog.GetClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	if access.CanViewRoster(actor, c.TrainerID) {
		roster, err := s.repo.ListRoster(ctx, classID)
		if err != nil {
			return nil, err
		}
		return &ClassListing{ClassID: classID, Roster: roster}, nil
	}

	if access.CanViewSummary(actor) {
		summary, err := s.repo.Summary(ctx, classID, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, st := range []Status{StatusBooked, StatusWaitlist, StatusCancelled} {
			if _, ok := summary.Counts[st]; !ok {
				summary.Counts[st] = 0
			}
		}
		return &ClassListing{ClassID: classID, Summary: summary}, nil
	}

	return nil, ErrViewDenied
}

func (s *service) ListByUser(ctx context.Context, actor access.Actor, memberID int) ([]MemberBooking, error) {
	if !access.CanListMemberBookings(actor, memberID) {
		return nil, ErrListDenied
	}
	return s.repo.ListByMember(ctx, memberID)
}

// afterCommit runs best-effort side effects. Failures are logged only; the
// state change has already been committed.
func (s *service) afterCommit(ctx context.Context, out outcome) {
	if len(out.changes) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	now := s.now()
	evts := make([]events.Event, 0, len(out.changes))
	for _, ch := range out.changes {
		b := ch.booking
		evts = append(evts, events.New(ch.event, b.ClassID, b.ID, b.MemberID, string(b.Status), now))

		switch ch.event {
		case events.BookingCreated:
			metrics.RecordBooking(string(b.Status))
		case events.BookingCancelled:
			metrics.RecordBookingCancellation(string(ch.from))
		case events.BookingPromoted:
			metrics.RecordPromotion()
		case events.BookingDemoted:
			metrics.RecordDemotion()
		}

		if s.notifier == nil {
			continue
		}
		switch {
		case ch.event == events.BookingCreated && b.Status == StatusBooked,
			ch.event == events.BookingPromoted:
			s.notifier.SeatConfirmed(ctx, b, out.class)
		case ch.event == events.BookingCreated && b.Status == StatusWaitlist:
			s.notifier.Waitlisted(ctx, b, out.class)
		case ch.event == events.BookingDemoted:
			s.notifier.Demoted(ctx, b, out.class)
		}
	}

	if err := s.publisher.Publish(ctx, evts...); err != nil {
		logger.Warn("failed to publish booking events", "class_id", out.class.ID, "count", len(evts), "error", err)
	}
}

func (s *service) recordFailure(op string, err error) {
	if apperr.Retryable(err) {
		metrics.RecordStoreBusy(op)
		logger.Warn("store busy", "operation", op, "error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
