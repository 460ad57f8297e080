package booking

import (
	"context"

	"fitclass/internal/class"
)

// Repository is the durable booking state. Writes only happen through
// WithinClass; the remaining methods are single-statement reads.
type Repository interface {
	// WithinClass runs fn while holding the class's exclusive lock. Writes
	// made through tx are committed only if fn returns nil. A missing class
	// yields class.ErrClassNotFound; a lock that cannot be taken in time
	// yields apperr.ErrStoreBusy.
	WithinClass(ctx context.Context, classID int, fn func(ctx context.Context, tx Tx) error) error

	GetBookingByID(ctx context.Context, id int) (*Booking, error)
	Seats(ctx context.Context, classID int) (*Seats, error)
	// Summary returns status counts for the class and memberID's latest
	// booking status in it.
	Summary(ctx context.Context, classID, memberID int) (*Summary, error)
	ListRoster(ctx context.Context, classID int) ([]RosterEntry, error)
	ListByMember(ctx context.Context, memberID int) ([]MemberBooking, error)
}

// Tx is a unit of work scoped to one locked class.
type Tx interface {
	Class() class.Session
	UpdateClass(ctx context.Context, s class.Session) error

	CountBooked(ctx context.Context) (int, error)
	HasActive(ctx context.Context, memberID int) (bool, error)
	Insert(ctx context.Context, memberID int, status Status) (*Booking, error)
	GetBooking(ctx context.Context, id int) (*Booking, error)
	SetStatus(ctx context.Context, id int, status Status) error
	// OldestWaitlisted and NewestBooked return nil when there is no match.
	OldestWaitlisted(ctx context.Context) (*Booking, error)
	NewestBooked(ctx context.Context) (*Booking, error)
}

type Catalog interface {
	GetClassByID(ctx context.Context, id int) (*class.Session, error)
}

// Notifier tells members about seat changes. Calls happen after commit and
// failures are not reported back.
type Notifier interface {
	SeatConfirmed(ctx context.Context, b Booking, c class.Session)
	Waitlisted(ctx context.Context, b Booking, c class.Session)
	Demoted(ctx context.Context, b Booking, c class.Session)
}
