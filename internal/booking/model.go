package booking

import (
	"time"

	"fitclass/internal/apperr"
)

type Status string

const (
	StatusBooked    Status = "BOOKED"
	StatusWaitlist  Status = "WAITLIST"
	StatusCancelled Status = "CANCELLED"
)

// Active reports whether the booking holds a seat or a waitlist place.
func (s Status) Active() bool {
	return s == StatusBooked || s == StatusWaitlist
}

// Rank orders rosters: BOOKED, then WAITLIST, then CANCELLED.
func (s Status) Rank() int {
	switch s {
	case StatusBooked:
		return 0
	case StatusWaitlist:
		return 1
	default:
		return 2
	}
}

var (
	ErrBookingNotFound = apperr.New(apperr.ErrNotFound, "booking not found")
	ErrClassStarted    = apperr.New(apperr.ErrInvalidState, "class already started")
	ErrAlreadyBooked   = apperr.New(apperr.ErrConflict, "member already has an active booking for this class")

	ErrBookDenied   = apperr.New(apperr.ErrPermissionDenied, "only an admin can book for another member")
	ErrCancelDenied = apperr.New(apperr.ErrPermissionDenied, "not allowed to cancel this booking")
	ErrViewDenied   = apperr.New(apperr.ErrPermissionDenied, "not allowed to view bookings for this class")
	ErrListDenied   = apperr.New(apperr.ErrPermissionDenied, "not allowed to list bookings for this member")
)

type Booking struct {
	ID       int       `db:"id" json:"id"`
	ClassID  int       `db:"class_id" json:"class_id"`
	MemberID int       `db:"member_id" json:"member_id"`
	Status   Status    `db:"status" json:"status"`
	BookedAt time.Time `db:"booked_at" json:"booked_at"`
}

type RosterEntry struct {
	Booking
	MemberName string `db:"member_name" json:"member_name"`
}

// Summary is what a member sees of a class they do not run.
type Summary struct {
	Counts   map[Status]int `json:"counts"`
	MyStatus *Status        `json:"my_status,omitempty"`
}

// ClassListing carries either a full roster or a summary, never both.
type ClassListing struct {
	ClassID int           `json:"class_id"`
	Roster  []RosterEntry `json:"roster"`
	Summary *Summary      `json:"summary,omitempty"`
}

type MemberBooking struct {
	Booking
	ClassName string    `db:"class_name" json:"class_name"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
	EndAt     time.Time `db:"end_at" json:"end_at"`
	Room      *string   `db:"room" json:"room,omitempty"`
}

type Seats struct {
	ClassID  int `db:"class_id" json:"class_id"`
	Capacity int `db:"capacity" json:"capacity"`
	Booked   int `db:"booked" json:"booked"`
	Left     int `db:"-" json:"left"`
}

type CreateRequest struct {
	MemberID int `json:"member_id" binding:"omitempty,gt=0"`
}
