package attendance

import (
	"context"

	"fitclass/internal/class"
)

type Repository interface {
	// GetBookingRef returns booking.ErrBookingNotFound for an unknown booking.
	GetBookingRef(ctx context.Context, bookingID int) (*BookingRef, error)
	// UpsertAttendance writes only while the booking is BOOKED, as one atomic
	// step, and returns ErrNotConfirmed otherwise.
	UpsertAttendance(ctx context.Context, bookingID int, present bool) (*Attendance, error)
	ListAttendanceByClass(ctx context.Context, classID int) ([]ClassAttendance, error)
	ListAttendanceByMember(ctx context.Context, memberID int) ([]MemberAttendance, error)
	DeleteAttendance(ctx context.Context, bookingID int) error
}

type Catalog interface {
	GetClassByID(ctx context.Context, id int) (*class.Session, error)
}
