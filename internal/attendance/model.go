package attendance

import (
	"time"

	"fitclass/internal/apperr"
	"fitclass/internal/booking"
)

var (
	ErrNotConfirmed       = apperr.New(apperr.ErrInvalidState, "attendance requires a BOOKED booking")
	ErrAttendanceNotFound = apperr.New(apperr.ErrNotFound, "attendance not found")

	ErrMarkDenied   = apperr.New(apperr.ErrPermissionDenied, "only an admin or the class trainer can mark attendance")
	ErrViewDenied   = apperr.New(apperr.ErrPermissionDenied, "not allowed to view attendance")
	ErrDeleteDenied = apperr.New(apperr.ErrPermissionDenied, "only an admin can delete attendance")
)

type Attendance struct {
	ID        int       `db:"id" json:"id"`
	BookingID int       `db:"booking_id" json:"booking_id"`
	Present   bool      `db:"present" json:"present"`
	CheckedAt time.Time `db:"checked_at" json:"checked_at"`
}

// BookingRef is the booking and class ownership an attendance check needs.
type BookingRef struct {
	BookingID int            `db:"booking_id"`
	ClassID   int            `db:"class_id"`
	MemberID  int            `db:"member_id"`
	TrainerID int            `db:"trainer_id"`
	Status    booking.Status `db:"status"`
}

type ClassAttendance struct {
	Attendance
	MemberID   int    `db:"member_id" json:"member_id"`
	MemberName string `db:"member_name" json:"member_name"`
}

type MemberAttendance struct {
	Attendance
	ClassID   int       `db:"class_id" json:"class_id"`
	ClassName string    `db:"class_name" json:"class_name"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
}

type MarkRequest struct {
	Present *bool `json:"present" binding:"required"`
}
