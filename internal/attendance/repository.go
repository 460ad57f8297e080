package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitclass/internal/booking"
	"fitclass/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewRepository(conn *sqlx.DB, timeout time.Duration) Repository {
	return &repository{db: conn, timeout: timeout}
}

func (r *repository) GetBookingRef(ctx context.Context, bookingID int) (*BookingRef, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT b.id AS booking_id, b.class_id, b.member_id, c.trainer_id, b.status
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.id = $1
	`

	var ref BookingRef
	err := r.db.GetContext(ctx, &ref, query, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, db.Classify("select booking ref", err)
	}
	return &ref, nil
}

// UpsertAttendance inserts from the booking row itself so the BOOKED check and
// the write are one statement; a concurrent cancel cannot slip in between.
func (r *repository) UpsertAttendance(ctx context.Context, bookingID int, present bool) (*Attendance, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO attendance (booking_id, present, checked_at)
		SELECT b.id, $2, NOW()
		FROM bookings b
		WHERE b.id = $1 AND b.status = 'BOOKED'
		ON CONFLICT (booking_id)
		DO UPDATE SET present = EXCLUDED.present, checked_at = EXCLUDED.checked_at
		RETURNING id, booking_id, present, checked_at
	`

	var a Attendance
	err := r.db.GetContext(ctx, &a, query, bookingID, present)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotConfirmed
	}
	if err != nil {
		return nil, db.Classify("upsert attendance", err)
	}
	return &a, nil
}

func (r *repository) ListAttendanceByClass(ctx context.Context, classID int) ([]ClassAttendance, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT a.id, a.booking_id, a.present, a.checked_at,
		       b.member_id, COALESCE(u.full_name, '') AS member_name
		FROM attendance a
		JOIN bookings b ON b.id = a.booking_id
		LEFT JOIN users u ON u.id = b.member_id
		WHERE b.class_id = $1
		ORDER BY a.checked_at DESC, a.id DESC
	`

	out := []ClassAttendance{}
	if err := r.db.SelectContext(ctx, &out, query, classID); err != nil {
		return nil, db.Classify("list class attendance", err)
	}
	return out, nil
}

func (r *repository) ListAttendanceByMember(ctx context.Context, memberID int) ([]MemberAttendance, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT a.id, a.booking_id, a.present, a.checked_at,
		       c.id AS class_id, c.name AS class_name, c.start_at
		FROM attendance a
		JOIN bookings b ON b.id = a.booking_id
		JOIN classes c ON c.id = b.class_id
		WHERE b.member_id = $1
		ORDER BY c.start_at DESC, a.id DESC
	`

	out := []MemberAttendance{}
	if err := r.db.SelectContext(ctx, &out, query, memberID); err != nil {
		return nil, db.Classify("list member attendance", err)
	}
	return out, nil
}

func (r *repository) DeleteAttendance(ctx context.Context, bookingID int) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE booking_id = $1`, bookingID)
	if err != nil {
		return db.Classify("delete attendance", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return db.Classify("delete attendance", err)
	}
	if n == 0 {
		return ErrAttendanceNotFound
	}
	return nil
}
