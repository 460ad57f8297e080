package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclass/internal/class"
	"fitclass/internal/db"

	"github.com/jmoiron/sqlx"
)

const (
	bookingColumns = `id, class_id, member_id, status, booked_at`
	classColumns   = `id, gym_id, trainer_id, name, start_at, end_at, capacity, room, created_at`
)

type repository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewRepository returns the Postgres store. timeout bounds every call and is
// also used as the lock_timeout of class units of work.
func NewRepository(conn *sqlx.DB, timeout time.Duration) Repository {
	return &repository{db: conn, timeout: timeout}
}

func (r *repository) WithinClass(ctx context.Context, classID int, fn func(ctx context.Context, tx Tx) error) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return db.Classify("begin", err)
	}
	defer tx.Rollback()

	if r.timeout > 0 {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.timeout.Milliseconds())); err != nil {
			return db.Classify("set lock_timeout", err)
		}
	}

	var locked class.Session
	err = tx.GetContext(ctx, &locked, `SELECT `+classColumns+` FROM classes WHERE id = $1 FOR UPDATE`, classID)
	if errors.Is(err, sql.ErrNoRows) {
		return class.ErrClassNotFound
	}
	if err != nil {
		return db.Classify("lock class", err)
	}

	if err := fn(ctx, &pgTx{tx: tx, class: locked}); err != nil {
		return db.Classify("class unit of work", err)
	}

	if err := tx.Commit(); err != nil {
		return db.Classify("commit", err)
	}
	return nil
}

func (r *repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, db.Classify("select booking", err)
	}
	return &b, nil
}

func (r *repository) Seats(ctx context.Context, classID int) (*Seats, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT c.id AS class_id,
		       c.capacity,
		       COUNT(b.id) FILTER (WHERE b.status = 'BOOKED') AS booked
		FROM classes c
		LEFT JOIN bookings b ON b.class_id = c.id
		WHERE c.id = $1
		GROUP BY c.id, c.capacity
	`

	var seats Seats
	err := r.db.GetContext(ctx, &seats, query, classID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, class.ErrClassNotFound
	}
	if err != nil {
		return nil, db.Classify("select seats", err)
	}
	return &seats, nil
}

func (r *repository) Summary(ctx context.Context, classID, memberID int) (*Summary, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT status,
		       COUNT(*) AS n,
		       (SELECT m.status FROM bookings m
		         WHERE m.class_id = $1 AND m.member_id = $2
		         ORDER BY m.booked_at DESC, m.id DESC
		         LIMIT 1) AS mine
		FROM bookings
		WHERE class_id = $1
		GROUP BY status
	`

	var rows []struct {
		Status Status         `db:"status"`
		N      int            `db:"n"`
		Mine   sql.NullString `db:"mine"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, classID, memberID); err != nil {
		return nil, db.Classify("select summary", err)
	}

	summary := &Summary{Counts: map[Status]int{}}
	for _, row := range rows {
		summary.Counts[row.Status] = row.N
		if row.Mine.Valid && summary.MyStatus == nil {
			mine := Status(row.Mine.String)
			summary.MyStatus = &mine
		}
	}
	return summary, nil
}

func (r *repository) ListRoster(ctx context.Context, classID int) ([]RosterEntry, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT b.id, b.class_id, b.member_id, b.status, b.booked_at,
		       COALESCE(u.full_name, '') AS member_name
		FROM bookings b
		LEFT JOIN users u ON u.id = b.member_id
		WHERE b.class_id = $1
		ORDER BY CASE b.status WHEN 'BOOKED' THEN 0 WHEN 'WAITLIST' THEN 1 ELSE 2 END,
		         b.booked_at ASC, b.id ASC
	`

	roster := []RosterEntry{}
	if err := r.db.SelectContext(ctx, &roster, query, classID); err != nil {
		return nil, db.Classify("select roster", err)
	}
	return roster, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]MemberBooking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT b.id, b.class_id, b.member_id, b.status, b.booked_at,
		       c.name AS class_name, c.start_at, c.end_at, c.room
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.member_id = $1
		ORDER BY c.start_at DESC, b.id DESC
	`

	bookings := []MemberBooking{}
	if err := r.db.SelectContext(ctx, &bookings, query, memberID); err != nil {
		return nil, db.Classify("select member bookings", err)
	}
	return bookings, nil
}

type pgTx struct {
	tx    *sqlx.Tx
	class class.Session
}

func (t *pgTx) Class() class.Session { return t.class }

func (t *pgTx) UpdateClass(ctx context.Context, s class.Session) error {
	query := `
		UPDATE classes
		SET name = $2, start_at = $3, end_at = $4, capacity = $5, room = $6
		WHERE id = $1
	`
	if _, err := t.tx.ExecContext(ctx, query, t.class.ID, s.Name, s.StartAt, s.EndAt, s.Capacity, s.Room); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	s.ID = t.class.ID
	s.GymID = t.class.GymID
	s.TrainerID = t.class.TrainerID
	s.CreatedAt = t.class.CreatedAt
	t.class = s
	return nil
}

func (t *pgTx) CountBooked(ctx context.Context) (int, error) {
	var n int
	err := t.tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM bookings WHERE class_id = $1 AND status = 'BOOKED'`, t.class.ID)
	if err != nil {
		return 0, fmt.Errorf("count booked: %w", err)
	}
	return n, nil
}

func (t *pgTx) HasActive(ctx context.Context, memberID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE class_id = $1 AND member_id = $2 AND status IN ('BOOKED', 'WAITLIST'))`
	ok, err := db.Exists(ctx, t.tx, query, t.class.ID, memberID)
	if err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return ok, nil
}

// Insert relies on booked_at defaulting to clock_timestamp() so bookings made
// in the same transaction still get distinct, increasing times.
func (t *pgTx) Insert(ctx context.Context, memberID int, status Status) (*Booking, error) {
	query := `
		INSERT INTO bookings (class_id, member_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + bookingColumns

	var b Booking
	err := t.tx.GetContext(ctx, &b, query, t.class.ID, memberID, status)
	if db.IsUniqueViolation(err) {
		return nil, ErrAlreadyBooked
	}
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return &b, nil
}

func (t *pgTx) GetBooking(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	err := t.tx.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND class_id = $2`, id, t.class.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select booking: %w", err)
	}
	return &b, nil
}

func (t *pgTx) SetStatus(ctx context.Context, id int, status Status) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE bookings SET status = $2 WHERE id = $1 AND class_id = $3`, id, status, t.class.ID)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (t *pgTx) OldestWaitlisted(ctx context.Context) (*Booking, error) {
	return t.first(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE class_id = $1 AND status = 'WAITLIST'
		ORDER BY booked_at ASC, id ASC
		LIMIT 1`)
}

func (t *pgTx) NewestBooked(ctx context.Context) (*Booking, error) {
	return t.first(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE class_id = $1 AND status = 'BOOKED'
		ORDER BY booked_at DESC, id DESC
		LIMIT 1`)
}

func (t *pgTx) first(ctx context.Context, query string) (*Booking, error) {
	var b Booking
	err := t.tx.GetContext(ctx, &b, query, t.class.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select queue head: %w", err)
	}
	return &b, nil
}
