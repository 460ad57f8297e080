package class

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclass/internal/db"

	"github.com/jmoiron/sqlx"
)

const classColumns = `id, gym_id, trainer_id, name, start_at, end_at, capacity, room, created_at`

type repository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewRepository(conn *sqlx.DB, timeout time.Duration) Repository {
	return &repository{db: conn, timeout: timeout}
}

func (r *repository) CreateClass(ctx context.Context, s Session) (*Session, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO classes (gym_id, trainer_id, name, start_at, end_at, capacity, room)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + classColumns

	var created Session
	err := r.db.GetContext(ctx, &created, query,
		s.GymID, s.TrainerID, s.Name, s.StartAt, s.EndAt, s.Capacity, s.Room)
	if err != nil {
		return nil, db.Classify("insert class", err)
	}
	return &created, nil
}

func (r *repository) GetClassByID(ctx context.Context, id int) (*Session, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`

	var s Session
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, db.Classify("select class", err)
	}
	return &s, nil
}

func (r *repository) ListClasses(ctx context.Context, filter ListFilter) ([]Session, error) {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + classColumns + ` FROM classes WHERE 1=1`
	args := []interface{}{}

	if filter.TrainerID > 0 {
		args = append(args, filter.TrainerID)
		query += fmt.Sprintf(" AND trainer_id = $%d", len(args))
	}
	if filter.StartsAfter != nil {
		args = append(args, *filter.StartsAfter)
		query += fmt.Sprintf(" AND start_at >= $%d", len(args))
	}

	query += " ORDER BY start_at ASC, id ASC"

	classes := []Session{}
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, db.Classify("list classes", err)
	}
	return classes, nil
}

func (r *repository) DeleteClass(ctx context.Context, id int) error {
	ctx, cancel := db.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return db.Classify("delete class", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}
