// Package notify turns committed seat changes into member e-mails.
package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitclass/internal/apperr"
	"fitclass/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrUnknownMember = apperr.New(apperr.ErrNotFound, "member not found in directory")

type Contact struct {
	MemberID int    `db:"id"`
	Name     string `db:"full_name"`
	Email    string `db:"email"`
}

// Directory resolves member contact details owned by the user service.
type Directory interface {
	Contact(ctx context.Context, memberID int) (*Contact, error)
}

type sqlDirectory struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewDirectory(conn *sqlx.DB, timeout time.Duration) Directory {
	return &sqlDirectory{db: conn, timeout: timeout}
}

func (d *sqlDirectory) Contact(ctx context.Context, memberID int) (*Contact, error) {
	ctx, cancel := db.WithTimeout(ctx, d.timeout)
	defer cancel()

	var c Contact
	err := d.db.GetContext(ctx, &c, `SELECT id, full_name, email FROM users WHERE id = $1`, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownMember
	}
	if err != nil {
		return nil, db.Classify("select contact", err)
	}
	return &c, nil
}
