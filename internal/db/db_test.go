package db

import (
	"context"
	"errors"
	"database/sql/driver"
	"fmt"
	"io"
	"net"
	"regexp"
	"testing"
	"time"

	"fitclass/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(sqlDB, "sqlmock")
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM classes WHERE id = $1)")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := Exists(context.Background(), db, "SELECT EXISTS(SELECT 1 FROM classes WHERE id = $1)", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestIsTransient(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "57014"} {
		assert.True(t, IsTransient(&pq.Error{Code: pq.ErrorCode(code)}), code)
	}
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("tx: %w", context.Canceled)))
	assert.False(t, IsTransient(&pq.Error{Code: "23505"}))
	assert.False(t, IsTransient(errors.New("bad connection")))
}

func TestClassify_ConnectionDrop(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"bad conn", driver.ErrBadConn},
		{"connection failure", &pq.Error{Code: "08006"}},
		{"connection does not exist", &pq.Error{Code: "08003"}},
		{"admin shutdown", &pq.Error{Code: "57P01"}},
		{"crash shutdown", &pq.Error{Code: "57P02"}},
		{"cannot connect now", &pq.Error{Code: "57P03"}},
		{"unexpected eof", io.ErrUnexpectedEOF},
		{"net op error", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}},
		{"wrapped bad conn", fmt.Errorf("query: %w", driver.ErrBadConn)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("lock class", tt.err)
			assert.True(t, errors.Is(err, apperr.ErrStoreBusy))
			assert.True(t, apperr.Retryable(err))
			assert.Equal(t, apperr.KindStoreBusy, apperr.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassify(t *testing.T) {
	domainErr := apperr.New(apperr.ErrConflict, "dup")
	assert.Same(t, domainErr, Classify("insert", domainErr))

	busy := Classify("lock class", &pq.Error{Code: "55P03"})
	assert.True(t, errors.Is(busy, apperr.ErrStoreBusy))
	assert.Contains(t, busy.Error(), "lock class")

	other := Classify("select", errors.New("bad connection"))
	assert.False(t, errors.Is(other, apperr.ErrStoreBusy))
	assert.Equal(t, "select: bad connection", other.Error())

	assert.NoError(t, Classify("noop", nil))
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	ctx2, cancel2 := WithTimeout(context.Background(), 0)
	defer cancel2()
	_, ok = ctx2.Deadline()
	assert.False(t, ok)
}
