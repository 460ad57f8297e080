// Package memory is an in-process store for classes, bookings and
// attendance. It backs STORE_DRIVER=memory and the engine tests.
//
// Each class has its own lock. A unit of work copies the class's bookings,
// mutates the copy and writes it back only when the work succeeds, so a failed
// or cancelled unit leaves no trace.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fitclass/internal/apperr"
	"fitclass/internal/attendance"
	"fitclass/internal/booking"
	"fitclass/internal/class"
)

type member struct {
	name  string
	email string
}

type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	timeout time.Duration

	lastStamp time.Time
	nextClass int
	nextBook  int
	nextAtt   int

	classes    map[int]class.Session
	bookings   map[int]booking.Booking
	attendance map[int]attendance.Attendance // keyed by booking id
	members    map[int]member
	locks      map[int]chan struct{}
}

type Option func(*Store)

// WithTimeout bounds every unit of work, lock wait included.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		timeout:    5 * time.Second,
		classes:    map[int]class.Session{},
		bookings:   map[int]booking.Booking{},
		attendance: map[int]attendance.Attendance{},
		members:    map[int]member{},
		locks:      map[int]chan struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddMember registers a directory entry used for roster names and e-mail.
func (s *Store) AddMember(id int, name, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[id] = member{name: name, email: email}
}

// stamp returns a strictly increasing time. Callers hold mu.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func ctxErr(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Busy(err)
	}
	return err
}

// lockClass takes the class's exclusive lock or gives up when ctx ends.
func (s *Store) lockClass(ctx context.Context, classID int) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[classID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[classID] = l
	}
	s.mu.Unlock()

	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, ctxErr(fmt.Sprintf("lock class %d", classID), ctx.Err())
	}
}

func (s *Store) CreateClass(_ context.Context, c class.Session) (*class.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextClass++
	c.ID = s.nextClass
	c.CreatedAt = s.now().UTC()
	s.classes[c.ID] = c
	return &c, nil
}

func (s *Store) GetClassByID(_ context.Context, id int) (*class.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, class.ErrClassNotFound
	}
	return &c, nil
}

func (s *Store) ListClasses(_ context.Context, filter class.ListFilter) ([]class.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []class.Session{}
	for _, c := range s.classes {
		if filter.TrainerID > 0 && c.TrainerID != filter.TrainerID {
			continue
		}
		if filter.StartsAfter != nil && c.StartAt.Before(*filter.StartsAfter) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteClass removes the class with its bookings and their attendance.
func (s *Store) DeleteClass(ctx context.Context, id int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.lockClass(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[id]; !ok {
		return class.ErrClassNotFound
	}
	delete(s.classes, id)
	for bid, b := range s.bookings {
		if b.ClassID == id {
			delete(s.bookings, bid)
			delete(s.attendance, bid)
		}
	}
	return nil
}
