package memory

import (
	"context"
	"sort"

	"fitclass/internal/booking"
	"fitclass/internal/class"
)

func (s *Store) WithinClass(ctx context.Context, classID int, fn func(ctx context.Context, tx booking.Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.lockClass(ctx, classID)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.RLock()
	c, ok := s.classes[classID]
	staged := make(map[int]booking.Booking)
	for id, b := range s.bookings {
		if b.ClassID == classID {
			staged[id] = b
		}
	}
	s.mu.RUnlock()
	if !ok {
		return class.ErrClassNotFound
	}

	tx := &memTx{store: s, class: c, bookings: staged, dirty: map[int]bool{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return ctxErr("commit", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range tx.dirty {
		s.bookings[id] = tx.bookings[id]
	}
	if tx.classDirty {
		s.classes[classID] = tx.class
	}
	return nil
}

func (s *Store) GetBookingByID(_ context.Context, id int) (*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return &b, nil
}

func (s *Store) Seats(_ context.Context, classID int) (*booking.Seats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classes[classID]
	if !ok {
		return nil, class.ErrClassNotFound
	}
	seats := &booking.Seats{ClassID: classID, Capacity: c.Capacity}
	for _, b := range s.bookings {
		if b.ClassID == classID && b.Status == booking.StatusBooked {
			seats.Booked++
		}
	}
	return seats, nil
}

func (s *Store) Summary(_ context.Context, classID, memberID int) (*booking.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &booking.Summary{Counts: map[booking.Status]int{}}
	var latest *booking.Booking
	for _, b := range s.bookings {
		if b.ClassID != classID {
			continue
		}
		summary.Counts[b.Status]++
		if b.MemberID == memberID && (latest == nil || newer(b, *latest)) {
			b := b
			latest = &b
		}
	}
	if latest != nil {
		st := latest.Status
		summary.MyStatus = &st
	}
	return summary, nil
}

func (s *Store) ListRoster(_ context.Context, classID int) ([]booking.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster := []booking.RosterEntry{}
	for _, b := range s.bookings {
		if b.ClassID == classID {
			roster = append(roster, booking.RosterEntry{Booking: b, MemberName: s.members[b.MemberID].name})
		}
	}
	sort.Slice(roster, func(i, j int) bool {
		a, b := roster[i].Booking, roster[j].Booking
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		return older(a, b)
	})
	return roster, nil
}

func (s *Store) ListByMember(_ context.Context, memberID int) ([]booking.MemberBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []booking.MemberBooking{}
	for _, b := range s.bookings {
		if b.MemberID != memberID {
			continue
		}
		c := s.classes[b.ClassID]
		out = append(out, booking.MemberBooking{
			Booking:   b,
			ClassName: c.Name,
			StartAt:   c.StartAt,
			EndAt:     c.EndAt,
			Room:      c.Room,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.After(out[j].StartAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// older orders by (booked_at, id) ascending.
func older(a, b booking.Booking) bool {
	if !a.BookedAt.Equal(b.BookedAt) {
		return a.BookedAt.Before(b.BookedAt)
	}
	return a.ID < b.ID
}

func newer(a, b booking.Booking) bool {
	return older(b, a)
}

type memTx struct {
	store      *Store
	class      class.Session
	classDirty bool
	bookings   map[int]booking.Booking
	dirty      map[int]bool
}

func (t *memTx) Class() class.Session { return t.class }

func (t *memTx) UpdateClass(_ context.Context, c class.Session) error {
	c.ID = t.class.ID
	c.GymID = t.class.GymID
	c.TrainerID = t.class.TrainerID
	c.CreatedAt = t.class.CreatedAt
	t.class = c
	t.classDirty = true
	return nil
}

func (t *memTx) CountBooked(context.Context) (int, error) {
	n := 0
	for _, b := range t.bookings {
		if b.Status == booking.StatusBooked {
			n++
		}
	}
	return n, nil
}

func (t *memTx) HasActive(_ context.Context, memberID int) (bool, error) {
	for _, b := range t.bookings {
		if b.MemberID == memberID && b.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) Insert(ctx context.Context, memberID int, status booking.Status) (*booking.Booking, error) {
	if active, _ := t.HasActive(ctx, memberID); active {
		return nil, booking.ErrAlreadyBooked
	}

	t.store.mu.Lock()
	t.store.nextBook++
	b := booking.Booking{
		ID:       t.store.nextBook,
		ClassID:  t.class.ID,
		MemberID: memberID,
		Status:   status,
		BookedAt: t.store.stamp(),
	}
	t.store.mu.Unlock()

	t.bookings[b.ID] = b
	t.dirty[b.ID] = true
	return &b, nil
}

func (t *memTx) GetBooking(_ context.Context, id int) (*booking.Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return &b, nil
}

func (t *memTx) SetStatus(_ context.Context, id int, status booking.Status) error {
	b, ok := t.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	b.Status = status
	t.bookings[id] = b
	t.dirty[id] = true
	return nil
}

func (t *memTx) OldestWaitlisted(context.Context) (*booking.Booking, error) {
	var head *booking.Booking
	for _, b := range t.bookings {
		if b.Status == booking.StatusWaitlist && (head == nil || older(b, *head)) {
			b := b
			head = &b
		}
	}
	return head, nil
}

func (t *memTx) NewestBooked(context.Context) (*booking.Booking, error) {
	var head *booking.Booking
	for _, b := range t.bookings {
		if b.Status == booking.StatusBooked && (head == nil || newer(b, *head)) {
			b := b
			head = &b
		}
	}
	return head, nil
}
