package memory

import (
	"context"
	"sort"

	"fitclass/internal/attendance"
	"fitclass/internal/booking"
)

func (s *Store) GetBookingRef(_ context.Context, bookingID int) (*attendance.BookingRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return &attendance.BookingRef{
		BookingID: b.ID,
		ClassID:   b.ClassID,
		MemberID:  b.MemberID,
		TrainerID: s.classes[b.ClassID].TrainerID,
		Status:    b.Status,
	}, nil
}

// UpsertAttendance checks the booking status and writes under the same lock
// that commits booking changes.
func (s *Store) UpsertAttendance(_ context.Context, bookingID int, present bool) (*attendance.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok || b.Status != booking.StatusBooked {
		return nil, attendance.ErrNotConfirmed
	}

	a, ok := s.attendance[bookingID]
	if !ok {
		s.nextAtt++
		a = attendance.Attendance{ID: s.nextAtt, BookingID: bookingID}
	}
	a.Present = present
	a.CheckedAt = s.stamp()
	s.attendance[bookingID] = a
	return &a, nil
}

func (s *Store) ListAttendanceByClass(_ context.Context, classID int) ([]attendance.ClassAttendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []attendance.ClassAttendance{}
	for bid, a := range s.attendance {
		b := s.bookings[bid]
		if b.ClassID != classID {
			continue
		}
		out = append(out, attendance.ClassAttendance{
			Attendance: a,
			MemberID:   b.MemberID,
			MemberName: s.members[b.MemberID].name,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckedAt.Equal(out[j].CheckedAt) {
			return out[i].CheckedAt.After(out[j].CheckedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) ListAttendanceByMember(_ context.Context, memberID int) ([]attendance.MemberAttendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []attendance.MemberAttendance{}
	for bid, a := range s.attendance {
		b := s.bookings[bid]
		if b.MemberID != memberID {
			continue
		}
		c := s.classes[b.ClassID]
		out = append(out, attendance.MemberAttendance{
			Attendance: a,
			ClassID:    c.ID,
			ClassName:  c.Name,
			StartAt:    c.StartAt,
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

func (s *Store) DeleteAttendance(_ context.Context, bookingID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attendance[bookingID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(s.attendance, bookingID)
	return nil
}
