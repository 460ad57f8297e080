// Package access holds the role vocabulary and the capability checks that gate
// every catalog, booking and attendance operation. The checks are pure
// functions over the actor and the ownership fields of the resource.
package access

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	Admin   Role = "ADMIN"
	Trainer Role = "TRAINER"
	Member  Role = "MEMBER"
)

var ErrUnknownRole = errors.New("unknown role")

var allRoles = []Role{Admin, Trainer, Member}

func (r Role) bit() Roles {
	switch r {
	case Admin:
		return 1 << 0
	case Trainer:
		return 1 << 1
	case Member:
		return 1 << 2
	default:
		return 0
	}
}

// ParseRole accepts a role token, case-insensitively.
func ParseRole(token string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(token)))
	if r.bit() == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, token)
	}
	return r, nil
}

// Roles is a set of roles.
type Roles uint8

func NewRoles(roles ...Role) Roles {
	var set Roles
	for _, r := range roles {
		set |= r.bit()
	}
	return set
}

// ParseRoles builds a set from role tokens. Unknown tokens are rejected.
func ParseRoles(tokens []string) (Roles, error) {
	var set Roles
	for _, t := range tokens {
		r, err := ParseRole(t)
		if err != nil {
			return 0, err
		}
		set |= r.bit()
	}
	return set, nil
}

func (s Roles) Has(r Role) bool {
	b := r.bit()
	return b != 0 && s&b == b
}

func (s Roles) Empty() bool { return s == 0 }

// Strings returns the uppercase tokens in a stable order.
func (s Roles) Strings() []string {
	out := make([]string, 0, len(allRoles))
	for _, r := range allRoles {
		if s.Has(r) {
			out = append(out, string(r))
		}
	}
	return out
}

// Actor is the caller of an operation.
type Actor struct {
	ID    int
	Roles Roles
}

func (a Actor) IsAdmin() bool   { return a.Roles.Has(Admin) }
func (a Actor) IsTrainer() bool { return a.Roles.Has(Trainer) }
func (a Actor) IsMember() bool  { return a.Roles.Has(Member) }

func (a Actor) owns(trainerID int) bool {
	return a.IsTrainer() && a.ID == trainerID
}

func (a Actor) is(memberID int) bool {
	return a.IsMember() && a.ID == memberID
}

// CanBook: admins book for anyone, members only for themselves. Trainers do
// not book on behalf of members.
func CanBook(a Actor, memberID int) bool {
	return a.IsAdmin() || a.is(memberID)
}

func CanCancel(a Actor, bookingMemberID, classTrainerID int) bool {
	return a.IsAdmin() || a.is(bookingMemberID) || a.owns(classTrainerID)
}

func CanViewRoster(a Actor, classTrainerID int) bool {
	return a.IsAdmin() || a.owns(classTrainerID)
}

func CanViewSummary(a Actor) bool {
	return a.IsMember()
}

func CanListMemberBookings(a Actor, memberID int) bool {
	return a.IsAdmin() || a.is(memberID)
}

func CanListClasses(a Actor) bool {
	return !a.Roles.Empty()
}

// CanCreateClass: trainers may only create classes they lead.
func CanCreateClass(a Actor, trainerID int) bool {
	return a.IsAdmin() || a.owns(trainerID)
}

func CanManageClass(a Actor, classTrainerID int) bool {
	return a.IsAdmin() || a.owns(classTrainerID)
}

func CanMarkAttendance(a Actor, classTrainerID int) bool {
	return a.IsAdmin() || a.owns(classTrainerID)
}

func CanViewClassAttendance(a Actor, classTrainerID int) bool {
	return a.IsAdmin() || a.owns(classTrainerID)
}

func CanListMemberAttendance(a Actor, memberID int) bool {
	return a.IsAdmin() || a.is(memberID)
}

func CanDeleteAttendance(a Actor) bool {
	return a.IsAdmin()
}
