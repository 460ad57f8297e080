package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = Actor{ID: 1, Roles: NewRoles(Admin)}
	trainer = Actor{ID: 2, Roles: NewRoles(Trainer)}
	member  = Actor{ID: 3, Roles: NewRoles(Member)}
	nobody  = Actor{ID: 4}
)

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles([]string{"ADMIN", " member "})
	require.NoError(t, err)

	assert.True(t, roles.Has(Admin))
	assert.True(t, roles.Has(Member))
	assert.False(t, roles.Has(Trainer))
	assert.Equal(t, []string{"ADMIN", "MEMBER"}, roles.Strings())
}

func TestParseRoles_Unknown(t *testing.T) {
	_, err := ParseRoles([]string{"MEMBER", "OWNER"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRole))
}

func TestRoles_HasUnknownRole(t *testing.T) {
	all := NewRoles(Admin, Trainer, Member)
	assert.False(t, all.Has(Role("OWNER")))
	assert.True(t, Roles(0).Empty())
}

func TestCanBook(t *testing.T) {
	assert.True(t, CanBook(admin, 99))
	assert.True(t, CanBook(member, member.ID))
	assert.False(t, CanBook(member, 99))
	assert.False(t, CanBook(trainer, 99))
	// a trainer may not book itself without the MEMBER role
	assert.False(t, CanBook(trainer, trainer.ID))

	trainerMember := Actor{ID: 5, Roles: NewRoles(Trainer, Member)}
	assert.True(t, CanBook(trainerMember, 5))
	assert.False(t, CanBook(trainerMember, 6))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(admin, 10, 20))
	assert.True(t, CanCancel(member, member.ID, 20))
	assert.False(t, CanCancel(member, 10, 20))
	assert.True(t, CanCancel(trainer, 10, trainer.ID))
	assert.False(t, CanCancel(trainer, 10, 20))
	assert.False(t, CanCancel(nobody, nobody.ID, nobody.ID))
}

func TestClassOwnershipChecks(t *testing.T) {
	checks := map[string]func(Actor, int) bool{
		"roster":     CanViewRoster,
		"manage":     CanManageClass,
		"create":     CanCreateClass,
		"attendance": CanMarkAttendance,
		"view":       CanViewClassAttendance,
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			assert.True(t, check(admin, 77))
			assert.True(t, check(trainer, trainer.ID))
			assert.False(t, check(trainer, 77))
			assert.False(t, check(member, member.ID))
		})
	}
}

func TestMemberScopedChecks(t *testing.T) {
	assert.True(t, CanListMemberBookings(admin, 42))
	assert.True(t, CanListMemberBookings(member, member.ID))
	assert.False(t, CanListMemberBookings(member, 42))
	assert.False(t, CanListMemberBookings(trainer, trainer.ID))

	assert.True(t, CanListMemberAttendance(member, member.ID))
	assert.False(t, CanListMemberAttendance(trainer, 42))
}

func TestMiscChecks(t *testing.T) {
	assert.True(t, CanViewSummary(member))
	assert.False(t, CanViewSummary(trainer))

	assert.True(t, CanListClasses(member))
	assert.False(t, CanListClasses(nobody))

	assert.True(t, CanDeleteAttendance(admin))
	assert.False(t, CanDeleteAttendance(trainer))
}
