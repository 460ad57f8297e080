package class

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"fitclass/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	ErrClassNotFound = apperr.New(apperr.ErrNotFound, "class not found")
	ErrInvalidClass  = apperr.New(apperr.ErrInvalidArgument, "invalid class")
	ErrEmptyPatch    = apperr.New(apperr.ErrInvalidArgument, "no fields to update")
)

// Session is a scheduled, capacity-limited class led by one trainer.
type Session struct {
	ID        int       `db:"id" json:"id"`
	GymID     int       `db:"gym_id" json:"gym_id" validate:"gt=0"`
	TrainerID int       `db:"trainer_id" json:"trainer_id" validate:"gt=0"`
	Name      string    `db:"name" json:"name" validate:"required,max=120"`
	StartAt   time.Time `db:"start_at" json:"start_at" validate:"required"`
	EndAt     time.Time `db:"end_at" json:"end_at" validate:"required,gtfield=StartAt"`
	Capacity  int       `db:"capacity" json:"capacity" validate:"gt=0"`
	Room      *string   `db:"room" json:"room,omitempty" validate:"omitempty,max=60"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Started reports whether the class can no longer be booked at now.
func (s Session) Started(now time.Time) bool {
	return !s.StartAt.After(now)
}

type CreateRequest struct {
	GymID     int       `json:"gym_id" binding:"required,gt=0"`
	TrainerID int       `json:"trainer_id"`
	Name      string    `json:"name" binding:"required"`
	StartAt   time.Time `json:"start_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required"`
	Capacity  int       `json:"capacity" binding:"required,min=1"`
	Room      *string   `json:"room,omitempty"`
}

func (r CreateRequest) Session() Session {
	return Session{
		GymID:     r.GymID,
		TrainerID: r.TrainerID,
		Name:      r.Name,
		StartAt:   r.StartAt,
		EndAt:     r.EndAt,
		Capacity:  r.Capacity,
		Room:      r.Room,
	}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string    `json:"name,omitempty"`
	StartAt  *time.Time `json:"start_at,omitempty"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	Capacity *int       `json:"capacity,omitempty"`
	Room     *string    `json:"room,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.StartAt == nil && p.EndAt == nil && p.Capacity == nil && p.Room == nil
}

// Apply merges p into s and validates the result.
func (p Patch) Apply(s Session) (Session, error) {
	if p.IsEmpty() {
		return s, ErrEmptyPatch
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.StartAt != nil {
		s.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		s.EndAt = *p.EndAt
	}
	if p.Capacity != nil {
		s.Capacity = *p.Capacity
	}
	if p.Room != nil {
		room := strings.TrimSpace(*p.Room)
		if room == "" {
			s.Room = nil
		} else {
			s.Room = &room
		}
	}
	return Normalize(s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims text fields and checks the session invariants.
func Normalize(s Session) (Session, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Room != nil {
		room := strings.TrimSpace(*s.Room)
		s.Room = &room
		if room == "" {
			s.Room = nil
		}
	}

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return s, fmt.Errorf("%w: %s", ErrInvalidClass, describe(verrs[0]))
		}
		return s, fmt.Errorf("%w: %v", ErrInvalidClass, err)
	}
	return s, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "gtfield":
		return fe.Field() + " must be after start_at"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

// ListFilter narrows ListClasses. Zero values mean no restriction.
type ListFilter struct {
	TrainerID   int
	StartsAfter *time.Time
}
