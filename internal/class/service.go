package class

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitclass/internal/access"
	"fitclass/internal/apperr"
)

var (
	ErrCreateDenied = apperr.New(apperr.ErrPermissionDenied, "not allowed to create a class for this trainer")
	ErrManageDenied = apperr.New(apperr.ErrPermissionDenied, "only an admin or the owning trainer can change this class")
	ErrListDenied   = apperr.New(apperr.ErrPermissionDenied, "a role is required to list classes")
)

type Service interface {
	Create(ctx context.Context, actor access.Actor, req CreateRequest) (*Session, error)
	Get(ctx context.Context, id int) (*Session, error)
	List(ctx context.Context, actor access.Actor, includePast bool) ([]Session, error)
	Update(ctx context.Context, actor access.Actor, id int, patch Patch) (*Session, error)
	Delete(ctx context.Context, actor access.Actor, id int) error
}

type Option func(*service)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	repo    Repository
	updater Updater
	now     func() time.Time
}

func NewService(repo Repository, updater Updater, opts ...Option) Service {
	s := &service{
		repo:    repo,
		updater: updater,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, actor access.Actor, req CreateRequest) (*Session, error) {
	if req.TrainerID == 0 && actor.IsTrainer() && !actor.IsAdmin() {
		req.TrainerID = actor.ID
	}
	if !access.CanCreateClass(actor, req.TrainerID) {
		return nil, ErrCreateDenied
	}

	session, err := Normalize(req.Session())
	if err != nil {
		return nil, err
	}
	return s.repo.CreateClass(ctx, session)
}

func (s *service) Get(ctx context.Context, id int) (*Session, error) {
	return s.repo.GetClassByID(ctx, id)
}

// List scopes by role: admins see every class, trainers the classes they
// lead, members only classes that have not started yet.
func (s *service) List(ctx context.Context, actor access.Actor, includePast bool) ([]Session, error) {
	if !access.CanListClasses(actor) {
		return nil, ErrListDenied
	}

	var filter ListFilter
	now := s.now()
	switch {
	case actor.IsAdmin():
	case actor.IsTrainer():
		filter.TrainerID = actor.ID
	default:
		includePast = false
	}
	if !includePast {
		filter.StartsAfter = &now
	}
	return s.repo.ListClasses(ctx, filter)
}

func (s *service) Update(ctx context.Context, actor access.Actor, id int, patch Patch) (*Session, error) {
	current, err := s.repo.GetClassByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageClass(actor, current.TrainerID) {
		return nil, ErrManageDenied
	}
	if _, err := patch.Apply(*current); err != nil {
		return nil, err
	}

	updated, err := s.updater.ApplyPatch(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update class %d: %w", id, err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor access.Actor, id int) error {
	current, err := s.repo.GetClassByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanManageClass(actor, current.TrainerID) {
		return ErrManageDenied
	}
	if err := s.repo.DeleteClass(ctx, id); err != nil && !errors.Is(err, ErrClassNotFound) {
		return err
	}
	return nil
}
