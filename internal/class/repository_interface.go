package class

import "context"

type Repository interface {
	CreateClass(ctx context.Context, s Session) (*Session, error)
	GetClassByID(ctx context.Context, id int) (*Session, error)
	ListClasses(ctx context.Context, filter ListFilter) ([]Session, error)
	DeleteClass(ctx context.Context, id int) error
}

// Updater writes a patched class together with any seat rebalancing the new
// capacity requires.
type Updater interface {
	ApplyPatch(ctx context.Context, classID int, patch Patch) (*Session, error)
}
