package memory

import (
	"context"
	"fmt"
	"os"

	"fitclass/internal/notify"

	"gopkg.in/yaml.v3"
)

func (s *Store) Contact(_ context.Context, memberID int) (*notify.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberID]
	if !ok {
		return nil, notify.ErrUnknownMember
	}
	return &notify.Contact{MemberID: memberID, Name: m.name, Email: m.email}, nil
}

type memberSeed struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// LoadMembers reads a YAML list of {id, name, email} entries into the
// directory and returns how many were added.
func (s *Store) LoadMembers(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read members file: %w", err)
	}

	var seeds []memberSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return 0, fmt.Errorf("failed to parse members file: %w", err)
	}

	for i, m := range seeds {
		if m.ID <= 0 || m.Email == "" {
			return 0, fmt.Errorf("members file entry %d: id and email are required", i)
		}
	}
	for _, m := range seeds {
		s.AddMember(m.ID, m.Name, m.Email)
	}
	return len(seeds), nil
}
