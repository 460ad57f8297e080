package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitclass/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStores_MemoryWithoutMembers(t *testing.T) {
	st, err := openStores(&config.Config{StoreDriver: config.StoreDriverMemory, StoreTimeout: time.Second})
	require.NoError(t, err)
	defer st.close()

	assert.NotNil(t, st.bookings)
	assert.Nil(t, st.directory, "no directory means no notifier")
}

func TestOpenStores_MemoryWithMembers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: 20\n  name: Ana\n  email: ana@example.com\n"), 0o600))

	st, err := openStores(&config.Config{
		StoreDriver:  config.StoreDriverMemory,
		StoreTimeout: time.Second,
		MembersFile:  path,
	})
	require.NoError(t, err)
	defer st.close()

	require.NotNil(t, st.directory)
	c, err := st.directory.Contact(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", c.Email)
}

func TestOpenStores_MemoryBadMembersFile(t *testing.T) {
	_, err := openStores(&config.Config{
		StoreDriver:  config.StoreDriverMemory,
		StoreTimeout: time.Second,
		MembersFile:  filepath.Join(t.TempDir(), "absent.yaml"),
	})
	assert.Error(t, err)
}
