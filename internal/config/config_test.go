package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "fitclass.bookings", cfg.KafkaBookingTopic)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
port: "9090"
store_driver: memory
store_timeout: 2s
kafka_brokers: ["kafka-1:9092"]
smtp_host: smtp.file.local
members_file: /etc/fitclass/members.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "env overrides file")
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EmailEnabled())
	assert.Equal(t, "/etc/fitclass/members.yaml", cfg.MembersFile)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_TIMEOUT", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_TIMEOUT")
}
