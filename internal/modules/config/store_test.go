package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"signal_bot/internal/models"
)

// chdir changes the working directory for the test, restoring it on
// cleanup. Stand-in for t.Chdir, which needs Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeFixture(t *testing.T, cfg *Config) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configs"), 0o755))

	raw, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), raw, 0o644))

	chdir(t, dir)
	t.Setenv("CONFIG_FILE", "test.yaml")
}

func TestNewStoreLoadsFile(t *testing.T) {
	var cfg Config
	cfg.Telegram.ChatID = 42
	cfg.Scan.Interval = 45 * time.Second
	p := defaultParams(models.EURUSD)
	p.MinRR = 2.5
	cfg.Instruments = map[string]InstrumentParams{string(models.EURUSD): p}
	writeFixture(t, &cfg)

	t.Setenv("TELEGRAM_TOKEN", "from-env")

	store, err := NewStore()
	require.NoError(t, err)

	got := store.Get()
	assert.Equal(t, "from-env", got.Telegram.Token, "env overrides the file")
	assert.Equal(t, int64(42), got.Telegram.ChatID)
	assert.Equal(t, 45*time.Second, got.Scan.Interval)
	assert.Equal(t, 2.5, got.Params(models.EURUSD).MinRR)

	// instruments absent from the file still get full defaults
	xau := got.Params(models.XAUUSD)
	assert.Equal(t, 50.0, xau.LevelStep)
	assert.Equal(t, []int{0, 12}, got.Throttle.ResetHours)
}

func TestNewStoreMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "nope.yaml")

	_, err := NewStore()
	require.Error(t, err)
}
