package config

import (
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"signal_bot/pkg/logger"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSNENV    = "DATABASE_DSN"
)

// Store hands out immutable configuration snapshots and swaps in a fresh
// one when the file on disk changes. Readers call Get per cycle; they never
// observe a half-applied reload.
type Store struct {
	v   *viper.Viper
	cur atomic.Pointer[Config]
}

// NewStore reads the config file (path from CONFIG_FILE, default
// configs/values_local.yaml) and starts watching it for changes.
func NewStore() (*Store, error) {
	name := os.Getenv(configFilePathENV)
	if name == "" {
		name = "values_local.yaml"
	}

	v := viper.New()
	v.SetConfigFile("configs/" + name)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	s := &Store{v: v}
	cfg, err := s.decode()
	if err != nil {
		return nil, err
	}
	s.cur.Store(cfg)

	v.OnConfigChange(func(_ fsnotify.Event) {
		next, err := s.decode()
		if err != nil {
			// keep serving the previous snapshot
			logger.Error("config reload failed: %v", err)
			return
		}
		s.cur.Store(next)
		logger.Info("config reloaded from %s", v.ConfigFileUsed())
	})
	v.WatchConfig()

	return s, nil
}

// Get returns the current snapshot. The returned value must be treated as
// read-only.
func (s *Store) Get() *Config {
	return s.cur.Load()
}

func (s *Store) decode() (*Config, error) {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSNENV); dsn != "" {
		cfg.DB = dsn
	}

	normalize(&cfg)
	return &cfg, nil
}

// Replace swaps in a new snapshot, normalized the same way a file reload
// would be. Tests use it to simulate a hot reload.
func (s *Store) Replace(cfg *Config) {
	c := *cfg
	normalize(&c)
	s.cur.Store(&c)
}

// NewStaticStore wraps a fixed config, bypassing file IO. Used by tests.
func NewStaticStore(cfg *Config) *Store {
	s := &Store{}
	c := *cfg
	normalize(&c)
	s.cur.Store(&c)
	return s
}
