package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/config"
)

const (
	defaultConnectRetries  = 15
	defaultConnectDelaySec = 3
)

// Connect opens the master/slave pool described by cfg and pings the master
// until it answers or the retry budget is spent. The registry is useless
// without a database, so callers treat a nil result as fatal.
func Connect(cfg *config.DatabaseConfig) (*dbpg.DB, error) {
	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = defaultConnectRetries
	}
	delay := time.Duration(cfg.ConnectRetryDelaySec) * time.Second
	if delay <= 0 {
		delay = defaultConnectDelaySec * time.Second
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeSec) * time.Second,
	}
	slaves := slaveDSNs(cfg.Slaves)

	var db *dbpg.DB
	var err error

	for attempt := 1; attempt <= retries; attempt++ {
		db, err = open(cfg.DSN, slaves, opts)
		if err == nil {
			zlog.Logger.Info().
				Int("attempt", attempt).
				Int("slaves", len(slaves)).
				Msg("postgres pool ready")
			return db, nil
		}

		zlog.Logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", retries).
			Msg("postgres not ready yet")

		if attempt < retries {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", retries, err)
}

func open(masterDSN string, slaves []string, opts *dbpg.Options) (*dbpg.DB, error) {
	db, err := dbpg.New(masterDSN, slaves, opts)
	if err != nil {
		return nil, err
	}
	if db.Master == nil {
		return nil, fmt.Errorf("pool opened without a master connection")
	}
	if err := db.Master.Ping(); err != nil {
		closePool(db)
		return nil, fmt.Errorf("ping master: %w", err)
	}
	return db, nil
}

func closePool(db *dbpg.DB) {
	if db.Master != nil {
		db.Master.Close()
	}
	for _, s := range db.Slaves {
		if s != nil {
			s.Close()
		}
	}
}

// Close tears the pool down, slaves first so in-flight reads drain before
// the master goes away.
func Close(db *dbpg.DB) {
	if db == nil {
		return
	}
	for i, s := range db.Slaves {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			zlog.Logger.Error().Err(err).Int("slave_index", i).Msg("failed to close db slave")
		}
	}
	if db.Master != nil {
		if err := db.Master.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close db master")
		}
	}
}

// slaveDSNs parses the comma-separated replica list from config. Empty
// segments are dropped so trailing commas in env overrides are harmless.
func slaveDSNs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if dsn := strings.TrimSpace(p); dsn != "" {
			out = append(out, dsn)
		}
	}
	return out
}
