package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/spice-sms/internal/config"
	"github.com/Veraticus/spice-sms/internal/engine"
	"github.com/Veraticus/spice-sms/internal/storage"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// session bundles what a command needs: validated config, an open
// database and a detector loaded from it.
type session struct {
	cfg      *config.Config
	store    *storage.SQLiteStorage
	detector *engine.Detector
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	detector := engine.New(store, engine.Config{
		DefaultAccountID:    cfg.DefaultAccountID,
		Accounts:            cfg.Accounts,
		ReclassifyThreshold: cfg.ReclassifyThreshold,
		Workers:             cfg.Workers,
	})
	detector.Load(ctx)

	return &session{cfg: cfg, store: store, detector: detector}, nil
}

func (s *session) Close() {
	_ = s.store.Close()
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
