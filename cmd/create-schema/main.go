package main

import (
	"context"
	"log"

	"clausematch/pkg/config"
	"clausematch/pkg/logger"
	"clausematch/pkg/postgres"

	"go.uber.org/zap"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		audit_mode BOOLEAN NOT NULL DEFAULT TRUE,
		context_injected BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		bucket TEXT NOT NULL CHECK (bucket IN ('control', 'regulation')),
		file_name TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		file_path TEXT NOT NULL,
		source_type TEXT NOT NULL,
		clause_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS match_results (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		control_id TEXT NOT NULL,
		control_text TEXT NOT NULL,
		status TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		matched_text TEXT NOT NULL DEFAULT '',
		regulation TEXT NOT NULL DEFAULT '',
		doc_name TEXT NOT NULL DEFAULT '',
		page_num TEXT NOT NULL DEFAULT '',
		section TEXT NOT NULL DEFAULT '',
		overlap_note TEXT NOT NULL DEFAULT '',
		gap_note TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		rewrite TEXT NOT NULL DEFAULT '',
		risk TEXT NOT NULL DEFAULT '',
		fine TEXT NOT NULL DEFAULT '',
		ordinal INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		role TEXT NOT NULL CHECK (role IN ('system', 'user', 'assistant')),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_session_id ON documents(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_match_results_session_id ON match_results(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages(session_id)`,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Creating database schema...")
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			appLogger.Fatal("Schema statement failed", zap.Error(err))
		}
	}
	appLogger.Info("Schema is up to date")
}
