// Package postgres opens the database connection and keeps the schema in
// step. The schema is small enough that idempotent DDL at startup beats a
// migration toolchain.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
)

// Open connects and verifies the database is reachable.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS vehicles (
		id        TEXT PRIMARY KEY,
		plate     TEXT NOT NULL,
		type      TEXT NOT NULL,
		owner     TEXT NOT NULL,
		owner_id  TEXT NOT NULL DEFAULT '',
		status    TEXT NOT NULL,
		date      TIMESTAMPTZ NOT NULL,
		documents TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS tourist_vehicles (
		id        TEXT PRIMARY KEY,
		plate     TEXT NOT NULL,
		type      TEXT NOT NULL,
		owner     TEXT NOT NULL,
		owner_id  TEXT NOT NULL DEFAULT '',
		status    TEXT NOT NULL,
		date      TIMESTAMPTZ NOT NULL,
		documents JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS declarations (
		id       TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		items    TEXT[] NOT NULL DEFAULT '{}',
		traveler TEXT NOT NULL,
		owner_id TEXT NOT NULL DEFAULT '',
		status   TEXT NOT NULL,
		date     TIMESTAMPTZ NOT NULL,
		notes    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS minors (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		age       INT NOT NULL,
		guardian  TEXT NOT NULL,
		owner_id  TEXT NOT NULL DEFAULT '',
		status    TEXT NOT NULL,
		date      TIMESTAMPTZ NOT NULL,
		documents TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS tourist_minors (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		age              INT NOT NULL,
		guardian         TEXT NOT NULL,
		is_direct_family BOOLEAN NOT NULL DEFAULT FALSE,
		owner_id         TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		date             TIMESTAMPTZ NOT NULL,
		documents        JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id         UUID PRIMARY KEY,
		timestamp  TIMESTAMPTZ NOT NULL,
		user_id    TEXT NOT NULL DEFAULT '',
		action     TEXT NOT NULL,
		collection TEXT NOT NULL DEFAULT '',
		record_id  TEXT NOT NULL DEFAULT '',
		detail     TEXT NOT NULL DEFAULT '',
		device     TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT ''
	)`,
}

// EnsureSchema creates the tables if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
