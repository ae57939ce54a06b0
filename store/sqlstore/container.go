// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package sqlstore contains an SQL-backed implementation of the interfaces in the store package.
package sqlstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/util/dbutil"

	"go.mau.fi/ssbot/store"
	"go.mau.fi/ssbot/store/sqlstore/upgrades"
)

// VersionTable is the name of the table dbutil uses to track the schema version.
const VersionTable = "ssbot_version"

// Container wraps a database connection and implements all the store interfaces.
type Container struct {
	db *dbutil.Database
}

var _ store.AllStores = (*Container)(nil)

// New connects to the given SQL database and wraps it in a Container.
//
// Only Postgres and SQLite are supported. The dialect may be "postgres" (using the pgx driver,
// which must be imported by the caller) or "sqlite3" (using github.com/mattn/go-sqlite3).
//
// When using SQLite, it's strongly recommended to enable foreign keys by adding `?_foreign_keys=true`:
//
//	container, err := sqlstore.New(ctx, "sqlite3", "file:yoursqlitefile.db?_foreign_keys=on", log)
func New(ctx context.Context, dialect, address string, log zerolog.Logger) (*Container, error) {
	db, err := dbutil.NewWithDialect(address, DriverName(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.Log = dbutil.ZeroLogger(log)
	container := NewWithDB(db)
	err = container.Upgrade(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade database: %w", err)
	}
	return container, nil
}

// NewWithDB wraps an existing database connection. The caller must call Upgrade before using the container.
func NewWithDB(db *dbutil.Database) *Container {
	db.VersionTable = VersionTable
	db.UpgradeTable = upgrades.Table
	return &Container{db: db}
}

// DriverName returns the database/sql driver name registered for the given dialect.
func DriverName(dialect string) string {
	switch dialect {
	case "postgres", "postgresql":
		return "pgx"
	case "sqlite":
		return "sqlite3"
	default:
		return dialect
	}
}

// Upgrade creates or upgrades the tables used by the store.
func (c *Container) Upgrade(ctx context.Context) error {
	return c.db.Upgrade(ctx)
}

// Ping checks that the database is reachable.
func (c *Container) Ping(ctx context.Context) error {
	return c.db.RawDB.PingContext(ctx)
}

// Close closes the underlying database connection.
func (c *Container) Close() error {
	return c.db.Close()
}
