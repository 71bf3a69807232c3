// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package store

import (
	_ "github.com/lib/pq"  // Postgres
	_ "modernc.org/sqlite" // SQLite
)

// Driver names registered with database/sql.
const (
	SQLiteDriver   = "sqlite"
	PostgresDriver = "postgres"
)
