// Package store provides transactional storage for recipes, their ordered
// child lists, and collections.
//
// The store runs on SQLite (github.com/mattn/go-sqlite3, the default) or on
// Postgres through the pgx database/sql driver. Statements are written with
// "?" placeholders and rebound per dialect.
//
// # Transactions
//
// Every operation runs inside exactly one transaction obtained from
// Store.WithTx. The caller's context is passed unchanged to every statement.
// A failing callback rolls the whole transaction back, so no partial write
// is ever visible.
//
// # Tenant scoping
//
// Every statement that touches recipes carries a collection_id IN (...)
// predicate built from the caller's model.TenantContext. A recipe outside
// the caller's collections is indistinguishable from a missing one.
//
// # Positions
//
// Instructions and ingredients carry a zero-based position that is unique
// per recipe (UNIQUE(recipe_id, position)). ApplyPlan first deletes removed
// rows, then parks every survivor at a negative position, then writes final
// positions. The constraint therefore holds after every statement, on
// engines that check it per row as well as per statement.
//
// # Time
//
// Timestamps are stored as INTEGER unix microseconds (UTC). Sorting by time
// is exact, and values read back equal the values written.
//
// # Errors
//
// Driver failures leave this package as model STORAGE errors with the
// failing operation named. Missing or invisible rows are NOT_FOUND.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
