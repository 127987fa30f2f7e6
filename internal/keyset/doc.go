// Package keyset builds parameterized SQL for seek-paginated listings.
//
// Queries are described by a small sealed AST (Select plus Predicate
// implementations) and compiled to SQL by Compiler. A Planner turns a
// whitelisted sort configuration and an optional decoded cursor into the
// ordering and seek predicate of a Select.
//
// # Seek predicate
//
// The seek predicate compares the composite key (sort column, id) against
// the cursor's boundary row:
//
//	ASC:  (title, id) >= (?, ?)
//	DESC: (title, id) <= (?, ?)
//
// The comparison is inclusive because a cursor records the first row that
// was NOT returned on the previous page; that row must open the next one.
// The ordering always uses the same direction for both columns, so the
// composite key is a total order even when sort values tie.
//
// # Safety
//
// Every value is a bind parameter. Column and table names come only from
// the whitelist in this package or from constants in the caller; Compile
// rejects anything that is not a plain identifier.
//
// # Dialects
//
// Compile emits "?" placeholders. Dialect.Rebind rewrites them to "$n" for
// Postgres.
package keyset
