// Package history keeps a SQLite ledger of batches and stage attempts.
//
// The ledger is an operator aid behind the `shipit history` command. It is
// never consulted to decide what to run: the per-folder sidecars remain the
// only source of truth for progress. Callers treat write failures as
// warnings.
//
// The schema lives in schema.sql and is versioned by schemaVersion. There are
// no migrations; when the schema changes, bump schemaVersion and delete the
// database.
package history
