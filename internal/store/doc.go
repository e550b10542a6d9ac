// Package store provides SQLite-backed durable storage for the time ledger.
//
// The store keeps four tables:
//   - time_slices: completed (and at most one open) time intervals
//   - tags: the tag registry, one row per unique name
//   - time_slice_tags: many-to-many slice/tag associations
//   - time_slice_descriptions: optional free text, one per slice
//
// # Invariants enforced by the schema
//
//   - CHECK (end_time IS NULL OR end_time > start_time)
//   - tags.name is UNIQUE and non-empty
//   - a partial unique index allows a single open slice
//   - deleting a slice cascades to its associations and description
//
// # Atomicity
//
// Every caller-facing write is a single statement or a single transaction.
// InsertSliceWithContext writes the slice, its tag associations and its
// description in one transaction, so a failure in any step leaves nothing
// behind.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity and cascades
//
// Timestamps are stored as milliseconds since the Unix epoch.
package store
