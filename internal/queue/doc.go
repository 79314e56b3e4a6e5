// Package queue persists workflow items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, embedded migrations, stats queries,
// heartbeat tracking, stuck-item recovery, and status transitions that mirror
// the public workflow enum. Queue items capture progress, media metadata,
// transcripts, analysis results, and review flags so stages can coordinate
// without additional state.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive. Schema changes are delivered as new files under
// migrations/ and applied in order at open.
//
// Treat this package as the single source of truth for queue semantics; when
// you add new statuses or metadata fields, add a migration and update the
// rollback transitions.
package queue
