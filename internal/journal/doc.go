// Package journal persists one row per routed file in a SQLite database so
// operators can review what past runs did with each file.
//
// The schema is embedded and versioned; a database written by a different
// schema version is rejected rather than migrated.
package journal
