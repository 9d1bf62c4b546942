// Package session houses concrete implementations of core.SessionStore. The
// interface itself (and the Turn type) live in the core package to centralize
// domain contracts. The FileStore is the durable implementation (one JSON
// array of turns per call, re-readable after a restart); the in-memory store
// shares its semantics for tests and ephemeral demos.
//
// Add additional backends (Redis, Postgres, etc.) here without changing any
// calling code; only the wiring layer decides which implementation to
// instantiate.
package session
