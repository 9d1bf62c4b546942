// Package logging provides a minimal logging interface and adapters for VoiceMesh.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that stores, the knowledge index and the orchestrator use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - CallLogger with per-call contextual helpers
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	orch := orchestrator.New(deps, func(o *orchestrator.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
