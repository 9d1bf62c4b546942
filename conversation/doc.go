// Package conversation tracks per-call in-memory metadata: the current call
// state, interruption and booking counters, the set of observed objection
// categories and the last-interaction timestamp. It shares the call
// identifier space with the session store but owns a separate lifecycle; the
// orchestrator creates and destroys the two together.
package conversation
