// Package orchestrator coordinates one caller utterance end to end: it
// applies interruption and objection checks against the conversation tracker,
// retrieves knowledge context, reads and appends session history, calls the
// external generation and synthesis collaborators, and answers the transport
// with a play-or-speak-then-listen directive. It is also the error recovery
// boundary: no collaborator failure ever propagates to the transport; the
// user-visible failure behavior is always "apologize, ask again".
package orchestrator
