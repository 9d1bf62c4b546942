// Package core contains the domain contracts and shared types of VoiceMesh:
// call identifiers, conversation turns, call states, transport directives and
// the store/collaborator interfaces implemented elsewhere in the module.
// Keeping the contracts here prevents higher level packages (orchestrator,
// transport) from depending on concrete storage or provider implementations.
package core
