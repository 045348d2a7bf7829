// Package domain defines the core business entities for the RAG assistant.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentVersion: One registered version of an uploaded document
//   - VersionLogEntry: Append-only record of a version transition
//   - Chunk: A bounded text segment, the unit of embedding and retrieval
//   - Conversation / ConversationTurn: Per-user chat history
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
