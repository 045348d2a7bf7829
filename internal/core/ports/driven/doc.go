// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentRegistry: Durable document-version metadata store
//   - IndexStore: Per-version vector index build/persist/merge
//   - EmbeddingService: Generates vector embeddings
//   - Extractor: Raw text extraction per file type
//   - ConversationStore: Conversation and turn persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Completion service. Without it, the ask pipeline is disabled
//     but ingestion and plain retrieval still work.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
