// Package services contains the core application logic: ingestion of
// versioned documents, combined index management, retrieval with optional
// re-ranking, and the retrieve-generate-annotate answer pipeline.
//
// Services depend only on domain types and port interfaces. Adapters are
// injected through constructors.
package services
