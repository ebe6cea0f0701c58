// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentLoader: Fetches and normalises web articles
//   - Chunker: Splits documents into retrieval-sized passages
//   - EmbeddingService: Generates vector embeddings
//   - CompletionService: Generates grounded natural-language answers
//   - VectorIndex: Stores and searches embedded passages
//   - IndexStore: Persists index snapshots to durable storage
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
