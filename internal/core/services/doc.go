// Package services contains the core business logic, wiring driven
// adapters (loader, chunker, embeddings, vector index, storage) into
// the operations exposed to the CLI.
package services
