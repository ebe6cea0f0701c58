// Package domain contains the core business entities for webrag.
//
// These are pure data types with no knowledge of adapters, storage,
// or external services. Everything else in the application depends on
// this package; it depends on nothing but the standard library.
package domain
