// Package domain defines the core business entities for docq.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: an ingested document within a collection
//   - Chunk: the unit of embedding and retrieval
//   - Retrieval: a ranked result set with its confidence signal
//   - Answer: a composed answer carrying its provenance tag
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
