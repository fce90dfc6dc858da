// Package domain defines the core business entities for Inkwell.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A configured remote location to watch
//   - ConversionJob: One attempt to convert one discovered file
//   - SyncLog: An append-only audit record
//   - ConvertedFile: The idempotency index of successful conversions
//   - RemoteEntry: A normalised listing entry from a connector
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
