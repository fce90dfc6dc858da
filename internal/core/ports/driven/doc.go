// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - StorageConnector: Lists and fetches files from a remote platform
//   - ConnectorFactory: Creates connectors from source configuration
//   - Converter: Produces structured text from one document format
//   - ConverterRegistry: Selects the converter for a file
//   - SourceStore, JobStore, SyncLogStore, ConvertedFileStore: Registry persistence
//   - CredentialCipher: Encrypts credentials at rest
//   - Exporter: Writes canonical output and destination copies
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or converter package
package driven
