// Package types defines the CredentialStore and BulkLoader interfaces, the
// records and results they exchange, their configuration, and the error
// taxonomy shared by all keeper packages.
package types
