// Package postgres provides the PostgreSQL backend for the vocabulary
// collection. The encoded collection lives in one row of the collections
// table, keyed by name, and the schema is managed with goose migrations
// embedded in the binary.
package postgres
