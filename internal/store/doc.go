// Package store owns persistence of the vocabulary collection. The Repository
// is the single object through which items are read and written; it keeps the
// collection in memory, enforces the duplicate rules, and writes the whole
// collection through a Backend after every mutation.
//
// Backends only move opaque bytes. The aggregate codec in this package is the
// one place where live instants are converted to and from their textual form.
package store
