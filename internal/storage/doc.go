// Package storage provides JSON file persistence for the pool.
//
// A single pool.json in the data directory holds the competitor roster and
// the master score ledger. Writes replace the file atomically so a crash can
// never leave a half-written pool behind.
package storage
