// Package memory provides in-memory implementations of the storage ports.
// Useful for tests and ephemeral runs where nothing should touch disk.
package memory
