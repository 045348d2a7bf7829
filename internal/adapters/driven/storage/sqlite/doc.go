// Package sqlite provides the durable relational store for document-version
// metadata, the version log, and conversations. A single database file backs
// every store interface through wrapper types.
package sqlite
