// Package file provides a TOML file-backed configuration store.
//
// Settings live in config.toml under the ragpro home directory. Nested
// tables are flattened to dot-notation keys on load, so "llm.provider"
// addresses the provider key inside the [llm] table.
package file
