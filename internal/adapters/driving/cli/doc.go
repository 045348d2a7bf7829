// Package cli implements the ragpro command line interface.
//
// Commands are thin: they parse flags, call the driving ports, and format
// output. Service wiring happens once in the root command's persistent
// pre-run, so every subcommand sees the same adapters.
package cli
