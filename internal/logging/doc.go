// Package logging builds the slog loggers used across ytcourier.
//
// Two output formats are supported: a human console format for interactive
// use and JSON for captured output. Component loggers tag every record with
// the emitting subsystem so one daemon log stays greppable.
package logging
