// Package logging builds the slog loggers used across pausetrim: a
// human-oriented console handler for interactive runs and a JSON handler
// for machine consumption, selected by config or terminal detection.
package logging
