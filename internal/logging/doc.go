// Package logging builds slog loggers for the CLI: a human-oriented
// console handler and a JSON handler, selected by configuration, plus
// helpers that derive structured fields (chapter, segment, stage, run id)
// from context.
package logging
