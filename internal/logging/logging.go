// Package logging configures a single process-wide slog.Logger and hands
// out subsystem-scoped children of it. The teacher logs ad hoc with
// log.Printf and "[SaveManager] ..."-style prefixes (see
// internal/game/app.go); this package keeps that same terse, per-subsystem
// texture but routes it through log/slog so attributes are structured
// instead of baked into the message string.
package logging

import (
	"log/slog"
	"os"
)

var base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Configure replaces the process-wide logger, e.g. to raise the level or
// switch handlers for a production deployment. Call once at startup before
// any other package calls For.
func Configure(logger *slog.Logger) {
	base = logger
}

// For returns a logger scoped to one subsystem, tagging every record with
// subsystem=name the way the teacher's "[SaveManager] ..." prefixes tagged
// theirs.
func For(subsystem string) *slog.Logger {
	return base.With(slog.String("subsystem", subsystem))
}
