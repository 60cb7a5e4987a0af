// Package log provides logging built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Rewriting of file paths under the user's home directory to "~/..."
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Path Handling
//
// Compared documents usually live in a home directory whose name is the
// account name. The PathHandler replaces that prefix in string attributes,
// error values and messages so that logs can be attached to bug reports
// without exposing it.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("document opened",
//	    "path", "/home/alice/docs/rev1.pdf", // logged as ~/docs/rev1.pdf
//	)
//
//	slog.SetDefault(logger)
package log
