// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package and picks the handler format from
// the runtime environment.
package logger
