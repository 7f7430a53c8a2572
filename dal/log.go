package dal

import "log/slog"

// log is the package logger. It discards nothing by default; the caller may
// swap in a subsystem logger via UseLogger.
var log = slog.Default()

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger *slog.Logger) {
	log = logger
}
