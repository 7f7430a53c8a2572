package proxyserver

import "log/slog"

var log = slog.Default()

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger *slog.Logger) {
	log = logger
}
