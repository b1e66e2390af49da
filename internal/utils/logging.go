package utils

import "log/slog"

// ConfigureLogging sets the level of the default slog logger. Debug
// enables the per-file parse logging in the trajectory package and the
// request logging in the hub client; otherwise the process stays at
// the info level.
func ConfigureLogging(debug bool) {
	if debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		return
	}
	slog.SetLogLoggerLevel(slog.LevelInfo)
}
