package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"charm.land/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// defaultTUILogFile is where the viewer logs when no log file is configured,
// since writing to stderr would draw over the alternate screen.
func defaultTUILogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ccview", "ccview.log")
}

// setupLogging installs the default slog logger and returns a function that
// flushes and closes the log file, if any.
func setupLogging(cfg Config, stderr io.Writer) func() {
	var w io.Writer = stderr
	closer := func() {}
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = lj
		closer = func() { _ = lj.Close() }
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: cfg.LogFile != "",
		Prefix:          "ccview",
	})
	slog.SetDefault(slog.New(handler))
	return closer
}
