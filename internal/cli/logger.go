package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/codebeauty/loadingsse/internal/config"
	"github.com/codebeauty/loadingsse/internal/log"
	loglogrus "github.com/codebeauty/loadingsse/internal/log/logrus"
)

func nopClose() error { return nil }

// getLogger returns the application logger and a func that releases its
// output. Without --log-file, logs go to stderr only when --debug is set and
// the screen is not owned by the TUI.
func getLogger(opts *rootOptions, cfg *config.Config, stderr io.Writer, fullscreen bool) (log.Logger, func() error, error) {
	format := cfg.Defaults.LogFormat
	if opts.logFormat != "" {
		f, err := config.ValidateLogFormat(opts.logFormat)
		if err != nil {
			return nil, nil, err
		}
		format = f
	}

	out := stderr
	closeFn := nopClose
	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closeFn = f.Close
	case !opts.debug || fullscreen:
		return log.Noop, nopClose, nil
	}

	logrusLog := logrus.New()
	logrusLog.Out = out
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if opts.debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch format {
	case config.LogFormatJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		noColor := opts.noColor || opts.logFile != ""
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			DisableColors: noColor,
		})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": version,
	})
	logger.Debugf("Debug level is enabled")

	return logger, closeFn, nil
}
