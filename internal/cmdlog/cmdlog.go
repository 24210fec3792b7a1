// Package cmdlog wraps CLI commands with run/error accounting.
package cmdlog

import (
	"log/slog"
	"time"

	"tweetgate/internal/metrics"
)

// Run executes f as command cmd, counting the run and logging its outcome.
func Run(log *slog.Logger, cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	start := time.Now()
	err := f()
	if err != nil {
		metrics.IncCommandError(cmd)
		log.Error("command failed", "command", cmd, "err", err)
	} else {
		log.Debug("command ok", "command", cmd, "took", time.Since(start))
	}
	return err
}
