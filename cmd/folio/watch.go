package main

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// watchFiles calls onChange whenever the modification time or size of one of
// paths changes. It returns when ctx is done.
func watchFiles(ctx context.Context, paths []string, interval time.Duration, logger *slog.Logger, onChange func()) error {
	type stamp struct {
		mod  time.Time
		size int64
	}
	sample := func() map[string]stamp {
		out := make(map[string]stamp, len(paths))
		for _, p := range paths {
			if fi, err := os.Stat(p); err == nil {
				out[p] = stamp{fi.ModTime(), fi.Size()}
			}
		}
		return out
	}

	last := sample()
	logger.Info("watching", "files", len(paths), "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cur := sample()
			changed := len(cur) != len(last)
			for p, s := range cur {
				if last[p] != s {
					changed = true
					logger.Debug("file changed", "path", p)
				}
			}
			last = cur
			if changed {
				onChange()
			}
		}
	}
}
