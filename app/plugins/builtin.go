package plugins

import (
	"github.com/kilianp07/bessim/config"
	"github.com/kilianp07/bessim/core/runlog"
)

func init() {
	RegisterLogStore("none", func(config.RunLogConfig) (runlog.Store, error) {
		return runlog.NopStore{}, nil
	})
	RegisterLogStore("jsonl", func(c config.RunLogConfig) (runlog.Store, error) {
		if c.MaxSizeMB > 0 {
			return runlog.NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
		}
		return runlog.NewJSONLStore(c.Path)
	})
	RegisterLogStore("sqlite", func(c config.RunLogConfig) (runlog.Store, error) {
		return runlog.NewSQLiteStore(c.Path)
	})
}
