package plugins

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/config"
	"github.com/kilianp07/bessim/core/runlog"
)

func TestBuiltinLogStores(t *testing.T) {
	assert.Equal(t, []string{"jsonl", "none", "sqlite"}, LogStoreBackends())

	dir := t.TempDir()
	cases := []config.RunLogConfig{
		{Backend: "none"},
		{Backend: "jsonl", Path: filepath.Join(dir, "runs.jsonl")},
		{Backend: "jsonl", Path: filepath.Join(dir, "rot.jsonl"), MaxSizeMB: 1, MaxBackups: 2},
		{Backend: "sqlite", Path: filepath.Join(dir, "runs.db")},
	}
	for _, c := range cases {
		store, err := NewLogStore(c)
		require.NoError(t, err, c.Backend)
		require.NoError(t, store.Append(context.Background(), runlog.Record{RunID: "r"}))
		require.NoError(t, store.Close())
	}

	_, err := NewLogStore(config.RunLogConfig{Backend: "etcd"})
	assert.Error(t, err)
}
