package plugins

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/bessim/config"
	"github.com/kilianp07/bessim/core/runlog"
)

// LogStoreFactory builds a run log store from its configuration section.
type LogStoreFactory func(cfg config.RunLogConfig) (runlog.Store, error)

var (
	mu        sync.RWMutex
	logStores = map[string]LogStoreFactory{}
)

// RegisterLogStore adds a run log backend. Registering a name twice
// replaces the earlier factory.
func RegisterLogStore(name string, f LogStoreFactory) {
	mu.Lock()
	defer mu.Unlock()
	logStores[name] = f
}

// LogStoreBackends lists the registered backend names.
func LogStoreBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(logStores))
	for n := range logStores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewLogStore builds the store selected by cfg.Backend.
func NewLogStore(cfg config.RunLogConfig) (runlog.Store, error) {
	mu.RLock()
	f, ok := logStores[cfg.Backend]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown run log backend %s", cfg.Backend)
	}
	return f(cfg)
}
