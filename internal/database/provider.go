package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kozaktomas/celebrity-detector/internal/config"
)

// Driver names understood by Open.
const (
	DriverPostgres = "postgres"
	DriverMariaDB  = "mariadb"
)

// Opener connects to a backend, applies migrations and returns the store.
type Opener func(ctx context.Context, cfg *config.DatabaseConfig) (HistoryStore, error)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Opener)
)

// RegisterBackend registers a history backend under a driver name.
// This is called by the backend packages to avoid import cycles.
func RegisterBackend(driver string, open Opener) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[driver] = open
}

// RegisteredDrivers returns the sorted names of registered backends.
func RegisteredDrivers() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectDriver picks the backend for a DATABASE_URL value.
func DetectDriver(url string) (string, error) {
	switch {
	case url == "":
		return "", errors.New("database URL is required")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(url, "mysql://"), strings.HasPrefix(url, "mariadb://"), strings.Contains(url, "@tcp("):
		return DriverMariaDB, nil
	default:
		return "", fmt.Errorf("unsupported database URL %q: expected postgres://, mysql:// or a MySQL DSN", redactURL(url))
	}
}

// Open connects to the backend selected by cfg.URL.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (HistoryStore, error) {
	if cfg == nil {
		return nil, errors.New("database config is required")
	}
	driver, err := DetectDriver(cfg.URL)
	if err != nil {
		return nil, err
	}

	backendsMu.RLock()
	open, ok := backends[driver]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s backend not registered", driver)
	}

	store, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s history store: %w", driver, err)
	}
	return store, nil
}

// redactURL hides credentials in error messages.
func redactURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	scheme := ""
	if i := strings.Index(url, "://"); i >= 0 && i < at {
		scheme = url[:i+3]
	}
	return scheme + "***" + url[at:]
}
