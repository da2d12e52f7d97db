package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hexglobe.ai/internal/persistence/indexdb"
)

// openWorldIndex opens the generation cache index. A nil index disables
// caching: every start regenerates.
func openWorldIndex(dataDir string, disableDB bool) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("HG_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(dataDir, "index", "worlds.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported HG_INDEX_BACKEND: %s", backend)
	}
}
