package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"hexglobe.ai/internal/persistence/indexdb"
	persistlog "hexglobe.ai/internal/persistence/log"
	"hexglobe.ai/internal/persistence/snapshot"
	"hexglobe.ai/internal/sim/world"
)

const (
	sourceGenerated = "generated"
	sourceSnapshot  = "snapshot"
)

type loadResult struct {
	World    *world.World
	Source   string
	Path     string
	Duration time.Duration
}

// loadOrGenerate resolves the world for cfg: an explicit snapshot path wins,
// then a cached snapshot for cfg's cache key, then a fresh generation, which
// is written back and indexed.
func loadOrGenerate(ctx context.Context, cfg world.GenConfig, worldDir, snapPath string, idx *indexdb.SQLiteIndex, logger *log.Logger) (loadResult, error) {
	start := time.Now()
	key := cfg.CacheKey()

	if snapPath != "" {
		w, err := loadSnapshot(snapPath, cfg, logger)
		if err != nil {
			return loadResult{}, err
		}
		return loadResult{World: w, Source: sourceSnapshot, Path: snapPath, Duration: time.Since(start)}, nil
	}

	if idx != nil {
		e, ok, err := idx.Lookup(ctx, key)
		if err != nil {
			logger.Printf("index lookup: %v", err)
		} else if ok {
			w, err := loadSnapshot(e.Path, cfg, logger)
			if err == nil && w.Digest() == e.Digest {
				return loadResult{World: w, Source: sourceSnapshot, Path: e.Path, Duration: time.Since(start)}, nil
			}
			if err == nil {
				err = fmt.Errorf("digest mismatch")
			}
			logger.Printf("cached snapshot %s unusable, regenerating: %v", e.Path, err)
		}
	}

	w := world.Generate(cfg, logger)
	path := filepath.Join(worldDir, "snapshots", key+".snap.zst")
	if err := snapshot.WriteSnapshot(path, w.ExportSnapshot()); err != nil {
		return loadResult{}, fmt.Errorf("write snapshot: %w", err)
	}
	if idx != nil {
		st := w.Stats()
		err := idx.Record(ctx, indexdb.Entry{
			CacheKey: key,
			WorldID:  w.ID(),
			Path:     path,
			Level:    st.Level,
			Tiles:    st.Tiles,
			Rivers:   st.Rivers,
			Digest:   w.Digest(),
		})
		if err != nil {
			logger.Printf("index record: %v", err)
		}
	}
	return loadResult{World: w, Source: sourceGenerated, Path: path, Duration: time.Since(start)}, nil
}

func loadSnapshot(path string, cfg world.GenConfig, logger *log.Logger) (*world.World, error) {
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	w, err := world.ImportSnapshot(snap, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("import snapshot %s: %w", path, err)
	}
	return w, nil
}

// recordRun reports a resolved world to the run index and the report log.
func recordRun(res loadResult, idx *indexdb.SQLiteIndex, reports *persistlog.ReportLogger) error {
	w := res.World
	digest := w.Digest()
	key := w.Config().CacheKey()
	idx.RecordRun(indexdb.Run{
		CacheKey: key,
		WorldID:  w.ID(),
		Source:   res.Source,
		Duration: res.Duration,
		Digest:   digest,
	})
	if reports == nil {
		return nil
	}
	return reports.WriteReport(persistlog.Report{
		Time:     time.Now().UTC(),
		WorldID:  w.ID(),
		CacheKey: key,
		Source:   res.Source,
		Digest:   digest,
		Stats:    w.Stats(),
	})
}

// checkpoint asks the running world loop for a snapshot, units included, and
// writes it to path.
func checkpoint(ctx context.Context, w *world.World, path string) error {
	req := world.SnapshotRequest{Resp: make(chan snapshot.SnapshotV1, 1)}
	select {
	case w.SnapshotRequests() <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case snap := <-req.Resp:
		return snapshot.WriteSnapshot(path, snap)
	case <-ctx.Done():
		return ctx.Err()
	}
}
