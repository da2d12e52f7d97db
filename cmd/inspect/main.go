package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hexglobe.ai/internal/persistence/indexdb"
	persistlog "hexglobe.ai/internal/persistence/log"
	"hexglobe.ai/internal/persistence/snapshot"
	"hexglobe.ai/internal/sim/tuning"
	"hexglobe.ai/internal/sim/world"
	"hexglobe.ai/internal/sim/world/tiles"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "tuning used for render settings and -regen")
		eventsDir  = flag.String("events", "", "events dir containing events-*.jsonl.zst to replay onto the snapshot (optional)")
		regen      = flag.Bool("regen", false, "regenerate from the snapshot's seeds and compare digests")
		indexPath  = flag.String("index", "", "list the entries of a worlds.sqlite index and exit (optional)")
	)
	flag.Parse()

	if *indexPath != "" {
		if err := listIndex(os.Stdout, *indexPath); err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
		return
	}
	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	tune, err := tuning.LoadOrDefaults(*tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	base, err := tune.GenConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tuning:", err)
		os.Exit(1)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot v%d world=%s level=%d seeds=%d/%d/%d tiles=%d vertices=%d river_edges=%d units=%d\n",
		snap.Header.Version, snap.Header.WorldID, snap.Level, snap.LandSeed, snap.HeightSeed, snap.RiverSeed,
		len(snap.Tiles), len(snap.Vertices), len(snap.Downstream), len(snap.Units))

	w, err := world.ImportSnapshot(snap, base, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "import snapshot:", err)
		os.Exit(1)
	}
	printStats(os.Stdout, w)

	if *regen {
		fresh := world.Generate(w.Config(), nil)
		if fresh.Digest() != w.Digest() {
			fmt.Printf("regen MISMATCH: snapshot=%s regenerated=%s\n", w.Digest(), fresh.Digest())
			os.Exit(1)
		}
		fmt.Println("regen ok: digest matches")
	}

	if *eventsDir == "" {
		return
	}
	files, err := listEventFiles(*eventsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", *eventsDir)
		os.Exit(1)
	}
	n, err := replayEvents(w, files)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: applied=%d events units=%d\n", n, len(w.Units()))
	for _, u := range w.Units() {
		fmt.Printf("  unit %d owner=%s tile=%d\n", u.ID, u.Owner, u.Tile.ID)
	}
}

func printStats(out io.Writer, w *world.World) {
	st := w.Stats()
	fmt.Fprintf(out, "world %s level=%d tiles=%d pentagons=%d hexagons=%d degenerate=%d skipped_geometry=%d\n",
		w.ID(), st.Level, st.Tiles, st.Pentagons, st.Hexagons, st.DegenerateTiles, st.SkippedGeometry)
	fmt.Fprintf(out, "rivers paths=%d edges=%d sea_vertices=%d skipped_ribbon=%d\n",
		st.Rivers, st.RiverEdges, st.SeaVertices, st.SkippedRibbonVertices)
	for _, t := range tiles.AllTerrains() {
		if n := st.TerrainCount(t); n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", t.String(), n)
		}
	}
	fmt.Fprintf(out, "digest %s\n", w.Digest())
}

func listEventFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "events-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// replayEvents applies logged events in file order. Only accepted changes are
// logged, so any rejection means the log does not belong to this world.
func replayEvents(w *world.World, files []string) (int, error) {
	n := 0
	for _, path := range files {
		events, err := persistlog.ReadEvents(path)
		if err != nil {
			return n, err
		}
		for _, e := range events {
			if err := applyEvent(w, e); err != nil {
				return n, fmt.Errorf("%s event %d (%s): %w", filepath.Base(path), n, e.Kind, err)
			}
			n++
		}
	}
	return n, nil
}

func applyEvent(w *world.World, e world.Event) error {
	switch e.Kind {
	case "PLACE":
		u, err := w.PlaceUnit(e.To, e.Owner)
		if err != nil {
			return err
		}
		if u.ID != e.UnitID {
			return fmt.Errorf("placed unit id %d, log has %d", u.ID, e.UnitID)
		}
	case "MOVE":
		u, ok := w.Unit(e.UnitID)
		if !ok {
			return world.ErrUnknownUnit
		}
		if u.Tile.ID != e.From {
			return fmt.Errorf("unit %d on tile %d, log has %d", e.UnitID, u.Tile.ID, e.From)
		}
		return w.MoveUnit(e.UnitID, e.To)
	case "SELECT":
		return w.Select(e.To)
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

func listIndex(out io.Writer, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()
	entries, err := idx.Entries(context.Background())
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s world=%s level=%d tiles=%d rivers=%d created=%s path=%s\n",
			e.CacheKey, e.WorldID, e.Level, e.Tiles, e.Rivers, e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), e.Path)
	}
	fmt.Fprintf(out, "%d worlds\n", len(entries))
	return nil
}
