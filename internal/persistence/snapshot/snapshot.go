// Package snapshot stores a generated world as a zstd stream holding one JSON
// header line followed by a gob body.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version     int    `json:"version"`
	WorldID     string `json:"world_id"`
	CreatedUnix int64  `json:"created_unix"`
	Tiles       int    `json:"tiles"`
}

// SnapshotV1 is the persisted world: geometry, terrain and the river network.
// Tile neighbors and vertex adjacency are derived and never stored.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Level      int   `json:"level"`
	LandSeed   int64 `json:"land_seed"`
	HeightSeed int64 `json:"height_seed"`
	RiverSeed  int64 `json:"river_seed"`
	RiverCount int   `json:"river_count"`

	Vertices   [][3]float64 `json:"vertices"`
	Tiles      []TileV1     `json:"tiles"`
	Downstream []EdgeV1     `json:"downstream"`
	Flow       []FlowV1     `json:"flow"`
	Units      []UnitV1     `json:"units,omitempty"`

	Stats *StatsV1 `json:"stats,omitempty"`
}

type TileV1 struct {
	ID       int        `json:"id"`
	Vertices []int      `json:"vertices"`
	Normal   [3]float64 `json:"normal"`
	Terrain  string     `json:"terrain"`
	Height   float64    `json:"height"`
}

// EdgeV1 is one downstream link of the river network, vertex to vertex.
type EdgeV1 struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type FlowV1 struct {
	Vertex int     `json:"vertex"`
	Flow   float64 `json:"flow"`
}

type UnitV1 struct {
	ID    int    `json:"id"`
	Owner string `json:"owner"`
	Tile  int    `json:"tile"`
}

type StatsV1 struct {
	DegenerateTiles       int `json:"degenerate_tiles"`
	SkippedGeometry       int `json:"skipped_geometry"`
	SkippedRibbonVertices int `json:"skipped_ribbon_vertices"`
	Rivers                int `json:"rivers"`
	SeaVertices           int `json:"sea_vertices"`
}

func WriteSnapshot(path string, snap SnapshotV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	hb, err := json.Marshal(snap.Header)
	if err != nil {
		return fmt.Errorf("header encode: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body carries the header too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the leading header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("header decode: %w", err)
	}
	if h.Version == 0 {
		return h, errors.New("snapshot header missing version")
	}
	return h, nil
}
