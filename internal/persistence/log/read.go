package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"hexglobe.ai/internal/sim/world"
)

// ReadJSONL decodes every line of a .jsonl.zst file with fn.
func ReadJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if err := fn(sc.Bytes()); err != nil {
			return fmt.Errorf("%s line %d: %w", path, n, err)
		}
	}
	return sc.Err()
}

// ReadReports loads every report in a file.
func ReadReports(path string) ([]Report, error) {
	var out []Report
	err := ReadJSONL(path, func(line []byte) error {
		var r Report
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// ReadEvents loads every event in a file.
func ReadEvents(path string) ([]world.Event, error) {
	var out []world.Event
	err := ReadJSONL(path, func(line []byte) error {
		var e world.Event
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}
