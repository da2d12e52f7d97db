// Package digestcodec writes values into a hash in a fixed little-endian
// layout so digests do not depend on map iteration order.
package digestcodec

import (
	"encoding/binary"
	"math"
	"sort"
)

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

type Writer struct {
	h   hashWriter
	tmp [8]byte
}

func NewWriter(h hashWriter) *Writer { return &Writer{h: h} }

func (w *Writer) U64(v uint64) {
	binary.LittleEndian.PutUint64(w.tmp[:], v)
	w.h.Write(w.tmp[:])
}

func (w *Writer) I64(v int64)   { w.U64(uint64(v)) }
func (w *Writer) Int(v int)     { w.U64(uint64(int64(v))) }
func (w *Writer) F64(v float64) { w.U64(math.Float64bits(v)) }

func (w *Writer) Bool(v bool) {
	w.h.Write([]byte{BoolByte(v)})
}

func (w *Writer) String(s string) {
	w.Int(len(s))
	w.h.Write([]byte(s))
}

// Ints writes a length prefix followed by the values.
func (w *Writer) Ints(xs []int) {
	w.Int(len(xs))
	for _, x := range xs {
		w.Int(x)
	}
}

// IntMap writes key-sorted pairs.
func (w *Writer) IntMap(m map[int]int) {
	keys := sortedKeys(m)
	w.Int(len(keys))
	for _, k := range keys {
		w.Int(k)
		w.Int(m[k])
	}
}

// FloatMap writes key-sorted pairs.
func (w *Writer) FloatMap(m map[int]float64) {
	keys := sortedKeys(m)
	w.Int(len(keys))
	for _, k := range keys {
		w.Int(k)
		w.F64(m[k])
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func BoolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
