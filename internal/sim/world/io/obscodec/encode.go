// Package obscodec packs render arrays for the viewer stream.
package obscodec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeF32LE packs floats as little-endian float32 in base64.
func EncodeF32LE(xs []float32) string {
	buf := make([]byte, len(xs)*4)
	for i, v := range xs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func DecodeF32LE(s string) ([]float32, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("f32le payload length %d not a multiple of 4", len(buf))
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}
