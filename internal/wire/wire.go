// Package wire encodes sample frames as packed little-endian floats.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeFloat32 packs x as little-endian float32, four bytes per sample.
func EncodeFloat32(x []float64) []byte {
	out := make([]byte, 4*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
	}
	return out
}

// DecodeFloat32 unpacks a frame produced by EncodeFloat32.
func DecodeFloat32(b []byte) ([]float64, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("float32 frame length %d is not a multiple of 4", len(b))
	}
	out := make([]float64, len(b)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
	return out, nil
}

// EncodeFloat64 packs x as little-endian float64 without loss.
func EncodeFloat64(x []float64) []byte {
	out := make([]byte, 8*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

// DecodeFloat64 unpacks a frame produced by EncodeFloat64.
func DecodeFloat64(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("float64 frame length %d is not a multiple of 8", len(b))
	}
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out, nil
}
