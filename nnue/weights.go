package nnue

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Weights holds the four loaded parameter buffers, each trimmed to a
// 64-byte aligned backing slice.
type Weights struct {
	FeatureWeights []int16 // InputFeatures * L1
	FeatureBias    []int16 // L1
	OutputWeights  []int16 // 2 * L1
	OutputBias     int16
}

// LoadWeights reads the four binary weight files from dir, in the layout
// spec.md §6 describes: little-endian, tightly packed, no header.
func LoadWeights(dir string) (*Weights, error) {
	featureWeights, err := readAlignedInt16s(dir+"/feature_weights.bin", InputFeatures*L1)
	if err != nil {
		return nil, errors.Wrap(err, "loading feature_weights.bin")
	}
	featureBias, err := readAlignedInt16s(dir+"/feature_bias.bin", L1)
	if err != nil {
		return nil, errors.Wrap(err, "loading feature_bias.bin")
	}
	outputWeights, err := readAlignedInt16s(dir+"/output_weights.bin", 2*L1)
	if err != nil {
		return nil, errors.Wrap(err, "loading output_weights.bin")
	}
	outputBiasBuf, err := readAlignedInt16s(dir+"/output_bias.bin", 1)
	if err != nil {
		return nil, errors.Wrap(err, "loading output_bias.bin")
	}

	return &Weights{
		FeatureWeights: featureWeights,
		FeatureBias:    featureBias,
		OutputWeights:  outputWeights,
		OutputBias:     outputBiasBuf[0],
	}, nil
}

// alignedInt16s returns a slice of n int16s whose backing array starts at
// a 64-byte aligned address, achieved by over-allocating and trimming to
// the first aligned offset (Go's substitute for `#[repr(align(64))]`).
func alignedInt16s(n int) []int16 {
	raw := make([]int16, n+alignment/2)
	addr := uintptrOf(raw)
	pad := (alignment - int(addr%alignment)) % alignment
	offset := pad / 2
	return raw[offset : offset+n]
}

func readAlignedInt16s(path string, n int) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	buf := alignedInt16s(n)
	if err := binary.Read(f, binary.LittleEndian, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "short read: expected %d int16 values", n)
		}
		return nil, errors.WithStack(err)
	}
	return buf, nil
}
