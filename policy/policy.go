// Package policy implements the move-selection prior: a single dense
// linear layer over the board's feature vector, producing one logit per
// policy-index slot, gathered onto the legal moves and softmaxed into a
// probability distribution.
package policy

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/vecf32"

	"github.com/kestrelchess/puctcore/mathutil"
	"github.com/kestrelchess/puctcore/position"
)

// Slots is the number of policy-index output slots (spec.md §4.3:
// move_to_index → [0, 384)).
const Slots = 384

// Net holds the weight matrix, row-major by slot: Weights[slot] is a
// FeatureCount-length row.
type Net struct {
	Weights [][]float32 // Slots rows, each position.FeatureCount wide
}

// Load reads a policy_weights.bin file: Slots * FeatureCount little-endian
// f32 values, row-major by output slot. This is the Go substitute for the
// teacher's occasional compiled-in weight literal — no example in this
// module's dependency pack embeds network weights as source code, so
// every net here loads from a file at runtime instead.
func Load(path string) (*Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	flat := make([]float32, Slots*position.FeatureCount)
	if err := binary.Read(f, binary.LittleEndian, flat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "short read: expected %d f32 values", len(flat))
		}
		return nil, errors.WithStack(err)
	}

	rows := make([][]float32, Slots)
	for i := range rows {
		rows[i] = flat[i*position.FeatureCount : (i+1)*position.FeatureCount]
	}
	return &Net{Weights: rows}, nil
}

// Forward evaluates the policy distribution over legalMoves: one
// accumulator per move, initialized to zero. For every active feature
// index in the position, a per-move contribution vector is gathered (one
// weight per move, at that move's policy slot and this feature) and
// folded into the accumulator with a single elementwise add — the one
// place in this module where accumulation is naturally a slice-into-slice
// add, hence gorgonia.org/vecf32 rather than a per-element loop.
func Forward(net *Net, st *position.State, legalMoves []position.Move) []float32 {
	acc := make([]float32, len(legalMoves))
	if len(acc) == 0 {
		return acc
	}

	slots := make([]int, len(legalMoves))
	for i, m := range legalMoves {
		slots[i] = st.MoveToIndex(m)
	}

	contrib := make([]float32, len(legalMoves))
	st.FeaturesMap(func(idx int) {
		for i, slot := range slots {
			contrib[i] = net.Weights[slot][idx]
		}
		vecf32.Add(acc, contrib)
	})

	mathutil.Softmax(acc)
	return acc
}
