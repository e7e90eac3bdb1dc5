// Package nnue implements the quantized value network: a single hidden
// layer with perspective-split accumulators, evaluated from scratch on
// every leaf (no incremental updates across siblings).
package nnue

// Quantization layout, bit-for-bit: 768 input features, L1 = 768 hidden
// units per perspective, feature weights quantized by QA, output weights
// by QB, final score scaled by Scale.
const (
	InputFeatures = 768
	L1            = 768
	QA            = 255
	QB            = 64
	QAB           = QA * QB
	Scale         = 400

	clampMin = 0
	clampMax = 255
)

// alignment is the byte boundary every loaded parameter buffer must
// satisfy; Go has no `#[repr(align(64))]`, so buffers are over-allocated
// and trimmed to the first aligned offset (see weights.go).
const alignment = 64
