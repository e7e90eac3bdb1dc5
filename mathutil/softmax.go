// Package mathutil holds small numeric helpers shared by the policy and
// evaluation pipelines.
package mathutil

import "github.com/chewxy/math32"

// Softmax replaces each element of xs with exp(x-m)/sum(exp(xi-m)), where m
// is the maximum of xs. It operates in place and is a no-op on an empty
// slice.
func Softmax(xs []float32) {
	if len(xs) == 0 {
		return
	}

	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}

	var sum float32
	for i, x := range xs {
		e := math32.Exp(x - m)
		xs[i] = e
		sum += e
	}

	if sum == 0 {
		return
	}

	for i := range xs {
		xs[i] /= sum
	}
}
