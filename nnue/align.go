package nnue

import "unsafe"

// uintptrOf returns the address of a slice's backing array, used only to
// compute alignment padding in alignedInt16s.
func uintptrOf(s []int16) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s[0]))
}
