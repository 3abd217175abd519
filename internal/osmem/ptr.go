package osmem

import "unsafe"

// ptrOf returns the address of the first byte of b without copying.
func ptrOf(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
