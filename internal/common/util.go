// Package common contains small shared utilities used across client layers.
package common

// WipeByteArray overwrites the slice contents with zeros. Used to clear
// password buffers once they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
