/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

// Shuffle returns a uniformly random permutation of in using Fisher-Yates.
// The input slice is not modified.
func Shuffle[T any](src Source, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)

	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}

	return out
}
