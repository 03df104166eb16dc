package chunk

import (
	"context"
	"runtime"
	"slices"
)

// Sort returns a sorted copy of items using a chunked bottom-up merge sort
// that yields the scheduler between chunk sorts and between merge passes.
// Inputs no larger than ChunkSize are sorted directly. The sort is stable:
// items comparing equal keep their input order.
//
// Cancellation is checked before each chunk sort and before each merge
// pass. A cancelled sort returns nil rather than a partially sorted
// permutation, so callers never receive data that silently violates the
// sortedness contract.
func Sort[T any](ctx context.Context, items []T, cmp func(a, b T) int, opts Options) []T {
	opts = opts.withDefaults()

	if ctx.Err() != nil {
		return nil
	}

	sorted := slices.Clone(items)
	if len(sorted) <= opts.ChunkSize {
		slices.SortStableFunc(sorted, cmp)
		return sorted
	}

	for start := 0; start < len(sorted); start += opts.ChunkSize {
		if ctx.Err() != nil {
			return nil
		}
		end := min(start+opts.ChunkSize, len(sorted))
		slices.SortStableFunc(sorted[start:end], cmp)
		runtime.Gosched()
	}

	// Bottom-up: pairwise-merge adjacent sorted runs, doubling the run
	// width until a single run spans the input.
	buffer := make([]T, len(sorted))
	for width := opts.ChunkSize; width < len(sorted); width *= 2 {
		if ctx.Err() != nil {
			return nil
		}

		for left := 0; left < len(sorted); left += 2 * width {
			mid := min(left+width, len(sorted))
			right := min(left+2*width, len(sorted))
			mergeRuns(buffer[left:right], sorted[left:mid], sorted[mid:right], cmp)
		}

		sorted, buffer = buffer, sorted
		runtime.Gosched()
	}

	return sorted
}

// mergeRuns merges two sorted runs into dst, taking from the left run on
// ties to preserve stability. dst must have length len(a)+len(b).
func mergeRuns[T any](dst, a, b []T, cmp func(a, b T) int) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if cmp(a[i], b[j]) <= 0 {
			dst[k] = a[i]
			i++
		} else {
			dst[k] = b[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}
