package chunk

import (
	"context"
)

// Group buckets items by the key function, processing the input in chunks
// on the synchronous path so large inputs honor the same cancellation and
// progress semantics as any other batch. A cancelled run returns an empty
// map.
func Group[T any, K comparable](ctx context.Context, items []T, key func(item T) K, opts Options) map[K][]T {
	groups := make(map[K][]T)

	result := ProcessSync(ctx, items, func(item T, _ int) (struct{}, error) {
		k := key(item)
		groups[k] = append(groups[k], item)
		return struct{}{}, nil
	}, opts)

	if result.Cancelled {
		return map[K][]T{}
	}
	return groups
}
