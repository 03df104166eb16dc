package chunk_test

import (
	"context"
	"math/rand"
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/resilience-core/internal/chunk"
)

func intCompare(a, b int) int { return a - b }

var _ = Describe("Sort", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should sort across chunk boundaries", func() {
		sorted := chunk.Sort(ctx, []int{5, 3, 1, 4, 2}, intCompare, chunk.Options{ChunkSize: 2})
		Expect(sorted).To(Equal([]int{1, 2, 3, 4, 5}))
	})

	It("should sort small inputs directly", func() {
		sorted := chunk.Sort(ctx, []int{3, 1, 2}, intCompare, chunk.Options{ChunkSize: 10})
		Expect(sorted).To(Equal([]int{1, 2, 3}))
	})

	It("should not mutate the input", func() {
		items := []int{5, 3, 1}
		chunk.Sort(ctx, items, intCompare, chunk.Options{ChunkSize: 2})
		Expect(items).To(Equal([]int{5, 3, 1}))
	})

	It("should produce an ordered permutation of a large random input", func() {
		rng := rand.New(rand.NewSource(1))
		items := make([]int, 500)
		for i := range items {
			items[i] = rng.Intn(1000)
		}

		sorted := chunk.Sort(ctx, items, intCompare, chunk.Options{ChunkSize: 16})

		Expect(sorted).To(HaveLen(len(items)))
		Expect(slices.IsSorted(sorted)).To(BeTrue())

		expected := slices.Clone(items)
		slices.Sort(expected)
		Expect(sorted).To(Equal(expected))
	})

	It("should be idempotent under re-sort", func() {
		items := []int{9, 1, 8, 2, 7, 3, 6, 4, 5}
		once := chunk.Sort(ctx, items, intCompare, chunk.Options{ChunkSize: 3})
		twice := chunk.Sort(ctx, once, intCompare, chunk.Options{ChunkSize: 3})
		Expect(twice).To(Equal(once))
	})

	It("should keep input order for items comparing equal", func() {
		type record struct {
			Key int
			Seq int
		}

		items := make([]record, 40)
		for i := range items {
			items[i] = record{Key: i % 4, Seq: i}
		}

		sorted := chunk.Sort(ctx, items, func(a, b record) int { return a.Key - b.Key },
			chunk.Options{ChunkSize: 8})

		for i := 1; i < len(sorted); i++ {
			if sorted[i-1].Key == sorted[i].Key {
				Expect(sorted[i-1].Seq).To(BeNumerically("<", sorted[i].Seq))
			}
		}
	})

	It("should handle empty and single-element inputs", func() {
		Expect(chunk.Sort(ctx, []int{}, intCompare, chunk.Options{})).To(BeEmpty())
		Expect(chunk.Sort(ctx, []int{7}, intCompare, chunk.Options{})).To(Equal([]int{7}))
	})

	It("should return nothing when cancelled before it starts", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		sorted := chunk.Sort(cancelled, []int{3, 1, 2}, intCompare, chunk.Options{ChunkSize: 2})
		Expect(sorted).To(BeEmpty())
	})
})
