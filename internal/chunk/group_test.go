package chunk_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/resilience-core/internal/chunk"
)

var _ = Describe("Group", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should bucket items by key preserving order within each bucket", func() {
		groups := chunk.Group(ctx, []int{1, 2, 3, 4, 5, 6},
			func(n int) string {
				if n%2 == 0 {
					return "even"
				}
				return "odd"
			},
			chunk.Options{ChunkSize: 2})

		Expect(groups).To(HaveLen(2))
		Expect(groups["odd"]).To(Equal([]int{1, 3, 5}))
		Expect(groups["even"]).To(Equal([]int{2, 4, 6}))
	})

	It("should return an empty map for empty input", func() {
		groups := chunk.Group(ctx, []int{}, func(n int) int { return n }, chunk.Options{})
		Expect(groups).To(BeEmpty())
	})

	It("should return an empty map when cancelled before it starts", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		groups := chunk.Group(cancelled, []int{1, 2, 3},
			func(n int) int { return n }, chunk.Options{})
		Expect(groups).To(BeEmpty())
	})
})
