package circuitbreaker_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/resilience-core/internal/circuitbreaker"
)

var _ = Describe("Registry", func() {
	var registry *circuitbreaker.Registry

	BeforeEach(func() {
		registry = circuitbreaker.NewRegistry(circuitbreaker.Options{
			FailureThreshold: 2,
			ResetTimeout:     time.Minute,
		})
	})

	Describe("GetBreaker", func() {
		It("should return the same instance for the same name", func() {
			first := registry.GetBreaker("categorizer")
			second := registry.GetBreaker("categorizer")
			Expect(first).To(BeIdenticalTo(second))
		})

		It("should return independent breakers for different names", func() {
			categorizer := registry.GetBreaker("categorizer")
			storage := registry.GetBreaker("storage")
			Expect(categorizer).NotTo(BeIdenticalTo(storage))

			ctx := context.Background()
			calls := 0
			for i := 0; i < 2; i++ {
				_, _ = categorizer.Execute(ctx, failing(&calls), nil)
			}
			Expect(categorizer.State()).To(Equal(circuitbreaker.StateOpen))
			Expect(storage.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should honor per-name options only on the creating call", func() {
			first := registry.GetBreaker("flaky", circuitbreaker.Options{FailureThreshold: 1})
			second := registry.GetBreaker("flaky", circuitbreaker.Options{FailureThreshold: 99})
			Expect(first).To(BeIdenticalTo(second))

			calls := 0
			_, _ = first.Execute(context.Background(), failing(&calls), nil)
			Expect(first.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should be safe under concurrent get-or-create", func() {
			var wg sync.WaitGroup
			breakers := make([]*circuitbreaker.CircuitBreaker, 16)
			for i := range breakers {
				i := i
				wg.Add(1)
				go func() {
					defer wg.Done()
					breakers[i] = registry.GetBreaker("shared")
				}()
			}
			wg.Wait()

			for _, cb := range breakers {
				Expect(cb).To(BeIdenticalTo(breakers[0]))
			}
		})
	})

	Describe("Metrics", func() {
		It("should snapshot every registered breaker by name", func() {
			registry.GetBreaker("healthy")
			flaky := registry.GetBreaker("flaky")

			ctx := context.Background()
			calls := 0
			for i := 0; i < 2; i++ {
				_, _ = flaky.Execute(ctx, failing(&calls), nil)
			}

			snapshots := registry.Metrics()
			Expect(snapshots).To(HaveLen(2))
			Expect(snapshots["healthy"].Healthy).To(BeTrue())
			Expect(snapshots["flaky"].Healthy).To(BeFalse())
			Expect(snapshots["flaky"].State).To(Equal(circuitbreaker.StateOpen))
		})
	})

	Describe("ResetAll", func() {
		It("should force every breaker back to CLOSED without dropping instances", func() {
			flaky := registry.GetBreaker("flaky")

			ctx := context.Background()
			calls := 0
			for i := 0; i < 2; i++ {
				_, _ = flaky.Execute(ctx, failing(&calls), nil)
			}
			Expect(flaky.State()).To(Equal(circuitbreaker.StateOpen))

			registry.ResetAll()

			Expect(flaky.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(registry.GetBreaker("flaky")).To(BeIdenticalTo(flaky))
		})
	})
})
