package chunk

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultChunkSize     = 100
	DefaultMaxConcurrent = 4
)

// ItemError records a single item's failure without aborting the batch.
type ItemError struct {
	Err   error
	Item  any
	Index int
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a batch run. Results holds the successful values
// in input order with failed items omitted; Errors holds one entry per
// failed item. When Cancelled is false every input item is accounted for in
// exactly one of the two.
type Result[R any] struct {
	Results   []R
	Errors    []ItemError
	Cancelled bool
}

type Options struct {
	// ChunkSize is how many items form one scheduling unit. The last chunk
	// may be smaller. Defaults to DefaultChunkSize.
	ChunkSize int

	// MaxConcurrent caps how many items of a chunk run at once on the
	// concurrent path. Defaults to DefaultMaxConcurrent.
	MaxConcurrent int

	// Delay pauses between consecutive chunks when positive.
	Delay time.Duration

	// OnProgress is invoked after each item is attempted, successful or
	// not, with the number of attempted items and the batch total.
	OnProgress func(completed, total int)

	// OnError is invoked for each failed item as it fails.
	OnError func(ItemError)
}

func (o Options) withDefaults() Options {
	if o.ChunkSize < 1 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxConcurrent < 1 {
		o.MaxConcurrent = DefaultMaxConcurrent
	}
	return o
}

// Process runs processor over items in chunks of ChunkSize, with at most
// MaxConcurrent items of a chunk in flight at once. A finished item frees
// its concurrency slot immediately; chunks themselves run sequentially.
//
// A failing item never aborts the run: its error lands in Result.Errors and
// the remaining items proceed. Cancellation is cooperative and observed at
// chunk boundaries only; items of an already-started chunk run to
// completion and their outcomes are kept. If ctx is already cancelled on
// entry, the processor is never invoked.
func Process[T, R any](ctx context.Context, items []T, processor func(ctx context.Context, item T, index int) (R, error), opts Options) Result[R] {
	opts = opts.withDefaults()

	var result Result[R]
	if ctx.Err() != nil {
		result.Cancelled = true
		return result
	}

	total := len(items)
	completed := 0
	var mutex sync.Mutex

	for start := 0; start < total; start += opts.ChunkSize {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result
		}

		end := min(start+opts.ChunkSize, total)
		chunk := items[start:end]

		// Successes are placed by index so result order matches input
		// order regardless of completion order.
		slots := make([]*R, len(chunk))

		group := new(errgroup.Group)
		group.SetLimit(opts.MaxConcurrent)

		for i := range chunk {
			i := i
			group.Go(func() error {
				value, err := processor(ctx, chunk[i], start+i)

				mutex.Lock()
				defer mutex.Unlock()

				if err != nil {
					itemErr := ItemError{Err: err, Item: chunk[i], Index: start + i}
					result.Errors = append(result.Errors, itemErr)
					if opts.OnError != nil {
						opts.OnError(itemErr)
					}
				} else {
					slots[i] = &value
				}

				completed++
				if opts.OnProgress != nil {
					opts.OnProgress(completed, total)
				}
				return nil
			})
		}

		// Item failures are data, not group errors; Wait only synchronizes.
		_ = group.Wait()

		for _, slot := range slots {
			if slot != nil {
				result.Results = append(result.Results, *slot)
			}
		}

		if end < total {
			pause(ctx, opts.Delay)
		}
	}

	return result
}

// ProcessSync is Process for synchronous CPU-bound work: items within a
// chunk run strictly one at a time and MaxConcurrent is ignored. The
// scheduler is yielded between chunks so long batches do not starve other
// goroutines.
func ProcessSync[T, R any](ctx context.Context, items []T, processor func(item T, index int) (R, error), opts Options) Result[R] {
	opts = opts.withDefaults()

	var result Result[R]
	if ctx.Err() != nil {
		result.Cancelled = true
		return result
	}

	total := len(items)
	completed := 0

	for start := 0; start < total; start += opts.ChunkSize {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result
		}

		end := min(start+opts.ChunkSize, total)

		for i, item := range items[start:end] {
			value, err := processor(item, start+i)
			if err != nil {
				itemErr := ItemError{Err: err, Item: item, Index: start + i}
				result.Errors = append(result.Errors, itemErr)
				if opts.OnError != nil {
					opts.OnError(itemErr)
				}
			} else {
				result.Results = append(result.Results, value)
			}

			completed++
			if opts.OnProgress != nil {
				opts.OnProgress(completed, total)
			}
		}

		if end < total {
			pause(ctx, opts.Delay)
		}
	}

	return result
}

// pause sleeps for delay or until ctx is cancelled, whichever comes first,
// and always yields the scheduler once.
func pause(ctx context.Context, delay time.Duration) {
	runtime.Gosched()
	if delay <= 0 {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
