// Package chunk processes large ordered collections in bounded waves.
//
// The input slice is partitioned into contiguous chunks which run one after
// another; within a chunk, Process caps how many items are in flight at
// once. One item's failure never aborts the batch: failures are collected
// as data in Result.Errors while successful values land in Result.Results
// in input order. Cancellation is cooperative and observed at chunk
// boundaries.
//
// ProcessSync covers synchronous CPU-bound work, Group buckets items by a
// key function, and Sort is a chunked stable merge sort that yields the
// scheduler between passes. Retry policy belongs in the caller's processor
// function, typically by composing with the circuitbreaker package.
package chunk
