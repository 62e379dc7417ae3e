// Package pipeline resizes source images concurrently and hands them out in
// ordered, fixed-size batches.
//
// Every path becomes one transcode task. Tasks are admitted through a weighted
// semaphore so that no more than a fixed number are in flight at once, even
// when several pipelines share the same limiter. Consecutive paths are grouped
// into batches; a batch is sent only after all of its tasks have finished, and
// batches leave in source order. Closing the batch channel is the terminal
// "no more images" signal. The first transcode failure aborts the run: no
// further batch is sent and Stream.Wait reports the error.
//
// The root photosheet package drives a pipeline per job and feeds its
// batches to the page assembler; the pipeline itself knows nothing about
// pages or documents.
package pipeline
