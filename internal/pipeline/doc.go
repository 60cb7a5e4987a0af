// Package pipeline runs the stages of a comparison in sequence.
//
// A run over one document pair goes through extraction, diffing, report
// writing, annotation and history recording. Each stage is a Step that
// receives the run and fills in its part. The Pipeline adds consistent
// logging, error recording and cancellation between steps.
//
// BatchProcessor runs independent pairs concurrently with errgroup, each pair
// through a fresh Pipeline and into its own run directory.
package pipeline
