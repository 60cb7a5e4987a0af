// Package output names and creates the per-run artifact directory.
//
// Every run writes into its own directory named after the run start time,
// so repeated runs against the same base directory never overwrite earlier
// results.
package output
