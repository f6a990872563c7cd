// Package gtf builds an in-memory index of genomic feature annotations
// (GTF/GFF-style exon/transcript/gene records) and answers range-overlap
// queries against it.
//
// A Load (or LoadFromPath) call fans the input lines across a worker pool,
// each worker parsing into its own private Index, then merges the private
// indices into one, synthesizes intronic features between consecutive exons
// of the same transcript, and builds a centered interval tree per reference.
// The result is immutable; Search may be called concurrently from many
// goroutines.
package gtf
