// Package classify implements the alignment classifier (spec.md §4.7-§4.8)
// and the counting aggregators (§4.9): turning per-block overlap-query
// results into per-read and per-paired-template verdicts about transcript
// and gene consistency, junction coincidence, and exon/intron/gene tallies.
//
// Grounded on gt_gtf_create_hit, gt_gtf_search_template_for_exons, and
// gt_gtf_hits_junction (original_source/GEMTools/src/gt_gtf.c).
package classify

import (
	"github.com/grailbio/gtfx/align"
	"github.com/grailbio/gtfx/gtf"
)

const (
	exonType          = "exon"
	proteinCodingType = "protein_coding"
)

// ClassifyMap builds a Hit for a single (possibly split) map, per spec.md
// §4.7: every block is searched for overlapping protein-coding exons,
// transcript/gene hit counts accumulate across blocks, and the split and
// gene-pairing verdicts are computed from the final counts.
func ClassifyMap(idx *gtf.Index, m *align.Map, opts Opts) *Hit {
	opts = opts.withDefaults()
	hit := buildHit(idx, m, 1.0)

	k := len(m.Blocks)
	if k > 0 {
		for _, count := range hit.Genes {
			if count == uint64(k) {
				hit.PairsGene = true
			}
		}
	} else {
		// Only reached for a hand-built align.Map with no blocks;
		// BlocksFromCIGAR never returns one.
		hit.PairsGene = true
	}
	return hit
}

// ClassifyTemplate builds a Hit for a paired template, per spec.md §4.8:
// each mate is classified as in §4.7 (using the paired junction-hit
// normalization factor), then the two hits are merged by averaging
// overlap/junction fractions, summing junction and intron counts, ANDing
// protein-coding status, and intersecting-and-summing the transcript/gene
// tallies.
func ClassifyTemplate(idx *gtf.Index, t *align.Template, opts Opts) *Hit {
	opts = opts.withDefaults()
	if t.Mate0 == nil || t.Mate1 == nil {
		// A single-mapped mate degrades to a plain per-map classification;
		// there is nothing to merge.
		if t.Mate0 != nil {
			return ClassifyMap(idx, t.Mate0, opts)
		}
		return ClassifyMap(idx, t.Mate1, opts)
	}

	a := buildHit(idx, t.Mate0, opts.PairedJunctionFactor)
	b := buildHit(idx, t.Mate1, opts.PairedJunctionFactor)

	merged := newHit(t.Mate0)
	merged.ExonOverlap = (a.ExonOverlap + b.ExonOverlap) / 2.0
	merged.IntronLength = a.IntronLength + b.IntronLength
	merged.IsProteinCoding = a.IsProteinCoding && b.IsProteinCoding
	merged.JunctionHits = (a.JunctionHits + b.JunctionHits) / 2.0

	// pairs_splits merge uses a's num_junctions before the summed total
	// below is computed, matching the original's evaluation order.
	switch {
	case a.NumJunctions > 0 && b.NumJunctions > 0:
		merged.PairsSplits = a.PairsSplits && b.PairsSplits
	case a.NumJunctions > 0:
		merged.PairsSplits = a.PairsSplits
	default:
		merged.PairsSplits = b.PairsSplits
	}
	merged.NumJunctions = a.NumJunctions + b.NumJunctions

	intersectSum(merged.Transcripts, a.Transcripts, b.Transcripts)
	intersectSum(merged.Genes, a.Genes, b.Genes)

	totalBlocks := uint64(len(t.Mate0.Blocks) + len(t.Mate1.Blocks))
	for _, count := range merged.Transcripts {
		if count > 1 && count == totalBlocks {
			merged.PairsTranscript = true
		}
	}
	for _, count := range merged.Genes {
		if count > 1 && count == totalBlocks {
			merged.PairsGene = true
		}
	}
	return merged
}

// intersectSum fills dst with the keys common to a and b, each mapped to the
// sum of the two sides' counts. Keys present in only one side are dropped,
// per spec.md §4.8.
func intersectSum(dst, a, b map[gtf.Handle]uint64) {
	for k, av := range a {
		if bv, ok := b[k]; ok {
			dst[k] = av + bv
		}
	}
}

// buildHit runs the per-block overlap search and accumulation described in
// spec.md §4.7, normalizing junction_hits by num_junctions*junctionDivisor.
// It does not set PairsGene: single-map and paired-template callers compute
// that verdict differently (see ClassifyMap and ClassifyTemplate).
func buildHit(idx *gtf.Index, m *align.Map, junctionDivisor float64) *Hit {
	hit := newHit(m)
	hit.NumJunctions = m.NumJunctions()

	var buf []*gtf.Feature
	geneSeen := make(map[gtf.Handle]bool)

	for i, block := range m.Blocks {
		buf = idx.SearchInto(buf, m.Reference, block.Start, block.End)

		var localOverlap float64
		junctionCredited := false
		for k := range geneSeen {
			delete(geneSeen, k)
		}

		for _, f := range buf {
			if f.TypeName() != exonType || f.GeneTypeName() != proteinCodingType {
				continue
			}
			hit.IsProteinCoding = true

			readLength := float64(block.End-block.Start) + 1
			featureLength := float64(f.End-f.Start) + 1
			lclip := clipBelow(block.Start, f.Start)
			rclip := clipBelow(f.End, block.End)
			over := (featureLength - lclip - rclip) / readLength
			if over > localOverlap {
				localOverlap = over
			}

			if i > 0 && hit.NumJunctions > 0 && !junctionCredited {
				if blockHitsJunction(block, f) {
					hit.JunctionHits++
					junctionCredited = true
				}
			}

			if f.TranscriptID != nil {
				hit.Transcripts[f.TranscriptID]++
			}
			if f.GeneID != nil && !geneSeen[f.GeneID] {
				geneSeen[f.GeneID] = true
				hit.Genes[f.GeneID]++
			}
		}

		if i < len(m.Gaps) {
			hit.IntronLength += m.Gaps[i]
		}
		hit.ExonOverlap += localOverlap
	}

	if len(m.Blocks) > 0 {
		hit.ExonOverlap /= float64(len(m.Blocks))
	}
	if hit.NumJunctions > 0 {
		hit.JunctionHits /= float64(hit.NumJunctions) * junctionDivisor
	}

	k := len(m.Blocks)
	for _, count := range hit.Transcripts {
		if count > 1 && count == uint64(k) {
			hit.PairsSplits = true
		}
	}
	return hit
}

// clipBelow returns max(0, a-b) without relying on unsigned wraparound.
func clipBelow(a, b uint64) float64 {
	if a <= b {
		return 0
	}
	return float64(a - b)
}

// blockHitsJunction reports whether block's start or end coincides with f's
// start or end, per gt_gtf_hits_junction.
func blockHitsJunction(block align.Block, f *gtf.Feature) bool {
	return block.Start == f.Start || block.Start == f.End ||
		block.End == f.Start || block.End == f.End
}
