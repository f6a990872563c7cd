package classify

import (
	"github.com/grailbio/gtfx/align"
	"github.com/grailbio/gtfx/gtf"
)

// Hit is the per-map (or per-template, after merge) accumulator spec.md §3
// calls the "hit record". Fields mirror gt_gtf_hit
// (original_source/GEMTools/src/gt_gtf.c) field for field.
type Hit struct {
	// Map is the alignment this hit summarizes. For a merged template hit
	// this is the first mate's map; callers that need both mates already
	// have the align.Template they classified.
	Map *align.Map

	NumJunctions int
	IntronLength uint64
	ExonOverlap  float64
	JunctionHits float64

	IsProteinCoding bool

	// Transcripts maps a transcript handle to the number of overlapping
	// exon hits on it, summed over blocks (a block overlapping two exons of
	// one transcript adds two). Genes maps a gene handle to the number of
	// blocks that hit it.
	Transcripts map[gtf.Handle]uint64
	Genes       map[gtf.Handle]uint64

	PairsSplits     bool
	PairsGene       bool
	PairsTranscript bool
}

func newHit(m *align.Map) *Hit {
	return &Hit{
		Map:         m,
		Transcripts: make(map[gtf.Handle]uint64),
		Genes:       make(map[gtf.Handle]uint64),
	}
}
