// Package align provides the "supplied" alignment data model spec.md §6
// treats as an external collaborator: mapped reads expressed as a sequence
// of colinear blocks on one reference, plus paired templates built from two
// such maps.
//
// Grounded on github.com/grailbio/hts/sam.Record/sam.Cigar for the CIGAR
// walk, and on how the teacher turns a CIGAR into aligned blocks and gaps
// (markduplicates/read_pair.go, pileup/common.go).
package align

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Block is one contiguous aligned segment of a mapped read, using 1-based
// inclusive coordinates to match gtf.Feature.
type Block struct {
	Start, End uint64
}

// Map is a single (possibly split) alignment to one reference: its blocks in
// reference order, and the junction gap size between each consecutive pair
// of blocks (len(Gaps) == len(Blocks)-1).
type Map struct {
	Reference string
	Blocks    []Block
	Gaps      []uint64
}

// NumJunctions is block_count - 1, per spec.md §3's hit-record definition.
func (m *Map) NumJunctions() int {
	if len(m.Blocks) == 0 {
		return 0
	}
	return len(m.Blocks) - 1
}

// Template is a paired-end alignment: two mates' Maps to the same template.
// Either mate may be nil if that mate didn't map, though ClassifyTemplate
// (package classify) only has a defined paired-merge result when both are
// present.
type Template struct {
	Mate0, Mate1 *Map
}

// BlocksFromCIGAR derives a Map from a mapped sam.Record: each run of
// consecutive M/=/X/D operations becomes one block, and each N ("skip",
// i.e. a spliced intron) becomes a gap between blocks; deletions always stay
// within their block. Soft/hard clips and insertions do not advance the
// reference and are ignored.
//
// Grounded on the CIGAR-walking idiom in markduplicates/read_pair.go and
// pileup/common.go, generalized from "reference bases covered" accounting
// to "block spans + gap sizes".
func BlocksFromCIGAR(rec *sam.Record) (*Map, error) {
	if rec == nil {
		return nil, errors.E("align.BlocksFromCIGAR: nil record")
	}
	if rec.Ref == nil {
		return nil, errors.E("align.BlocksFromCIGAR: unmapped record", rec.Name)
	}

	m := &Map{Reference: rec.Ref.Name()}
	// pos is 0-based per sam.Record.Pos; blocks are reported 1-based
	// inclusive to match gtf.Feature's coordinate convention.
	pos := uint64(rec.Pos)
	var blockStart uint64
	inBlock := false

	flushBlock := func(end uint64) {
		if inBlock {
			m.Blocks = append(m.Blocks, Block{Start: blockStart + 1, End: end})
			inBlock = false
		}
	}

	for _, op := range rec.Cigar {
		n := uint64(op.Len())
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion:
			if !inBlock {
				blockStart = pos
				inBlock = true
			}
			pos += n
		case sam.CigarSkipped:
			flushBlock(pos)
			m.Gaps = append(m.Gaps, n)
			pos += n
		case sam.CigarInsertion, sam.CigarSoftClipped, sam.CigarHardClipped, sam.CigarPadded:
			// Does not advance the reference.
		default:
			// Unrecognized op: conservatively treat as reference-consuming,
			// matching sam's own RefLength behavior for unknown ops.
			pos += n
		}
	}
	flushBlock(pos)

	if len(m.Blocks) == 0 {
		return nil, errors.E("align.BlocksFromCIGAR: no reference-consuming CIGAR operations", rec.Name)
	}
	if len(m.Gaps) != len(m.Blocks)-1 {
		// A leading/trailing N or consecutive N runs produced a gap
		// count that doesn't match block_count-1; collapse by re-deriving
		// gaps from the block boundaries themselves, which is always
		// consistent by construction.
		m.Gaps = m.Gaps[:0]
		for i := 1; i < len(m.Blocks); i++ {
			m.Gaps = append(m.Gaps, m.Blocks[i].Start-m.Blocks[i-1].End-1)
		}
	}
	return m, nil
}
