package classify

import (
	"strings"

	"github.com/grailbio/gtfx/align"
	"github.com/grailbio/gtfx/gtf"
)

// Counts tallies uniquely-mapped reads/templates by feature-type category
// and by gene, per spec.md §4.9. The zero value is ready to use.
//
// Grounded on gt_gtf_count_map/gt_gtf_count_map_/gt_gtf_count_template
// (original_source/GEMTools/src/gt_gtf.c) and the Stats.Merge accumulator
// pattern the teacher uses for run-level tallies (fusion/stats.go).
type Counts struct {
	ByType map[string]uint64
	ByGene map[gtf.Handle]uint64
}

// NewCounts returns an empty Counts ready for CountMap/CountTemplate.
func NewCounts() *Counts {
	return &Counts{ByType: make(map[string]uint64), ByGene: make(map[gtf.Handle]uint64)}
}

// Merge adds o's tallies into a copy of c and returns it.
func (c Counts) Merge(o Counts) Counts {
	out := Counts{ByType: make(map[string]uint64, len(c.ByType)), ByGene: make(map[gtf.Handle]uint64, len(c.ByGene))}
	for k, v := range c.ByType {
		out.ByType[k] += v
	}
	for k, v := range o.ByType {
		out.ByType[k] += v
	}
	for k, v := range c.ByGene {
		out.ByGene[k] += v
	}
	for k, v := range o.ByGene {
		out.ByGene[k] += v
	}
	return out
}

// CountMap tallies m into c, but only when numMaps == 1: spec.md §4.9's
// uniqueness rule for a single-mate alignment.
func (c *Counts) CountMap(idx *gtf.Index, m *align.Map, numMaps int) {
	if numMaps != 1 {
		return
	}
	c.countOneMap(idx, m)
}

// CountTemplate tallies each present mate of t into c as its own map (so a
// template with both mates adds two votes), but only when numMapPairs == 1:
// spec.md §4.9's uniqueness rule for a paired template.
func (c *Counts) CountTemplate(idx *gtf.Index, t *align.Template, numMapPairs int) {
	if numMapPairs != 1 {
		return
	}
	if t.Mate0 != nil {
		c.countOneMap(idx, t.Mate0)
	}
	if t.Mate1 != nil {
		c.countOneMap(idx, t.Mate1)
	}
}

func (c *Counts) countOneMap(idx *gtf.Index, m *align.Map) {
	label, gene, hasGene := classifyMapCounts(idx, m)
	if c.ByType == nil {
		c.ByType = make(map[string]uint64)
	}
	if c.ByGene == nil {
		c.ByGene = make(map[gtf.Handle]uint64)
	}
	c.ByType[label]++
	if hasGene {
		c.ByGene[gene]++
	}
}

// classifyMapCounts computes m's type-category label and, if every block
// resolves to the very same gene, that gene's handle.
func classifyMapCounts(idx *gtf.Index, m *align.Map) (label string, gene gtf.Handle, hasGene bool) {
	genes := make(map[gtf.Handle]bool)
	var exons, introns, unknown, geneBlocks int
	var buf []*gtf.Feature
	for _, block := range m.Blocks {
		buf = idx.SearchInto(buf, m.Reference, block.Start, block.End)
		switch blockCategory(buf) {
		case exonType:
			exons++
		case "intron":
			introns++
		default:
			unknown++
		}
		blockHasGene := false
		for _, f := range buf {
			if f.GeneID != nil {
				genes[f.GeneID] = true
				blockHasGene = true
			}
		}
		if blockHasGene {
			geneBlocks++
		}
	}

	k := len(m.Blocks)
	switch {
	case exons == k:
		label = exonType
	case introns == k:
		label = "intron"
	case unknown == k:
		label = "unknown"
	default:
		var parts []string
		if exons > 0 {
			parts = append(parts, exonType)
		}
		if introns > 0 {
			parts = append(parts, "intron")
		}
		if unknown > 0 {
			parts = append(parts, "unknown")
		}
		label = strings.Join(parts, "|")
	}

	if len(genes) == 1 && geneBlocks == k {
		for g := range genes {
			gene, hasGene = g, true
		}
	}
	return label, gene, hasGene
}

// blockCategory votes one block's feature-type category: exon if any
// overlapping feature is an exon, else intron if any is an intron, else
// unknown.
func blockCategory(hits []*gtf.Feature) string {
	hasIntron := false
	for _, f := range hits {
		switch f.TypeName() {
		case exonType:
			return exonType
		case "intron":
			hasIntron = true
		}
	}
	if hasIntron {
		return "intron"
	}
	return "unknown"
}
