package gtf

import "sort"

// bucket is the per-reference collection of features plus the root of that
// reference's interval tree. The feature slice is sorted by Start ascending,
// ties broken by the lexicographic order of Type's spelling, once the bucket
// is finalized (after merge and intron synthesis, before the tree is built).
type bucket struct {
	features []*Feature
	root     *node
}

// byStartThenType sorts features the way every ordering in this package
// needs: ascending Start, ties broken by Type spelling. Grounded on
// gt_gtf_sort_by_start_cmp_ (original_source/GEMTools/src/gt_gtf.c).
func byStartThenType(fs []*Feature) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Start != fs[j].Start {
			return fs[i].Start < fs[j].Start
		}
		return fs[i].TypeName() < fs[j].TypeName()
	})
}

// byEndThenType sorts ascending by End, ties broken by Type spelling.
// Grounded on gt_gtf_sort_by_end_cmp_.
func byEndThenType(fs []*Feature) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].End != fs[j].End {
			return fs[i].End < fs[j].End
		}
		return fs[i].TypeName() < fs[j].TypeName()
	})
}
