package gtf

// node is one node of a centered interval tree. Every feature routed to a
// node satisfies Start <= midpoint <= End; features strictly left of
// midpoint (End < midpoint) live in the left subtree, features strictly
// right (Start > midpoint) live in the right subtree.
//
// Grounded on gt_gtf_create_node / gt_gtf_search_node_
// (original_source/GEMTools/src/gt_gtf.c).
type node struct {
	midpoint uint64
	byStart  []*Feature
	byEnd    []*Feature
	left     *node
	right    *node
}

// buildTree builds a centered interval tree over features. features is
// consumed (its backing array may be reordered/reused by recursive calls)
// and should not be used by the caller afterward.
func buildTree(features []*Feature) *node {
	if len(features) == 0 {
		return nil
	}
	pivot := features[len(features)/2]
	midpoint := pivot.Start + (pivot.End-pivot.Start)/2

	var left, right, center []*Feature
	for _, f := range features {
		switch {
		case f.End < midpoint:
			left = append(left, f)
		case f.Start > midpoint:
			right = append(right, f)
		default:
			center = append(center, f)
		}
	}

	byStart := append([]*Feature(nil), center...)
	byStartThenType(byStart)
	byEnd := append([]*Feature(nil), center...)
	byEndThenType(byEnd)

	return &node{
		midpoint: midpoint,
		byStart:  byStart,
		byEnd:    byEnd,
		left:     buildTree(left),
		right:    buildTree(right),
	}
}

// search appends to dst every feature in the subtree rooted at n whose
// interval intersects the closed interval [start, end], and returns the
// extended slice.
func search(n *node, start, end uint64, dst []*Feature) []*Feature {
	if n == nil {
		return dst
	}
	for _, f := range n.byStart {
		if f.Start > end {
			break
		}
		if f.Overlaps(start, end) {
			dst = append(dst, f)
		}
	}
	if end < n.midpoint || start < n.midpoint {
		dst = search(n.left, start, end, dst)
	}
	if start > n.midpoint || end > n.midpoint {
		dst = search(n.right, start, end, dst)
	}
	return dst
}
