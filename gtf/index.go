package gtf

// Index is the top-level annotation index: a mapping from reference name to
// that reference's bucket of features and interval tree, plus the five
// intern tables that canonicalize every string a Feature can reference. An
// Index exclusively owns every Feature, tree node, and interned string
// reachable from it.
//
// A freshly-built Index (returned by Load/LoadFromPath) is immutable and
// safe for concurrent Search calls from many goroutines. An Index under
// construction (as used internally by each ingest worker) is not
// goroutine-safe and must not be shared across goroutines.
type Index struct {
	interner *interner
	buckets  map[string]*bucket

	// nextUID is the next uid to assign. Worker-local indices leave it at
	// zero; merge sets it past the last merged uid, and the intron
	// synthesizer assigns uids from it on the merged Index.
	nextUID uint64
}

func newIndex() *Index {
	return &Index{
		interner: newInterner(),
		buckets:  make(map[string]*bucket),
	}
}

// bucketFor returns the bucket for ref, creating it (and interning ref) if
// necessary.
func (idx *Index) bucketFor(ref string) *bucket {
	h := idx.interner.refs.intern(ref)
	b, ok := idx.buckets[*h]
	if !ok {
		b = &bucket{}
		idx.buckets[*h] = b
	}
	return b
}

// References returns the names of every reference known to the index, in no
// particular order.
func (idx *Index) References() []string {
	out := make([]string, 0, len(idx.buckets))
	for ref := range idx.buckets {
		out = append(out, ref)
	}
	return out
}

// NumFeatures returns the total number of features across every reference.
func (idx *Index) NumFeatures() int {
	n := 0
	for _, b := range idx.buckets {
		n += len(b.features)
	}
	return n
}

// Search returns every feature on ref whose closed interval [Start, End]
// intersects the closed interval [start, end]. An unknown reference yields a
// nil (empty) result, not an error. Result ordering is unspecified.
//
// Search is safe for concurrent use by multiple goroutines; concurrent
// SearchInto calls are safe as long as each call uses its own dst buffer.
func (idx *Index) Search(ref string, start, end uint64) []*Feature {
	return idx.SearchInto(nil, ref, start, end)
}

// SearchInto is Search, but appends results to (and may reuse the backing
// array of) dst, letting a caller that issues many searches reuse one
// scratch buffer across calls instead of allocating a new result slice per
// query.
func (idx *Index) SearchInto(dst []*Feature, ref string, start, end uint64) []*Feature {
	b, ok := idx.buckets[ref]
	if !ok {
		return dst[:0]
	}
	return search(b.root, start, end, dst[:0])
}
