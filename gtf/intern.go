package gtf

// Handle is an opaque reference to a canonicalized string. Two handles
// compare equal (by pointer identity, via ==) iff they were interned from
// the same table with the same spelling.
type Handle *string

// table canonicalizes strings into Handles. It never removes entries, so a
// Handle returned from a table remains valid for the table's lifetime.
type table struct {
	m map[string]Handle
}

func newTable() *table {
	return &table{m: make(map[string]Handle)}
}

// intern returns the canonical Handle for name, allocating one on first
// sight.
func (t *table) intern(name string) Handle {
	if h, ok := t.m[name]; ok {
		return h
	}
	// Copy name so the handle doesn't keep alive whatever larger buffer it
	// may have been sliced from (e.g. a line read from the input).
	s := string([]byte(name))
	h := Handle(&s)
	t.m[name] = h
	return h
}

// lookup returns the Handle for name without creating one, and whether it
// was found.
func (t *table) lookup(name string) (Handle, bool) {
	h, ok := t.m[name]
	return h, ok
}

// interner holds the five independent attribute tables an Index uses to
// canonicalize reference names, feature types, gene IDs, transcript IDs, and
// gene types. Keeping the tables disjoint per category lets the merge step
// re-intern each handle field into the right global table without ambiguity.
type interner struct {
	refs          *table
	types         *table
	geneIDs       *table
	transcriptIDs *table
	geneTypes     *table
}

func newInterner() *interner {
	return &interner{
		refs:          newTable(),
		types:         newTable(),
		geneIDs:       newTable(),
		transcriptIDs: newTable(),
		geneTypes:     newTable(),
	}
}
