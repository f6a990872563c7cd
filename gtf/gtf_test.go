package gtf

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// lines turns a raw multi-line GTF fixture into a LineSource, the way a
// caller would build one from a file.
func lines(text string) LineSource {
	return NewLineSource(strings.NewReader(strings.TrimLeft(text, "\n")))
}

func loadText(t *testing.T, text string, workers int) *Index {
	opts := DefaultOpts
	opts.Workers = workers
	idx, err := Load(lines(text), opts)
	assert.NoError(t, err)
	return idx
}

// S1 — two overlapping exons, one query.
func TestSearchOverlappingExons(t *testing.T) {
	const gtf = `
chr1	src	exon	100	200	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	src	exon	150	300	.	+	.	gene_id "g1"; transcript_id "t1";
`
	idx := loadText(t, gtf, 1)
	hits := idx.Search("chr1", 250, 260)
	assert.EQ(t, len(hits), 1)
	expect.EQ(t, hits[0].Start, uint64(150))
	expect.EQ(t, hits[0].End, uint64(300))
}

// S2 — intron synthesis.
func TestIntronSynthesis(t *testing.T) {
	const gtf = `
chr1	src	exon	100	200	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	src	exon	150	300	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	src	exon	400	500	.	+	.	gene_id "g1"; transcript_id "t1";
`
	idx := loadText(t, gtf, 1)
	b := idx.buckets["chr1"]
	var found *Feature
	for _, f := range b.features {
		if f.TypeName() == "intron" {
			found = f
		}
	}
	assert.True(t, found != nil)
	expect.EQ(t, found.Start, uint64(301))
	expect.EQ(t, found.End, uint64(399))
	expect.EQ(t, *found.TranscriptID, "t1")
	expect.EQ(t, *found.GeneID, "g1")
}

// Overlapping/book-ended consecutive exons must not emit a start>end intron.
func TestIntronSuppressedWhenNonPositive(t *testing.T) {
	const gtf = `
chr1	src	exon	100	200	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	src	exon	180	300	.	+	.	gene_id "g1"; transcript_id "t1";
`
	idx := loadText(t, gtf, 1)
	b := idx.buckets["chr1"]
	for _, f := range b.features {
		if f.TypeName() == "intron" {
			t.Fatalf("unexpected intron for overlapping exons: %+v", f)
		}
	}
}

// S6 — unknown reference.
func TestSearchUnknownReference(t *testing.T) {
	idx := loadText(t, "chr1\tsrc\texon\t1\t10\t.\t+\t.\tgene_id \"g\";\n", 1)
	hits := idx.Search("chrZ", 0, 1000000000)
	expect.EQ(t, len(hits), 0)
}

// Invariant 4: Search returns exactly the features whose interval
// intersects the query, checked by brute force over a denser fixture.
func TestSearchMatchesBruteForce(t *testing.T) {
	var sb strings.Builder
	spans := [][2]uint64{{1, 50}, {10, 20}, {40, 45}, {60, 600}, {5, 5}, {100, 100}, {300, 305}}
	for i, sp := range spans {
		sb.WriteString("chr1\tsrc\texon\t")
		sb.WriteString(uitoa(sp[0]))
		sb.WriteByte('\t')
		sb.WriteString(uitoa(sp[1]))
		sb.WriteString("\t.\t+\t.\tgene_id \"g\"; transcript_id \"t")
		sb.WriteString(uitoa(uint64(i)))
		sb.WriteString("\";\n")
	}
	idx := loadText(t, sb.String(), 1)

	queries := [][2]uint64{{1, 1}, {45, 55}, {0, 1000}, {301, 304}, {601, 700}}
	for _, q := range queries {
		got := idx.Search("chr1", q[0], q[1])
		gotSet := map[uint64]bool{}
		for _, f := range got {
			gotSet[f.Start] = true
		}
		for _, sp := range spans {
			want := sp[0] <= q[1] && sp[1] >= q[0]
			if gotSet[sp[0]] != want {
				t.Errorf("span [%d,%d] vs query [%d,%d]: got overlap=%v want=%v",
					sp[0], sp[1], q[0], q[1], gotSet[sp[0]], want)
			}
		}
	}
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Invariant 6: loading the same input with thread counts 1 and N produces
// the same feature multiset, compared by spelling/coordinates/strand.
func TestMergeDeterministicAcrossThreadCounts(t *testing.T) {
	const gtf = `
chr1	src	exon	100	200	.	+	.	gene_id "g1"; transcript_id "t1";
chr2	src	exon	10	20	.	-	.	gene_id "g2"; transcript_id "t2";
chr1	src	exon	300	400	.	+	.	gene_id "g1"; transcript_id "t1";
chr2	src	CDS	10	15	.	-	.	gene_id "g2"; transcript_id "t2";
chr1	src	exon	500	600	.	+	.	gene_id "g1"; transcript_id "t1";
`
	idx1 := loadText(t, gtf, 1)
	idx4 := loadText(t, gtf, 4)

	sig := func(idx *Index) map[string]int {
		m := map[string]int{}
		for ref, b := range idx.buckets {
			for _, f := range b.features {
				key := ref + "|" + f.TypeName() + "|" + f.Strand.String() + "|" +
					uitoa(f.Start) + "|" + uitoa(f.End)
				m[key]++
			}
		}
		return m
	}
	s1, s4 := sig(idx1), sig(idx4)
	assert.EQ(t, len(s1), len(s4))
	for k, v := range s1 {
		expect.EQ(t, s4[k], v)
	}
}

func TestParserSkipsCommentsAndTruncatedLines(t *testing.T) {
	const gtf = `# a comment
chr1	src	exon	100	200	.	+	.	gene_id "g1";
chr1	src	exon	too-short
`
	idx := loadText(t, gtf, 1)
	expect.EQ(t, idx.NumFeatures(), 1)
}

func TestParserMalformedNumber(t *testing.T) {
	idx := newIndex()
	_, err := parseLine(idx, "chr1\tsrc\texon\tNaN\t200\t.\t+\t.\tgene_id \"g\";", '#')
	assert.True(t, err != nil)
	var merr *MalformedNumberError
	expect.True(t, errorsAs(err, &merr))
}

func errorsAs(err error, target **MalformedNumberError) bool {
	e, ok := err.(*MalformedNumberError)
	if !ok {
		return false
	}
	*target = e
	return true
}

func TestAttributeStripping(t *testing.T) {
	geneID, transcriptID, geneType := parseAttributes(`gene_id "ENSG1.1"; transcript_id "ENST1.1"; gene_type "protein_coding";`)
	expect.EQ(t, geneID, "ENSG1.1")
	expect.EQ(t, transcriptID, "ENST1.1")
	expect.EQ(t, geneType, "protein_coding")
}

// Invariant 2: uids form a contiguous prefix [0, total).
func TestUIDsAreContiguous(t *testing.T) {
	const gtf = `
chr1	src	exon	100	200	.	+	.	gene_id "g1"; transcript_id "t1";
chr1	src	exon	300	400	.	+	.	gene_id "g1"; transcript_id "t1";
chr2	src	exon	1	10	.	+	.	gene_id "g2";
`
	idx := loadText(t, gtf, 2)
	seen := make([]bool, idx.NumFeatures())
	for _, b := range idx.buckets {
		for _, f := range b.features {
			if int(f.UID) >= len(seen) {
				t.Fatalf("uid %d out of range [0,%d)", f.UID, len(seen))
			}
			if seen[f.UID] {
				t.Fatalf("duplicate uid %d", f.UID)
			}
			seen[f.UID] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("uid %d never assigned", i)
		}
	}
}

// Invariant 1: every feature on the path from its reference root satisfies
// start <= midpoint <= end iff the feature is in that node's byStart.
func TestTreeMidpointInvariant(t *testing.T) {
	const gtf = `
chr1	src	exon	1	50	.	+	.	gene_id "g";
chr1	src	exon	10	20	.	+	.	gene_id "g";
chr1	src	exon	40	45	.	+	.	gene_id "g";
chr1	src	exon	60	600	.	+	.	gene_id "g";
chr1	src	exon	5	5	.	+	.	gene_id "g";
chr1	src	exon	100	100	.	+	.	gene_id "g";
chr1	src	exon	300	305	.	+	.	gene_id "g";
`
	idx := loadText(t, gtf, 1)
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		for _, f := range n.byStart {
			if !(f.Start <= n.midpoint && n.midpoint <= f.End) {
				t.Errorf("feature [%d,%d] in byStart but midpoint %d not contained", f.Start, f.End, n.midpoint)
			}
		}
		for _, f := range flatten(n.left) {
			if f.End >= n.midpoint {
				t.Errorf("left-subtree feature [%d,%d] doesn't satisfy end < midpoint %d", f.Start, f.End, n.midpoint)
			}
		}
		for _, f := range flatten(n.right) {
			if f.Start <= n.midpoint {
				t.Errorf("right-subtree feature [%d,%d] doesn't satisfy start > midpoint %d", f.Start, f.End, n.midpoint)
			}
		}
		walk(n.left)
		walk(n.right)
	}
	walk(idx.buckets["chr1"].root)
}

func flatten(n *node) []*Feature {
	if n == nil {
		return nil
	}
	out := append([]*Feature(nil), n.byStart...)
	out = append(out, flatten(n.left)...)
	out = append(out, flatten(n.right)...)
	return out
}
