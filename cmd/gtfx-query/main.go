// Command gtfx-query loads a GTF annotation file and answers one-off
// overlap or classification queries against it, for spot-checking an
// annotation index interactively.
package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/gtfx/align"
	"github.com/grailbio/gtfx/classify"
	"github.com/grailbio/gtfx/gtf"
)

var (
	gtfPath        = flag.String("gtf", "", "path to the GTF/GFF annotation file to index (may be .gz)")
	workers        = flag.Int("workers", 4, "number of parallel parsing workers")
	search         = flag.String("search", "", "region to search, e.g. chr1:1000-2000")
	classifyBlocks = flag.String("classify", "", "comma-separated block list to classify, e.g. chr1:1000-1100,chr1:5000-5100")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *gtfPath == "" {
		log.Fatalf("gtfx-query: -gtf is required")
	}
	opts := gtf.DefaultOpts
	opts.Workers = *workers

	idx, err := gtf.LoadFromPath(context.Background(), *gtfPath, opts)
	if err != nil {
		log.Fatalf("gtfx-query: %v", err)
	}
	log.Printf("gtfx-query: indexed %d features across %d references", idx.NumFeatures(), len(idx.References()))

	switch {
	case *search != "":
		runSearch(idx, *search)
	case *classifyBlocks != "":
		runClassify(idx, *classifyBlocks)
	default:
		log.Fatalf("gtfx-query: one of -search or -classify is required")
	}
}

func runSearch(idx *gtf.Index, region string) {
	ref, start, end, err := parseRegion(region)
	if err != nil {
		log.Fatalf("gtfx-query: %v", err)
	}
	for _, f := range idx.Search(ref, start, end) {
		fmt.Printf("%s\t%d\t%d\t%s\t%s\t%s\n", ref, f.Start, f.End, f.TypeName(), f.GeneIDName(), f.TranscriptIDName())
	}
}

func runClassify(idx *gtf.Index, spec string) {
	regions := strings.Split(spec, ",")
	if len(regions) == 0 {
		log.Fatalf("gtfx-query: -classify requires at least one region")
	}
	ref, firstStart, firstEnd, err := parseRegion(regions[0])
	if err != nil {
		log.Fatalf("gtfx-query: %v", err)
	}
	m := &align.Map{Reference: ref, Blocks: []align.Block{{Start: firstStart, End: firstEnd}}}
	prevEnd := firstEnd
	for _, r := range regions[1:] {
		rref, start, end, err := parseRegion(r)
		if err != nil {
			log.Fatalf("gtfx-query: %v", err)
		}
		if rref != ref {
			log.Fatalf("gtfx-query: -classify blocks must share one reference, got %s and %s", ref, rref)
		}
		m.Blocks = append(m.Blocks, align.Block{Start: start, End: end})
		if start > prevEnd+1 {
			m.Gaps = append(m.Gaps, start-prevEnd-1)
		} else {
			m.Gaps = append(m.Gaps, 0)
		}
		prevEnd = end
	}

	hit := classify.ClassifyMap(idx, m, classify.DefaultOpts)
	fmt.Printf("exon_overlap=%.4f junction_hits=%.4f is_protein_coding=%v pairs_splits=%v pairs_gene=%v\n",
		hit.ExonOverlap, hit.JunctionHits, hit.IsProteinCoding, hit.PairsSplits, hit.PairsGene)

	counts := classify.NewCounts()
	counts.CountMap(idx, m, 1)
	for label, n := range counts.ByType {
		fmt.Printf("type=%s count=%d\n", label, n)
	}
}

// parseRegion parses "ref:start-end" into its parts. Adapted from
// interval.ParseRegionString's colon/dash split (interval/bedunion.go),
// generalized to the 1-based inclusive coordinates this index uses.
func parseRegion(region string) (ref string, start, end uint64, err error) {
	colon := strings.IndexByte(region, ':')
	if colon <= 0 {
		return "", 0, 0, fmt.Errorf("gtfx-query: malformed region %q, want ref:start-end", region)
	}
	ref = region[:colon]
	rangeStr := region[colon+1:]
	dash := strings.IndexByte(rangeStr, '-')
	if dash <= 0 {
		return "", 0, 0, fmt.Errorf("gtfx-query: malformed range %q, want start-end", rangeStr)
	}
	start, err = strconv.ParseUint(rangeStr[:dash], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("gtfx-query: malformed start in %q: %v", region, err)
	}
	end, err = strconv.ParseUint(rangeStr[dash+1:], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("gtfx-query: malformed end in %q: %v", region, err)
	}
	return ref, start, end, nil
}
