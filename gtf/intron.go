package gtf

// synthesizeIntrons walks each reference's features in start order and
// emits a synthetic "intron" feature between every pair of consecutive
// exons (by start-order) that share a transcript. It returns the number of
// candidate introns suppressed because they would have had start > end
// (overlapping or book-ended exons) — spec.md §9's recommended resolution of
// that ambiguity (OQ-2 in SPEC_FULL.md).
//
// Grounded on the last_exons scan in gt_gtf_read
// (original_source/GEMTools/src/gt_gtf.c).
func synthesizeIntrons(idx *Index) (nSuppressed int) {
	intronType := idx.interner.types.intern("intron")
	for _, b := range idx.buckets {
		byStartThenType(b.features)
		lastExon := make(map[Handle]*Feature)
		// Iterate a fixed-length snapshot: introns are appended to
		// b.features as we go, and must not themselves be scanned for
		// further junctions.
		n := len(b.features)
		var introns []*Feature
		for i := 0; i < n; i++ {
			f := b.features[i]
			if f.TypeName() != "exon" || f.TranscriptID == nil {
				continue
			}
			prev, ok := lastExon[f.TranscriptID]
			if !ok {
				lastExon[f.TranscriptID] = f
				continue
			}
			start, end := prev.End+1, f.Start-1
			if start > end {
				nSuppressed++
				lastExon[f.TranscriptID] = f
				continue
			}
			intron := &Feature{
				UID:          idx.nextUID,
				Start:        start,
				End:          end,
				Strand:       prev.Strand,
				Type:         intronType,
				GeneID:       prev.GeneID,
				TranscriptID: f.TranscriptID,
			}
			idx.nextUID++
			introns = append(introns, intron)
			lastExon[f.TranscriptID] = f
		}
		b.features = append(b.features, introns...)
	}
	return nSuppressed
}
