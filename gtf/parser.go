package gtf

import (
	"fmt"
	"strconv"
	"strings"
)

// the positional fields of one GTF/GFF-style line, per spec.md §4.2 and
// gt_gtf_read_line (original_source/GEMTools/src/gt_gtf.c).
const numPositionalFields = 9

// MalformedNumberError is returned by parseLine when the start or end
// coordinate of an otherwise well-formed line isn't a parseable unsigned
// decimal integer. A line with too few fields or an empty reference or type
// is silently dropped instead, per spec.md §7; an unrecognized strand is
// kept as StrandUnknown.
type MalformedNumberError struct {
	Line string
	Err  error
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("gtf: malformed coordinate in line %q: %v", e.Line, e.Err)
}

func (e *MalformedNumberError) Unwrap() error { return e.Err }

// parseLine parses one feature line and, if it yields a feature, appends it
// to the appropriate reference bucket of idx, interning its reference, type,
// and optional gene/transcript/gene-type attributes into idx's own tables.
// The returned Feature has UID 0; uids are assigned later, at merge time.
//
// parseLine returns (nil, nil) for a comment, blank, or structurally
// truncated line (spec.md's MalformedLine, which is silently skipped), and
// (nil, *MalformedNumberError) when start/end fail to parse.
func parseLine(idx *Index, line string, commentChar byte) (*Feature, error) {
	if len(line) == 0 || line[0] == commentChar {
		return nil, nil
	}

	fields := strings.SplitN(line, "\t", numPositionalFields)
	if len(fields) < numPositionalFields {
		return nil, nil
	}
	refName := fields[0]
	typeName := fields[2]
	startStr := fields[3]
	endStr := fields[4]
	strandStr := fields[6]
	attrField := fields[8]

	start, err := strconv.ParseUint(startStr, 10, 64)
	if err != nil {
		return nil, &MalformedNumberError{Line: line, Err: err}
	}
	end, err := strconv.ParseUint(endStr, 10, 64)
	if err != nil {
		return nil, &MalformedNumberError{Line: line, Err: err}
	}
	if typeName == "" || refName == "" {
		return nil, nil
	}

	f := &Feature{
		Start:  start,
		End:    end,
		Strand: ParseStrand(strandStr),
		Type:   idx.interner.types.intern(typeName),
	}
	geneID, transcriptID, geneType := parseAttributes(attrField)
	if geneID != "" {
		f.GeneID = idx.interner.geneIDs.intern(geneID)
	}
	if transcriptID != "" {
		f.TranscriptID = idx.interner.transcriptIDs.intern(transcriptID)
	}
	if geneType != "" {
		f.GeneType = idx.interner.geneTypes.intern(geneType)
	}

	b := idx.bucketFor(refName)
	b.features = append(b.features, f)
	return f, nil
}

// parseAttributes tokenizes the free-form attribute field on whitespace into
// alternating key/value tokens, recognizing only gene_id, gene_type, and
// transcript_id. Grounded on parseInfoFields
// (fusion/parsegencode/parsegencode.go) and gt_gtf_read_line's attribute loop
// (original_source/GEMTools/src/gt_gtf.c).
func parseAttributes(field string) (geneID, transcriptID, geneType string) {
	tokens := strings.Fields(field)
	for i := 0; i+1 < len(tokens); i += 2 {
		key := tokens[i]
		value := stripAttrValue(tokens[i+1])
		switch key {
		case "gene_id":
			geneID = value
		case "gene_type":
			geneType = value
		case "transcript_id":
			transcriptID = value
		}
	}
	return
}

// stripAttrValue removes a single trailing semicolon, then a surrounding
// pair of double quotes, per spec.md §4.2.
func stripAttrValue(v string) string {
	v = strings.TrimSuffix(v, ";")
	v = strings.TrimPrefix(v, "\"")
	v = strings.TrimSuffix(v, "\"")
	return v
}
