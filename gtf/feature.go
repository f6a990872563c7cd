package gtf

// Strand is the strand a feature is annotated on.
type Strand int8

const (
	// StrandUnknown means the strand was absent or not one of '+'/'-'.
	StrandUnknown Strand = iota
	// StrandForward is '+'.
	StrandForward
	// StrandReverse is '-'.
	StrandReverse
)

// ParseStrand maps a GTF strand column ('+', '-', or anything else) to a
// Strand.
func ParseStrand(s string) Strand {
	switch s {
	case "+":
		return StrandForward
	case "-":
		return StrandReverse
	default:
		return StrandUnknown
	}
}

func (s Strand) String() string {
	switch s {
	case StrandForward:
		return "+"
	case StrandReverse:
		return "-"
	default:
		return "."
	}
}

// Feature is an immutable annotated interval. Start and End are 1-based
// inclusive coordinates (Start <= End). Type is required; GeneID,
// TranscriptID, and GeneType are each independently optional.
type Feature struct {
	UID    uint64
	Start  uint64
	End    uint64
	Strand Strand
	Type   Handle

	GeneID       Handle
	TranscriptID Handle
	GeneType     Handle
}

// TypeName returns the feature's type spelling, or "" if Type is nil.
func (f *Feature) TypeName() string {
	if f.Type == nil {
		return ""
	}
	return *f.Type
}

// GeneTypeName returns the feature's gene-type spelling, or "" if GeneType is
// nil.
func (f *Feature) GeneTypeName() string {
	if f.GeneType == nil {
		return ""
	}
	return *f.GeneType
}

// GeneIDName returns the feature's gene-id spelling, or "" if GeneID is nil.
func (f *Feature) GeneIDName() string {
	if f.GeneID == nil {
		return ""
	}
	return *f.GeneID
}

// TranscriptIDName returns the feature's transcript-id spelling, or "" if
// TranscriptID is nil.
func (f *Feature) TranscriptIDName() string {
	if f.TranscriptID == nil {
		return ""
	}
	return *f.TranscriptID
}

// IsProteinCoding reports whether the feature's gene type is spelled
// "protein_coding", per gt_gtf_hit's is_protein_coding field
// (original_source/GEMTools/src/gt_gtf.c).
func (f *Feature) IsProteinCoding() bool {
	return f.GeneTypeName() == "protein_coding"
}

// Overlaps reports whether f's closed interval [Start, End] intersects the
// closed interval [start, end].
func (f *Feature) Overlaps(start, end uint64) bool {
	return f.Start <= end && f.End >= start
}
