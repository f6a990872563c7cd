package gtf

// Opts controls how Load builds an Index.
type Opts struct {
	// Workers is the number of goroutines that parse input lines in
	// parallel. Each worker owns a private Index; the results are merged
	// deterministically in worker order once all workers finish.
	Workers int

	// CommentChar is the byte that marks a comment line. Lines whose first
	// byte equals CommentChar are ignored.
	CommentChar byte

	// SynthesizeIntrons controls whether the intron synthesizer runs after
	// merge. Disabling it is occasionally useful in tests that want to
	// inspect the raw merged feature set.
	SynthesizeIntrons bool
}

// DefaultOpts is the configuration callers should start from; copy and
// override fields rather than building an Opts from scratch, since the zero
// Opts has SynthesizeIntrons off.
var DefaultOpts = Opts{
	Workers:           4,
	CommentChar:       '#',
	SynthesizeIntrons: true,
}

// withDefaults fills a non-positive Workers and a zero CommentChar with
// DefaultOpts' values. SynthesizeIntrons is left as given.
func (o Opts) withDefaults() Opts {
	if o.Workers <= 0 {
		o.Workers = DefaultOpts.Workers
	}
	if o.CommentChar == 0 {
		o.CommentChar = DefaultOpts.CommentChar
	}
	return o
}
