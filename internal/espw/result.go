package espw

// GenomeRecord is one genome to classify. Key is the caller-chosen
// identifier that every result and failure is reported under.
type GenomeRecord struct {
	Key string

	// Accession of the assembled genome in the sequence repository,
	// empty when the genome is supplied as a local file.
	Accession string

	// ReadRun is the sequencing run accession used for the assembly
	// fallback. Empty means no reads are available and the fallback
	// is skipped.
	ReadRun string
}

// HasReads reports whether the record can enter the assembly fallback.
func (r GenomeRecord) HasReads() bool { return r.ReadRun != "" }

// CallResult is the final classification of one genome.
type CallResult struct {
	Key            string
	Classification Classification
	Evidence       Evidence

	// Subject is the genome contig the winning alignment landed on,
	// empty when the call was not decided by the primary alignment.
	Subject string

	// Rationale is a one-line human-readable account of how the
	// classification was reached.
	Rationale string
}

// Failure records a per-record problem that was degraded rather than
// raised: the record still produced a CallResult, but a step of its
// evidence gathering went wrong.
type Failure struct {
	Key    string
	Reason string
}
