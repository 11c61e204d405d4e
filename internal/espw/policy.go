package espw

import "fmt"

// Policy carries the thresholds used to interpret alignment evidence.
// The defaults mirror the blastn invocation settings (90% identity,
// ungapped) and are deliberately strict; loosen them per dataset
// rather than in code.
type Policy struct {
	// MinIdentity is the lowest percent identity a hit may have and
	// still count as evidence.
	MinIdentity float64

	// MinAlignLength is the shortest alignment (in bases) that counts.
	MinAlignLength int

	// EdgeMargin is how many bases beyond each side of the
	// distinguishing region a hit must reach for the region to be
	// considered cleanly spanned, clamped at the reference ends.
	EdgeMargin int

	// MaxRegionGaps is the most gap positions a hit may contain while
	// still spanning cleanly. The tabular output does not locate gaps
	// within the alignment, so any gap is assumed to possibly fall in
	// the region.
	MaxRegionGaps int

	// MinContigLength is the shortest assembled contig worth aligning
	// during the assembly fallback.
	MinContigLength int
}

// DefaultPolicy returns the thresholds used by the command-line tool
// unless overridden in configuration.
func DefaultPolicy() Policy {
	return Policy{
		MinIdentity:     90.0,
		MinAlignLength:  100,
		EdgeMargin:      3,
		MaxRegionGaps:   0,
		MinContigLength: 100,
	}
}

// Validate rejects threshold combinations that can never classify
// anything.
func (p Policy) Validate() error {
	if p.MinIdentity < 0 || p.MinIdentity > 100 {
		return &ConfigurationError{Reason: fmt.Sprintf("min identity %.1f must be within 0-100", p.MinIdentity)}
	}
	if p.MinAlignLength < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("min alignment length %d must be positive", p.MinAlignLength)}
	}
	if p.EdgeMargin < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("edge margin %d must not be negative", p.EdgeMargin)}
	}
	if p.MaxRegionGaps < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("max region gaps %d must not be negative", p.MaxRegionGaps)}
	}
	if p.MinContigLength < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("min contig length %d must be positive", p.MinContigLength)}
	}
	return nil
}

// qualifies reports whether a hit clears the identity and length
// thresholds.
func (p Policy) qualifies(h Hit) bool {
	return h.Identity >= p.MinIdentity && h.Length >= p.MinAlignLength
}

// cleanSpan reports whether a hit covers the distinguishing region of
// its reference with margin to spare on both sides and few enough
// gaps. The margin absorbs alignment end trimming; it is clamped so a
// region close to a reference end still only requires coverage to
// that end.
func (p Policy) cleanSpan(h Hit, q AlleleQuery) bool {
	lo := q.Region.Start - p.EdgeMargin
	if lo < 1 {
		lo = 1
	}
	hi := q.Region.End + p.EdgeMargin
	if hi > q.Length() {
		hi = q.Length()
	}
	if h.QueryStart > lo || h.QueryEnd < hi {
		return false
	}
	return h.Gaps <= p.MaxRegionGaps
}
