package domain

// Session carries the per-query planning knobs, resolved from config
// defaults and optional per-request overrides.
type Session struct {
	// SegmentsPerSplit bounds the number of segments one segment split may
	// carry. Must be positive.
	SegmentsPerSplit int
	// ForbidSegmentScan demands full pushdown or nothing: deployments set
	// it to bound per-query fan-out cost.
	ForbidSegmentScan bool
}

// Validate checks that the session values are usable for planning.
func (s Session) Validate() error {
	if s.SegmentsPerSplit <= 0 {
		return ErrValidation("segments per split must be positive, got %d", s.SegmentsPerSplit)
	}
	return nil
}
