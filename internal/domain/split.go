package domain

// SplitType distinguishes the two execution shapes a split can take.
type SplitType string

const (
	// SplitBroker executes the attached query against a broker endpoint
	// that fans out internally.
	SplitBroker SplitType = "BROKER"
	// SplitSegment scans a bounded batch of segments on one host.
	SplitSegment SplitType = "SEGMENT"
)

// Split is one immutable unit of work handed to the engine's execution
// scheduler. Host and Segments are set for segment splits only; Query is
// always final — no further rewriting happens downstream.
type Split struct {
	Type     SplitType `json:"type"`
	Query    string    `json:"query"`
	Host     string    `json:"host,omitempty"`
	Segments []string  `json:"segments,omitempty"`
}

// NewBrokerSplit creates a split carrying a fully-pushed-down query.
func NewBrokerSplit(query string) Split {
	return Split{Type: SplitBroker, Query: query}
}

// NewSegmentSplit creates a split scoped to one host and one segment batch.
func NewSegmentSplit(query, host string, segments []string) Split {
	return Split{Type: SplitSegment, Query: query, Host: host, Segments: segments}
}
