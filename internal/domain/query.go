package domain

import (
	"fmt"
	"strings"
)

// Placeholders embedded in generated query templates by the upstream query
// generator. The planner resolves both before a query ever leaves this
// process.
const (
	// TableSuffixPlaceholder marks where the physical variant suffix
	// (_REALTIME or _OFFLINE) is appended to the logical table name.
	TableSuffixPlaceholder = "__TABLE_SUFFIX__"

	// TimeFilterPlaceholder marks the splice point for the time-boundary
	// predicate that keeps realtime and offline scans from double-counting
	// overlapping data.
	TimeFilterPlaceholder = "__TIME_FILTER__"
)

// Suffixes of the two physical tables backing one logical table.
const (
	RealtimeSuffix = "_REALTIME"
	OfflineSuffix  = "_OFFLINE"
)

// GeneratedQuery is an immutable storage-native query template produced by
// the upstream query generator. SQL may contain TableSuffixPlaceholder and
// TimeFilterPlaceholder; HasFilter records whether the template already
// carries a WHERE clause, which decides how a time predicate is spliced in.
type GeneratedQuery struct {
	SQL       string
	HasFilter bool
}

// Resolve renders the template for one physical variant. The suffix replaces
// TableSuffixPlaceholder. A non-empty timePredicate is spliced at
// TimeFilterPlaceholder: as an extra conjunct when the template already has
// a filter, as a fresh WHERE clause when it does not. An empty predicate
// removes the placeholder without leaving residual text.
func (q GeneratedQuery) Resolve(suffix, timePredicate string) string {
	sql := strings.ReplaceAll(q.SQL, TableSuffixPlaceholder, suffix)
	if timePredicate == "" {
		sql = strings.ReplaceAll(sql, " "+TimeFilterPlaceholder, "")
		return strings.TrimSpace(strings.ReplaceAll(sql, TimeFilterPlaceholder, ""))
	}
	splice := "WHERE " + timePredicate
	if q.HasFilter {
		splice = "AND " + timePredicate
	}
	return strings.ReplaceAll(sql, TimeFilterPlaceholder, splice)
}

// PushdownStatus records whether the upstream planner could translate the
// whole query into the storage engine's native language.
type PushdownStatus int

const (
	// PushdownUnknown means feasibility was never determined. Planning a
	// handle in this state is an error.
	PushdownUnknown PushdownStatus = iota
	// PushdownPartial means engine-side work remains; the connector must
	// fall back to segment-level scans.
	PushdownPartial
	// PushdownFull means the broker can answer the whole query in one
	// round trip.
	PushdownFull
)

func (s PushdownStatus) String() string {
	switch s {
	case PushdownPartial:
		return "PARTIAL"
	case PushdownFull:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

// ParsePushdownStatus parses the wire representation of a pushdown status.
func ParsePushdownStatus(s string) (PushdownStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNKNOWN", "":
		return PushdownUnknown, nil
	case "PARTIAL":
		return PushdownPartial, nil
	case "FULL":
		return PushdownFull, nil
	default:
		return PushdownUnknown, fmt.Errorf("unknown pushdown status %q", s)
	}
}

// TableHandle identifies a logical table together with the compiled query
// template and its pushdown status. Query is nil when the upstream planner
// produced no usable template.
type TableHandle struct {
	Table    string
	Query    *GeneratedQuery
	Pushdown PushdownStatus
}

func (h TableHandle) String() string {
	return h.Table
}
