package domain

// RoutingTable is a point-in-time view of segment placement: physical table
// name → host address → segment ids served by that host. An empty table is a
// valid result meaning the logical table currently has no routable data.
//
// Segment lists arrive pre-randomized from the cluster and their order is
// preserved here; the planner chunks them as-is and relies on the final
// split shuffle for load spreading.
type RoutingTable map[string]map[string][]string

// TimeBoundary carries the pair of predicates that partition realtime and
// offline data in time. An empty predicate means no restriction for that
// variant — tables with no overlap concern report both empty.
type TimeBoundary struct {
	Online  string
	Offline string
}

// IsZero reports whether no boundary is set for either variant.
func (b TimeBoundary) IsZero() bool {
	return b.Online == "" && b.Offline == ""
}
