package domain

import "context"

// ClusterMetadata is the control-plane collaborator the planner consults for
// segment placement and the hot/cold time boundary. Both calls are fetched
// fresh per planning invocation; implementations own pooling, throttling,
// and caching. Failures surface as-is — the planner performs no retries.
type ClusterMetadata interface {
	RoutingTable(ctx context.Context, table string) (RoutingTable, error)
	TimeBoundary(ctx context.Context, table string) (TimeBoundary, error)
}
