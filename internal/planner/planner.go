// Package planner turns a compiled query plus cluster routing metadata into
// the concrete set of splits the host engine schedules onto workers.
package planner

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"

	"pinot-bridge/internal/domain"
)

// ShuffleFunc permutes n elements via swap. It exists so tests can pin the
// split order; the default is the shared math/rand shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Planner decides how a query executes against the cluster: one broker-side
// aggregate request, or a fan-out of bounded segment scans. It is stateless
// between calls — routing and time-boundary data are fetched fresh each time.
type Planner struct {
	connectorID string
	metadata    domain.ClusterMetadata
	shuffle     ShuffleFunc
	logger      *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithShuffle overrides the randomness source used to order the final split
// list.
func WithShuffle(fn ShuffleFunc) Option {
	return func(p *Planner) { p.shuffle = fn }
}

// New creates a Planner backed by the given metadata source.
func New(connectorID string, metadata domain.ClusterMetadata, logger *slog.Logger, opts ...Option) *Planner {
	p := &Planner{
		connectorID: connectorID,
		metadata:    metadata,
		shuffle:     rand.Shuffle,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// PlanSplits produces the split list for the given table handle. Exactly one
// of three outcomes results: a single broker split, a (possibly empty) list
// of segment splits, or a QueryNotPushedDownError.
func (p *Planner) PlanSplits(ctx context.Context, handle domain.TableHandle, session domain.Session) ([]domain.Split, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	switch handle.Pushdown {
	case domain.PushdownFull:
		return p.planBrokerScan(handle)
	case domain.PushdownPartial:
		if session.ForbidSegmentScan {
			return nil, domain.ErrQueryNotPushedDown(p.connectorID, handle.Table)
		}
		return p.planSegmentScan(ctx, handle, session)
	default:
		// Pushdown feasibility was never determined upstream.
		return nil, domain.ErrQueryNotPushedDown(p.connectorID, handle.Table)
	}
}

// planBrokerScan emits one split carrying the fully-pushed-down query. The
// broker fans out internally; the connector partitions nothing further.
func (p *Planner) planBrokerScan(handle domain.TableHandle) ([]domain.Split, error) {
	if handle.Query == nil {
		return nil, domain.ErrQueryNotPushedDown(p.connectorID, handle.Table)
	}
	return []domain.Split{domain.NewBrokerSplit(handle.Query.SQL)}, nil
}

// planSegmentScan fans the query out across every host serving segments of
// either physical variant, then shuffles the result so the scheduler does
// not hand one host or variant to consecutive workers.
func (p *Planner) planSegmentScan(ctx context.Context, handle domain.TableHandle, session domain.Session) ([]domain.Split, error) {
	routing, err := p.metadata.RoutingTable(ctx, handle.Table)
	if err != nil {
		return nil, err
	}
	if len(routing) == 0 {
		// The table has no routable data right now. A valid plan, not an error.
		p.logger.Debug("empty routing table", "table", handle.Table)
		return []domain.Split{}, nil
	}

	if handle.Query == nil {
		return nil, domain.ErrQueryNotPushedDown(p.connectorID, handle.Table)
	}

	boundary, err := p.metadata.TimeBoundary(ctx, handle.Table)
	if err != nil {
		return nil, err
	}

	for routedName := range routing {
		if !strings.EqualFold(routedName, handle.Table+domain.RealtimeSuffix) &&
			!strings.EqualFold(routedName, handle.Table+domain.OfflineSuffix) {
			p.logger.Debug("routing entry matches no variant", "table", handle.Table, "routed", routedName)
		}
	}

	realtime := handle.Query.Resolve(domain.RealtimeSuffix, boundary.Online)
	offline := handle.Query.Resolve(domain.OfflineSuffix, boundary.Offline)

	var splits []domain.Split
	splits = p.appendSegmentSplits(splits, routing, handle.Table, domain.RealtimeSuffix, realtime, session.SegmentsPerSplit)
	splits = p.appendSegmentSplits(splits, routing, handle.Table, domain.OfflineSuffix, offline, session.SegmentsPerSplit)

	p.shuffle(len(splits), func(i, j int) {
		splits[i], splits[j] = splits[j], splits[i]
	})
	return splits, nil
}

// appendSegmentSplits collects one split per segment batch for every host
// serving the physical table (logical name + suffix). Routing entries whose
// name matches neither variant contribute nothing.
func (p *Planner) appendSegmentSplits(splits []domain.Split, routing domain.RoutingTable, table, suffix, query string, segmentsPerSplit int) []domain.Split {
	physicalName := table + suffix
	for routedName, hosts := range routing {
		if !strings.EqualFold(routedName, physicalName) {
			continue
		}
		for host, segments := range hosts {
			for _, batch := range chunkSegments(segments, segmentsPerSplit) {
				splits = append(splits, domain.NewSegmentSplit(query, host, batch))
			}
		}
	}
	return splits
}

// chunkSegments partitions segments into consecutive batches of at most size
// elements. The last batch may be smaller. Order within and across batches
// is preserved.
func chunkSegments(segments []string, size int) [][]string {
	if len(segments) == 0 {
		return nil
	}
	if size > len(segments) {
		size = len(segments)
	}
	batches := make([][]string, 0, (len(segments)+size-1)/size)
	for start := 0; start < len(segments); start += size {
		end := start + size
		if end > len(segments) {
			end = len(segments)
		}
		batches = append(batches, segments[start:end])
	}
	return batches
}
