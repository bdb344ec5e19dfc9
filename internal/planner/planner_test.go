package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinot-bridge/internal/domain"
)

// fakeMetadata serves canned routing and time-boundary responses.
type fakeMetadata struct {
	routing  domain.RoutingTable
	boundary domain.TimeBoundary

	routingErr  error
	boundaryErr error

	routingCalls int
}

func (f *fakeMetadata) RoutingTable(_ context.Context, _ string) (domain.RoutingTable, error) {
	f.routingCalls++
	return f.routing, f.routingErr
}

func (f *fakeMetadata) TimeBoundary(_ context.Context, _ string) (domain.TimeBoundary, error) {
	return f.boundary, f.boundaryErr
}

func noShuffle(int, func(i, j int)) {}

func newTestPlanner(md domain.ClusterMetadata) *Planner {
	return New("pinot", md, nil, WithShuffle(noShuffle))
}

func session(segmentsPerSplit int) domain.Session {
	return domain.Session{SegmentsPerSplit: segmentsPerSplit}
}

func templateQuery(hasFilter bool) *domain.GeneratedQuery {
	sql := "SELECT * FROM trips" + domain.TableSuffixPlaceholder + " " + domain.TimeFilterPlaceholder
	if hasFilter {
		sql = "SELECT * FROM trips" + domain.TableSuffixPlaceholder + " WHERE fare > 10 " + domain.TimeFilterPlaceholder
	}
	return &domain.GeneratedQuery{SQL: sql, HasFilter: hasFilter}
}

func TestPlanSplits_BrokerScan(t *testing.T) {
	p := newTestPlanner(&fakeMetadata{})

	t.Run("fully pushed down yields one broker split", func(t *testing.T) {
		splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
			Table:    "trips",
			Query:    &domain.GeneratedQuery{SQL: "SELECT COUNT(*) FROM trips"},
			Pushdown: domain.PushdownFull,
		}, session(10))
		require.NoError(t, err)
		require.Len(t, splits, 1)
		assert.Equal(t, domain.SplitBroker, splits[0].Type)
		assert.Equal(t, "SELECT COUNT(*) FROM trips", splits[0].Query)
		assert.Empty(t, splits[0].Host)
		assert.Empty(t, splits[0].Segments)
	})

	t.Run("missing query fails despite full pushdown", func(t *testing.T) {
		_, err := p.PlanSplits(context.Background(), domain.TableHandle{
			Table:    "trips",
			Pushdown: domain.PushdownFull,
		}, session(10))
		var pushErr *domain.QueryNotPushedDownError
		require.ErrorAs(t, err, &pushErr)
		assert.Equal(t, "trips", pushErr.Table)
	})
}

func TestPlanSplits_UnknownPushdown(t *testing.T) {
	md := &fakeMetadata{}
	p := newTestPlanner(md)

	_, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table:    "trips",
		Query:    templateQuery(false),
		Pushdown: domain.PushdownUnknown,
	}, session(10))

	var pushErr *domain.QueryNotPushedDownError
	require.ErrorAs(t, err, &pushErr)
	assert.Contains(t, err.Error(), "pinot:trips")
	assert.Zero(t, md.routingCalls, "no metadata fetch before the pushdown check")
}

func TestPlanSplits_PolicyForbidsSegmentScan(t *testing.T) {
	md := &fakeMetadata{routing: domain.RoutingTable{
		"trips_REALTIME": {"h1": {"s1"}},
	}}
	p := newTestPlanner(md)

	_, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table:    "trips",
		Query:    templateQuery(false),
		Pushdown: domain.PushdownPartial,
	}, domain.Session{SegmentsPerSplit: 10, ForbidSegmentScan: true})

	var pushErr *domain.QueryNotPushedDownError
	require.ErrorAs(t, err, &pushErr)
	assert.Zero(t, md.routingCalls, "policy rejection happens before any fetch")
}

func TestPlanSplits_EmptyRoutingTable(t *testing.T) {
	p := newTestPlanner(&fakeMetadata{routing: domain.RoutingTable{}})

	// No query template attached either — the empty-routing short circuit
	// must win: zero splits, no error.
	splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table:    "trips",
		Pushdown: domain.PushdownPartial,
	}, session(10))
	require.NoError(t, err)
	assert.Empty(t, splits)
}

func TestPlanSplits_MissingDescriptorWithData(t *testing.T) {
	p := newTestPlanner(&fakeMetadata{routing: domain.RoutingTable{
		"trips_OFFLINE": {"h1": {"s1"}},
	}})

	_, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table:    "trips",
		Pushdown: domain.PushdownPartial,
	}, session(10))

	var pushErr *domain.QueryNotPushedDownError
	require.ErrorAs(t, err, &pushErr)
	assert.Contains(t, err.Error(), "trips")
}

func TestPlanSplits_BatchSizing(t *testing.T) {
	segments := []string{"s1", "s2", "s3", "s4", "s5"}
	p := newTestPlanner(&fakeMetadata{routing: domain.RoutingTable{
		"trips_OFFLINE": {"h1": segments},
	}})

	splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table:    "trips",
		Query:    templateQuery(false),
		Pushdown: domain.PushdownPartial,
	}, session(2))
	require.NoError(t, err)
	require.Len(t, splits, 3, "ceil(5/2) splits")

	var union []string
	for i, s := range splits {
		assert.Equal(t, domain.SplitSegment, s.Type)
		assert.Equal(t, "h1", s.Host)
		if i < len(splits)-1 {
			assert.Len(t, s.Segments, 2)
		}
		union = append(union, s.Segments...)
	}
	assert.Equal(t, segments, union, "no duplicates or omissions, order preserved")
}

func TestPlanSplits_BatchLargerThanHost(t *testing.T) {
	p := newTestPlanner(&fakeMetadata{routing: domain.RoutingTable{
		"trips_OFFLINE": {"h1": {"s1", "s2"}},
	}})

	splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table:    "trips",
		Query:    templateQuery(false),
		Pushdown: domain.PushdownPartial,
	}, session(50))
	require.NoError(t, err)
	require.Len(t, splits, 1)
	assert.Equal(t, []string{"s1", "s2"}, splits[0].Segments)
}

func TestPlanSplits_VariantFiltering(t *testing.T) {
	t.Run("unmatched physical name contributes nothing", func(t *testing.T) {
		p := newTestPlanner(&fakeMetadata{routing: domain.RoutingTable{
			"trips_HYBRID": {"h1": {"s1", "s2"}},
		}})
		splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
			Table:    "trips",
			Query:    templateQuery(false),
			Pushdown: domain.PushdownPartial,
		}, session(10))
		require.NoError(t, err)
		assert.Empty(t, splits)
	})

	t.Run("match is case-insensitive", func(t *testing.T) {
		p := newTestPlanner(&fakeMetadata{routing: domain.RoutingTable{
			"TRIPS_realtime": {"h1": {"s1"}},
		}})
		splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
			Table:    "trips",
			Query:    templateQuery(false),
			Pushdown: domain.PushdownPartial,
		}, session(10))
		require.NoError(t, err)
		require.Len(t, splits, 1)
		assert.Equal(t, "h1", splits[0].Host)
	})

	t.Run("realtime-only table yields zero offline splits", func(t *testing.T) {
		p := newTestPlanner(&fakeMetadata{routing: domain.RoutingTable{
			"trips_REALTIME": {"h1": {"s1"}},
		}})
		splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
			Table:    "trips",
			Query:    templateQuery(false),
			Pushdown: domain.PushdownPartial,
		}, session(10))
		require.NoError(t, err)
		require.Len(t, splits, 1)
		assert.Contains(t, splits[0].Query, "trips_REALTIME")
	})
}

func TestPlanSplits_MetadataErrorsPropagate(t *testing.T) {
	t.Run("routing fetch failure", func(t *testing.T) {
		fetchErr := fmt.Errorf("controller unreachable")
		p := newTestPlanner(&fakeMetadata{routingErr: fetchErr})
		_, err := p.PlanSplits(context.Background(), domain.TableHandle{
			Table:    "trips",
			Query:    templateQuery(false),
			Pushdown: domain.PushdownPartial,
		}, session(10))
		assert.ErrorIs(t, err, fetchErr, "propagated unwrapped")
	})

	t.Run("time boundary fetch failure", func(t *testing.T) {
		fetchErr := fmt.Errorf("boundary timeout")
		p := newTestPlanner(&fakeMetadata{
			routing:     domain.RoutingTable{"trips_OFFLINE": {"h1": {"s1"}}},
			boundaryErr: fetchErr,
		})
		_, err := p.PlanSplits(context.Background(), domain.TableHandle{
			Table:    "trips",
			Query:    templateQuery(false),
			Pushdown: domain.PushdownPartial,
		}, session(10))
		assert.ErrorIs(t, err, fetchErr)
	})
}

func TestPlanSplits_DeterminismModuloShuffle(t *testing.T) {
	md := &fakeMetadata{
		routing: domain.RoutingTable{
			"trips_REALTIME": {"h1": {"s1", "s2", "s3"}, "h2": {"s4"}},
			"trips_OFFLINE":  {"h3": {"s5", "s6"}},
		},
		boundary: domain.TimeBoundary{Online: "ts >= 100", Offline: "ts < 100"},
	}
	handle := domain.TableHandle{
		Table:    "trips",
		Query:    templateQuery(false),
		Pushdown: domain.PushdownPartial,
	}

	// Real (seeded-by-time) shuffle on both calls: contents must match as
	// multisets regardless of order.
	p := New("pinot", md, nil)
	first, err := p.PlanSplits(context.Background(), handle, session(2))
	require.NoError(t, err)
	second, err := p.PlanSplits(context.Background(), handle, session(2))
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
}

func TestPlanSplits_EndToEndScenario(t *testing.T) {
	md := &fakeMetadata{
		routing: domain.RoutingTable{
			"t_REALTIME": {"h1": {"s1", "s2", "s3"}},
			"t_OFFLINE":  {"h2": {"s4"}},
		},
		boundary: domain.TimeBoundary{Online: "ts >= 100", Offline: "ts < 100"},
	}
	p := newTestPlanner(md)

	splits, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table: "t",
		Query: &domain.GeneratedQuery{
			SQL: "SELECT * FROM t" + domain.TableSuffixPlaceholder + " " + domain.TimeFilterPlaceholder,
		},
		Pushdown: domain.PushdownPartial,
	}, session(2))
	require.NoError(t, err)
	require.Len(t, splits, 3)

	sort.Slice(splits, func(i, j int) bool {
		if splits[i].Host != splits[j].Host {
			return splits[i].Host < splits[j].Host
		}
		return strings.Join(splits[i].Segments, ",") < strings.Join(splits[j].Segments, ",")
	})

	assert.Equal(t, domain.NewSegmentSplit("SELECT * FROM t_REALTIME WHERE ts >= 100", "h1", []string{"s1", "s2"}), splits[0])
	assert.Equal(t, domain.NewSegmentSplit("SELECT * FROM t_REALTIME WHERE ts >= 100", "h1", []string{"s3"}), splits[1])
	assert.Equal(t, domain.NewSegmentSplit("SELECT * FROM t_OFFLINE WHERE ts < 100", "h2", []string{"s4"}), splits[2])
}

func TestPlanSplits_InvalidSession(t *testing.T) {
	p := newTestPlanner(&fakeMetadata{})
	_, err := p.PlanSplits(context.Background(), domain.TableHandle{
		Table:    "trips",
		Pushdown: domain.PushdownFull,
		Query:    &domain.GeneratedQuery{SQL: "SELECT 1"},
	}, session(0))
	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
}
