package routing

import (
	"container/heap"
	"fmt"

	"github.com/sceap-org/sceap/internal/model"
)

// Strategy selects the routing cost function.
type Strategy string

const (
	// StrategyShortest minimizes total physical distance.
	StrategyShortest Strategy = "shortest"
	// StrategyLeastFill penalizes edges touching heavily loaded trays.
	StrategyLeastFill Strategy = "least-fill"
)

// ParseStrategy maps a request string to a Strategy. Empty input defaults
// to shortest-path.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", string(StrategyShortest):
		return StrategyShortest, nil
	case string(StrategyLeastFill), "least_fill", "leastfill":
		return StrategyLeastFill, nil
	default:
		return "", fmt.Errorf("routing: unknown strategy %q", s)
	}
}

// ErrorCode identifies a routing failure class.
type ErrorCode string

const (
	ErrUnknownNode ErrorCode = "unknown_node"
	ErrNoPath      ErrorCode = "no_path"
)

// RoutingError reports a routing failure. It is always surfaced to the
// caller; the engine never substitutes a default route.
type RoutingError struct {
	Code   ErrorCode
	Node   string // offending node for unknown_node
	Source string
	Target string
}

func (e *RoutingError) Error() string {
	if e.Code == ErrUnknownNode {
		return fmt.Sprintf("routing: unknown node %q", e.Node)
	}
	return fmt.Sprintf("routing: no path from %q to %q", e.Source, e.Target)
}

// DefaultPenaltyFactor is the fill penalty applied per average percent of
// fill on an edge under the least-fill strategy.
const DefaultPenaltyFactor = 0.2

// Router computes routes over an immutable Network snapshot. Each call is
// stateless; the network may be swapped for a fresh snapshot between calls
// by the owning application.
type Router struct {
	net     *Network
	penalty float64
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithPenaltyFactor overrides the least-fill penalty factor.
func WithPenaltyFactor(f float64) RouterOption {
	return func(r *Router) {
		if f > 0 {
			r.penalty = f
		}
	}
}

// NewRouter creates a Router over the given network.
func NewRouter(net *Network, opts ...RouterOption) *Router {
	r := &Router{net: net, penalty: DefaultPenaltyFactor}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Network returns the underlying network.
func (r *Router) Network() *Network { return r.net }

// Route finds a path from source to target under the given strategy.
//
// Ties on cost are broken by fewer hops, then by lexicographically
// smallest node sequence, so results are deterministic. TotalLength is
// always the physical distance of the chosen path, even under least-fill.
func (r *Router) Route(source, target string, strategy Strategy) (*model.RouteResult, error) {
	if _, ok := r.net.Node(source); !ok {
		return nil, &RoutingError{Code: ErrUnknownNode, Node: source, Source: source, Target: target}
	}
	if _, ok := r.net.Node(target); !ok {
		return nil, &RoutingError{Code: ErrUnknownNode, Node: target, Source: source, Target: target}
	}

	if source == target {
		return r.assemble([]string{source}), nil
	}

	path := r.search(source, target, strategy)
	if path == nil {
		return nil, &RoutingError{Code: ErrNoPath, Source: source, Target: target}
	}

	return r.assemble(path), nil
}

// edgeCost returns the strategy cost of traversing the edge u->v.
func (r *Router) edgeCost(u string, e edge, strategy Strategy) float64 {
	if strategy != StrategyLeastFill {
		return e.weight
	}
	fu, _ := r.net.Node(u)
	fv, _ := r.net.Node(e.to)
	return e.weight + (fu.Fill+fv.Fill)/2*r.penalty
}

// label is a candidate path to a node during the search.
type label struct {
	node string
	cost float64
	path []string
}

type labelHeap []label

func (h labelHeap) Len() int { return len(h) }
func (h labelHeap) Less(i, j int) bool {
	return betterLabel(h[i], h[j])
}
func (h labelHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *labelHeap) Push(x any)         { *h = append(*h, x.(label)) }
func (h *labelHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

const costEpsilon = 1e-9

// betterLabel orders labels by cost, then hop count, then lexicographic
// node sequence. The total order makes the search deterministic.
func betterLabel(a, b label) bool {
	switch {
	case a.cost < b.cost-costEpsilon:
		return true
	case a.cost > b.cost+costEpsilon:
		return false
	}
	if len(a.path) != len(b.path) {
		return len(a.path) < len(b.path)
	}
	for i := range a.path {
		if a.path[i] != b.path[i] {
			return a.path[i] < b.path[i]
		}
	}
	return false
}

// search runs Dijkstra with the full label ordering; the first time a node
// is settled its label is optimal under the tie-break rules.
func (r *Router) search(source, target string, strategy Strategy) []string {
	settled := make(map[string]bool)

	h := &labelHeap{{node: source, cost: 0, path: []string{source}}}
	heap.Init(h)

	for h.Len() > 0 {
		cur := heap.Pop(h).(label)
		if settled[cur.node] {
			continue
		}
		settled[cur.node] = true

		if cur.node == target {
			return cur.path
		}

		for _, e := range r.net.neighbors(cur.node) {
			if settled[e.to] {
				continue
			}
			next := label{
				node: e.to,
				cost: cur.cost + r.edgeCost(cur.node, e, strategy),
				path: appendPath(cur.path, e.to),
			}
			heap.Push(h, next)
		}
	}

	return nil
}

func appendPath(path []string, node string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = node
	return out
}

// assemble builds the RouteResult for a chosen path: physical length, fill
// classification of traversed trays, and congestion warnings.
func (r *Router) assemble(path []string) *model.RouteResult {
	res := &model.RouteResult{
		Path:           path,
		TrayFillStatus: model.FillNormal,
		TrayFill:       make(map[string]float64),
	}

	for i := 1; i < len(path); i++ {
		for _, e := range r.net.adj[path[i-1]] {
			if e.to == path[i] {
				res.TotalLength += e.weight
				break
			}
		}
	}

	for _, id := range path {
		node, ok := r.net.Node(id)
		if !ok || node.Kind != NodeTray {
			continue
		}
		res.TrayFill[id] = node.Fill

		level := model.ClassifyFill(node.Fill)
		if level == model.FillElevated || level == model.FillCritical {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("tray %s is at %.0f%% fill (%s)", id, node.Fill, level))
		}
		if worse(level, res.TrayFillStatus) {
			res.TrayFillStatus = level
		}
	}

	return res
}

var fillSeverity = map[model.FillLevel]int{
	model.FillNormal:   0,
	model.FillElevated: 1,
	model.FillCritical: 2,
}

func worse(a, b model.FillLevel) bool {
	return fillSeverity[a] > fillSeverity[b]
}
