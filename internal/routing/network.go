// Package routing computes cable routes through a static weighted network
// of trays and equipment nodes.
package routing

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sceap-org/sceap/internal/model"
)

// NodeKind distinguishes tray nodes, which carry fill state, from
// equipment endpoints.
type NodeKind string

const (
	NodeTray      NodeKind = "tray"
	NodeEquipment NodeKind = "equipment"
)

// Node is one vertex of the tray network.
type Node struct {
	ID       string
	Kind     NodeKind
	Fill     float64 // percent, 0 for equipment
	Capacity int     // max circuits, 0 for equipment
}

type edge struct {
	to     string
	weight float64 // meters
}

// Network is an undirected weighted graph of trays and equipment. Once
// built it is read-only: routing never mutates fill or reserves capacity,
// so a Network is safe to share across concurrent routing calls.
type Network struct {
	nodes map[string]Node
	adj   map[string][]edge
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		nodes: make(map[string]Node),
		adj:   make(map[string][]edge),
	}
}

// AddTray adds a tray node with its current fill percentage and circuit
// capacity. Re-adding an id overwrites its metadata.
func (n *Network) AddTray(id string, fill float64, capacity int) {
	n.nodes[id] = Node{ID: id, Kind: NodeTray, Fill: fill, Capacity: capacity}
}

// AddEquipment adds an equipment endpoint node.
func (n *Network) AddEquipment(id string) {
	n.nodes[id] = Node{ID: id, Kind: NodeEquipment}
}

// Connect adds an undirected edge between two existing nodes. Connecting
// an already-connected pair overwrites the distance, so a pair never
// carries two edges with conflicting weights.
func (n *Network) Connect(a, b string, distance float64) error {
	if _, ok := n.nodes[a]; !ok {
		return eris.Errorf("routing: connect: unknown node %q", a)
	}
	if _, ok := n.nodes[b]; !ok {
		return eris.Errorf("routing: connect: unknown node %q", b)
	}
	if distance < 0 {
		return eris.Errorf("routing: connect: negative distance %v between %q and %q", distance, a, b)
	}
	n.setEdge(a, b, distance)
	n.setEdge(b, a, distance)
	return nil
}

func (n *Network) setEdge(from, to string, distance float64) {
	for i, e := range n.adj[from] {
		if e.to == to {
			n.adj[from][i].weight = distance
			return
		}
	}
	n.adj[from] = append(n.adj[from], edge{to: to, weight: distance})
}

// Node looks up a node by id.
func (n *Network) Node(id string) (Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// Trays returns all tray nodes sorted by id.
func (n *Network) Trays() []Node {
	var trays []Node
	for _, node := range n.nodes {
		if node.Kind == NodeTray {
			trays = append(trays, node)
		}
	}
	sort.Slice(trays, func(i, j int) bool { return trays[i].ID < trays[j].ID })
	return trays
}

// Topology dumps the full network (nodes with metadata, undirected edges
// with distances) for visualization. Output ordering is deterministic.
func (n *Network) Topology() model.Topology {
	var top model.Topology

	ids := make([]string, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := n.nodes[id]
		top.Nodes = append(top.Nodes, model.TopologyNode{
			ID:       node.ID,
			Kind:     string(node.Kind),
			Fill:     node.Fill,
			Capacity: node.Capacity,
		})
	}

	seen := make(map[[2]string]bool)
	for _, id := range ids {
		for _, e := range n.adj[id] {
			key := [2]string{id, e.to}
			if id > e.to {
				key = [2]string{e.to, id}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			top.Edges = append(top.Edges, model.TopologyEdge{
				Source:   key[0],
				Target:   key[1],
				Distance: e.weight,
			})
		}
	}
	sort.Slice(top.Edges, func(i, j int) bool {
		if top.Edges[i].Source != top.Edges[j].Source {
			return top.Edges[i].Source < top.Edges[j].Source
		}
		return top.Edges[i].Target < top.Edges[j].Target
	})

	return top
}

// neighbors returns the edges out of id sorted by target id, so traversal
// order never depends on map iteration.
func (n *Network) neighbors(id string) []edge {
	edges := make([]edge, len(n.adj[id]))
	copy(edges, n.adj[id])
	sort.Slice(edges, func(i, j int) bool { return edges[i].to < edges[j].to })
	return edges
}

// DefaultNetwork returns the built-in sample plant network: trays
// PHF-01 through PHF-05 (PHF-05 is a spare with no fill and no
// connections), distribution boards DB-01/02, and the equipment they
// serve.
func DefaultNetwork() *Network {
	n := NewNetwork()

	trays := []struct {
		id       string
		fill     float64
		capacity int
	}{
		{"PHF-01", 45, 1000},
		{"PHF-02", 60, 1000},
		{"PHF-03", 70, 1000},
		{"PHF-04", 30, 1000},
		{"PHF-05", 0, 1000},
		{"DB-01", 55, 800},
		{"DB-02", 65, 800},
	}
	for _, t := range trays {
		n.AddTray(t.id, t.fill, t.capacity)
	}

	for _, eq := range []string{"Transformer", "Panel A", "Panel B", "Motor M1", "Motor M2"} {
		n.AddEquipment(eq)
	}

	connections := []struct {
		a, b string
		d    float64
	}{
		{"Transformer", "PHF-01", 10},
		{"PHF-01", "PHF-02", 5},
		{"PHF-02", "PHF-03", 8},
		{"PHF-03", "DB-01", 6},
		{"DB-01", "Panel A", 12},
		{"DB-01", "Panel B", 15},
		{"PHF-02", "PHF-04", 7},
		{"PHF-04", "DB-02", 9},
		{"DB-02", "Motor M1", 10},
		{"DB-02", "Motor M2", 11},
	}
	for _, c := range connections {
		// All ids were added above; Connect cannot fail here.
		_ = n.Connect(c.a, c.b, c.d)
	}

	return n
}
