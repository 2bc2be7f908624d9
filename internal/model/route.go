package model

// FillLevel classifies tray congestion.
type FillLevel string

const (
	FillNormal   FillLevel = "NORMAL"   // < 70%
	FillElevated FillLevel = "ELEVATED" // 70-90%
	FillCritical FillLevel = "CRITICAL" // >= 90%
)

// ClassifyFill maps a fill percentage to its level.
func ClassifyFill(fill float64) FillLevel {
	switch {
	case fill >= 90:
		return FillCritical
	case fill >= 70:
		return FillElevated
	default:
		return FillNormal
	}
}

// RouteResult is the output of a routing calculation.
type RouteResult struct {
	Path []string `json:"path"` // source first, target last
	// TotalLength is the sum of physical edge distances along Path, in
	// meters, regardless of strategy.
	TotalLength float64 `json:"total_length"`
	// TrayFillStatus is the worst-case fill level among traversed trays.
	TrayFillStatus FillLevel `json:"tray_fill_status"`
	// TrayFill maps each traversed tray to its fill percentage.
	TrayFill map[string]float64 `json:"tray_fill"`
	// Warnings holds one message per traversed tray at ELEVATED or
	// CRITICAL fill.
	Warnings []string `json:"warnings"`
}

// TopologyNode describes one node in a network topology dump.
type TopologyNode struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"` // "tray" or "equipment"
	Fill     float64 `json:"fill,omitempty"`
	Capacity int     `json:"capacity,omitempty"`
}

// TopologyEdge describes one undirected edge in a network topology dump.
type TopologyEdge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Distance float64 `json:"distance"` // meters
}

// Topology is a full-network dump for visualization.
type Topology struct {
	Nodes []TopologyNode `json:"nodes"`
	Edges []TopologyEdge `json:"edges"`
}
