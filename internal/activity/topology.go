package activity

// OrchestratorID is the mesh node that receives user requests and
// routes them to agents.
const OrchestratorID = "orchestrator"

// NodeTypeTool marks ephemeral nodes created from toolCall events.
const NodeTypeTool = "tool"

// Node is a vertex of the mesh topology.
type Node struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	NodeType string `json:"nodeType"`
	IsRemote bool   `json:"isRemote,omitempty"`
}

// Edge is a directed connection between two mesh nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Topology is a set of nodes and edges. The reducer keeps two layers:
// the static base fetched from the backend and an ephemeral tool
// overlay derived from events. Snapshot merges them.
type Topology struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy so callers can hand snapshots out without
// sharing reducer-owned slices.
func (t Topology) Clone() Topology {
	out := Topology{
		Nodes: make([]Node, len(t.Nodes)),
		Edges: make([]Edge, len(t.Edges)),
	}
	copy(out.Nodes, t.Nodes)
	copy(out.Edges, t.Edges)
	return out
}

// ToolNodeID builds the synthetic node id for a tool invoked by an
// agent. The compound id keeps the same tool distinct per agent.
func ToolNodeID(agentName, toolName string) string {
	return agentName + ":" + toolName
}
