package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/comalice/fsmx"
)

// Visualizer renders a machine's graph. Names maps state ids to display names;
// ids without a name render as numbers.
type Visualizer struct {
	Names map[fsmx.StateID]string
}

// Node describes one state for export.
type Node struct {
	ID        fsmx.StateID `json:"id"`
	Name      string       `json:"name"`
	Initial   bool         `json:"initial,omitempty"`
	Instances int          `json:"instances"`
}

// Edge describes one link. Priority is the link's 1-based position among the
// links leaving From.
type Edge struct {
	From          fsmx.StateID `json:"from"`
	To            fsmx.StateID `json:"to"`
	Priority      int          `json:"priority"`
	Unconditional bool         `json:"unconditional,omitempty"`
}

// Graph is the exported shape of a machine.
type Graph struct {
	MachineID string `json:"machineID"`
	Nodes     []Node `json:"nodes"`
	Edges     []Edge `json:"edges"`
}

// Graph collects nodes in storage order and edges in evaluation order.
func (v *Visualizer) Graph(m *fsmx.Machine) Graph {
	occupancy := make(map[*fsmx.State]int)
	for _, inst := range m.Instances() {
		if s := inst.State(); s != nil {
			occupancy[s]++
		}
	}
	g := Graph{MachineID: m.ID().String(), Nodes: []Node{}, Edges: []Edge{}}
	for _, s := range m.States() {
		g.Nodes = append(g.Nodes, Node{
			ID:        s.ID(),
			Name:      v.name(s.ID()),
			Initial:   s == m.Initial(),
			Instances: occupancy[s],
		})
		for i, l := range s.Links() {
			g.Edges = append(g.Edges, Edge{
				From:          s.ID(),
				To:            l.To().ID(),
				Priority:      i + 1,
				Unconditional: l.Unconditional(),
			})
		}
	}
	return g
}

// ExportDOT generates Graphviz DOT source. States holding instances are filled
// and labelled with their instance count; the initial state gets an entry arrow.
func (v *Visualizer) ExportDOT(m *fsmx.Machine) string {
	g := v.Graph(m)
	var buf bytes.Buffer
	buf.WriteString(`digraph FSM {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	for _, n := range g.Nodes {
		label := n.Name
		style := ""
		if n.Instances > 0 {
			label = fmt.Sprintf("%s (%d)", n.Name, n.Instances)
			style = ` style="rounded,filled" fillcolor=lightgreen`
		}
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", n.Name, label, style)
		if n.Initial {
			buf.WriteString("  \"__start\" [shape=point];\n")
			fmt.Fprintf(&buf, "  \"__start\" -> %q;\n", n.Name)
		}
	}
	byID := make(map[fsmx.StateID]string, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n.Name
	}
	for _, e := range g.Edges {
		label := strconv.Itoa(e.Priority)
		style := ""
		if e.Unconditional {
			style = " style=dashed"
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q%s];\n", byID[e.From], byID[e.To], label, style)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the graph to indented JSON.
func (v *Visualizer) ExportJSON(m *fsmx.Machine) ([]byte, error) {
	return json.MarshalIndent(v.Graph(m), "", "  ")
}

func (v *Visualizer) name(id fsmx.StateID) string {
	if n, ok := v.Names[id]; ok {
		return n
	}
	return strconv.Itoa(int(id))
}
