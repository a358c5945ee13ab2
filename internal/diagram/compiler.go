// Package diagram compiles a process step sequence into a Mermaid flowchart
// definition. Layout and drawing are left to the renderer.
package diagram

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/graph"
	"github.com/spec-kit/process-raci/internal/palette"
	"github.com/spec-kit/process-raci/internal/registry"
)

// Direction is the flow direction of the chart.
type Direction string

const (
	TopDown   Direction = "TD"
	LeftRight Direction = "LR"
)

// ParseDirection returns LeftRight for "LR" in any case and TopDown otherwise.
func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LR":
		return LeftRight
	default:
		return TopDown
	}
}

// Edge labels of decision branches.
const (
	LabelYes   = "Yes"
	LabelNo    = "No"
	LabelYesNo = "Yes/No"
)

const indent = "    "

// Options controls compilation.
type Options struct {
	Direction  Direction
	ShowLanes  bool
	LabelWidth int
}

// Diagram is the compiled chart and the id of its render target.
type Diagram struct {
	Source   string `json:"source"`
	RenderID string `json:"renderId"`
}

type node struct {
	id   string
	step domain.Step
	dept *domain.Department
	role *domain.Role
	lane int
}

type lane struct {
	id    string
	dept  domain.Department
	nodes []int
}

// Compile renders steps as a flowchart. The output is byte-identical for
// identical inputs. Only a sequence without its anchors or with bad step ids
// is rejected.
func Compile(steps []domain.Step, reg *registry.Registry, opts Options) (Diagram, error) {
	if err := graph.Validate(steps); err != nil {
		return Diagram{}, err
	}
	if opts.Direction != LeftRight {
		opts.Direction = TopDown
	}
	if opts.LabelWidth <= 0 {
		opts.LabelWidth = DefaultLabelWidth
	}

	nodes := resolveNodes(steps, reg)
	var lanes []*lane
	if opts.ShowLanes {
		lanes = groupLanes(nodes)
	}

	var b strings.Builder
	b.WriteString("flowchart ")
	b.WriteString(string(opts.Direction))
	b.WriteByte('\n')

	declared := writeNodes(&b, nodes, lanes, opts.LabelWidth)
	writeEdges(&b, nodes, graph.IndexByID(steps))
	writeStyles(&b, nodes, lanes, declared)

	source := b.String()
	return Diagram{Source: source, RenderID: RenderID(source)}, nil
}

// RenderID is a content-addressed identifier for the render target of source.
func RenderID(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "flowchart-" + hex.EncodeToString(sum[:8])
}

func resolveNodes(steps []domain.Step, reg *registry.Registry) []node {
	nodes := make([]node, len(steps))
	for i, step := range steps {
		n := node{id: "S" + strconv.Itoa(i), step: step, lane: -1}
		if a, ok := domain.AssignmentOf(step); ok {
			if a.DepartmentID != nil {
				if dept, found := reg.Department(*a.DepartmentID); found {
					n.dept = &dept
				}
			} else if a.DraftDepartmentName != nil {
				if dept, found := reg.DepartmentByName(*a.DraftDepartmentName); found {
					n.dept = &dept
				}
			}
			if a.RoleID != nil {
				if role, found := reg.Role(*a.RoleID); found {
					n.role = &role
				}
			}
		}
		nodes[i] = n
	}
	return nodes
}

func groupLanes(nodes []node) []*lane {
	var lanes []*lane
	byKey := make(map[string]int)
	for i := range nodes {
		dept := nodes[i].dept
		if dept == nil {
			continue
		}
		key := dept.ID
		if key == "" {
			key = "name:" + registry.NameKey(dept.Name)
		}
		li, ok := byKey[key]
		if !ok {
			li = len(lanes)
			byKey[key] = li
			lanes = append(lanes, &lane{id: "L" + strconv.Itoa(li), dept: *dept})
		}
		lanes[li].nodes = append(lanes[li].nodes, i)
		nodes[i].lane = li
	}
	return lanes
}

// writeNodes emits node declarations. A lane is written as a whole where its
// first node appears; unclustered nodes keep their position. It returns node
// indexes in declaration order.
func writeNodes(b *strings.Builder, nodes []node, lanes []*lane, width int) []int {
	declared := make([]int, 0, len(nodes))
	written := make([]bool, len(lanes))
	for i := range nodes {
		li := nodes[i].lane
		if li < 0 {
			b.WriteString(indent)
			b.WriteString(declaration(nodes[i], width))
			b.WriteByte('\n')
			declared = append(declared, i)
			continue
		}
		if written[li] {
			continue
		}
		written[li] = true
		l := lanes[li]
		fmt.Fprintf(b, "%ssubgraph %s[\"%s\"]\n", indent, l.id, EscapeLabel(l.dept.Name))
		for _, ni := range l.nodes {
			b.WriteString(indent + indent)
			b.WriteString(declaration(nodes[ni], width))
			b.WriteByte('\n')
			declared = append(declared, ni)
		}
		b.WriteString(indent + "end\n")
	}
	return declared
}

func declaration(n node, width int) string {
	label := n.step.StepLabel()
	if strings.TrimSpace(label) == "" {
		label = defaultLabel(n.step.StepType())
	}
	text := formatLabel(label, width)
	switch n.step.StepType() {
	case domain.StepTypeDecision:
		return fmt.Sprintf("%s{\"%s\"}", n.id, text)
	case domain.StepTypeStart, domain.StepTypeFinish:
		return fmt.Sprintf("%s([\"%s\"])", n.id, text)
	default:
		return fmt.Sprintf("%s[\"%s\"]", n.id, text)
	}
}

func defaultLabel(t domain.StepType) string {
	switch t {
	case domain.StepTypeStart:
		return graph.DefaultStartLabel
	case domain.StepTypeFinish:
		return graph.DefaultFinishLabel
	case domain.StepTypeDecision:
		return "Decision"
	default:
		return "Action"
	}
}

func writeEdges(b *strings.Builder, nodes []node, index map[string]int) {
	last := len(nodes) - 1
	for i, n := range nodes {
		d, isDecision := n.step.(domain.DecisionStep)
		if !isDecision {
			if i < last {
				writeEdge(b, n.id, nodes[i+1].id, "")
			}
			continue
		}
		yes := branchTarget(d.YesTargetID, i, index)
		no := branchTarget(d.NoTargetID, i, index)
		if yes == no {
			if yes <= last {
				writeEdge(b, n.id, nodes[yes].id, LabelYesNo)
			}
			continue
		}
		if yes <= last {
			writeEdge(b, n.id, nodes[yes].id, LabelYes)
		}
		if no <= last {
			writeEdge(b, n.id, nodes[no].id, LabelNo)
		}
	}
}

// branchTarget resolves a decision branch to a step index, falling back to
// the next step when target is nil or unknown.
func branchTarget(target *string, i int, index map[string]int) int {
	if target != nil {
		if j, ok := index[*target]; ok {
			return j
		}
	}
	return i + 1
}

func writeEdge(b *strings.Builder, from, to, label string) {
	b.WriteString(indent)
	b.WriteString(from)
	if label == "" {
		b.WriteString(" --> ")
	} else {
		b.WriteString(" -->|")
		b.WriteString(EscapeLabel(label))
		b.WriteString("| ")
	}
	b.WriteString(to)
	b.WriteByte('\n')
}

func writeStyles(b *strings.Builder, nodes []node, lanes []*lane, declared []int) {
	roleClass := make(map[string]string)
	var classOrder []string
	classColors := make(map[string]palette.Colors)
	for _, ni := range declared {
		role := nodes[ni].role
		if role == nil {
			continue
		}
		if _, ok := roleClass[role.ID]; ok {
			continue
		}
		name := "role" + strconv.Itoa(len(classOrder))
		roleClass[role.ID] = name
		classOrder = append(classOrder, name)
		classColors[name] = palette.RoleNodeColors(nodeRoleColor(nodes[ni]))
	}
	for _, name := range classOrder {
		c := classColors[name]
		fmt.Fprintf(b, "%sclassDef %s fill:%s,stroke:%s,color:%s\n", indent, name, c.Fill, c.Stroke, c.Text)
	}
	for _, ni := range declared {
		if role := nodes[ni].role; role != nil {
			fmt.Fprintf(b, "%sclass %s %s\n", indent, nodes[ni].id, roleClass[role.ID])
		}
	}
	for _, l := range lanes {
		c := palette.LaneColors(palette.NormalizeHex(l.dept.Color, palette.Neutral))
		fmt.Fprintf(b, "%sstyle %s fill:%s,stroke:%s,color:%s\n", indent, l.id, c.Fill, c.Stroke, c.Text)
	}
	for _, ni := range declared {
		fmt.Fprintf(b, "%sstyle %s stroke:%s,stroke-width:2px\n", indent, nodes[ni].id, strokeColor(nodes[ni]))
	}
}

// strokeColor prefers the role color, then the department color.
func strokeColor(n node) string {
	if n.role != nil && palette.Valid(n.role.Color) {
		return palette.NormalizeHex(n.role.Color, palette.Neutral)
	}
	if n.dept != nil && palette.Valid(n.dept.Color) {
		return palette.NormalizeHex(n.dept.Color, palette.Neutral)
	}
	return palette.Neutral
}

func nodeRoleColor(n node) string {
	if palette.Valid(n.role.Color) {
		return palette.NormalizeHex(n.role.Color, palette.Neutral)
	}
	if n.dept != nil {
		return palette.NormalizeHex(n.dept.Color, palette.Neutral)
	}
	return palette.Neutral
}
