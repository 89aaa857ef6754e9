package dot

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/scgraph/pkg/geom"
	"github.com/matzehuels/scgraph/pkg/scene"
)

// Options configures DOT generation.
type Options struct {
	// Labels draws object text next to nodes and connectors.
	Labels bool
}

// pointsPerInch converts scene units, treated as points, to the inch sizes
// Graphviz expects for node width and height.
const pointsPerInch = 72.0

// ToDOT converts the scene to pinned DOT source. The scene is not updated;
// call [scene.Scene.Update] first when geometry may be stale.
func ToDOT(s *scene.Scene, opts Options) string {
	_, h := s.ContainerSize()
	w := &writer{height: h, labels: opts.Labels}

	w.line("digraph G {")
	w.line(`  bgcolor="transparent";`)
	w.line("  inputscale=72;")
	w.line("  notranslate=true;")
	w.line("  splines=line;")
	w.line("  outputorder=edgesfirst;")
	w.line(`  node [fontsize=10, style=filled, fillcolor=white];`)
	w.line("  edge [dir=none];")
	w.line("")

	for _, c := range s.Contours() {
		w.contour(c)
	}
	for _, n := range s.PointNodes() {
		w.pointNode(n)
	}
	for _, n := range s.ContentNodes() {
		w.contentNode(n)
	}
	for _, c := range s.Connectors() {
		w.chain(fmt.Sprintf("k%d", c.ID()), c, pathOf(c.SourcePoint(), c.Points(), c.TargetPoint()), c.HasArrow(), "")
	}
	for _, b := range s.Buses() {
		w.chain(fmt.Sprintf("b%d", b.ID()), b, pathOf(b.SourcePoint(), b.Points(), b.TargetPoint()), false, "penwidth=3")
	}

	w.line("}")
	return w.buf.String()
}

type writer struct {
	buf    bytes.Buffer
	height float64
	labels bool
}

func (w *writer) line(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *writer) pos(p geom.Vec) string {
	return fmt.Sprintf(`pos="%s,%s!"`, num(p.X), num(w.height-p.Y))
}

func (w *writer) node(id string, attrs []string) {
	fmt.Fprintf(&w.buf, "  %s [%s];\n", id, strings.Join(attrs, ", "))
}

func (w *writer) label(o scene.Object) string {
	if !w.labels || o.Text() == "" {
		return `label=""`
	}
	return fmt.Sprintf("xlabel=%q, label=\"\"", o.Text())
}

func (w *writer) pointNode(n *scene.PointNode) {
	d := num(2 * n.Scale().X / pointsPerInch)
	attrs := []string{"shape=circle", "fixedsize=true", "width=" + d, "height=" + d, w.pos(n.Position()), w.label(n)}
	w.node(fmt.Sprintf("n%d", n.ID()), append(attrs, decoration(n)...))
}

func (w *writer) contentNode(n *scene.ContentNode) {
	sz := n.Scale()
	label := `label=""`
	if w.labels && n.Content() != "" {
		label = fmt.Sprintf("label=%q", n.Content())
	}
	attrs := []string{"shape=box", "fixedsize=true",
		"width=" + num(sz.X/pointsPerInch), "height=" + num(sz.Y/pointsPerInch),
		w.pos(n.Position()), label}
	w.node(fmt.Sprintf("n%d", n.ID()), append(attrs, decoration(n)...))
}

func (w *writer) contour(c *scene.Contour) {
	vs := c.Vertices()
	if len(vs) < 2 {
		return
	}
	closed := append(vs, vs[0])
	w.chain(fmt.Sprintf("c%d", c.ID()), c, closed, false, "style=dashed")
	if w.labels && c.Text() != "" {
		w.node(fmt.Sprintf("c%d_label", c.ID()), []string{"shape=plaintext", "style=\"\"", w.pos(c.Position()), fmt.Sprintf("label=%q", c.Text())})
	}
}

// chain draws a polyline as invisible anchors joined by edges. The last
// segment carries the arrow head.
func (w *writer) chain(prefix string, o scene.Object, path []geom.Vec, arrow bool, style string) {
	for i, p := range path {
		w.node(fmt.Sprintf("%s_%d", prefix, i), []string{"shape=point", "width=0.01", "style=invis", w.pos(p)})
	}
	deco := decoration(o)
	if style != "" {
		deco = append(deco, style)
	}
	for i := 1; i < len(path); i++ {
		attrs := slices.Clone(deco)
		if arrow && i == len(path)-1 {
			attrs = append(attrs, "dir=forward")
		}
		if i == 1 && w.labels && o.Text() != "" && o.Kind() != scene.KindContour {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", o.Text()))
		}
		fmt.Fprintf(&w.buf, "  %s_%d -> %s_%d", prefix, i-1, prefix, i)
		if len(attrs) > 0 {
			fmt.Fprintf(&w.buf, " [%s]", strings.Join(attrs, ", "))
		}
		w.buf.WriteString(";\n")
	}
}

// decoration marks selection and highlight state.
func decoration(o scene.Object) []string {
	switch {
	case o.Selected():
		return []string{"color=royalblue", "penwidth=2"}
	case o.Highlighted():
		return []string{"color=darkorange"}
	}
	return nil
}

func pathOf(src geom.Vec, mid []geom.Vec, tgt geom.Vec) []geom.Vec {
	out := make([]geom.Vec, 0, len(mid)+2)
	out = append(out, src)
	out = append(out, mid...)
	return append(out, tgt)
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
