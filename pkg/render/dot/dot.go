package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/unshred/pkg/core/adjacency"
	"github.com/matzehuels/unshred/pkg/core/sequence"
)

// Options configures diagram generation.
type Options struct {
	// TopK is the number of best neighbors drawn per stripe. Zero means 1.
	TopK int

	// Solution, if set, highlights its placement order.
	Solution *sequence.Solution

	// HideScores drops edge labels.
	HideScores bool
}

type edge struct {
	from, to int
}

// ToDOT converts an adjacency graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(g *adjacency.Graph, opts Options) string {
	k := opts.TopK
	if k <= 0 {
		k = 1
	}

	placed := make(map[int]bool)
	path := make(map[edge]bool)
	if sol := opts.Solution; sol != nil {
		for i, id := range sol.Order {
			placed[id] = true
			if i > 0 {
				path[edge{sol.Order[i-1], id}] = true
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=10, color=grey50];\n")
	buf.WriteString("\n")

	for i := 0; i < g.Len(); i++ {
		fmt.Fprintf(&buf, "  %d [%s];\n", i, strings.Join(nodeAttrs(i, opts.Solution != nil, placed[i]), ", "))
	}

	buf.WriteString("\n")
	drawn := make(map[edge]bool)
	for i := 0; i < g.Len(); i++ {
		for n, e := range g.Ranking(i) {
			if n >= k || e.IsSentinel() {
				break
			}
			ed := edge{e.Neighbor, i}
			drawn[ed] = true
			writeEdge(&buf, ed, e.Score, path[ed], opts.HideScores)
		}
	}
	// Solution pairs outside the top-k are still drawn.
	if sol := opts.Solution; sol != nil {
		for i := 1; i < len(sol.Order); i++ {
			ed := edge{sol.Order[i-1], sol.Order[i]}
			if !drawn[ed] {
				drawn[ed] = true
				writeEdge(&buf, ed, g.Score(ed.to, ed.from), true, opts.HideScores)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id int, highlight, placed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", strconv.Itoa(id))}
	switch {
	case highlight && placed:
		attrs = append(attrs, "fillcolor=lightyellow")
	case highlight:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func writeEdge(buf *bytes.Buffer, e edge, score float64, onPath, hideScore bool) {
	var attrs []string
	if !hideScore {
		attrs = append(attrs, fmt.Sprintf("label=%q", strconv.FormatFloat(score, 'g', -1, 64)))
	}
	if onPath {
		attrs = append(attrs, "color=firebrick", "penwidth=2.5")
	}
	if len(attrs) == 0 {
		fmt.Fprintf(buf, "  %d -> %d;\n", e.from, e.to)
		return
	}
	fmt.Fprintf(buf, "  %d -> %d [%s];\n", e.from, e.to, strings.Join(attrs, ", "))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
