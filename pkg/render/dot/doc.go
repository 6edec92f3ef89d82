// Package dot renders the stripe adjacency graph as a Graphviz diagram.
//
// # Overview
//
// Each stripe becomes a node; an edge j → i means "j is a good candidate to
// sit immediately left of i" and is labeled with the edge score. Only the
// top-k neighbors of each stripe are drawn, so the diagram stays readable
// for realistic stripe counts. When a solution is supplied, its adjacent
// pairs are drawn in bold and stripes it failed to place are dashed.
//
// # Usage
//
//	src := dot.ToDOT(g, dot.Options{TopK: 2, Solution: &sol})
//	svg, err := dot.RenderSVG(ctx, src)
//	png, err := dot.RenderPNG(ctx, src)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no external Graphviz installation is required.
package dot
