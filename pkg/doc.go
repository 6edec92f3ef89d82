// Package pkg provides the core libraries for unshred image reconstruction.
//
// # Overview
//
// Unshred reassembles an image that was cut into equal-width vertical
// stripes and shuffled. Every stripe is scored against every other by how
// well its left edge continues another stripe's right edge; a greedy chain
// is grown from every start stripe and the cheapest chain becomes the
// reconstructed order. The pkg directory is organized as:
//
//  1. [core] - Domain logic (stripes, scoring, adjacency, sequencing, composing)
//  2. [pipeline] - Orchestration (load → score → solve → compose)
//  3. [cache], [store] - Infrastructure (solution cache, run history)
//  4. [imageio], [render] - Image codecs, trace files and graph rendering
//  5. [config], [errors], [observability] - Ambient settings, error codes and hooks
//
// # Architecture
//
//	Shredded image
//	      ↓
//	[core/stripe] (cut into stripes, extract edge columns)
//	      ↓
//	[core/score] + [core/adjacency] (rank neighbors per stripe)
//	      ↓
//	[core/sequence] (one greedy chain per start, pick the cheapest)
//	      ↓
//	[core/compose] (paste stripes in order)
//	      ↓
//	PNG/JPEG/... output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/unshred/pkg/core/adjacency"
//	    "github.com/matzehuels/unshred/pkg/core/compose"
//	    "github.com/matzehuels/unshred/pkg/core/sequence"
//	    "github.com/matzehuels/unshred/pkg/core/stripe"
//	    "github.com/matzehuels/unshred/pkg/imageio"
//	)
//
//	img, _ := imageio.Open("shredded.png")
//	coll, _ := stripe.Load(stripe.FromImage(img), 32)
//	g := adjacency.Build(coll, adjacency.Options{})
//	sol := sequence.New(g, sequence.Options{}).Solve()
//	out, _ := compose.Strip{}.Compose(img, coll, sol.Order)
//	_ = imageio.Save(out, "unshredded-shredded.png")
//
// Most callers should use [pipeline.Runner], which adds caching, logging
// and hooks on top of these stages.
package pkg
