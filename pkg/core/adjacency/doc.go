// Package adjacency builds the directional adjacency graph of a stripe
// collection.
//
// For every stripe i the graph holds a ranking of all stripes ordered by
// how plausibly each one sits immediately to the LEFT of i:
//
//	Score(i, j) = score.Dissimilarity(LeftEdge(i), RightEdge(j))
//
// Following best neighbors therefore walks an image from right to left; the
// sequence stage reverses the winning walk to obtain the left-to-right
// placement order.
//
// # Ranking Invariants
//
//   - every ranking has exactly N entries: N-1 real neighbors plus the
//     stripe itself pinned to the [Sentinel] score
//   - entries are non-decreasing by score; equal scores are ordered by
//     ascending neighbor id
//   - the self entry is always last
//
// # Concurrency
//
// Rows are computed by a bounded pool of goroutines. Each row is owned by
// exactly one goroutine and sorted with a total order, so the graph is
// identical for every worker count.
package adjacency
