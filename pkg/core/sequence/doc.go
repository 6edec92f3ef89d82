// Package sequence reconstructs a stripe order from an adjacency graph.
//
// For every start stripe the [Reconstructor] follows best-neighbor pointers
// until the chain holds N entries, accumulating the scores of the links it
// takes. The chain with the strictly smallest cost wins (the lowest start
// id on ties) and is reversed into the left-to-right placement order.
//
// # Revisit Policy
//
// The historical chaining step picks the single best neighbor even when it
// was already placed, so a chain can fall into a short cycle and contain
// fewer than N distinct stripes. That behavior is kept as [PolicyFaithful]
// for output compatibility. [PolicyCorrected] skips placed stripes and
// always yields a permutation.
//
// # Tracing
//
// An [Observer] receives one [Candidate] per start id, in start-id order,
// after every chain has been computed.
package sequence
