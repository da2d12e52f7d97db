// Package snapshotcodec converts river maps to and from sorted snapshot lists.
package snapshotcodec

import (
	"fmt"
	"sort"

	snapv1 "hexglobe.ai/internal/persistence/snapshot"
)

func EdgesFromMap(down map[int]int) []snapv1.EdgeV1 {
	if len(down) == 0 {
		return nil
	}
	out := make([]snapv1.EdgeV1, 0, len(down))
	for u, v := range down {
		out = append(out, snapv1.EdgeV1{From: u, To: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// MapFromEdges rejects vertices outside [0,numVerts) and a vertex with two
// downstream edges.
func MapFromEdges(edges []snapv1.EdgeV1, numVerts int) (map[int]int, error) {
	out := make(map[int]int, len(edges))
	for _, e := range edges {
		if e.From < 0 || e.From >= numVerts || e.To < 0 || e.To >= numVerts {
			return nil, fmt.Errorf("river edge %d->%d out of range [0,%d)", e.From, e.To, numVerts)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("river edge %d->%d is a self loop", e.From, e.To)
		}
		if _, dup := out[e.From]; dup {
			return nil, fmt.Errorf("vertex %d has two downstream edges", e.From)
		}
		out[e.From] = e.To
	}
	return out, nil
}

func FlowsFromMap(flow map[int]float64) []snapv1.FlowV1 {
	if len(flow) == 0 {
		return nil
	}
	out := make([]snapv1.FlowV1, 0, len(flow))
	for v, f := range flow {
		out = append(out, snapv1.FlowV1{Vertex: v, Flow: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vertex < out[j].Vertex })
	return out
}

func MapFromFlows(flows []snapv1.FlowV1) map[int]float64 {
	out := make(map[int]float64, len(flows))
	for _, f := range flows {
		out[f.Vertex] = f.Flow
	}
	return out
}
