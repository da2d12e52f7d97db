package snapshotcodec

import (
	"reflect"
	"testing"

	snapv1 "hexglobe.ai/internal/persistence/snapshot"
)

func TestEdgesSortedAndRestored(t *testing.T) {
	down := map[int]int{5: 2, 0: 2, 2: 3}
	edges := EdgesFromMap(down)
	want := []snapv1.EdgeV1{{From: 0, To: 2}, {From: 2, To: 3}, {From: 5, To: 2}}
	if !reflect.DeepEqual(edges, want) {
		t.Fatalf("edges: got %v", edges)
	}
	got, err := MapFromEdges(edges, 6)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(got, down) {
		t.Fatalf("restored map: got %v", got)
	}
}

func TestMapFromEdgesRejectsBadInput(t *testing.T) {
	if _, err := MapFromEdges([]snapv1.EdgeV1{{From: 0, To: 9}}, 4); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := MapFromEdges([]snapv1.EdgeV1{{From: 1, To: 2}, {From: 1, To: 3}}, 4); err == nil {
		t.Fatalf("expected duplicate edge error")
	}
	if _, err := MapFromEdges([]snapv1.EdgeV1{{From: 1, To: 1}}, 4); err == nil {
		t.Fatalf("expected self loop error")
	}
}

func TestFlowsRoundTrip(t *testing.T) {
	flow := map[int]float64{3: 2, 1: 1}
	list := FlowsFromMap(flow)
	if list[0].Vertex != 1 || list[1].Vertex != 3 {
		t.Fatalf("flows not sorted: %v", list)
	}
	if got := MapFromFlows(list); !reflect.DeepEqual(got, flow) {
		t.Fatalf("flows: got %v", got)
	}
	if FlowsFromMap(nil) != nil {
		t.Fatalf("empty flow should encode as nil")
	}
}
