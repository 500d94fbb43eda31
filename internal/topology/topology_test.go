package topology

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStar_ControllerLinksMatchConvention(t *testing.T) {
	t.Parallel()

	g := Star(4)
	if g.Nodes() != 5 {
		t.Fatalf("nodes=%d", g.Nodes())
	}
	if g.LinkCount(0) != 4 {
		t.Fatalf("controller links=%d", g.LinkCount(0))
	}
	// Controller link i must lead to node i+1.
	for i, n := range g.Links(0) {
		if n != i+1 {
			t.Fatalf("link %d -> %d", i, n)
		}
	}
	// Every node has exactly one link, to the controller.
	for addr := 1; addr <= 4; addr++ {
		if got := g.Links(addr); len(got) != 1 || got[0] != 0 {
			t.Fatalf("node %d links=%v", addr, got)
		}
	}
}

func TestRoutingTable_Star(t *testing.T) {
	t.Parallel()

	g := Star(3)
	table, err := g.RoutingTable(2)
	if err != nil {
		t.Fatalf("RoutingTable: %v", err)
	}
	// Everything routes through the single link to the controller.
	want := map[int]int{0: 0, 1: 0, 3: 0}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestRoutingTable_Line(t *testing.T) {
	t.Parallel()

	// 0 - 1 - 2 - 3
	g := NewGraph()
	g.Connect(0, 1)
	g.Connect(1, 2)
	g.Connect(2, 3)

	table, err := g.RoutingTable(1)
	if err != nil {
		t.Fatalf("RoutingTable: %v", err)
	}
	// Node 1's link 0 goes to 0, link 1 goes to 2.
	want := map[int]int{0: 0, 2: 1, 3: 1}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestRoutingTable_UnknownNode(t *testing.T) {
	t.Parallel()

	g := Star(2)
	if _, err := g.RoutingTable(9); err == nil {
		t.Fatal("expected error")
	}
}

func TestRoutingTable_UnreachableAbsent(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	g.Connect(0, 1)
	g.AddNode(5)

	table, err := g.RoutingTable(0)
	if err != nil {
		t.Fatalf("RoutingTable: %v", err)
	}
	if _, ok := table[5]; ok {
		t.Fatal("unreachable node present in table")
	}
}
