// Package topology describes the static network graph and builds per-node
// routing tables from unweighted shortest paths.
package topology

import "fmt"

// Graph is an undirected graph with per-node ordered link lists. The index
// of a neighbor in a node's link list is that node's outgoing link index.
type Graph struct {
	links map[int][]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{links: make(map[int][]int)}
}

// AddNode registers an address with no links. Adding twice is a no-op.
func (g *Graph) AddNode(addr int) {
	if _, ok := g.links[addr]; !ok {
		g.links[addr] = nil
	}
}

// Connect adds a bidirectional link between a and b. Link indices are
// assigned in call order on each side.
func (g *Graph) Connect(a, b int) {
	g.AddNode(a)
	g.AddNode(b)
	g.links[a] = append(g.links[a], b)
	g.links[b] = append(g.links[b], a)
}

// Links returns the neighbor addresses of addr in link-index order.
func (g *Graph) Links(addr int) []int {
	return g.links[addr]
}

// LinkCount returns the number of outgoing links of addr.
func (g *Graph) LinkCount(addr int) int {
	return len(g.links[addr])
}

// Nodes returns the number of addresses in the graph.
func (g *Graph) Nodes() int { return len(g.links) }

// RoutingTable computes a destination-address to outgoing-link-index map for
// src using unweighted shortest paths (BFS). Unreachable destinations are
// absent from the map. Consumed once at node startup.
func (g *Graph) RoutingTable(src int) (map[int]int, error) {
	if _, ok := g.links[src]; !ok {
		return nil, fmt.Errorf("unknown node %d", src)
	}

	table := make(map[int]int)
	// firstHop[x] is the src link index leading toward x.
	firstHop := make(map[int]int)
	visited := map[int]bool{src: true}
	var frontier []int

	for i, n := range g.links[src] {
		if visited[n] {
			continue
		}
		visited[n] = true
		firstHop[n] = i
		table[n] = i
		frontier = append(frontier, n)
	}

	for len(frontier) > 0 {
		var next []int
		for _, cur := range frontier {
			for _, n := range g.links[cur] {
				if visited[n] {
					continue
				}
				visited[n] = true
				firstHop[n] = firstHop[cur]
				table[n] = firstHop[cur]
				next = append(next, n)
			}
		}
		frontier = next
	}

	return table, nil
}

// Star builds the test network: controller at address 0 with one link per
// node, node addresses 1..n. Controller link i connects to node i+1.
func Star(n int) *Graph {
	g := NewGraph()
	g.AddNode(0)
	for addr := 1; addr <= n; addr++ {
		g.Connect(0, addr)
	}
	return g
}
