package decompose

// A graph data structure for grouping overlapping alignment events
// into independent slices of a locus.

type graph [][]int // adjacency lists for the edges

func newGraph(size int) graph {
	return make([][]int, size)
}

func (g graph) addNeighbor(from, to int) {
	n := g[from]
	for _, t := range n {
		if t == to {
			return
		}
	}
	g[from] = append(n, to)
}

func (g graph) addEdge(left, right int) {
	if left == right {
		return
	}
	g.addNeighbor(left, right)
	g.addNeighbor(right, left)
}

func findRepNode(grouping []int, node int) int {
	rep := node
	for rep != grouping[rep] {
		rep = grouping[rep]
	}
	for node != rep {
		next := grouping[node]
		grouping[node] = rep
		node = next
	}
	return rep
}

func joinNodes(grouping []int, node1, node2 int) {
	rep1 := findRepNode(grouping, node1)
	rep2 := findRepNode(grouping, node2)
	if rep1 == rep2 {
		return
	}
	grouping[rep1] = rep2
}

// cluster returns the representative node of every node.
func (g graph) cluster() []int {
	grouping := make([]int, len(g))
	for i := range grouping {
		grouping[i] = i
	}
	for i := range g {
		for _, j := range g[i] {
			joinNodes(grouping, j, i)
		}
	}
	result := make([]int, len(g))
	for i := range g {
		result[i] = findRepNode(grouping, i)
	}
	return result
}
