package mesh

import (
	"fmt"
	"io"
	"strings"
)

// BVHStats summarizes a built tree.
type BVHStats struct {
	Nodes     int
	Leaves    int
	Faces     int
	Instances int
	Depth     int
	Cost      float64
}

// BVHStats builds the BVH if needed and counts its nodes.
func (m *Mesh) BVHStats() BVHStats {
	m.BuildBVH()
	b := &m.bvh
	var st BVHStats
	if b.count == 0 {
		return st
	}
	st.Cost = b.nodes[0].cost
	b.walk(0, 1, func(i int32, depth int) {
		st.Nodes++
		if depth > st.Depth {
			st.Depth = depth
		}
		switch b.nodes[i].kind {
		case faceLeaf:
			st.Leaves++
			st.Faces++
		case instanceLeaf:
			st.Leaves++
			st.Instances++
		}
	})
	return st
}

func (b *bvh) walk(i int32, depth int, fn func(i int32, depth int)) {
	fn(i, depth)
	if n := &b.nodes[i]; n.kind == divideNode {
		b.walk(n.left, depth+1, fn)
		b.walk(n.right, depth+1, fn)
	}
}

// DumpBVH prints the BVH tree with one tab per level: subtree counts, split
// axis, cost and box of each node.
func (m *Mesh) DumpBVH(w io.Writer) error {
	m.BuildBVH()
	b := &m.bvh
	if b.count == 0 {
		_, err := fmt.Fprintln(w, "[BVH] <empty>")
		return err
	}
	counts := make(map[int32]bvhCounts, b.count)
	totals := b.countNodes(0, counts)
	if _, err := fmt.Fprintf(w, "[BVH] root: nodes=%d leaves=%d cost=%.5g\n", totals.nodes, totals.leaves, b.nodes[0].cost); err != nil {
		return err
	}
	var err error
	b.walk(0, 0, func(i int32, depth int) {
		if err != nil {
			return
		}
		n := &b.nodes[i]
		ind := strings.Repeat("\t", depth)
		box := fmt.Sprintf("min=%s max=%s", fmtCoords(b.lo(i)), fmtCoords(b.hi(i)))
		switch n.kind {
		case divideNode:
			c := counts[i]
			_, err = fmt.Fprintf(w, "%s%s  nodes=%d leaves=%d axis=%d cost=%.5g | %s\n", ind, n.kind, c.nodes, c.leaves, n.axis, n.cost, box)
		default:
			_, err = fmt.Fprintf(w, "%s%s  cost=%.5g | %s\n", ind, n.kind, n.cost, box)
		}
	})
	return err
}

type bvhCounts struct {
	nodes  int
	leaves int
}

func (b *bvh) countNodes(i int32, memo map[int32]bvhCounts) bvhCounts {
	n := &b.nodes[i]
	if n.kind != divideNode {
		return bvhCounts{nodes: 1, leaves: 1}
	}
	l := b.countNodes(n.left, memo)
	r := b.countNodes(n.right, memo)
	c := bvhCounts{nodes: 1 + l.nodes + r.nodes, leaves: l.leaves + r.leaves}
	memo[i] = c
	return c
}

func fmtCoords(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.5g", x)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
