package mesh

import (
	"log/slog"
	"math"
	"sort"
	"time"
)

// BVHParams is the split cost model. Zero fields take defaults.
type BVHParams struct {
	// BoxCost is the cost of one box test, default 1/(dim²+1).
	BoxCost      float64 `json:"boxCost,omitempty" yaml:"boxCost,omitempty"`
	// FaceCost is the cost of one face test, default 1.
	FaceCost     float64 `json:"faceCost,omitempty" yaml:"faceCost,omitempty"`
	// InstanceCost is the overhead of entering an instance, default 2.
	InstanceCost float64 `json:"instanceCost,omitempty" yaml:"instanceCost,omitempty"`
}

// DefaultBVHParams returns the cost model for dim dimensions. A face test is
// O(dim²) and a box test O(dim), so a box test costs about 1/(dim²+1) of a face.
func DefaultBVHParams(dim int) BVHParams {
	return BVHParams{
		BoxCost:      1 / float64(dim*dim+1),
		FaceCost:     1,
		InstanceCost: 2,
	}
}

func (p BVHParams) withDefaults(dim int) BVHParams {
	d := DefaultBVHParams(dim)
	if p.BoxCost > 0 {
		d.BoxCost = p.BoxCost
	}
	if p.FaceCost > 0 {
		d.FaceCost = p.FaceCost
	}
	if p.InstanceCost > 0 {
		d.InstanceCost = p.InstanceCost
	}
	return d
}

type nodeKind uint8

const (
	divideNode nodeKind = iota
	faceLeaf
	instanceLeaf
)

func (k nodeKind) String() string {
	switch k {
	case divideNode:
		return "NODE"
	case faceLeaf:
		return "FACE"
	case instanceLeaf:
		return "INST"
	}
	return "?"
}

// bvhNode is a tagged variant; only the fields of its kind are meaningful.
type bvhNode struct {
	kind nodeKind
	cost float64

	// divideNode
	axis        int
	left, right int32

	face *Face     // faceLeaf
	inst *Instance // instanceLeaf
}

// bvh is a binary tree over the faces and instances of one mesh.
//
// For N objects the tree uses 2N-1 nodes: divide nodes at 0..N-2 (root at
// 0) and leaves at N-1..2N-2. A single object is its own root. Children of a
// divide node always have larger indices than the node.
//
// Everything below nodes is build scratch, kept and grown across rebuilds.
type bvh struct {
	dim    int
	params BVHParams
	nodes  []bvhNode
	box    []float64 // per node: dim minima followed by dim maxima
	count  int       // nodes in use, 0 when empty

	sorted [][]int32  // per axis: leaf indices sorted by box center
	tmp    []int32    // re-filter buffer
	lcost  []float64  // left sweep cost by split position
	inLeft []bool     // per node: on the left of the current split
	span   [][2]int32 // per divide node: [lo, hi) into sorted
	acc    []float64  // sweep box
}

func (b *bvh) init(dim int) {
	b.dim = dim
	b.params = DefaultBVHParams(dim)
}

func (b *bvh) lo(i int32) []float64 {
	o := int(i) * 2 * b.dim
	return b.box[o : o+b.dim]
}

func (b *bvh) hi(i int32) []float64 {
	o := (int(i)*2 + 1) * b.dim
	return b.box[o : o+b.dim]
}

func (b *bvh) rootBox() (lo, hi []float64, ok bool) {
	if b.count == 0 {
		return nil, nil, false
	}
	return b.lo(0), b.hi(0), true
}

// reserve sizes the arena for n objects, growing geometrically.
func (b *bvh) reserve(n int) {
	nodes := 2*n - 1
	if cap(b.nodes) < nodes {
		c := 2 * cap(b.nodes)
		if c < nodes {
			c = nodes
		}
		b.nodes = make([]bvhNode, c)
		b.box = make([]float64, c*2*b.dim)
		b.inLeft = make([]bool, c)
		b.span = make([][2]int32, c)
		objs := (c + 1) / 2
		b.sorted = make([][]int32, b.dim)
		for i := range b.sorted {
			b.sorted[i] = make([]int32, objs)
		}
		b.tmp = make([]int32, objs)
		b.lcost = make([]float64, objs)
		b.acc = make([]float64, 2*b.dim)
	}
	b.nodes = b.nodes[:nodes]
}

func emptyBox(lo, hi []float64) {
	for i := range lo {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}
}

func mergeBox(lo, hi, olo, ohi []float64) {
	for i := range lo {
		if olo[i] < lo[i] {
			lo[i] = olo[i]
		}
		if ohi[i] > hi[i] {
			hi[i] = ohi[i]
		}
	}
}

// measure is the (n-1)-dimensional boundary measure of the box up to a
// constant factor, which is what a random ray hits with. In 2D the area is
// used instead, since rays there behave like point queries.
func measure(lo, hi []float64) float64 {
	dim := len(lo)
	switch {
	case dim == 2:
		return (hi[0] - lo[0]) * (hi[1] - lo[1])
	case dim >= 3:
		area, vol := 1.0, hi[0]-lo[0]
		for i := 1; i < dim; i++ {
			d := hi[i] - lo[i]
			area = area*d + vol
			vol *= d
		}
		return area
	}
	return 1
}

func (b *bvh) initLeaf(i int32) {
	n := &b.nodes[i]
	lo, hi := b.lo(i), b.hi(i)
	emptyBox(lo, hi)
	n.cost = b.params.BoxCost
	switch n.kind {
	case faceLeaf:
		n.cost += b.params.FaceCost
		n.face.bounds(lo, hi)
	case instanceLeaf:
		sub := &n.inst.Mesh.bvh
		if sub.count > 0 {
			n.cost += sub.nodes[0].cost
		}
		n.cost += b.params.InstanceCost
		n.inst.bounds(lo, hi)
	}
}

func (b *bvh) initDivide(i int32) {
	n := &b.nodes[i]
	lo, hi := b.lo(i), b.hi(i)
	emptyBox(lo, hi)
	n.cost = b.params.BoxCost
	for _, c := range [2]int32{n.left, n.right} {
		mergeBox(lo, hi, b.lo(c), b.hi(c))
		n.cost += b.nodes[c].cost
	}
}

// build partitions the mesh objects top-down with a surface area heuristic.
func (b *bvh) build(m *Mesh) {
	start := time.Now()
	for _, in := range m.insts {
		in.Mesh.BuildBVH()
		in.gen = in.Mesh.gen
	}
	b.count = 0
	n := len(m.faces) + len(m.insts)
	if n == 0 {
		return
	}
	b.reserve(n)
	b.count = 2*n - 1
	first := int32(n - 1)
	for k, f := range m.faces {
		b.nodes[first+int32(k)] = bvhNode{kind: faceLeaf, face: f}
	}
	for k, in := range m.insts {
		b.nodes[first+int32(len(m.faces)+k)] = bvhNode{kind: instanceLeaf, inst: in}
	}
	for i := first; i < int32(b.count); i++ {
		b.initLeaf(i)
	}
	if n == 1 {
		b.logBuild(n, start)
		return
	}

	for axis, arr := range b.sorted {
		arr = arr[:n]
		for k := range arr {
			arr[k] = first + int32(k)
		}
		sort.SliceStable(arr, func(x, y int) bool {
			return b.center(arr[x], axis) < b.center(arr[y], axis)
		})
	}

	b.span[0] = [2]int32{0, int32(n)}
	next := int32(1)
	for i := int32(0); i < first; i++ {
		next = b.split(i, next)
	}
	for i := first - 1; i >= 0; i-- {
		b.initDivide(i)
	}
	b.logBuild(n, start)
}

func (b *bvh) center(i int32, axis int) float64 {
	return b.lo(i)[axis] + b.hi(i)[axis]
}

// split chooses the cheapest axis and position for divide node i, partitions
// its span and links its children. next is the first free divide node; the
// updated value is returned.
func (b *bvh) split(i, next int32) int32 {
	lo, hi := b.span[i][0], b.span[i][1]
	alo, ahi := b.acc[:b.dim], b.acc[b.dim:]
	bestAxis, bestHalf, bestCost := 0, lo+1, math.Inf(1)

	for axis, arr := range b.sorted {
		emptyBox(alo, ahi)
		cost := b.params.BoxCost
		reach := lo
		for k := lo + 1; k < hi; k++ {
			c := arr[k-1]
			mergeBox(alo, ahi, b.lo(c), b.hi(c))
			cost += b.nodes[c].cost
			prob := measure(alo, ahi) * cost
			if prob >= bestCost {
				break
			}
			b.lcost[k] = prob
			reach = k
		}
		emptyBox(alo, ahi)
		cost = b.params.BoxCost
		for k := hi - 1; k > lo; k-- {
			c := arr[k]
			mergeBox(alo, ahi, b.lo(c), b.hi(c))
			cost += b.nodes[c].cost
			prob := measure(alo, ahi) * cost
			if prob >= bestCost {
				break
			}
			if k > reach {
				continue
			}
			if total := b.lcost[k] + prob; total < bestCost {
				bestAxis, bestHalf, bestCost = axis, k, total
			}
		}
	}

	win := b.sorted[bestAxis]
	for k := lo; k < hi; k++ {
		b.inLeft[win[k]] = k < bestHalf
	}
	for axis, arr := range b.sorted {
		if axis == bestAxis {
			continue
		}
		l, r := lo, bestHalf
		for k := lo; k < hi; k++ {
			c := arr[k]
			if b.inLeft[c] {
				b.tmp[l] = c
				l++
			} else {
				b.tmp[r] = c
				r++
			}
		}
		copy(arr[lo:hi], b.tmp[lo:hi])
	}

	child := func(from, to int32) int32 {
		if to-from == 1 {
			return win[from]
		}
		c := next
		next++
		b.span[c] = [2]int32{from, to}
		return c
	}
	b.nodes[i] = bvhNode{kind: divideNode, axis: bestAxis}
	b.nodes[i].left = child(lo, bestHalf)
	b.nodes[i].right = child(bestHalf, hi)
	return next
}

func (b *bvh) logBuild(objects int, start time.Time) {
	slog.Debug("bvh built",
		"dim", b.dim,
		"objects", objects,
		"nodes", b.count,
		"cost", b.nodes[0].cost,
		"took", time.Since(start),
	)
}
