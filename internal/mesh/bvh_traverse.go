package mesh

// hitBox clips [ray.Min, ray.Max] against the box slabs of node i.
// Axes where the direction is ~0 have an infinite inverse; a NaN from a
// zero offset fails every comparison and leaves the interval alone.
func (b *bvh) hitBox(i int32, ray *Ray) bool {
	lo, hi := b.lo(i), b.hi(i)
	u0, u1 := ray.Min, ray.Max
	for k := len(lo) - 1; k >= 0; k-- {
		p, d := ray.Pos[k], ray.inv[k]
		b0 := (lo[k] - p) * d
		b1 := (hi[k] - p) * d
		if b0 > b1 {
			b0, b1 = b1, b0
		}
		if u0 < b0 {
			u0 = b0
		}
		if u1 > b1 {
			u1 = b1
		}
		if u0 > u1 {
			return false
		}
	}
	return true
}

// raypick walks the tree front to back with an explicit stack. At a divide
// node the child on the near side of the split axis, as given by the ray's
// sign mask, is visited first, so leaves found later are tested against an
// already tightened ray.Max.
func (b *bvh) raypick(ray *Ray) {
	ray.prepare()
	if b.count == 0 {
		return
	}
	var buf [64]int32
	stack := append(buf[:0], 0)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !b.hitBox(i, ray) {
			continue
		}
		n := &b.nodes[i]
		switch n.kind {
		case divideNode:
			near, far := n.right, n.left
			if ray.swap&(1<<uint(n.axis)) != 0 {
				near, far = n.left, n.right
			}
			stack = append(stack, far, near)
		case faceLeaf:
			n.face.Intersect(ray)
		case instanceLeaf:
			n.inst.intersect(ray, false)
		}
	}
}
