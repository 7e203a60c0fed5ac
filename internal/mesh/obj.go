package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

// LoadOBJ appends the vertices and faces of a Wavefront OBJ stream. Vertex
// records must carry at least dim coordinates; extra ones are ignored. Face
// indices are 1-based or negative (relative to the last vertex), texture and
// normal references are ignored, and polygons with more than dim corners are
// fanned into simplexes. Other records are skipped.
func (m *Mesh) LoadOBJ(r io.Reader, mat *Material, t *linalg.Transform) error {
	base := len(m.verts)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "v":
			if len(fields)-1 < m.dim {
				return fmt.Errorf("obj line %d: %w: %d coordinates for dim %d", line, ErrDimension, len(fields)-1, m.dim)
			}
			pos := linalg.NewVector(m.dim)
			for i := range pos {
				x, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return fmt.Errorf("obj line %d: %w", line, err)
				}
				pos[i] = x
			}
			m.AddVertex(pos, t)
		case "f":
			idx := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				ref, _, _ := strings.Cut(tok, "/")
				n, err := strconv.Atoi(ref)
				if err != nil {
					return fmt.Errorf("obj line %d: %w", line, err)
				}
				switch {
				case n > 0:
					n = base + n - 1
				case n < 0:
					n = len(m.verts) + n
				default:
					return fmt.Errorf("obj line %d: %w: index 0", line, ErrVertexIndex)
				}
				idx = append(idx, n)
			}
			if err := m.addPolygon(idx, mat); err != nil {
				return fmt.Errorf("obj line %d: %w", line, err)
			}
		}
	}
	return sc.Err()
}

// addPolygon adds idx as one face, or as a fan of dim-vertex faces sharing
// the first vertex when it has too many corners.
func (m *Mesh) addPolygon(idx []int, mat *Material) error {
	if len(idx) <= m.dim {
		_, err := m.AddFaceIdx(idx, mat)
		return err
	}
	span := m.dim - 1
	if span < 1 {
		return fmt.Errorf("%w: %d vertices in dim %d", ErrTooManyVertices, len(idx), m.dim)
	}
	for s := 1; s+span <= len(idx); s += span - 1 {
		face := append([]int{idx[0]}, idx[s:s+span]...)
		if _, err := m.AddFaceIdx(face, mat); err != nil {
			return err
		}
		if span == 1 {
			break
		}
	}
	return nil
}

// SaveOBJ writes the mesh vertices and faces; instances are not expanded.
func (m *Mesh) SaveOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.verts {
		bw.WriteString("v")
		for _, x := range v.Pos {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(x, 'f', objPrecision, 64))
		}
		bw.WriteByte('\n')
	}
	for _, f := range m.faces {
		bw.WriteString("f")
		for _, v := range f.Verts {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(v.ID + 1))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
