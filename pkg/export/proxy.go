package export

import (
	"github.com/fogleman/simplify"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
)

// BuildProxy decimates a converted mesh into a position-only proxy for
// collision or distant LOD use, targeting roughly ratio of the original
// triangle count (0 < ratio <= 1). UVs, tangents and skinning do not
// survive decimation; normals are rebuilt from the remaining faces.
func BuildProxy(mesh *mu.Mesh, ratio float64) *mu.Mesh {
	proxy := &mu.Mesh{Name: mesh.Name + "_proxy"}

	var tris []*simplify.Triangle
	for _, sm := range mesh.Submeshes {
		for _, tri := range sm {
			tris = append(tris, simplify.NewTriangle(
				proxyVector(mesh.Verts[tri[0]]),
				proxyVector(mesh.Verts[tri[1]]),
				proxyVector(mesh.Verts[tri[2]]),
			))
		}
	}
	if len(tris) == 0 {
		return proxy
	}

	simplified := simplify.NewMesh(tris).Simplify(ratio)

	// Re-index: identical positions collapse to one vertex.
	index := make(map[math.Vec3]int32)
	out := make([]mu.Triangle, 0, len(simplified.Triangles))
	for _, t := range simplified.Triangles {
		var tri mu.Triangle
		for c, v := range [3]simplify.Vector{t.V1, t.V2, t.V3} {
			p := math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
			vi, ok := index[p]
			if !ok {
				vi = int32(len(proxy.Verts))
				index[p] = vi
				proxy.Verts = append(proxy.Verts, p)
			}
			tri[c] = vi
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			continue
		}
		out = append(out, tri)
	}
	proxy.Submeshes = [][]mu.Triangle{out}
	proxy.Normals = accumulateNormals(proxy.Verts, out)
	return proxy
}

func proxyVector(v math.Vec3) simplify.Vector {
	return simplify.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// accumulateNormals derives vertex normals by summing face normals into
// each corner. The cross product is left unnormalized so larger faces
// weigh more.
func accumulateNormals(verts []math.Vec3, tris []mu.Triangle) []math.Vec3 {
	normals := make([]math.Vec3, len(verts))
	for _, tri := range tris {
		e1 := verts[tri[1]].Sub(verts[tri[0]])
		e2 := verts[tri[2]].Sub(verts[tri[0]])
		face := e1.Cross(e2)
		for _, vi := range tri {
			normals[vi] = normals[vi].Add(face)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
