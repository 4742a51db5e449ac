package export

import (
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// BuildSubmeshes groups the mesh's faces into submesh buckets. Current
// policy is a single bucket holding every face in source order; splitting
// by material slot is a future extension of this function only, the rest
// of the pipeline already handles any number of buckets. Face order is
// preserved because tangent accumulation sums floats in triangle order.
func BuildSubmeshes(m *scene.Mesh) [][]int {
	faces := make([]int, len(m.Faces))
	for i := range faces {
		faces[i] = i
	}
	return [][]int{faces}
}

// TriangulateSubmeshes fans every face of every submesh, keeping the
// bucket structure and face order intact.
func TriangulateSubmeshes(m *scene.Mesh, submeshes [][]int) [][]CornerTri {
	out := make([][]CornerTri, len(submeshes))
	for si, faces := range submeshes {
		tris := make([]CornerTri, 0, len(faces))
		for _, fi := range faces {
			tris = append(tris, SplitFace(m.Faces[fi], m.UVLayers)...)
		}
		out[si] = tris
	}
	return out
}
