package export

import (
	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// CornerKey identifies a split vertex: two face corners deduplicate to
// the same output vertex iff they reference the same source vertex and
// carry identical UV coordinates on every present layer. Comparison is
// exact; the producer guarantees per-corner layer data is already baked,
// so equal corners are bit-equal. Absent layers hold the zero value
// uniformly and never separate keys.
type CornerKey struct {
	Vertex int
	UV0    math.Vec2
	UV1    math.Vec2
}

// CornerTri is one triangle of corner keys, winding order preserved.
type CornerTri [3]CornerKey

// SplitFace decomposes one polygon into a triangle fan pivoted at
// corner 0: a face of N corners yields N-2 triangles (0, i, i+1).
// Degenerate polygons pass through untouched; zero-area triangles are
// dealt with by the tangent stage. Faces with fewer than 3 corners are
// a contract violation and must not be submitted.
func SplitFace(face scene.Face, layers []scene.UVLayer) []CornerTri {
	corner := func(i int) CornerKey {
		key := CornerKey{Vertex: face.Vertices[i]}
		loop := face.LoopStart + i
		if len(layers) > 0 {
			key.UV0 = layers[0].UV[loop]
		}
		if len(layers) > 1 {
			key.UV1 = layers[1].UV[loop]
		}
		return key
	}

	pivot := corner(0)
	tris := make([]CornerTri, 0, len(face.Vertices)-2)
	for i := 1; i < len(face.Vertices)-1; i++ {
		tris = append(tris, CornerTri{pivot, corner(i), corner(i + 1)})
	}
	return tris
}
