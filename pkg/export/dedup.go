package export

import (
	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// VertexStream is the deduplicated per-vertex data built by
// BuildVertexStream. All non-nil slices have equal length; UVs and UV2s
// are nil when the source mesh lacks the corresponding layer. Groups
// carries each output vertex's source group memberships for the skin
// resolver.
type VertexStream struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	UV2s      []math.Vec2
	Groups    [][]scene.GroupWeight
}

// Count returns the number of deduplicated vertices.
func (s *VertexStream) Count() int {
	return len(s.Positions)
}

// BuildVertexStream assigns each distinct CornerKey a sequential vertex
// index and rewrites the corner triangles to index triangles. The key
// map spans the whole mesh, so a corner shared between two submeshes is
// emitted once. Index assignment is first-seen order, deterministic for
// a given input order.
func BuildVertexStream(m *scene.Mesh, submeshes [][]CornerTri) (*VertexStream, [][]mu.Triangle) {
	stream := &VertexStream{}
	hasUV0 := len(m.UVLayers) > 0
	hasUV1 := len(m.UVLayers) > 1

	index := make(map[CornerKey]int32)
	out := make([][]mu.Triangle, len(submeshes))
	for si, sm := range submeshes {
		tris := make([]mu.Triangle, len(sm))
		for ti, ct := range sm {
			var tri mu.Triangle
			for c, key := range ct {
				vi, seen := index[key]
				if !seen {
					vi = int32(stream.Count())
					index[key] = vi
					src := m.Vertices[key.Vertex]
					stream.Positions = append(stream.Positions, src.Position)
					stream.Normals = append(stream.Normals, src.Normal)
					stream.Groups = append(stream.Groups, src.Groups)
					if hasUV0 {
						stream.UVs = append(stream.UVs, key.UV0)
					}
					if hasUV1 {
						stream.UV2s = append(stream.UV2s, key.UV1)
					}
				}
				tri[c] = vi
			}
			tris[ti] = tri
		}
		out[si] = tris
	}
	return stream, out
}
