package export

import (
	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
)

// BuildTangents computes one tangent per vertex from triangle UV
// derivatives: per triangle, the positions' gradients over UV space are
// accumulated into per-vertex sums, then each sum is Gram-Schmidt
// orthogonalized against the vertex normal and normalized. W carries
// the handedness sign that orients the bitangent. Returns nil when the
// stream has no UV layer to derive from.
//
// Triangles whose UV mapping is near-degenerate (zero UV area) are
// skipped. A vertex touched only by skipped triangles accumulates
// nothing and falls back to a zero tangent with +1 handedness; emitting
// a made-up direction instead would feed garbage into normal mapping.
func BuildTangents(stream *VertexStream, submeshes [][]mu.Triangle) []math.Vec4 {
	if stream.UVs == nil {
		return nil
	}

	sdir := make([]math.Vec3, stream.Count())
	tdir := make([]math.Vec3, stream.Count())
	for _, sm := range submeshes {
		for _, tri := range sm {
			v1 := stream.Positions[tri[0]]
			v2 := stream.Positions[tri[1]]
			v3 := stream.Positions[tri[2]]

			w1 := stream.UVs[tri[0]]
			w2 := stream.UVs[tri[1]]
			w3 := stream.UVs[tri[2]]

			u1 := v2.Sub(v1)
			u2 := v3.Sub(v1)

			s1 := w2.X - w1.X
			s2 := w3.X - w1.X
			t1 := w2.Y - w1.Y
			t2 := w3.Y - w1.Y

			r := s1*t2 - s2*t1
			if r*r < 1e-6 {
				// Near-degenerate UV mapping, gradients blow up.
				continue
			}
			sd := u1.Scale(t2).Sub(u2.Scale(t1)).Scale(1 / r)
			td := u2.Scale(s1).Sub(u1.Scale(s2)).Scale(1 / r)

			for _, vi := range tri {
				sdir[vi] = sdir[vi].Add(sd)
				tdir[vi] = tdir[vi].Add(td)
			}
		}
	}

	tangents := make([]math.Vec4, stream.Count())
	for i, n := range stream.Normals {
		t := sdir[i].Sub(n.Scale(sdir[i].Dot(n))).Normalize()
		hand := float32(1)
		if t.Dot(tdir[i]) < 0 {
			hand = -1
		}
		tangents[i] = math.FromVec3(t, hand)
	}
	return tangents
}
