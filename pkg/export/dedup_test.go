package export

import (
	"testing"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// makeCube builds six quad faces over eight shared positions, each face
// unwrapped to its own patch of a strip atlas. No shared vertex repeats
// a UV across faces, so all 24 corners stay distinct, and each face's
// patch has proper area so no tangent triangle is skipped.
func makeCube() *scene.Mesh {
	positions := []math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	quads := [][]int{
		{4, 5, 6, 7}, // front
		{1, 0, 3, 2}, // back
		{0, 4, 7, 3}, // left
		{5, 1, 2, 6}, // right
		{7, 6, 2, 3}, // top
		{0, 1, 5, 4}, // bottom
	}
	cornerU := [4]float32{0, 1, 1, 0}
	cornerV := [4]float32{0, 0, 1, 1}

	m := &scene.Mesh{Name: "cube"}
	for _, p := range positions {
		m.Vertices = append(m.Vertices, scene.Vertex{
			Position: p,
			Normal:   p.Normalize(),
		})
	}
	var uvs []math.Vec2
	for fi, q := range quads {
		m.Faces = append(m.Faces, scene.Face{LoopStart: fi * 4, Vertices: q})
		for c := 0; c < 4; c++ {
			uvs = append(uvs, math.Vec2{
				X: (float32(fi) + cornerU[c]) / 6,
				Y: (float32(fi) + cornerV[c]) / 7,
			})
		}
	}
	m.UVLayers = []scene.UVLayer{{Name: "UVMap", UV: uvs}}
	return m
}

func TestBuildVertexStreamQuad(t *testing.T) {
	m := makeQuad()
	corners := TriangulateSubmeshes(m, BuildSubmeshes(m))
	stream, tris := BuildVertexStream(m, corners)

	if stream.Count() != 4 {
		t.Errorf("quad dedup = %d vertices, want 4", stream.Count())
	}
	if len(tris) != 1 || len(tris[0]) != 2 {
		t.Fatalf("quad = %d submeshes / %d triangles, want 1 / 2", len(tris), len(tris[0]))
	}
	// The shared diagonal corners (0 and 2) reuse their first indices.
	if tris[0][0][0] != tris[0][1][0] {
		t.Error("fan pivot got two different indices")
	}
	if tris[0][0][2] != tris[0][1][1] {
		t.Error("shared diagonal corner got two different indices")
	}
	for _, tri := range tris[0] {
		for _, vi := range tri {
			if vi < 0 || int(vi) >= stream.Count() {
				t.Fatalf("triangle index %d out of stream range %d", vi, stream.Count())
			}
		}
	}
}

func TestBuildVertexStreamCube(t *testing.T) {
	m := makeCube()
	corners := TriangulateSubmeshes(m, BuildSubmeshes(m))
	stream, tris := BuildVertexStream(m, corners)

	if stream.Count() != 24 {
		t.Errorf("cube dedup = %d vertices, want 24", stream.Count())
	}
	total := 0
	for _, sm := range tris {
		total += len(sm)
	}
	if total != 12 {
		t.Errorf("cube = %d triangles, want 12", total)
	}
	if len(stream.UVs) != stream.Count() || len(stream.Normals) != stream.Count() {
		t.Error("stream arrays not parallel")
	}
}

func TestBuildVertexStreamSharedUV(t *testing.T) {
	// Two triangles sharing an edge with identical UVs at the shared
	// corners must reuse those vertices.
	m := &scene.Mesh{
		Name: "strip",
		Vertices: []scene.Vertex{
			{Position: math.Vec3{X: 0, Y: 0, Z: 0}},
			{Position: math.Vec3{X: 1, Y: 0, Z: 0}},
			{Position: math.Vec3{X: 1, Y: 1, Z: 0}},
			{Position: math.Vec3{X: 0, Y: 1, Z: 0}},
		},
		Faces: []scene.Face{
			{LoopStart: 0, Vertices: []int{0, 1, 2}},
			{LoopStart: 3, Vertices: []int{0, 2, 3}},
		},
		UVLayers: []scene.UVLayer{{
			Name: "UVMap",
			UV: []math.Vec2{
				{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, // face 0
				{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, // face 1, corners 0 and 2 match
			},
		}},
	}

	corners := TriangulateSubmeshes(m, BuildSubmeshes(m))
	stream, _ := BuildVertexStream(m, corners)
	if stream.Count() != 4 {
		t.Errorf("strip dedup = %d vertices, want 4", stream.Count())
	}
}

func TestBuildVertexStreamUVSplits(t *testing.T) {
	// The same source vertex with different UVs must split.
	m := &scene.Mesh{
		Name: "split",
		Vertices: []scene.Vertex{
			{Position: math.Vec3{X: 0, Y: 0, Z: 0}},
			{Position: math.Vec3{X: 1, Y: 0, Z: 0}},
			{Position: math.Vec3{X: 1, Y: 1, Z: 0}},
		},
		Faces: []scene.Face{
			{LoopStart: 0, Vertices: []int{0, 1, 2}},
			{LoopStart: 3, Vertices: []int{0, 1, 2}},
		},
		UVLayers: []scene.UVLayer{{
			Name: "UVMap",
			UV: []math.Vec2{
				{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
				{X: 0.5, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, // corner 0 differs
			},
		}},
	}

	corners := TriangulateSubmeshes(m, BuildSubmeshes(m))
	stream, tris := BuildVertexStream(m, corners)
	if stream.Count() != 4 {
		t.Errorf("dedup = %d vertices, want 4 (vertex 0 split on UV)", stream.Count())
	}
	if tris[0][0][0] == tris[0][1][0] {
		t.Error("corners with different UVs share a vertex index")
	}
	if tris[0][0][1] != tris[0][1][1] {
		t.Error("corners with identical key got distinct indices")
	}
}

func TestBuildVertexStreamCarriesGroups(t *testing.T) {
	m := makeQuad()
	m.Vertices[2].Groups = []scene.GroupWeight{{Group: 0, Weight: 0.9}}

	corners := TriangulateSubmeshes(m, BuildSubmeshes(m))
	stream, _ := BuildVertexStream(m, corners)

	if len(stream.Groups) != stream.Count() {
		t.Fatalf("groups length %d, want %d", len(stream.Groups), stream.Count())
	}
	found := 0
	for _, g := range stream.Groups {
		if len(g) == 1 && g[0].Weight == 0.9 {
			found++
		}
	}
	if found != 1 {
		t.Errorf("found %d vertices carrying the group membership, want 1", found)
	}
}

func TestBuildVertexStreamNoUVLayers(t *testing.T) {
	m := makeQuad()
	m.UVLayers = nil

	corners := TriangulateSubmeshes(m, BuildSubmeshes(m))
	stream, _ := BuildVertexStream(m, corners)

	if stream.UVs != nil || stream.UV2s != nil {
		t.Error("UV streams present without source layers")
	}
	if stream.Count() != 4 {
		t.Errorf("dedup = %d vertices, want 4", stream.Count())
	}
}
