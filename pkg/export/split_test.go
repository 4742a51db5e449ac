package export

import (
	"testing"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// makeQuad builds one quad face with a single UV layer of four distinct
// corner UVs.
func makeQuad() *scene.Mesh {
	return &scene.Mesh{
		Name: "quad",
		Vertices: []scene.Vertex{
			{Position: math.Vec3{X: 0, Y: 0, Z: 0}, Normal: math.Vec3{X: 0, Y: 0, Z: 1}},
			{Position: math.Vec3{X: 1, Y: 0, Z: 0}, Normal: math.Vec3{X: 0, Y: 0, Z: 1}},
			{Position: math.Vec3{X: 1, Y: 1, Z: 0}, Normal: math.Vec3{X: 0, Y: 0, Z: 1}},
			{Position: math.Vec3{X: 0, Y: 1, Z: 0}, Normal: math.Vec3{X: 0, Y: 0, Z: 1}},
		},
		Faces: []scene.Face{
			{LoopStart: 0, Vertices: []int{0, 1, 2, 3}},
		},
		UVLayers: []scene.UVLayer{
			{Name: "UVMap", UV: []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}},
		},
	}
}

// makeNgon builds a single n-cornered face on a unit circle, one UV
// layer with distinct per-corner UVs.
func makeNgon(n int) *scene.Mesh {
	m := &scene.Mesh{Name: "ngon"}
	verts := make([]int, n)
	uvs := make([]math.Vec2, n)
	for i := 0; i < n; i++ {
		m.Vertices = append(m.Vertices, scene.Vertex{
			Position: math.Vec3{X: float32(i), Y: float32(i % 2), Z: 0},
			Normal:   math.Vec3{X: 0, Y: 0, Z: 1},
		})
		verts[i] = i
		uvs[i] = math.Vec2{X: float32(i) / float32(n), Y: float32(i%2) / 2}
	}
	m.Faces = []scene.Face{{LoopStart: 0, Vertices: verts}}
	m.UVLayers = []scene.UVLayer{{Name: "UVMap", UV: uvs}}
	return m
}

func TestSplitFaceFanCount(t *testing.T) {
	tests := []struct {
		name    string
		corners int
	}{
		{"triangle", 3},
		{"quad", 4},
		{"pentagon", 5},
		{"octagon", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := makeNgon(tt.corners)
			tris := SplitFace(m.Faces[0], m.UVLayers)

			if len(tris) != tt.corners-2 {
				t.Fatalf("SplitFace(%d corners) = %d triangles, want %d",
					tt.corners, len(tris), tt.corners-2)
			}
			pivot := tris[0][0]
			for i, tri := range tris {
				if tri[0] != pivot {
					t.Errorf("triangle %d does not share the fan pivot", i)
				}
			}
		})
	}
}

func TestSplitFaceQuadWinding(t *testing.T) {
	m := makeQuad()
	tris := SplitFace(m.Faces[0], m.UVLayers)

	if len(tris) != 2 {
		t.Fatalf("quad split = %d triangles, want 2", len(tris))
	}
	wantVerts := [2][3]int{{0, 1, 2}, {0, 2, 3}}
	for ti, tri := range tris {
		for c := 0; c < 3; c++ {
			if tri[c].Vertex != wantVerts[ti][c] {
				t.Errorf("triangle %d corner %d vertex = %d, want %d",
					ti, c, tri[c].Vertex, wantVerts[ti][c])
			}
		}
	}
	// Corner UVs ride along with the vertex index.
	if tris[0][1].UV0 != (math.Vec2{X: 1, Y: 0}) {
		t.Errorf("triangle 0 corner 1 UV = %v, want {1 0}", tris[0][1].UV0)
	}
	if tris[1][2].UV0 != (math.Vec2{X: 0, Y: 1}) {
		t.Errorf("triangle 1 corner 2 UV = %v, want {0 1}", tris[1][2].UV0)
	}
}

func TestSplitFaceTwoLayers(t *testing.T) {
	m := makeQuad()
	m.UVLayers = append(m.UVLayers, scene.UVLayer{
		Name: "Lightmap",
		UV:   []math.Vec2{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 0.5}, {X: 0, Y: 0.5}},
	})

	tris := SplitFace(m.Faces[0], m.UVLayers)
	if tris[0][1].UV1 != (math.Vec2{X: 0.5, Y: 0}) {
		t.Errorf("corner UV1 = %v, want {0.5 0}", tris[0][1].UV1)
	}
}

func TestSplitFaceNoLayers(t *testing.T) {
	m := makeQuad()
	m.UVLayers = nil

	tris := SplitFace(m.Faces[0], m.UVLayers)
	for _, tri := range tris {
		for _, key := range tri {
			if key.UV0 != (math.Vec2{}) || key.UV1 != (math.Vec2{}) {
				t.Fatalf("corner key carries UVs without layers: %+v", key)
			}
		}
	}
}
