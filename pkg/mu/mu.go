// Package mu defines the engine-side asset model produced by conversion:
// renderable meshes with deduplicated vertex streams, renderers bound to
// registered materials, and skinned renderers carrying bone tables.
package mu

import (
	"github.com/Turbo-bilder/io-object-mu/pkg/math"
)

// Triangle is three indices into a mesh's vertex streams.
type Triangle [3]int32

// BoneWeight binds one vertex to up to four bones. Entries are ordered
// by descending weight and zero-padded; a zero weight means no influence
// regardless of the index it is bound to.
type BoneWeight struct {
	Indices [4]int32
	Weights [4]float32
}

// Mesh is a renderable mesh: parallel per-vertex streams plus one index
// list per submesh. UVs, UV2s, Tangents and BoneWeights are optional;
// a nil slice means the attribute is absent, and all present streams
// have exactly VertexCount entries.
type Mesh struct {
	Name        string
	Verts       []math.Vec3
	Normals     []math.Vec3
	UVs         []math.Vec2
	UV2s        []math.Vec2
	Tangents    []math.Vec4
	BoneWeights []BoneWeight
	Submeshes   [][]Triangle
}

// VertexCount returns how many deduplicated vertices the mesh has.
func (m *Mesh) VertexCount() int {
	return len(m.Verts)
}

// TriangleCount returns the triangle total across all submeshes.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, sm := range m.Submeshes {
		n += len(sm)
	}
	return n
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max math.Vec3
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Bounds returns the axis-aligned box around all vertices.
// An empty mesh yields a zero box.
func (m *Mesh) Bounds() Bounds {
	if len(m.Verts) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Verts[0], Max: m.Verts[0]}
	for _, v := range m.Verts[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}

// Renderer draws a static mesh with the listed registry materials,
// one per submesh slot.
type Renderer struct {
	Materials      []int32
	CastShadows    bool
	ReceiveShadows bool
}

// SkinnedMeshRenderer draws a mesh deformed by the named bones. Bones
// are ordered; BoneWeight indices on the mesh refer into this list.
type SkinnedMeshRenderer struct {
	Mesh      *Mesh
	Bones     []string
	Materials []int32
}

// Object is one converted scene object. Exactly one of the two shapes
// is populated: a static Mesh+Renderer pair, or a SkinnedMeshRenderer
// (which owns its mesh). A static object with no valid material keeps
// its Mesh and has a nil Renderer.
type Object struct {
	Name     string
	Mesh     *Mesh
	Renderer *Renderer
	Skinned  *SkinnedMeshRenderer
}

// IsSkinned reports whether the object uses the skinned shape.
func (o *Object) IsSkinned() bool {
	return o.Skinned != nil
}

// RenderMesh returns the mesh to draw, whichever shape owns it.
func (o *Object) RenderMesh() *Mesh {
	if o.Skinned != nil {
		return o.Skinned.Mesh
	}
	return o.Mesh
}
