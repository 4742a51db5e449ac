// Package export converts scene objects into engine-ready mu assets:
// faces are fanned into triangles, corners deduplicated into parallel
// vertex streams, tangent bases derived from UV gradients, bone weights
// ranked and packed, and materials bound through the shared registry.
//
// The pipeline is a pure transformation. It allocates only per-call
// working state, never fails on degenerate geometry, and may run for
// many meshes concurrently as long as they share one Registry.
package export

import (
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// BuildMesh runs the geometry stages over one source mesh: partition,
// fan split, deduplication and tangent generation. The returned stream
// shares its slices with the mesh and additionally carries the group
// memberships the skin resolver consumes.
func BuildMesh(m *scene.Mesh) (*mu.Mesh, *VertexStream) {
	submeshes := BuildSubmeshes(m)
	corners := TriangulateSubmeshes(m, submeshes)
	stream, tris := BuildVertexStream(m, corners)

	mesh := &mu.Mesh{
		Name:      m.Name,
		Verts:     stream.Positions,
		Normals:   stream.Normals,
		UVs:       stream.UVs,
		UV2s:      stream.UV2s,
		Submeshes: tris,
	}
	mesh.Tangents = BuildTangents(stream, tris)
	return mesh, stream
}

// Converter turns scene objects into mu objects. The registry is the
// only shared state; everything else is per-call.
type Converter struct {
	Registry *mu.Registry
}

// NewConverter builds a converter over a material registry.
func NewConverter(reg *mu.Registry) *Converter {
	return &Converter{Registry: reg}
}

type handlerFunc func(*Converter, *scene.Object, *scene.Armature) *mu.Object

// typeHandlers dispatches on the object's type tag. Types without an
// entry are skipped by ConvertObject.
var typeHandlers = map[scene.ObjectType]handlerFunc{
	scene.ObjectMesh: handleMesh,
}

// ConvertObject converts one scene object, dispatching on its type tag.
// Returns nil for object types conversion does not handle; the caller
// decides whether skipping is worth reporting. When an armature is
// supplied the skinned shape is built, otherwise the static one.
//
// Input is assumed to satisfy the scene contract; run Validate on
// untrusted objects first.
func (c *Converter) ConvertObject(obj *scene.Object, armature *scene.Armature) *mu.Object {
	handler, ok := typeHandlers[obj.Type]
	if !ok {
		return nil
	}
	return handler(c, obj, armature)
}

func handleMesh(c *Converter, obj *scene.Object, armature *scene.Armature) *mu.Object {
	if armature != nil {
		return handleSkinnedMesh(c, obj, armature)
	}
	mesh, _ := BuildMesh(obj.Mesh)
	return &mu.Object{
		Name:     obj.Name,
		Mesh:     mesh,
		Renderer: BuildRenderer(obj.MaterialSlots, c.Registry),
	}
}

// handleSkinnedMesh builds the skinned shape: the mesh moves into the
// SkinnedMeshRenderer and the static mesh and renderer slots stay
// empty. An object is either statically rendered or skinned, never
// both.
func handleSkinnedMesh(c *Converter, obj *scene.Object, armature *scene.Armature) *mu.Object {
	mesh, stream := BuildMesh(obj.Mesh)
	bones, groupToBone := ResolveBones(obj.VertexGroups, armature)
	mesh.BoneWeights = BuildBoneWeights(stream, groupToBone)

	return &mu.Object{
		Name: obj.Name,
		Skinned: &mu.SkinnedMeshRenderer{
			Mesh:      mesh,
			Bones:     bones,
			Materials: BindMaterials(obj.MaterialSlots, c.Registry),
		},
	}
}
