// Package scene defines the source-side model handed to the conversion
// pipeline: polygonal meshes with per-corner UV layers, vertex-group
// weights, and the armature they deform against. Producers (file readers,
// host-tool exporters) are expected to deliver already-baked data.
package scene

import (
	"errors"
	"fmt"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
)

// Validation errors.
var (
	ErrFaceTooSmall    = errors.New("face has fewer than 3 corners")
	ErrVertexIndex     = errors.New("face references vertex out of range")
	ErrLoopRange       = errors.New("face loop range exceeds corner count")
	ErrUVLayerLength   = errors.New("uv layer length does not match corner count")
	ErrTooManyUVLayers = errors.New("more than 2 uv layers")
	ErrGroupIndex      = errors.New("vertex references group out of range")
)

// GroupWeight is one vertex-group membership of a source vertex.
type GroupWeight struct {
	Group  int     // index into the owning object's VertexGroups
	Weight float32 // raw weight as authored, not normalized
}

// Vertex is one entry of the source vertex table.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Groups   []GroupWeight // vertex-group memberships, definition order
}

// Face is one polygon in winding order. LoopStart locates the face's
// first corner in the flattened corner (loop) domain shared by all UV
// layers; corner i of the face is loop LoopStart+i.
type Face struct {
	LoopStart int
	Vertices  []int // source vertex indices, winding order
}

// Corners returns the number of corners in the face.
func (f Face) Corners() int {
	return len(f.Vertices)
}

// UVLayer holds per-corner texture coordinates, indexed by loop.
type UVLayer struct {
	Name string
	UV   []math.Vec2 // one entry per corner across the whole mesh
}

// Mesh is a baked polygonal mesh: all modifiers applied, N-gons intact,
// UVs resolved per corner. At most two UV layers are carried through
// conversion; layer 0 drives tangent generation.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    []Face
	UVLayers []UVLayer
}

// CornerCount returns the total number of face corners (loops).
func (m *Mesh) CornerCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f.Vertices)
	}
	return n
}

// TriangleCount returns the number of triangles fan decomposition yields.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f.Vertices) >= 3 {
			n += len(f.Vertices) - 2
		}
	}
	return n
}

// Validate checks the structural contract the pipeline assumes: every
// face has at least 3 corners, indices stay in range, loop ranges are
// consistent and every UV layer covers every corner. The pipeline itself
// does not re-check these; call Validate on untrusted input first.
func (m *Mesh) Validate() error {
	if len(m.UVLayers) > 2 {
		return fmt.Errorf("mesh %q: %w (%d)", m.Name, ErrTooManyUVLayers, len(m.UVLayers))
	}
	corners := m.CornerCount()
	for li, layer := range m.UVLayers {
		if len(layer.UV) != corners {
			return fmt.Errorf("mesh %q layer %d: %w (%d uvs, %d corners)",
				m.Name, li, ErrUVLayerLength, len(layer.UV), corners)
		}
	}
	for fi, f := range m.Faces {
		if len(f.Vertices) < 3 {
			return fmt.Errorf("mesh %q face %d: %w", m.Name, fi, ErrFaceTooSmall)
		}
		if f.LoopStart < 0 || f.LoopStart+len(f.Vertices) > corners {
			return fmt.Errorf("mesh %q face %d: %w", m.Name, fi, ErrLoopRange)
		}
		for _, vi := range f.Vertices {
			if vi < 0 || vi >= len(m.Vertices) {
				return fmt.Errorf("mesh %q face %d: %w (index %d)", m.Name, fi, ErrVertexIndex, vi)
			}
		}
	}
	return nil
}

// Armature is the skeleton an object deforms against. Only the ordered
// bone names matter to conversion; rest transforms stay with the host.
type Armature struct {
	Name  string
	Bones []string
}

// HasBone reports whether the armature defines a bone with this name.
func (a *Armature) HasBone(name string) bool {
	for _, b := range a.Bones {
		if b == name {
			return true
		}
	}
	return false
}

// ObjectType tags the payload an Object carries. Conversion dispatches
// on this tag; types without a handler are skipped, not failed.
type ObjectType int

const (
	ObjectEmpty ObjectType = iota
	ObjectMesh
	ObjectArmature
	ObjectLight
	ObjectCamera
)

// String returns a human-readable type name.
func (t ObjectType) String() string {
	switch t {
	case ObjectEmpty:
		return "Empty"
	case ObjectMesh:
		return "Mesh"
	case ObjectArmature:
		return "Armature"
	case ObjectLight:
		return "Light"
	case ObjectCamera:
		return "Camera"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Object is one scene object as handed to the pipeline. MaterialSlots
// and VertexGroups are name lists in definition order; Groups entries on
// mesh vertices index into VertexGroups.
type Object struct {
	Name          string
	Type          ObjectType
	Mesh          *Mesh    // payload when Type == ObjectMesh
	MaterialSlots []string // material names, slot order; empty name = unassigned slot
	VertexGroups  []string // vertex-group names, definition order
}

// Validate extends Mesh.Validate with the object-level contract: group
// memberships must index into VertexGroups.
func (o *Object) Validate() error {
	if o.Type != ObjectMesh {
		return nil
	}
	if o.Mesh == nil {
		return fmt.Errorf("object %q: mesh object without mesh payload", o.Name)
	}
	if err := o.Mesh.Validate(); err != nil {
		return err
	}
	for vi, v := range o.Mesh.Vertices {
		for _, gw := range v.Groups {
			if gw.Group < 0 || gw.Group >= len(o.VertexGroups) {
				return fmt.Errorf("object %q vertex %d: %w (group %d)",
					o.Name, vi, ErrGroupIndex, gw.Group)
			}
		}
	}
	return nil
}
