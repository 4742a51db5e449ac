package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// glTF format errors.
var (
	ErrGLTFNoMesh = errors.New("glTF document has no triangle mesh")
	ErrGLTFIndex  = errors.New("glTF index out of range")
)

// LoadGLTF reads a .gltf or .glb file into a mesh object. Every
// triangle primitive of every mesh merges into one mesh; each
// primitive contributes one three-corner face per triangle, and its
// material name becomes a slot. When the document carries a skin, the
// skin's joints become the object's vertex groups, JOINTS_0/WEIGHTS_0
// become group memberships, and the returned armature lists the same
// joint names. Without a skin the armature is nil.
func LoadGLTF(path string) (*scene.Object, *scene.Armature, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading gltf: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return convertDocument(doc, name)
}

func convertDocument(doc *gltf.Document, name string) (*scene.Object, *scene.Armature, error) {
	bones, armature, err := skinBones(doc)
	if err != nil {
		return nil, nil, err
	}

	mesh := &scene.Mesh{Name: name}
	var (
		uv0, uv1       []math.Vec2
		hasUV0, hasUV1 bool
		slots          []string
		slotSeen       = map[string]bool{}
	)

	for _, gm := range doc.Meshes {
		if mesh.Name == name && gm.Name != "" {
			mesh.Name = gm.Name
		}
		for _, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			p, err := readPrimitive(doc, prim, len(bones))
			if err != nil {
				return nil, nil, err
			}

			base := len(mesh.Vertices)
			mesh.Vertices = append(mesh.Vertices, p.vertices...)
			for i := 0; i+2 < len(p.indices); i += 3 {
				face := scene.Face{
					LoopStart: len(uv0),
					Vertices: []int{
						base + int(p.indices[i]),
						base + int(p.indices[i+1]),
						base + int(p.indices[i+2]),
					},
				}
				for c := 0; c < 3; c++ {
					vi := int(p.indices[i+c])
					if p.uv0 != nil {
						hasUV0 = true
						uv0 = append(uv0, p.uv0[vi])
					} else {
						uv0 = append(uv0, math.Vec2{})
					}
					if p.uv1 != nil {
						hasUV1 = true
						uv1 = append(uv1, p.uv1[vi])
					} else {
						uv1 = append(uv1, math.Vec2{})
					}
				}
				mesh.Faces = append(mesh.Faces, face)
			}

			slot := materialName(doc, prim)
			if slot != "" && !slotSeen[slot] {
				slotSeen[slot] = true
				slots = append(slots, slot)
			}
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, nil, ErrGLTFNoMesh
	}

	if hasUV0 {
		mesh.UVLayers = append(mesh.UVLayers, scene.UVLayer{Name: "UVMap", UV: uv0})
	}
	if hasUV1 {
		if !hasUV0 {
			mesh.UVLayers = append(mesh.UVLayers, scene.UVLayer{Name: "UVMap", UV: make([]math.Vec2, len(uv1))})
		}
		mesh.UVLayers = append(mesh.UVLayers, scene.UVLayer{Name: "UVMap.001", UV: uv1})
	}
	bakeNormals(mesh)

	obj := &scene.Object{
		Name:          mesh.Name,
		Type:          scene.ObjectMesh,
		Mesh:          mesh,
		MaterialSlots: slots,
		VertexGroups:  bones,
	}
	return obj, armature, nil
}

// primitiveData holds one primitive's per-vertex attributes after
// accessor decoding.
type primitiveData struct {
	vertices []scene.Vertex
	indices  []uint32
	uv0, uv1 []math.Vec2
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, boneCount int) (*primitiveData, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: primitive without POSITION", ErrGLTFNoMesh)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	p := &primitiveData{vertices: make([]scene.Vertex, len(positions))}
	for i, pos := range positions {
		p.vertices[i].Position = math.Vec3{X: pos[0], Y: pos[1], Z: pos[2]}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		for i, n := range normals {
			if i < len(p.vertices) {
				p.vertices[i].Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
			}
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		p.uv0, err = readTexCoord(doc, idx)
		if err != nil {
			return nil, err
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_1]; ok {
		p.uv1, err = readTexCoord(doc, idx)
		if err != nil {
			return nil, err
		}
	}

	if boneCount > 0 {
		if err := readSkinAttributes(doc, prim, p, boneCount); err != nil {
			return nil, err
		}
	}

	if prim.Indices != nil {
		p.indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		p.indices = make([]uint32, len(positions))
		for i := range p.indices {
			p.indices[i] = uint32(i)
		}
	}
	for _, idx := range p.indices {
		if int(idx) >= len(p.vertices) {
			return nil, fmt.Errorf("%w: triangle index %d", ErrGLTFIndex, idx)
		}
	}
	return p, nil
}

func readTexCoord(doc *gltf.Document, accessor uint32) ([]math.Vec2, error) {
	raw, err := modeler.ReadTextureCoord(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, fmt.Errorf("reading texture coords: %w", err)
	}
	uv := make([]math.Vec2, len(raw))
	for i, c := range raw {
		uv[i] = math.Vec2{X: c[0], Y: c[1]}
	}
	return uv, nil
}

// readSkinAttributes turns JOINTS_0/WEIGHTS_0 into group memberships.
// The group index of a membership is the joint's position in the skin,
// matching the object's vertex group list. Zero weights are padding
// and are dropped.
func readSkinAttributes(doc *gltf.Document, prim *gltf.Primitive, p *primitiveData, boneCount int) error {
	jIdx, okJ := prim.Attributes[gltf.JOINTS_0]
	wIdx, okW := prim.Attributes[gltf.WEIGHTS_0]
	if !okJ || !okW {
		return nil
	}
	joints, err := modeler.ReadJoints(doc, doc.Accessors[jIdx], nil)
	if err != nil {
		return fmt.Errorf("reading joints: %w", err)
	}
	weights, err := modeler.ReadWeights(doc, doc.Accessors[wIdx], nil)
	if err != nil {
		return fmt.Errorf("reading weights: %w", err)
	}
	for i := range p.vertices {
		if i >= len(joints) || i >= len(weights) {
			break
		}
		for s := 0; s < 4; s++ {
			w := weights[i][s]
			if w <= 0 {
				continue
			}
			j := int(joints[i][s])
			if j >= boneCount {
				return fmt.Errorf("%w: joint %d", ErrGLTFIndex, j)
			}
			p.vertices[i].Groups = append(p.vertices[i].Groups, scene.GroupWeight{Group: j, Weight: w})
		}
	}
	return nil
}

// skinBones resolves the document's first skin into an ordered joint
// name list and a matching armature.
func skinBones(doc *gltf.Document) ([]string, *scene.Armature, error) {
	if len(doc.Skins) == 0 {
		return nil, nil, nil
	}
	skin := doc.Skins[0]
	bones := make([]string, 0, len(skin.Joints))
	for _, j := range skin.Joints {
		if int(j) >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("%w: skin joint node %d", ErrGLTFIndex, j)
		}
		name := doc.Nodes[j].Name
		if name == "" {
			name = fmt.Sprintf("joint_%d", j)
		}
		bones = append(bones, name)
	}
	armName := skin.Name
	if armName == "" {
		armName = "Armature"
	}
	return bones, &scene.Armature{Name: armName, Bones: bones}, nil
}

func materialName(doc *gltf.Document, prim *gltf.Primitive) string {
	if prim.Material == nil || int(*prim.Material) >= len(doc.Materials) {
		return ""
	}
	return doc.Materials[*prim.Material].Name
}
