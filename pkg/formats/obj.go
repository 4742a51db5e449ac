// Package formats reads mesh source files into the scene model the
// conversion pipeline consumes. Readers deliver baked data only: faces
// keep their source winding and N-gon shape, UVs land in per-corner
// layers, and missing normals are reconstructed by area-weighted
// accumulation. No reader triangulates; fan splitting happens in the
// pipeline.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// OBJ format errors.
var (
	ErrOBJSyntax = errors.New("malformed OBJ directive")
	ErrOBJIndex  = errors.New("OBJ index out of range")
)

// LoadOBJ reads a Wavefront OBJ file into a mesh object. The object
// name comes from the first "o" directive, falling back to the file
// name.
func LoadOBJ(path string) (*scene.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading obj: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadOBJ(f, name)
}

// ReadOBJ parses OBJ text from r. Faces keep their corner count, "vt"
// references become UV layer 0 in corner order, and "usemtl" names
// become material slots in first-use order. Per-corner normal
// references collapse onto the vertex (first reference wins); vertices
// never referenced with a normal get an accumulated one.
func ReadOBJ(r io.Reader, name string) (*scene.Object, error) {
	var (
		positions  []math.Vec3
		texcoords  []math.Vec2
		normals    []math.Vec3
		vertNormal []math.Vec3

		faces    []scene.Face
		uvLoops  []math.Vec2
		hasUV    bool
		assigned []bool
		slots    []string
		slotSeen = map[string]bool{}
		objName  string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, objErr(lineNum, err)
			}
			positions = append(positions, v)
			vertNormal = append(vertNormal, math.Vec3{})
			assigned = append(assigned, false)
		case "vt":
			v, err := parseVec2(fields[1:])
			if err != nil {
				return nil, objErr(lineNum, err)
			}
			texcoords = append(texcoords, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, objErr(lineNum, err)
			}
			normals = append(normals, v)
		case "f":
			if len(fields) < 4 {
				return nil, objErr(lineNum, fmt.Errorf("%w: face needs 3+ corners", ErrOBJSyntax))
			}
			face := scene.Face{LoopStart: len(uvLoops)}
			for _, arg := range fields[1:] {
				vi, ti, ni, err := parseCorner(arg, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, objErr(lineNum, err)
				}
				face.Vertices = append(face.Vertices, vi)
				if ti >= 0 {
					hasUV = true
					uvLoops = append(uvLoops, texcoords[ti])
				} else {
					uvLoops = append(uvLoops, math.Vec2{})
				}
				if ni >= 0 && !assigned[vi] {
					assigned[vi] = true
					vertNormal[vi] = normals[ni]
				}
			}
			faces = append(faces, face)
		case "usemtl":
			if len(fields) < 2 {
				return nil, objErr(lineNum, fmt.Errorf("%w: usemtl without name", ErrOBJSyntax))
			}
			if !slotSeen[fields[1]] {
				slotSeen[fields[1]] = true
				slots = append(slots, fields[1])
			}
		case "o":
			if objName == "" && len(fields) > 1 {
				objName = fields[1]
			}
		default:
			// mtllib, g, s and friends carry nothing the pipeline needs.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}

	if objName != "" {
		name = objName
	}
	mesh := &scene.Mesh{Name: name}
	for i, p := range positions {
		mesh.Vertices = append(mesh.Vertices, scene.Vertex{Position: p, Normal: vertNormal[i]})
	}
	mesh.Faces = faces
	if hasUV {
		mesh.UVLayers = []scene.UVLayer{{Name: "UVMap", UV: uvLoops}}
	}
	bakeNormals(mesh)

	return &scene.Object{
		Name:          name,
		Type:          scene.ObjectMesh,
		Mesh:          mesh,
		MaterialSlots: slots,
	}, nil
}

func objErr(line int, err error) error {
	return fmt.Errorf("obj line %d: %w", line, err)
}

// parseCorner splits one face corner reference (v, v/vt, v//vn or
// v/vt/vn) into zero-based indices, -1 for absent parts. Negative OBJ
// indices count back from the current table end.
func parseCorner(arg string, nv, nt, nn int) (vi, ti, ni int, err error) {
	parts := strings.Split(arg, "/")
	vi, err = parseIndex(parts[0], nv)
	if err != nil {
		return 0, 0, 0, err
	}
	ti, ni = -1, -1
	if len(parts) > 1 && parts[1] != "" {
		if ti, err = parseIndex(parts[1], nt); err != nil {
			return 0, 0, 0, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if ni, err = parseIndex(parts[2], nn); err != nil {
			return 0, 0, 0, err
		}
	}
	return vi, ti, ni, nil
}

func parseIndex(s string, length int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOBJSyntax, s)
	}
	if n < 0 {
		n += length
	} else {
		n--
	}
	if n < 0 || n >= length {
		return 0, fmt.Errorf("%w: %q", ErrOBJIndex, s)
	}
	return n, nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: want 3 components", ErrOBJSyntax)
	}
	x, err1 := strconv.ParseFloat(fields[0], 32)
	y, err2 := strconv.ParseFloat(fields[1], 32)
	z, err3 := strconv.ParseFloat(fields[2], 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return math.Vec3{}, fmt.Errorf("%w: bad number", ErrOBJSyntax)
	}
	return math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}, nil
}

func parseVec2(fields []string) (math.Vec2, error) {
	if len(fields) < 2 {
		return math.Vec2{}, fmt.Errorf("%w: want 2 components", ErrOBJSyntax)
	}
	x, err1 := strconv.ParseFloat(fields[0], 32)
	y, err2 := strconv.ParseFloat(fields[1], 32)
	if err1 != nil || err2 != nil {
		return math.Vec2{}, fmt.Errorf("%w: bad number", ErrOBJSyntax)
	}
	return math.Vec2{X: float32(x), Y: float32(y)}, nil
}

// bakeNormals fills in vertex normals for vertices that have none by
// summing the unnormalized face normals of every face touching them;
// larger faces weigh more. Vertices with a normal already set keep it.
func bakeNormals(m *scene.Mesh) {
	acc := make([]math.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		a := m.Vertices[f.Vertices[0]].Position
		b := m.Vertices[f.Vertices[1]].Position
		c := m.Vertices[f.Vertices[2]].Position
		face := b.Sub(a).Cross(c.Sub(a))
		for _, vi := range f.Vertices {
			acc[vi] = acc[vi].Add(face)
		}
	}
	for i := range m.Vertices {
		if m.Vertices[i].Normal == (math.Vec3{}) {
			m.Vertices[i].Normal = acc[i].Normalize()
		}
	}
}
