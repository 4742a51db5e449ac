package mu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Material library errors.
var (
	ErrUnknownShader = errors.New("unknown shader name")
)

// Shader names understood by the engine. A material binds to exactly one.
var Shaders = []string{
	"KSP/Specular",
	"KSP/Bumped",
	"KSP/Bumped Specular",
	"KSP/Emissive/Diffuse",
	"KSP/Emissive/Specular",
	"KSP/Emissive/Bumped Specular",
	"KSP/Alpha/Cutoff",
	"KSP/Alpha/Cutoff Bumped",
	"KSP/Alpha/Translucent",
	"KSP/Alpha/Translucent Specular",
	"KSP/Alpha/Unlit Transparent",
	"KSP/Unlit",
	"KSP/Diffuse",
}

// IsKnownShader reports whether name is one of the engine shaders.
func IsKnownShader(name string) bool {
	for _, s := range Shaders {
		if s == name {
			return true
		}
	}
	return false
}

// MaterialSpec describes how a named material should be built: which
// shader it binds and the shader's texture and color inputs. An empty
// Shader means the material has no shader assignment and is skipped by
// the binder.
type MaterialSpec struct {
	Shader    string     `yaml:"shader"`
	MainTex   string     `yaml:"main_tex"`
	BumpMap   string     `yaml:"bump_map"`
	Emissive  string     `yaml:"emissive"`
	Color     [4]float32 `yaml:"color,flow"`
	SpecColor [4]float32 `yaml:"spec_color,flow"`
	Shininess float32    `yaml:"shininess"`
	Cutoff    float32    `yaml:"cutoff"`
}

// Library maps material names to build specs. It is the collaborator
// that decides what a material slot name means; the registry turns its
// specs into indexed records on first use.
type Library struct {
	Materials map[string]MaterialSpec `yaml:"materials"`
	// Default, when its Shader is non-empty, is applied to names the
	// library does not list, so every slot binds.
	Default MaterialSpec `yaml:"default"`
}

// LoadLibrary reads a YAML material library from path.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading material library: %w", err)
	}
	lib := &Library{}
	if err := yaml.Unmarshal(data, lib); err != nil {
		return nil, fmt.Errorf("parsing material library %s: %w", path, err)
	}
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("material library %s: %w", path, err)
	}
	return lib, nil
}

// Validate checks every assigned shader against the engine shader set.
func (l *Library) Validate() error {
	for name, spec := range l.Materials {
		if spec.Shader != "" && !IsKnownShader(spec.Shader) {
			return fmt.Errorf("material %q: %w %q", name, ErrUnknownShader, spec.Shader)
		}
	}
	if l.Default.Shader != "" && !IsKnownShader(l.Default.Shader) {
		return fmt.Errorf("default material: %w %q", ErrUnknownShader, l.Default.Shader)
	}
	return nil
}

// Lookup resolves a material name to its spec. Names the library does
// not list fall back to Default when one is configured.
func (l *Library) Lookup(name string) (MaterialSpec, bool) {
	if l == nil {
		return MaterialSpec{}, false
	}
	if spec, ok := l.Materials[name]; ok {
		return spec, true
	}
	if l.Default.Shader != "" {
		return l.Default, true
	}
	return MaterialSpec{}, false
}

// Material is a registered material record. Index is its position in
// the registry and what renderers reference.
type Material struct {
	Index   int32
	Name    string
	Spec    MaterialSpec
	Texture *TextureInfo // probed main texture, nil when not probed
}

// Registry assigns stable indices to materials on first use. It is the
// one resource shared across concurrent mesh conversions, so all access
// goes through its mutex.
type Registry struct {
	lib        *Library
	textureDir string

	mu      sync.Mutex
	byName  map[string]*Material
	ordered []*Material
}

// NewRegistry builds a registry over a material library. lib may be nil,
// in which case no name has a shader assignment.
func NewRegistry(lib *Library) *Registry {
	return &Registry{
		lib:    lib,
		byName: make(map[string]*Material),
	}
}

// ProbeTexturesIn makes GetOrCreate probe main textures under dir.
func (r *Registry) ProbeTexturesIn(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textureDir = dir
}

// HasShader reports whether name resolves to a non-empty shader
// assignment. Slots that don't are skipped by the binder.
func (r *Registry) HasShader(name string) bool {
	spec, ok := r.lib.Lookup(name)
	return ok && spec.Shader != ""
}

// GetOrCreate returns the record registered under name, creating it
// with the next free index on first use.
func (r *Registry) GetOrCreate(name string) *Material {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.byName[name]; ok {
		return m
	}
	spec, _ := r.lib.Lookup(name)
	m := &Material{
		Index: int32(len(r.ordered)),
		Name:  name,
		Spec:  spec,
	}
	if r.textureDir != "" && spec.MainTex != "" {
		// Probe failures leave Texture nil; the record is still usable.
		if info, err := ProbeTexture(filepath.Join(r.textureDir, spec.MainTex)); err == nil {
			m.Texture = info
		}
	}
	r.byName[name] = m
	r.ordered = append(r.ordered, m)
	return m
}

// Len returns how many materials have been registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ordered)
}

// Materials returns the registered records in index order.
func (r *Registry) Materials() []*Material {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Material, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the registered material names sorted alphabetically,
// for stable reporting.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
