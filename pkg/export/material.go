package export

import (
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
)

// BindMaterials resolves material slot names to registry indices.
// Unassigned slots and names without a shader assignment are skipped,
// which is normal for placeholder slots, not an error. Registration is
// lazy: a name is created in the registry the first time any mesh
// binds it.
func BindMaterials(slots []string, reg *mu.Registry) []int32 {
	var materials []int32
	for _, name := range slots {
		if name == "" || !reg.HasShader(name) {
			continue
		}
		materials = append(materials, reg.GetOrCreate(name).Index)
	}
	return materials
}

// BuildRenderer builds the static renderer for a mesh's material slots.
// Returns nil when no slot binds a material; geometry without a valid
// material gets no renderer at all.
func BuildRenderer(slots []string, reg *mu.Registry) *mu.Renderer {
	materials := BindMaterials(slots, reg)
	if len(materials) == 0 {
		return nil
	}
	return &mu.Renderer{
		Materials:      materials,
		CastShadows:    true,
		ReceiveShadows: true,
	}
}
