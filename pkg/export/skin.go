package export

import (
	"sort"

	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

// ResolveBones intersects the object's vertex groups with the armature's
// bone names. The returned bone list keeps vertex-group definition
// order; the map translates vertex-group indices to bone indices for
// groups that made the cut.
func ResolveBones(groups []string, armature *scene.Armature) ([]string, map[int]int32) {
	boneset := make(map[string]bool, len(armature.Bones))
	for _, name := range armature.Bones {
		boneset[name] = true
	}

	var bones []string
	groupToBone := make(map[int]int32)
	for gi, name := range groups {
		if boneset[name] {
			groupToBone[gi] = int32(len(bones))
			bones = append(bones, name)
		}
	}
	return bones, groupToBone
}

// BuildBoneWeights resolves each vertex's group memberships to a fixed
// four-slot bone weight table. Memberships whose group is not a resolved
// bone are dropped; the rest are ordered by descending weight (stable,
// so equal weights keep membership order), then truncated or zero-padded
// to exactly four slots. A vertex with no qualifying membership gets
// four zero-weight slots bound to bone 0; zero weight means no influence
// whatever index it names.
func BuildBoneWeights(stream *VertexStream, groupToBone map[int]int32) []mu.BoneWeight {
	type influence struct {
		bone   int32
		weight float32
	}

	out := make([]mu.BoneWeight, len(stream.Groups))
	for vi, memberships := range stream.Groups {
		influences := make([]influence, 0, len(memberships))
		for _, gw := range memberships {
			if bone, ok := groupToBone[gw.Group]; ok {
				influences = append(influences, influence{bone, gw.Weight})
			}
		}
		sort.SliceStable(influences, func(a, b int) bool {
			return influences[a].weight > influences[b].weight
		})

		var bw mu.BoneWeight
		for i := 0; i < len(influences) && i < 4; i++ {
			bw.Indices[i] = influences[i].bone
			bw.Weights[i] = influences[i].weight
		}
		out[vi] = bw
	}
	return out
}
