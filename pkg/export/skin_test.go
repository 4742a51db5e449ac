package export

import (
	"testing"

	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

func TestResolveBones(t *testing.T) {
	tests := []struct {
		name      string
		groups    []string
		bones     []string
		wantBones []string
	}{
		{
			name:      "subset in group order",
			groups:    []string{"spine", "prop_handle", "arm_L", "arm_R"},
			bones:     []string{"arm_R", "arm_L", "spine", "head"},
			wantBones: []string{"spine", "arm_L", "arm_R"},
		},
		{
			name:      "no overlap",
			groups:    []string{"pivot", "hinge"},
			bones:     []string{"root"},
			wantBones: nil,
		},
		{
			name:      "all groups are bones",
			groups:    []string{"a", "b"},
			bones:     []string{"a", "b"},
			wantBones: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arm := &scene.Armature{Name: "skel", Bones: tt.bones}
			bones, groupToBone := ResolveBones(tt.groups, arm)

			if len(bones) != len(tt.wantBones) {
				t.Fatalf("ResolveBones() = %v, want %v", bones, tt.wantBones)
			}
			for i := range bones {
				if bones[i] != tt.wantBones[i] {
					t.Errorf("bone %d = %q, want %q", i, bones[i], tt.wantBones[i])
				}
			}
			// The map must point every resolved group at its bone.
			for gi, name := range tt.groups {
				bi, ok := groupToBone[gi]
				if !ok {
					continue
				}
				if bones[bi] != name {
					t.Errorf("group %d maps to bone %q, want %q", gi, bones[bi], name)
				}
			}
		})
	}
}

func TestBuildBoneWeightsRanking(t *testing.T) {
	// Memberships (A 0.7), (B 0.2), (C 0.1) where only A and B are
	// armature bones: C is dropped and the table zero-pads.
	groups := []string{"A", "B", "C"}
	arm := &scene.Armature{Name: "skel", Bones: []string{"A", "B"}}
	_, groupToBone := ResolveBones(groups, arm)

	stream := &VertexStream{
		Groups: [][]scene.GroupWeight{
			{{Group: 0, Weight: 0.7}, {Group: 1, Weight: 0.2}, {Group: 2, Weight: 0.1}},
		},
	}
	bw := BuildBoneWeights(stream, groupToBone)

	if len(bw) != 1 {
		t.Fatalf("table length %d, want 1", len(bw))
	}
	want := [4]float32{0.7, 0.2, 0, 0}
	if bw[0].Weights != want {
		t.Errorf("weights = %v, want %v", bw[0].Weights, want)
	}
	if bw[0].Indices[0] != 0 || bw[0].Indices[1] != 1 {
		t.Errorf("indices = %v, want A then B", bw[0].Indices)
	}
	if bw[0].Indices[2] != 0 || bw[0].Indices[3] != 0 {
		t.Errorf("pad indices = %v, want bone 0", bw[0].Indices)
	}
}

func TestBuildBoneWeightsSortsDescending(t *testing.T) {
	groups := []string{"a", "b", "c"}
	arm := &scene.Armature{Name: "skel", Bones: []string{"a", "b", "c"}}
	_, groupToBone := ResolveBones(groups, arm)

	stream := &VertexStream{
		Groups: [][]scene.GroupWeight{
			{{Group: 0, Weight: 0.1}, {Group: 1, Weight: 0.6}, {Group: 2, Weight: 0.3}},
		},
	}
	bw := BuildBoneWeights(stream, groupToBone)

	if bw[0].Weights != [4]float32{0.6, 0.3, 0.1, 0} {
		t.Errorf("weights = %v, want descending 0.6 0.3 0.1 0", bw[0].Weights)
	}
	if bw[0].Indices[0] != 1 || bw[0].Indices[1] != 2 || bw[0].Indices[2] != 0 {
		t.Errorf("indices = %v, want b c a", bw[0].Indices)
	}
}

func TestBuildBoneWeightsTruncates(t *testing.T) {
	groups := []string{"a", "b", "c", "d", "e", "f"}
	arm := &scene.Armature{Name: "skel", Bones: groups}
	_, groupToBone := ResolveBones(groups, arm)

	memberships := []scene.GroupWeight{
		{Group: 0, Weight: 0.05},
		{Group: 1, Weight: 0.30},
		{Group: 2, Weight: 0.25},
		{Group: 3, Weight: 0.20},
		{Group: 4, Weight: 0.15},
		{Group: 5, Weight: 0.05},
	}
	stream := &VertexStream{Groups: [][]scene.GroupWeight{memberships}}
	bw := BuildBoneWeights(stream, groupToBone)

	if bw[0].Weights != [4]float32{0.30, 0.25, 0.20, 0.15} {
		t.Errorf("weights = %v, want top four", bw[0].Weights)
	}
	// Weights never increase along the table.
	for i := 1; i < 4; i++ {
		if bw[0].Weights[i] > bw[0].Weights[i-1] {
			t.Errorf("weights increase at slot %d: %v", i, bw[0].Weights)
		}
	}
	// Emitted total never exceeds the input total.
	var in, out float32
	for _, m := range memberships {
		in += m.Weight
	}
	for _, w := range bw[0].Weights {
		out += w
	}
	if out > in {
		t.Errorf("emitted weight %v exceeds input %v", out, in)
	}
}

func TestBuildBoneWeightsStableTies(t *testing.T) {
	groups := []string{"a", "b", "c"}
	arm := &scene.Armature{Name: "skel", Bones: groups}
	_, groupToBone := ResolveBones(groups, arm)

	stream := &VertexStream{
		Groups: [][]scene.GroupWeight{
			{{Group: 2, Weight: 0.5}, {Group: 0, Weight: 0.5}, {Group: 1, Weight: 0.5}},
		},
	}
	bw := BuildBoneWeights(stream, groupToBone)

	// Equal weights keep membership order: c, a, b.
	if bw[0].Indices[0] != 2 || bw[0].Indices[1] != 0 || bw[0].Indices[2] != 1 {
		t.Errorf("tie order = %v, want membership order c a b", bw[0].Indices)
	}
}

func TestBuildBoneWeightsNoQualifying(t *testing.T) {
	groups := []string{"pin"}
	arm := &scene.Armature{Name: "skel", Bones: []string{"root"}}
	_, groupToBone := ResolveBones(groups, arm)

	stream := &VertexStream{
		Groups: [][]scene.GroupWeight{
			{{Group: 0, Weight: 1.0}}, // pin is not a bone
			nil,                       // no memberships at all
		},
	}
	bw := BuildBoneWeights(stream, groupToBone)

	for vi, w := range bw {
		if w != (mu.BoneWeight{}) {
			t.Errorf("vertex %d table = %+v, want all zero", vi, w)
		}
	}
}
