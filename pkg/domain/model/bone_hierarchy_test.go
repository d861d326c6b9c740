// 指示: miu200521358
package model

import (
	"math"
	"testing"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// newTestAvatar はパスと親index指定でテスト用アバターを生成する。
func newTestAvatar(name string, paths []string, parents []int) *Avatar {
	avatar := &Avatar{
		Name:     name,
		Nodes:    make([]AvatarNode, len(paths)),
		NodeIDs:  make([]uint32, len(paths)),
		PathByID: map[uint32]string{},
		RestPose: make([]Transform, len(paths)),
	}
	for i, path := range paths {
		id := uint32(1000 + i)
		avatar.Nodes[i] = AvatarNode{ParentIndex: parents[i]}
		avatar.NodeIDs[i] = id
		avatar.PathByID[id] = path
		avatar.RestPose[i] = Transform{
			Translation: mmath.NewVec3(0, 0.1, 0),
			Rotation:    mmath.NewQuaternion(),
		}
	}
	return avatar
}

// mustBuildHierarchy はテスト用に階層を構築する。
func mustBuildHierarchy(t *testing.T, avatar *Avatar) *BoneHierarchy {
	t.Helper()
	hierarchy, err := BuildBoneHierarchy(avatar)
	if err != nil {
		t.Fatalf("build hierarchy failed: %v", err)
	}
	return hierarchy
}

func TestBuildBoneHierarchyKeepsOrderAndParents(t *testing.T) {
	avatar := newTestAvatar("body", []string{"ROOT", "ROOT/HIP", "ROOT/HIP/SPINE", "ROOT/HIP/LEG_L"}, []int{-1, 0, 1, 1})
	hierarchy := mustBuildHierarchy(t, avatar)

	if hierarchy.Len() != 4 {
		t.Fatalf("bone count mismatch: %d", hierarchy.Len())
	}
	for i, bone := range hierarchy.Bones {
		if bone.Index != i {
			t.Fatalf("index mismatch: bone=%s index=%d want=%d", bone.Path, bone.Index, i)
		}
		if bone.ParentIndex != avatar.Nodes[i].ParentIndex {
			t.Fatalf("parent mismatch: bone=%s parent=%d", bone.Path, bone.ParentIndex)
		}
	}
	if index, ok := hierarchy.IndexOf("ROOT/HIP/SPINE"); !ok || index != 2 {
		t.Fatalf("index lookup mismatch: %d %v", index, ok)
	}
	children := hierarchy.Children(1)
	if len(children) != 2 || children[0] != 2 || children[1] != 3 {
		t.Fatalf("children mismatch: %v", children)
	}
	if hierarchy.Bones[3].LeafName() != "LEG_L" {
		t.Fatalf("leaf name mismatch: %s", hierarchy.Bones[3].LeafName())
	}
}

func TestBuildBoneHierarchyComputesWorldTransforms(t *testing.T) {
	avatar := newTestAvatar("body", []string{"ROOT", "ROOT/ARM", "ROOT/ARM/HAND"}, []int{-1, 0, 1})
	avatar.RestPose[0] = Transform{Translation: mmath.NewVec3(0, 1, 0), Rotation: mmath.NewQuaternion()}
	avatar.RestPose[1] = Transform{
		Translation: mmath.NewVec3(1, 0, 0),
		Rotation:    mmath.NewQuaternionFromAxisAngle(mmath.UNIT_Y_VEC3, math.Pi/2),
	}
	avatar.RestPose[2] = Transform{Translation: mmath.NewVec3(1, 0, 0), Rotation: mmath.NewQuaternion()}

	hierarchy := mustBuildHierarchy(t, avatar)

	arm := hierarchy.Bones[1]
	if !arm.WorldTranslation.NearEquals(mmath.NewVec3(1, 1, 0), 1e-9) {
		t.Fatalf("arm world mismatch: %v", arm.WorldTranslation)
	}
	hand := hierarchy.Bones[2]
	// 腕がY軸90度回転しているため、手のローカル+Xはワールド-Zになる。
	if !hand.WorldTranslation.NearEquals(mmath.NewVec3(1, 1, -1), 1e-9) {
		t.Fatalf("hand world mismatch: %v", hand.WorldTranslation)
	}
	if !hand.WorldRotation.NearEquals(arm.WorldRotation, 1e-9) {
		t.Fatalf("hand rotation should inherit arm rotation")
	}
}

func TestBuildBoneHierarchyMissingPathFails(t *testing.T) {
	avatar := newTestAvatar("head", []string{"KUBI", "KUBI/HEAD"}, []int{-1, 0})
	delete(avatar.PathByID, avatar.NodeIDs[1])

	_, err := BuildBoneHierarchy(avatar)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !merr.IsBoneNotFound(err) {
		t.Fatalf("expected bone not found, got %v", err)
	}
}

func TestBuildBoneHierarchyRejectsForwardParent(t *testing.T) {
	avatar := newTestAvatar("body", []string{"A", "B"}, []int{1, -1})

	_, err := BuildBoneHierarchy(avatar)
	if !merr.IsIndexConsistency(err) {
		t.Fatalf("expected index consistency error, got %v", err)
	}
}

func TestBuildBoneHierarchyRejectsDuplicatePath(t *testing.T) {
	avatar := newTestAvatar("body", []string{"A", "A/B", "A/B"}, []int{-1, 0, 0})

	_, err := BuildBoneHierarchy(avatar)
	if !merr.IsIndexConsistency(err) {
		t.Fatalf("expected index consistency error, got %v", err)
	}
}

func TestBuildBoneHierarchyRejectsMismatchedArrays(t *testing.T) {
	avatar := newTestAvatar("body", []string{"A", "A/B"}, []int{-1, 0})
	avatar.RestPose = avatar.RestPose[:1]

	_, err := BuildBoneHierarchy(avatar)
	if !merr.IsUnsupportedFormat(err) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if _, err := BuildBoneHierarchy(nil); !merr.IsMissingAsset(err) {
		t.Fatalf("expected missing asset error, got %v", err)
	}
}
