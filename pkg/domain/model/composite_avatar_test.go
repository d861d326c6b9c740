// 指示: miu200521358
package model

import (
	"fmt"
	"testing"

	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

func TestMergeAvatarsScenarioA(t *testing.T) {
	body := mustBuildHierarchy(t, newTestAvatar("body", []string{"root", "root/spine", "root/spine/neck"}, []int{-1, 0, 1}))
	head := mustBuildHierarchy(t, newTestAvatar("head", []string{"root/spine/neck", "root/spine/neck/head_tip"}, []int{-1, 0}))

	composite, err := MergeAvatars(body, head, "root/spine/neck")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if composite.BoneCount() != 4 {
		t.Fatalf("bone count mismatch: %d", composite.BoneCount())
	}
	wantPaths := []string{"root", "root/spine", "root/spine/neck", "root/spine/neck/head_tip"}
	for i, want := range wantPaths {
		if composite.Hierarchy.Bones[i].Path != want {
			t.Fatalf("path mismatch at %d: got=%s want=%s", i, composite.Hierarchy.Bones[i].Path, want)
		}
	}
	if index, ok := composite.Remap.Lookup(0); !ok || index != 2 || !composite.Remap.IsDuplicate(0) {
		t.Fatalf("duplicate head root should map to neck: index=%d ok=%v", index, ok)
	}
	if index, ok := composite.Remap.Lookup(1); !ok || index != 3 || composite.Remap.IsDuplicate(1) {
		t.Fatalf("head tip should be appended at 3: index=%d ok=%v", index, ok)
	}
	if composite.Hierarchy.Bones[3].ParentIndex != 2 {
		t.Fatalf("head tip should be reparented onto neck: %d", composite.Hierarchy.Bones[3].ParentIndex)
	}
	if composite.DuplicateCount != 1 {
		t.Fatalf("duplicate count mismatch: %d", composite.DuplicateCount)
	}
}

func TestMergeAvatarsReparentsNonDuplicateRoot(t *testing.T) {
	body := mustBuildHierarchy(t, newTestAvatar("body", []string{"root", "root/neck"}, []int{-1, 0}))
	head := mustBuildHierarchy(t, newTestAvatar("head", []string{"head", "head/eye_L", "head/eye_R"}, []int{-1, 0, 0}))

	composite, err := MergeAvatars(body, head, "root/neck")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if composite.BoneCount() != 5 {
		t.Fatalf("bone count mismatch: %d", composite.BoneCount())
	}
	if composite.Hierarchy.Bones[2].ParentIndex != 1 {
		t.Fatalf("head root should attach to neck: %d", composite.Hierarchy.Bones[2].ParentIndex)
	}
	for _, i := range []int{3, 4} {
		if composite.Hierarchy.Bones[i].ParentIndex != 2 {
			t.Fatalf("eye parent mismatch at %d: %d", i, composite.Hierarchy.Bones[i].ParentIndex)
		}
	}
	// 頭部ルートは首の子になるため、ワールド座標は首のワールド座標に積み上がる。
	neck := composite.Hierarchy.Bones[1]
	headRoot := composite.Hierarchy.Bones[2]
	if !headRoot.WorldTranslation.NearEquals(neck.WorldTranslation.Added(headRoot.LocalTranslation), 1e-9) {
		t.Fatalf("head root world mismatch: %v", headRoot.WorldTranslation)
	}
}

func TestMergeAvatarsKeepsBodyUntouched(t *testing.T) {
	body := mustBuildHierarchy(t, newTestAvatar("body", []string{"root", "root/neck"}, []int{-1, 0}))
	head := mustBuildHierarchy(t, newTestAvatar("head", []string{"head"}, []int{-1}))

	composite, err := MergeAvatars(body, head, "root/neck")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	composite.Hierarchy.Bones[0].Path = "changed"
	if body.Bones[0].Path != "root" {
		t.Fatalf("body hierarchy should not be aliased")
	}
	if body.Len() != 2 {
		t.Fatalf("body hierarchy should not grow: %d", body.Len())
	}
}

func TestMergeAvatarsMissingAttachmentFails(t *testing.T) {
	body := mustBuildHierarchy(t, newTestAvatar("body", []string{"root"}, []int{-1}))
	head := mustBuildHierarchy(t, newTestAvatar("head", []string{"head"}, []int{-1}))

	_, err := MergeAvatars(body, head, "root/missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if merr.ExtractErrorID(err) != merr.ErrorIDAttachmentBoneNotFound {
		t.Fatalf("expected attachment error id, got %s", merr.ExtractErrorID(err))
	}
}

func TestMergeAvatarsProperties(t *testing.T) {
	// 胴体は鎖状、頭部は先頭と一部が胴体と重複する組み合わせを生成して性質を確認する。
	for bodyCount := 1; bodyCount <= 6; bodyCount++ {
		for headCount := 1; headCount <= 6; headCount++ {
			for dupCount := 0; dupCount <= headCount && dupCount <= bodyCount; dupCount++ {
				bodyPaths := make([]string, bodyCount)
				bodyParents := make([]int, bodyCount)
				for i := range bodyPaths {
					bodyPaths[i] = fmt.Sprintf("b%d", i)
					bodyParents[i] = i - 1
				}
				headPaths := make([]string, headCount)
				headParents := make([]int, headCount)
				for i := range headPaths {
					if i < dupCount {
						headPaths[i] = bodyPaths[bodyCount-dupCount+i]
					} else {
						headPaths[i] = fmt.Sprintf("h%d", i)
					}
					headParents[i] = (i - 1) / 2
					if i == 0 {
						headParents[i] = -1
					}
				}
				body := mustBuildHierarchy(t, newTestAvatar("body", bodyPaths, bodyParents))
				head := mustBuildHierarchy(t, newTestAvatar("head", headPaths, headParents))

				composite, err := MergeAvatars(body, head, bodyPaths[bodyCount-1])
				if err != nil {
					t.Fatalf("merge failed: body=%d head=%d dup=%d: %v", bodyCount, headCount, dupCount, err)
				}
				if composite.BoneCount() != bodyCount+headCount-dupCount {
					t.Fatalf("count mismatch: body=%d head=%d dup=%d got=%d", bodyCount, headCount, dupCount, composite.BoneCount())
				}
				for i, bone := range composite.Hierarchy.Bones {
					if bone.ParentIndex >= i {
						t.Fatalf("forward parent: index=%d parent=%d", i, bone.ParentIndex)
					}
				}
				for i := 0; i < headCount; i++ {
					index, ok := composite.Remap.Lookup(i)
					if !ok || index < 0 || index >= composite.BoneCount() {
						t.Fatalf("remap entry invalid: head=%d index=%d", i, index)
					}
				}
			}
		}
	}
}
