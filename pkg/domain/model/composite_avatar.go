// 指示: miu200521358
package model

import (
	"github.com/tiendc/go-deepcopy"

	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// RemapTable は頭部リグのボーンindexから合成後indexへの対応表を表す。
type RemapTable struct {
	entries    []int
	duplicates []bool
}

// newRemapTable は要素数指定で対応表を生成する。未割当は -1。
func newRemapTable(size int) *RemapTable {
	entries := make([]int, size)
	for i := range entries {
		entries[i] = -1
	}
	return &RemapTable{entries: entries, duplicates: make([]bool, size)}
}

// Len は対応表の要素数を返す。
func (r *RemapTable) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Lookup は頭部indexに対応する合成後indexを返す。
func (r *RemapTable) Lookup(headIndex int) (int, bool) {
	if r == nil || headIndex < 0 || headIndex >= len(r.entries) {
		return -1, false
	}
	index := r.entries[headIndex]
	return index, index >= 0
}

// IsDuplicate は頭部ボーンが胴体側の同一パスへ統合されたか判定する。
func (r *RemapTable) IsDuplicate(headIndex int) bool {
	if r == nil || headIndex < 0 || headIndex >= len(r.duplicates) {
		return false
	}
	return r.duplicates[headIndex]
}

// Entries は対応表のコピーを返す。
func (r *RemapTable) Entries() []int {
	if r == nil {
		return nil
	}
	return append([]int(nil), r.entries...)
}

// CompositeAvatar は胴体と頭部を統合した骨格を表す。
type CompositeAvatar struct {
	Hierarchy       *BoneHierarchy
	BodyBoneCount   int
	HeadBoneCount   int
	DuplicateCount  int
	AttachmentIndex int
	Remap           *RemapTable
}

// BoneCount は合成後のボーン数を返す。
func (c *CompositeAvatar) BoneCount() int {
	if c == nil {
		return 0
	}
	return c.Hierarchy.Len()
}

// MergeAvatars は胴体骨格を基準に頭部骨格を統合する。
// 胴体側のボーン順とindexは保持し、頭部ボーンは元の順で末尾へ追加する。
// 胴体と同じパスを持つ頭部ボーンは追加せず、胴体側ボーンへ対応付ける。
func MergeAvatars(body *BoneHierarchy, head *BoneHierarchy, attachmentPath string) (*CompositeAvatar, error) {
	if body == nil || body.Len() == 0 {
		return nil, merr.NewMissingAsset("胴体骨格が未設定です", nil)
	}
	if head == nil || head.Len() == 0 {
		return nil, merr.NewMissingAsset("頭部骨格が未設定です", nil)
	}
	attachmentIndex, ok := body.IndexOf(attachmentPath)
	if !ok {
		return nil, merr.NewAttachmentBoneNotFound(
			"接続先ボーンが胴体骨格にありません: rig=%s path=%s", nil, body.Name, attachmentPath,
		)
	}

	bodyBones := make([]*BoneNode, 0, body.Len())
	if err := deepcopy.Copy(&bodyBones, body.Bones); err != nil {
		return nil, merr.NewUnsupportedFormat("胴体骨格の複製に失敗しました: rig=%s", err, body.Name)
	}

	composite := newBoneHierarchy(body.Name, body.Len()+head.Len())
	for _, bone := range bodyBones {
		if err := composite.append(bone); err != nil {
			return nil, err
		}
	}

	remap := newRemapTable(head.Len())
	duplicateCount := 0
	for i, headBone := range head.Bones {
		if bodyIndex, exists := body.IndexOf(headBone.Path); exists {
			remap.entries[i] = bodyIndex
			remap.duplicates[i] = true
			duplicateCount++
			logModelDebug("頭部ボーン統合: path=%s head=%d body=%d", headBone.Path, i, bodyIndex)
			continue
		}

		parentIndex := attachmentIndex
		if headBone.ParentIndex >= 0 {
			mapped, found := remap.Lookup(headBone.ParentIndex)
			if !found {
				return nil, merr.NewRemapLookupFailed(
					"頭部ボーンの親が未割当です: rig=%s index=%d parent=%d",
					nil, head.Name, i, headBone.ParentIndex,
				)
			}
			parentIndex = mapped
		}

		appended := &BoneNode{
			ID:               headBone.ID,
			Path:             headBone.Path,
			ParentIndex:      parentIndex,
			LocalTranslation: headBone.LocalTranslation,
			LocalRotation:    headBone.LocalRotation,
		}
		if err := composite.append(appended); err != nil {
			return nil, err
		}
		remap.entries[i] = appended.Index
	}

	updateWorldTransforms(composite.Bones, body.Len())
	if err := validateTopologicalOrder(composite); err != nil {
		return nil, err
	}

	logModelInfo(
		"骨格統合完了: body=%d head=%d duplicates=%d composite=%d",
		body.Len(), head.Len(), duplicateCount, composite.Len(),
	)
	return &CompositeAvatar{
		Hierarchy:       composite,
		BodyBoneCount:   body.Len(),
		HeadBoneCount:   head.Len(),
		DuplicateCount:  duplicateCount,
		AttachmentIndex: attachmentIndex,
		Remap:           remap,
	}, nil
}

// validateTopologicalOrder は全ボーンの親indexが自身より小さいことを検証する。
func validateTopologicalOrder(hierarchy *BoneHierarchy) error {
	for i, bone := range hierarchy.Bones {
		if bone.Index != i {
			return merr.NewIndexConsistency("ボーンindexが配列位置と一致しません: rig=%s index=%d pos=%d", nil, hierarchy.Name, bone.Index, i)
		}
		if bone.ParentIndex >= i {
			return merr.NewIndexConsistency("親ボーンが子より後ろにあります: rig=%s index=%d parent=%d", nil, hierarchy.Name, i, bone.ParentIndex)
		}
	}
	return nil
}
