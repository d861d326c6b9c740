// 指示: miu200521358
package model

import (
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// BuildBoneHierarchy はアバターのノード配列からボーン階層を構築する。
// ノード配列は親が子より前に並ぶ前提で、違反は不整合として扱う。
func BuildBoneHierarchy(avatar *Avatar) (*BoneHierarchy, error) {
	if avatar == nil {
		return nil, merr.NewMissingAsset("アバターが未設定です", nil)
	}
	nodeCount := len(avatar.Nodes)
	if len(avatar.NodeIDs) != nodeCount {
		return nil, merr.NewUnsupportedFormat(
			"ボーンID配列の要素数がノード数と一致しません: rig=%s nodes=%d ids=%d",
			nil, avatar.Name, nodeCount, len(avatar.NodeIDs),
		)
	}
	if len(avatar.RestPose) != nodeCount {
		return nil, merr.NewUnsupportedFormat(
			"レストポーズの要素数がノード数と一致しません: rig=%s nodes=%d poses=%d",
			nil, avatar.Name, nodeCount, len(avatar.RestPose),
		)
	}

	hierarchy := newBoneHierarchy(avatar.Name, nodeCount)
	for i, node := range avatar.Nodes {
		parentIndex := node.ParentIndex
		if parentIndex < 0 {
			parentIndex = -1
		} else if parentIndex >= i {
			return nil, merr.NewIndexConsistency(
				"親ボーンが子より後ろにあります: rig=%s index=%d parent=%d",
				nil, avatar.Name, i, parentIndex,
			)
		}

		id := avatar.NodeIDs[i]
		path, ok := avatar.PathByID[id]
		if !ok {
			return nil, merr.NewBoneNotFound(
				"ボーンIDに対応するパスがありません: rig=%s index=%d id=%d",
				nil, avatar.Name, i, id,
			)
		}

		rest := avatar.RestPose[i]
		bone := &BoneNode{
			ID:               id,
			Path:             path,
			ParentIndex:      parentIndex,
			LocalTranslation: rest.Translation,
			LocalRotation:    rest.Rotation.Normalized(),
		}
		if err := hierarchy.append(bone); err != nil {
			return nil, err
		}
	}

	updateWorldTransforms(hierarchy.Bones, 0)
	return hierarchy, nil
}

// updateWorldTransforms は start 以降のボーンのワールド変換を親から順に計算する。
// 親は必ず自身より前にあるため、1回の走査で確定する。
func updateWorldTransforms(bones []*BoneNode, start int) {
	for i := start; i < len(bones); i++ {
		bone := bones[i]
		if bone.ParentIndex < 0 {
			bone.WorldTranslation = bone.LocalTranslation
			bone.WorldRotation = bone.LocalRotation
			continue
		}
		parent := bones[bone.ParentIndex]
		bone.WorldRotation = parent.WorldRotation.Muled(bone.LocalRotation).Normalized()
		bone.WorldTranslation = parent.WorldTranslation.Added(parent.WorldRotation.MulVec3(bone.LocalTranslation))
	}
}
