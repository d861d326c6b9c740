// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// mergedRig は統合済みの骨格とメッシュを表す。
type mergedRig struct {
	avatar *model.CompositeAvatar
	mesh   *model.CompositeMesh
}

// mergeRig は胴体と頭部の骨格・メッシュを統合する。
// 頭部メッシュ群は頭部骨格のindex空間のまま先に連結し、その後胴体メッシュへリマップ付きで連結する。
func mergeRig(inputs *convertInputs, attachmentBone string, reporter IConvertProgressReporter) (*mergedRig, error) {
	if inputs == nil {
		return nil, merr.NewMissingAsset("変換入力がありません", nil)
	}
	bodyHierarchy, err := model.BuildBoneHierarchy(inputs.bodyAvatar)
	if err != nil {
		return nil, fmt.Errorf("胴体骨格の構築に失敗しました: %w", err)
	}
	headHierarchy, err := model.BuildBoneHierarchy(inputs.headAvatar)
	if err != nil {
		return nil, fmt.Errorf("頭部骨格の構築に失敗しました: %w", err)
	}
	composite, err := model.MergeAvatars(bodyHierarchy, headHierarchy, attachmentBone)
	if err != nil {
		return nil, fmt.Errorf("骨格統合に失敗しました: %w", err)
	}
	reportConvertProgress(reporter, ConvertProgressEvent{
		Type:      ConvertProgressEventTypeSkeletonMerged,
		BoneCount: composite.BoneCount(),
	})

	bodyMesh, err := flattenBundle(inputs.bodyBundle, "胴体")
	if err != nil {
		return nil, err
	}
	headMesh, err := flattenBundle(inputs.headBundle, "頭部")
	if err != nil {
		return nil, err
	}
	mesh, err := model.MergeMeshes([]*model.Mesh{bodyMesh, headMesh}, composite.Remap)
	if err != nil {
		return nil, fmt.Errorf("メッシュ統合に失敗しました: %w", err)
	}
	if err := mesh.ValidateBoneIndexes(composite.BoneCount()); err != nil {
		return nil, err
	}
	reportConvertProgress(reporter, ConvertProgressEvent{
		Type:        ConvertProgressEventTypeMeshMerged,
		BoneCount:   composite.BoneCount(),
		VertexCount: mesh.VertexCount,
	})
	return &mergedRig{avatar: composite, mesh: mesh}, nil
}

// flattenBundle は同一骨格に属するメッシュ群を1メッシュへ連結する。
func flattenBundle(bundle *model.MeshBundle, label string) (*model.Mesh, error) {
	if bundle == nil || len(bundle.Meshes) == 0 {
		return nil, merr.NewMissingAsset("%sメッシュがありません", nil, label)
	}
	if len(bundle.Meshes) == 1 {
		return bundle.Meshes[0], nil
	}
	merged, err := model.MergeMeshes(bundle.Meshes, nil)
	if err != nil {
		return nil, fmt.Errorf("%sメッシュの連結に失敗しました: %w", label, err)
	}
	return merged.ToMesh(), nil
}

// reportConvertProgress は変換処理の進捗を通知する。
func reportConvertProgress(reporter IConvertProgressReporter, event ConvertProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportConvertProgress(event)
}
