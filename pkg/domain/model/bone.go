// 指示: miu200521358
package model

import (
	"strings"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// BoneNode は骨格の1ボーンを表す。親はインデックスで参照する。
type BoneNode struct {
	ID               uint32
	Path             string
	Index            int
	ParentIndex      int
	LocalTranslation mmath.Vec3
	LocalRotation    mmath.Quaternion
	WorldTranslation mmath.Vec3
	WorldRotation    mmath.Quaternion
}

// IsRoot は親を持たないか判定する。
func (b *BoneNode) IsRoot() bool {
	return b.ParentIndex < 0
}

// LeafName はパス末尾の要素名を返す。
func (b *BoneNode) LeafName() string {
	return leafName(b.Path)
}

// BoneHierarchy はインデックス順に並んだボーン配列を表す。
type BoneHierarchy struct {
	Name        string
	Bones       []*BoneNode
	indexByPath map[string]int
}

// newBoneHierarchy は空の階層を生成する。
func newBoneHierarchy(name string, capacity int) *BoneHierarchy {
	return &BoneHierarchy{
		Name:        name,
		Bones:       make([]*BoneNode, 0, capacity),
		indexByPath: make(map[string]int, capacity),
	}
}

// Len はボーン数を返す。
func (h *BoneHierarchy) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Bones)
}

// Get はインデックスでボーンを返す。
func (h *BoneHierarchy) Get(index int) (*BoneNode, error) {
	if h == nil || index < 0 || index >= len(h.Bones) {
		return nil, merr.NewIndexConsistency("ボーンindexが範囲外です: rig=%s index=%d", nil, h.name(), index)
	}
	return h.Bones[index], nil
}

// IndexOf はパスからボーンindexを返す。
func (h *BoneHierarchy) IndexOf(path string) (int, bool) {
	if h == nil {
		return -1, false
	}
	if h.indexByPath == nil {
		h.rebuildIndex()
	}
	index, ok := h.indexByPath[path]
	return index, ok
}

// Children は直接の子ボーンindexを昇順で返す。
func (h *BoneHierarchy) Children(index int) []int {
	children := make([]int, 0)
	if h == nil {
		return children
	}
	for _, bone := range h.Bones {
		if bone.ParentIndex == index {
			children = append(children, bone.Index)
		}
	}
	return children
}

// append はボーンを末尾に追加する。パスが重複する場合は失敗する。
func (h *BoneHierarchy) append(bone *BoneNode) error {
	if _, exists := h.indexByPath[bone.Path]; exists {
		return merr.NewIndexConsistency("ボーンパスが重複しています: rig=%s path=%s", nil, h.Name, bone.Path)
	}
	bone.Index = len(h.Bones)
	h.Bones = append(h.Bones, bone)
	h.indexByPath[bone.Path] = bone.Index
	return nil
}

// rebuildIndex はパス索引を作り直す。
func (h *BoneHierarchy) rebuildIndex() {
	h.indexByPath = make(map[string]int, len(h.Bones))
	for i, bone := range h.Bones {
		h.indexByPath[bone.Path] = i
	}
}

// name はログ用のリグ名を返す。
func (h *BoneHierarchy) name() string {
	if h == nil {
		return "<nil>"
	}
	return h.Name
}

// leafName はパス末尾の要素名を返す。
func leafName(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
