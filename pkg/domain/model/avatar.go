// 指示: miu200521358
package model

import "github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"

// Transform はレストポーズのローカル変換を表す。
type Transform struct {
	Translation mmath.Vec3
	Rotation    mmath.Quaternion
}

// NewTransform は単位変換を生成する。
func NewTransform() Transform {
	return Transform{Translation: mmath.ZERO_VEC3, Rotation: mmath.NewQuaternion()}
}

// AvatarNode は骨格ノード配列の1要素を表す。
type AvatarNode struct {
	ParentIndex int
}

// Avatar は外部リーダーが復元した1リグ分の骨格を表す。
// Nodes/NodeIDs/RestPose は同じインデックスで対応する。
type Avatar struct {
	Name     string
	Nodes    []AvatarNode
	NodeIDs  []uint32
	PathByID map[uint32]string
	RestPose []Transform
}

// NodeCount はノード数を返す。
func (a *Avatar) NodeCount() int {
	if a == nil {
		return 0
	}
	return len(a.Nodes)
}
