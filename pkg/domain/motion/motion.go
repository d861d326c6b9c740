// 指示: miu200521358
// Package motion はダンス・カメラのモーション素材とフレーム量子化を扱う。
package motion

import (
	"strings"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
)

// DEFAULT_FRAME_RATE は出力モーションの既定フレームレート。
const DEFAULT_FRAME_RATE = 30.0

// Curve は0..1に正規化したベジェ制御点を表す。
type Curve struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// LinearCurve は線形補間と等価な制御点を返す。
func LinearCurve() Curve {
	return Curve{X1: 20.0 / 127.0, Y1: 20.0 / 127.0, X2: 107.0 / 127.0, Y2: 107.0 / 127.0}
}

// BoneKeyframe はボーンの1キーフレームを表す。Time は秒。
// 位置・回転はローカル値で、Has* が false の成分はレストポーズのままとして扱う。
type BoneKeyframe struct {
	Time        float64
	Position    mmath.Vec3
	Rotation    mmath.Quaternion
	HasPosition bool
	HasRotation bool
	Curve       *Curve
}

// BoneTrack はボーンパス単位のキーフレーム列を表す。
type BoneTrack struct {
	Path      string
	Keyframes []BoneKeyframe
}

// CameraKeyframe はカメラの1キーフレームを表す。FieldOfView は度、Roll はラジアン。
type CameraKeyframe struct {
	Time        float64
	Target      mmath.Vec3
	Eye         mmath.Vec3
	FieldOfView float64
	Roll        float64
	Curve       *Curve
}

// MotionAsset はモーション素材を表す。
type MotionAsset struct {
	Name            string
	FrameRate       float64
	BoneTracks      []BoneTrack
	CameraKeyframes []CameraKeyframe
}

// TrackByPath はパスに一致するボーントラックを返す。同一パスが複数ある場合は先頭を返す。
func (m *MotionAsset) TrackByPath(path string) (*BoneTrack, bool) {
	if m == nil {
		return nil, false
	}
	for i := range m.BoneTracks {
		if m.BoneTracks[i].Path == path {
			return &m.BoneTracks[i], true
		}
	}
	return nil, false
}

// TrackIndex はパスからトラック位置への索引を返す。
func (m *MotionAsset) TrackIndex() map[string]int {
	index := map[string]int{}
	if m == nil {
		return index
	}
	for i, track := range m.BoneTracks {
		if _, exists := index[track.Path]; exists {
			continue
		}
		index[track.Path] = i
	}
	return index
}

// KeyframeCount はボーンキーフレーム総数を返す。
func (m *MotionAsset) KeyframeCount() int {
	if m == nil {
		return 0
	}
	total := 0
	for _, track := range m.BoneTracks {
		total += len(track.Keyframes)
	}
	return total
}

// HasCamera はカメラキーフレームを持つか判定する。
func (m *MotionAsset) HasCamera() bool {
	return m != nil && len(m.CameraKeyframes) > 0
}

// FindMotion はモーション群から名前が一致するものを返す。
// 完全一致が無い場合は "_"+suffix で終わる最初のモーションを返す。
func FindMotion(motions []*MotionAsset, name string, suffix string) *MotionAsset {
	for _, asset := range motions {
		if asset != nil && asset.Name == name {
			return asset
		}
	}
	if suffix == "" {
		return nil
	}
	for _, asset := range motions {
		if asset != nil && strings.HasSuffix(asset.Name, "_"+suffix) {
			return asset
		}
	}
	return nil
}
