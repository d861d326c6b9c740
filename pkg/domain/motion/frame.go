// 指示: miu200521358
package motion

import (
	"math"
	"sort"

	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// FramedBoneKeyframe はフレーム番号を確定したボーンキーフレームを表す。
type FramedBoneKeyframe struct {
	Frame uint32
	BoneKeyframe
}

// FramedCameraKeyframe はフレーム番号を確定したカメラキーフレームを表す。
type FramedCameraKeyframe struct {
	Frame uint32
	CameraKeyframe
}

// QuantizeFrame は秒をフレーム番号へ丸める。
func QuantizeFrame(seconds float64, frameRate float64) (uint32, error) {
	if frameRate <= 0 || math.IsNaN(frameRate) || math.IsInf(frameRate, 0) {
		return 0, merr.NewUnsupportedFormat("フレームレートが不正です: fps=%v", nil, frameRate)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, merr.NewUnsupportedFormat("キーフレーム時刻が不正です: time=%v", nil, seconds)
	}
	frame := math.Round(seconds * frameRate)
	if frame < 0 {
		return 0, merr.NewUnsupportedFormat("キーフレーム時刻が負です: time=%v", nil, seconds)
	}
	if frame > math.MaxUint32 {
		return 0, merr.NewUnsupportedFormat("フレーム番号が上限を超えています: time=%v fps=%v", nil, seconds, frameRate)
	}
	return uint32(frame), nil
}

// CollapseBoneKeyframes はキーフレームをフレーム番号へ量子化して昇順に並べる。
// 同一フレームに複数ある場合は入力順で最後のキーフレームを採用し、除外数を返す。
func CollapseBoneKeyframes(keyframes []BoneKeyframe, frameRate float64) ([]FramedBoneKeyframe, int, error) {
	framed, collapsed, err := collapseByFrame(keyframes, frameRate, func(k BoneKeyframe) float64 { return k.Time })
	if err != nil {
		return nil, 0, err
	}
	out := make([]FramedBoneKeyframe, len(framed))
	for i, f := range framed {
		out[i] = FramedBoneKeyframe{Frame: f.frame, BoneKeyframe: f.value}
	}
	return out, collapsed, nil
}

// CollapseCameraKeyframes はカメラキーフレームをボーンと同じ規則で量子化する。
func CollapseCameraKeyframes(keyframes []CameraKeyframe, frameRate float64) ([]FramedCameraKeyframe, int, error) {
	framed, collapsed, err := collapseByFrame(keyframes, frameRate, func(k CameraKeyframe) float64 { return k.Time })
	if err != nil {
		return nil, 0, err
	}
	out := make([]FramedCameraKeyframe, len(framed))
	for i, f := range framed {
		out[i] = FramedCameraKeyframe{Frame: f.frame, CameraKeyframe: f.value}
	}
	return out, collapsed, nil
}

type framedValue[T any] struct {
	frame uint32
	value T
}

// collapseByFrame は安定ソート後、同一フレームの末尾要素だけを残す。
func collapseByFrame[T any](items []T, frameRate float64, timeOf func(T) float64) ([]framedValue[T], int, error) {
	framed := make([]framedValue[T], 0, len(items))
	for _, item := range items {
		frame, err := QuantizeFrame(timeOf(item), frameRate)
		if err != nil {
			return nil, 0, err
		}
		framed = append(framed, framedValue[T]{frame: frame, value: item})
	}
	sort.SliceStable(framed, func(i int, j int) bool {
		return framed[i].frame < framed[j].frame
	})

	out := make([]framedValue[T], 0, len(framed))
	for _, f := range framed {
		if n := len(out); n > 0 && out[n-1].frame == f.frame {
			out[n-1] = f
			continue
		}
		out = append(out, f)
	}
	return out, len(framed) - len(out), nil
}
