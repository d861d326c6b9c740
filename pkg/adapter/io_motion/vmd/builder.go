// 指示: miu200521358
package vmd

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/motion"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

const (
	// DEFAULT_SCALE はメートル単位をMMD単位へ変換する既定倍率。
	DEFAULT_SCALE = 12.5
	// DEFAULT_VIEW_ANGLE はカメラ視野角の既定値(度)。
	DEFAULT_VIEW_ANGLE = 30
)

// Options はVMD出力設定を表す。
type Options struct {
	ModelName string
	FrameRate float64
	Scale     float64
}

// withDefaults は未設定項目を既定値で補った設定を返す。
func (o Options) withDefaults() Options {
	if o.Scale == 0 {
		o.Scale = DEFAULT_SCALE
	}
	return o
}

// BuildVmdMotion はダンス・カメラモーションを合成骨格に合わせてVMDモーションへ変換する。
// 骨格に存在しトラックを持つボーンだけを出力し、カメラが nil の場合はカメラ枠を空にする。
func BuildVmdMotion(
	dance *motion.MotionAsset,
	camera *motion.MotionAsset,
	avatar *model.CompositeAvatar,
	options Options,
) (*VmdMotion, model.ConversionWarnings, error) {
	if avatar == nil || avatar.BoneCount() == 0 {
		return nil, nil, merr.NewMissingAsset("VMD出力対象のアバターがありません", nil)
	}
	if dance == nil {
		return nil, nil, merr.NewMissingAsset("ダンスモーションがありません", nil)
	}
	options = options.withDefaults()
	options.FrameRate = resolveFrameRate(options.FrameRate, dance)
	warnings := model.ConversionWarnings{}
	vmdMotion := &VmdMotion{ModelName: options.ModelName}

	boneFrames, err := buildBoneFrames(dance, avatar.Hierarchy, options, warnings)
	if err != nil {
		return nil, nil, err
	}
	vmdMotion.BoneFrames = boneFrames

	if camera != nil {
		cameraFrames, collapsed, err := buildCameraFrames(camera, options)
		if err != nil {
			return nil, nil, err
		}
		warnings.Add(model.WarningDuplicateFrameCollapsed, collapsed)
		vmdMotion.CameraFrames = cameraFrames
	}

	logVmdInfo(
		"VMD構築完了: motion=%s boneFrames=%d cameraFrames=%d",
		dance.Name, len(vmdMotion.BoneFrames), len(vmdMotion.CameraFrames),
	)
	return vmdMotion, warnings, nil
}

// buildBoneFrames は骨格順にボーンキーフレームを構築する。
func buildBoneFrames(
	dance *motion.MotionAsset,
	hierarchy *model.BoneHierarchy,
	options Options,
	warnings model.ConversionWarnings,
) ([]BoneFrame, error) {
	names, _, err := io_common.BoneNames(hierarchy)
	if err != nil {
		return nil, err
	}
	trackIndex := dance.TrackIndex()
	matched := make(map[string]bool, len(trackIndex))
	frames := make([]BoneFrame, 0, dance.KeyframeCount())

	for i, bone := range hierarchy.Bones {
		ti, ok := trackIndex[bone.Path]
		if !ok {
			continue
		}
		matched[bone.Path] = true
		track := dance.BoneTracks[ti]
		if len(track.Keyframes) == 0 {
			continue
		}

		framed, collapsed, err := motion.CollapseBoneKeyframes(track.Keyframes, options.FrameRate)
		if err != nil {
			return nil, merr.NewUnsupportedFormat("キーフレームのフレーム変換に失敗しました: motion=%s path=%s", err, dance.Name, bone.Path)
		}
		if collapsed > 0 {
			warnings.Add(model.WarningDuplicateFrameCollapsed, collapsed)
			logVmdDebug("同一フレームのキーを統合しました: path=%s collapsed=%d", bone.Path, collapsed)
		}

		parentRotation := mmath.NewQuaternion()
		if !bone.IsRoot() {
			parentRotation = hierarchy.Bones[bone.ParentIndex].WorldRotation
		}
		for _, keyframe := range framed {
			frames = append(frames, BoneFrame{
				Name:          names[i],
				Frame:         keyframe.Frame,
				Position:      convertBonePosition(keyframe.BoneKeyframe, bone, parentRotation, options.Scale),
				Rotation:      convertBoneRotation(keyframe.BoneKeyframe, bone, parentRotation),
				Interpolation: boneInterpolation(keyframe.Curve),
			})
		}
	}

	unmatched := 0
	for _, track := range dance.BoneTracks {
		if matched[track.Path] {
			continue
		}
		unmatched++
		logVmdDebug("骨格に無いトラックを読み飛ばします: motion=%s path=%s", dance.Name, track.Path)
	}
	if unmatched > 0 {
		warnings.Add(model.WarningMotionTrackUnmatched, unmatched)
		logVmdWarn("骨格に無いトラックがあります: motion=%s count=%d", dance.Name, unmatched)
	}
	return frames, nil
}

// convertBonePosition はレスト位置からの差分を親のレスト空間で表し、Z反転と倍率を適用する。
func convertBonePosition(
	keyframe motion.BoneKeyframe,
	bone *model.BoneNode,
	parentRotation mmath.Quaternion,
	scale float64,
) mgl32.Vec3 {
	if !keyframe.HasPosition {
		return mgl32.Vec3{}
	}
	delta := parentRotation.MulVec3(keyframe.Position.Subed(bone.LocalTranslation))
	converted := mmath.MirrorZ(delta).MuledScalar(scale)
	return mgl32.Vec3{float32(converted.X), float32(converted.Y), float32(converted.Z)}
}

// convertBoneRotation はレスト回転からの差分を親のレスト空間で表し、Z反転する。
func convertBoneRotation(
	keyframe motion.BoneKeyframe,
	bone *model.BoneNode,
	parentRotation mmath.Quaternion,
) mgl32.Vec4 {
	if !keyframe.HasRotation {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	delta := parentRotation.
		Muled(keyframe.Rotation.Normalized()).
		Muled(bone.LocalRotation.Inverted()).
		Muled(parentRotation.Inverted()).
		Normalized()
	converted := mmath.MirrorZQuaternion(delta)
	return mgl32.Vec4{float32(converted.X()), float32(converted.Y()), float32(converted.Z()), float32(converted.W())}
}

// buildCameraFrames はカメラキーフレームを視点・注視点から距離と角度へ変換する。
func buildCameraFrames(camera *motion.MotionAsset, options Options) ([]CameraFrame, int, error) {
	framed, collapsed, err := motion.CollapseCameraKeyframes(camera.CameraKeyframes, options.FrameRate)
	if err != nil {
		return nil, 0, merr.NewUnsupportedFormat("カメラキーフレームのフレーム変換に失敗しました: motion=%s", err, camera.Name)
	}

	frames := make([]CameraFrame, 0, len(framed))
	for _, keyframe := range framed {
		eye := mmath.MirrorZ(keyframe.Eye).MuledScalar(options.Scale)
		target := mmath.MirrorZ(keyframe.Target).MuledScalar(options.Scale)
		pitch, yaw, distance := mmath.LookAngles(eye, target)
		interpolation := curveInterpolation(keyframe.Curve)
		frames = append(frames, CameraFrame{
			Frame:    keyframe.Frame,
			Distance: float32(-distance),
			Target:   mgl32.Vec3{float32(target.X), float32(target.Y), float32(target.Z)},
			// 鏡映で視線軸まわりの回転向きが反転する。
			Rotation: mgl32.Vec3{float32(pitch), float32(yaw), float32(-keyframe.Roll)},
			Interpolation: CameraInterpolation{
				X: interpolation, Y: interpolation, Z: interpolation,
				R: interpolation, Distance: interpolation, ViewAngle: interpolation,
			},
			ViewAngle: viewAngle(keyframe.FieldOfView),
		})
	}
	if collapsed > 0 {
		logVmdDebug("同一フレームのカメラキーを統合しました: motion=%s collapsed=%d", camera.Name, collapsed)
	}
	return frames, collapsed, nil
}

// resolveFrameRate は出力フレームレートを決める。未指定なら素材のフレームレート、それも無ければ既定値。
func resolveFrameRate(requested float64, dance *motion.MotionAsset) float64 {
	if requested > 0 {
		if dance.FrameRate > 0 && dance.FrameRate != requested {
			logVmdDebug("素材と出力のフレームレートが異なります: source=%.2f output=%.2f", dance.FrameRate, requested)
		}
		return requested
	}
	if dance.FrameRate > 0 {
		return dance.FrameRate
	}
	return motion.DEFAULT_FRAME_RATE
}

// viewAngle は視野角を整数度へ丸める。未設定や不正値は既定値にする。
func viewAngle(fieldOfView float64) uint32 {
	if math.IsNaN(fieldOfView) || fieldOfView <= 0 || fieldOfView >= 180 {
		return DEFAULT_VIEW_ANGLE
	}
	return uint32(math.Round(fieldOfView))
}

// boneInterpolation は全成分に同じ補間を設定する。
func boneInterpolation(curve *motion.Curve) BoneInterpolation {
	interpolation := curveInterpolation(curve)
	return BoneInterpolation{X: interpolation, Y: interpolation, Z: interpolation, R: interpolation}
}

// curveInterpolation は制御点を0..127へ量子化する。未指定は線形補間。
func curveInterpolation(curve *motion.Curve) Interpolation {
	if curve == nil {
		linear := motion.LinearCurve()
		curve = &linear
	}
	return Interpolation{
		X1: quantizeHandle(curve.X1),
		Y1: quantizeHandle(curve.Y1),
		X2: quantizeHandle(curve.X2),
		Y2: quantizeHandle(curve.Y2),
	}
}

// quantizeHandle は0..1の制御点を0..127へ丸める。
func quantizeHandle(value float64) uint8 {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	if value >= 1 {
		return 127
	}
	return uint8(math.Round(value * 127))
}
