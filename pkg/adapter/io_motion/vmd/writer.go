// 指示: miu200521358
package vmd

import (
	"bytes"
	"io"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/motion"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// VmdWriter はダンス・カメラモーションをVMDで書き出す。
type VmdWriter struct {
	options  Options
	warnings model.ConversionWarnings
}

// NewVmdWriter はVmdWriterを生成する。
func NewVmdWriter(options Options) *VmdWriter {
	return &VmdWriter{options: options.withDefaults()}
}

// Warnings は直近の書き込みで発生した警告を返す。
func (v *VmdWriter) Warnings() model.ConversionWarnings {
	return v.warnings
}

// Write はモーションをVMDとして w へ書き出す。camera は nil を許容する。
func (v *VmdWriter) Write(w io.Writer, dance *motion.MotionAsset, camera *motion.MotionAsset, avatar *model.CompositeAvatar) error {
	vmdMotion, warnings, err := BuildVmdMotion(dance, camera, avatar, v.options)
	if err != nil {
		return err
	}
	v.warnings = warnings
	return WriteMotion(w, vmdMotion)
}

// Encode はモーションをVMDのバイト列へ変換する。
func (v *VmdWriter) Encode(dance *motion.MotionAsset, camera *motion.MotionAsset, avatar *model.CompositeAvatar) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Write(&buf, dance, camera, avatar); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMotion は構築済みVMDモーションを書き出す。表情・照明・影・IKは0件で出力する。
func WriteMotion(w io.Writer, vmdMotion *VmdMotion) error {
	if vmdMotion == nil {
		return merr.NewMissingAsset("VMDモーションが未設定です", nil)
	}
	bw := io_common.NewBinaryWriter(w)
	bw.WriteFixedBytes([]byte(VMD_SIGNATURE), vmdSignatureSize)
	if err := writeShiftJIS(bw, vmdMotion.ModelName, vmdModelNameSize); err != nil {
		return err
	}

	bw.WriteUint32(uint32(len(vmdMotion.BoneFrames)))
	for _, frame := range vmdMotion.BoneFrames {
		if err := writeShiftJIS(bw, frame.Name, vmdBoneNameSize); err != nil {
			return err
		}
		bw.WriteUint32(frame.Frame)
		bw.WriteVec3(frame.Position)
		bw.WriteVec4(frame.Rotation)
		interpolation := encodeBoneInterpolation(frame.Interpolation)
		bw.WriteBytes(interpolation[:])
	}

	// 表情
	bw.WriteUint32(0)

	bw.WriteUint32(uint32(len(vmdMotion.CameraFrames)))
	for _, frame := range vmdMotion.CameraFrames {
		bw.WriteUint32(frame.Frame)
		bw.WriteFloat32(frame.Distance)
		bw.WriteVec3(frame.Target)
		bw.WriteVec3(frame.Rotation)
		interpolation := encodeCameraInterpolation(frame.Interpolation)
		bw.WriteBytes(interpolation[:])
		bw.WriteUint32(frame.ViewAngle)
		bw.WriteUint8(frame.Perspective)
	}

	// 照明・セルフ影・IK
	bw.WriteUint32(0)
	bw.WriteUint32(0)
	bw.WriteUint32(0)

	if err := bw.Err(); err != nil {
		return merr.NewIoParseFailed("VMDの書き込みに失敗しました", err)
	}
	logVmdDebug("VMD書き込み完了: bytes=%d", bw.Written())
	return nil
}

// writeShiftJIS は固定長のShift-JIS文字列を書き込む。
func writeShiftJIS(bw *io_common.BinaryWriter, value string, size int) error {
	encoded, _, err := io_common.EncodeShiftJIS(value, size)
	if err != nil {
		return err
	}
	bw.WriteFixedBytes(encoded, size)
	return nil
}
