// 指示: miu200521358
package vmd

import (
	"io"
	"strings"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

const (
	vmdFaceFrameSize   = vmdBoneNameSize + 4 + 4
	vmdLightFrameSize  = 4 + 12 + 12
	vmdShadowFrameSize = 4 + 1 + 4
)

// Read はVMDを読み込む。表情・照明・影は読み飛ばし、IKは件数のみ読む。
func Read(r io.Reader) (*VmdMotion, error) {
	br := io_common.NewBinaryReader(r)
	signature := br.ReadBytes(vmdSignatureSize)
	if err := br.Err(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(string(signature), VMD_SIGNATURE) {
		return nil, merr.NewIoParseFailed("VMDの識別子が不正です", nil)
	}

	vmdMotion := &VmdMotion{}
	modelName, err := io_common.DecodeShiftJIS(br.ReadBytes(vmdModelNameSize))
	if err != nil {
		return nil, err
	}
	vmdMotion.ModelName = modelName

	boneCount := int(br.ReadUint32())
	for i := 0; i < boneCount && br.Err() == nil; i++ {
		name, err := io_common.DecodeShiftJIS(br.ReadBytes(vmdBoneNameSize))
		if err != nil {
			return nil, err
		}
		frame := BoneFrame{
			Name:     name,
			Frame:    br.ReadUint32(),
			Position: br.ReadVec3(),
			Rotation: br.ReadVec4(),
		}
		interpolation := br.ReadBytes(vmdBoneInterpolationSize)
		if br.Err() != nil {
			break
		}
		frame.Interpolation = decodeBoneInterpolation(interpolation)
		vmdMotion.BoneFrames = append(vmdMotion.BoneFrames, frame)
	}

	vmdMotion.FaceCount = int(br.ReadUint32())
	br.ReadBytes(vmdMotion.FaceCount * vmdFaceFrameSize)

	cameraCount := int(br.ReadUint32())
	for i := 0; i < cameraCount && br.Err() == nil; i++ {
		frame := CameraFrame{
			Frame:    br.ReadUint32(),
			Distance: br.ReadFloat32(),
			Target:   br.ReadVec3(),
			Rotation: br.ReadVec3(),
		}
		interpolation := br.ReadBytes(vmdCameraInterpolationSize)
		if br.Err() != nil {
			break
		}
		frame.Interpolation = decodeCameraInterpolation(interpolation)
		frame.ViewAngle = br.ReadUint32()
		frame.Perspective = br.ReadUint8()
		vmdMotion.CameraFrames = append(vmdMotion.CameraFrames, frame)
	}

	vmdMotion.LightCount = int(br.ReadUint32())
	br.ReadBytes(vmdMotion.LightCount * vmdLightFrameSize)
	vmdMotion.ShadowCount = int(br.ReadUint32())
	br.ReadBytes(vmdMotion.ShadowCount * vmdShadowFrameSize)
	vmdMotion.IKCount = int(br.ReadUint32())

	if err := br.Err(); err != nil {
		return nil, err
	}
	return vmdMotion, nil
}
