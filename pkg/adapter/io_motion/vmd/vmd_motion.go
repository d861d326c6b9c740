// 指示: miu200521358
// Package vmd はダンス・カメラモーションをVMD形式で読み書きする。
package vmd

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_common"
)

const (
	// VMD_SIGNATURE はVMDファイルの識別子。
	VMD_SIGNATURE = "Vocaloid Motion Data 0002"
	// vmdSignatureSize は識別子領域のバイト数。
	vmdSignatureSize = 30
	// vmdModelNameSize はモデル名領域のバイト数。
	vmdModelNameSize = 20
	// vmdBoneNameSize はボーン名・表情名領域のバイト数。
	vmdBoneNameSize = io_common.BONE_NAME_BYTE_SIZE
	// vmdBoneInterpolationSize はボーン補間領域のバイト数。
	vmdBoneInterpolationSize = 64
	// vmdCameraInterpolationSize はカメラ補間領域のバイト数。
	vmdCameraInterpolationSize = 24
)

// Interpolation は0..127に量子化したベジェ制御点を表す。
type Interpolation struct {
	X1 uint8
	Y1 uint8
	X2 uint8
	Y2 uint8
}

// LINEAR_INTERPOLATION は線形補間の既定値。
var LINEAR_INTERPOLATION = Interpolation{X1: 20, Y1: 20, X2: 107, Y2: 107}

// BoneInterpolation はボーンの位置X/Y/Zと回転の補間を表す。
type BoneInterpolation struct {
	X Interpolation
	Y Interpolation
	Z Interpolation
	R Interpolation
}

// CameraInterpolation はカメラ各成分の補間を表す。
type CameraInterpolation struct {
	X         Interpolation
	Y         Interpolation
	Z         Interpolation
	R         Interpolation
	Distance  Interpolation
	ViewAngle Interpolation
}

// BoneFrame はボーンキーフレーム1件を表す。回転は (x,y,z,w)。
type BoneFrame struct {
	Name          string
	Frame         uint32
	Position      mgl32.Vec3
	Rotation      mgl32.Vec4
	Interpolation BoneInterpolation
}

// CameraFrame はカメラキーフレーム1件を表す。Rotation はラジアンのオイラー角。
type CameraFrame struct {
	Frame         uint32
	Distance      float32
	Target        mgl32.Vec3
	Rotation      mgl32.Vec3
	Interpolation CameraInterpolation
	ViewAngle     uint32
	Perspective   uint8
}

// VmdMotion はVMDファイル1件分の内容を表す。表情・照明・影・IKは件数のみ保持する。
type VmdMotion struct {
	ModelName    string
	BoneFrames   []BoneFrame
	CameraFrames []CameraFrame
	FaceCount    int
	LightCount   int
	ShadowCount  int
	IKCount      int
}

// BoneFramesByName はボーン名ごとのキーフレームを返す。
func (m *VmdMotion) BoneFramesByName() map[string][]BoneFrame {
	frames := map[string][]BoneFrame{}
	for _, frame := range m.BoneFrames {
		frames[frame.Name] = append(frames[frame.Name], frame)
	}
	return frames
}

// encodeBoneInterpolation はMMD標準の4行16バイト配置で補間を並べる。
// 2行目以降は1行目を1バイトずつ左へずらしたもの。
func encodeBoneInterpolation(interpolation BoneInterpolation) [vmdBoneInterpolationSize]byte {
	curves := [4]Interpolation{interpolation.X, interpolation.Y, interpolation.Z, interpolation.R}
	var row [16]byte
	for i, curve := range curves {
		row[i] = curve.X1
		row[4+i] = curve.Y1
		row[8+i] = curve.X2
		row[12+i] = curve.Y2
	}
	var out [vmdBoneInterpolationSize]byte
	for r := 0; r < 4; r++ {
		copy(out[r*16:r*16+16], row[r:])
	}
	return out
}

// decodeBoneInterpolation は1行目から補間を復元する。
func decodeBoneInterpolation(data []byte) BoneInterpolation {
	curves := [4]Interpolation{}
	for i := range curves {
		curves[i] = Interpolation{X1: data[i], Y1: data[4+i], X2: data[8+i], Y2: data[12+i]}
	}
	return BoneInterpolation{X: curves[0], Y: curves[1], Z: curves[2], R: curves[3]}
}

// encodeCameraInterpolation は成分ごとに x1,x2,y1,y2 の順で並べる。
func encodeCameraInterpolation(interpolation CameraInterpolation) [vmdCameraInterpolationSize]byte {
	curves := [6]Interpolation{
		interpolation.X, interpolation.Y, interpolation.Z,
		interpolation.R, interpolation.Distance, interpolation.ViewAngle,
	}
	var out [vmdCameraInterpolationSize]byte
	for i, curve := range curves {
		out[i*4] = curve.X1
		out[i*4+1] = curve.X2
		out[i*4+2] = curve.Y1
		out[i*4+3] = curve.Y2
	}
	return out
}

// decodeCameraInterpolation はカメラ補間を復元する。
func decodeCameraInterpolation(data []byte) CameraInterpolation {
	curves := [6]Interpolation{}
	for i := range curves {
		curves[i] = Interpolation{X1: data[i*4], X2: data[i*4+1], Y1: data[i*4+2], Y2: data[i*4+3]}
	}
	return CameraInterpolation{
		X: curves[0], Y: curves[1], Z: curves[2],
		R: curves[3], Distance: curves[4], ViewAngle: curves[5],
	}
}
