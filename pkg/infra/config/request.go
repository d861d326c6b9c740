// 指示: miu200521358
package config

import "github.com/miu200521358/mu_mltd2mmd/pkg/usecase/minteractor"

// ConvertRequest は設定から変換要求を組み立てる。楽曲未指定時はモーションを要求しない。
func (c Config) ConvertRequest() minteractor.ConvertRequest {
	request := minteractor.ConvertRequest{
		ModelName:      c.AvatarName,
		BodyAssetName:  c.BodyAssetName(),
		HeadAssetName:  c.HeadAssetName(),
		AttachmentBone: c.AttachmentBone,
		TextureRoot:    c.TextureRoot,
		FrameRate:      c.FrameRate,
		Scale:          c.Scale,
		BaseDir:        c.AssetDir,
		OutputDir:      c.OutputDir,
		ModelFileName:  c.ModelFileName(),
	}
	if c.HasSong() {
		request.DanceAssetName = c.DanceAssetName()
		request.CameraAssetName = c.CameraAssetName()
		request.MotionFileName = c.MotionFileName()
	}
	return request
}
