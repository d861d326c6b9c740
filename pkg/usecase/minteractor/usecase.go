// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_mltd2mmd/pkg/usecase/port/moutput"

// Mltd2MmdUsecaseDeps は変換ユースケースの依存を表す。
type Mltd2MmdUsecaseDeps struct {
	AssetReader     moutput.IAssetReader
	TextureExporter moutput.ITextureExporter
}

// Mltd2MmdUsecase は胴体・頭部リグの統合からPMX/VMD出力までをまとめたユースケースを表す。
type Mltd2MmdUsecase struct {
	assetReader     moutput.IAssetReader
	textureExporter moutput.ITextureExporter
}

// NewMltd2MmdUsecase は変換ユースケースを生成する。
func NewMltd2MmdUsecase(deps Mltd2MmdUsecaseDeps) *Mltd2MmdUsecase {
	return &Mltd2MmdUsecase{
		assetReader:     deps.AssetReader,
		textureExporter: deps.TextureExporter,
	}
}
