// 指示: miu200521358
package io_texture

import "github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"

// TextureRepository はテクスチャ符号化契約の実装を表す。
type TextureRepository struct{}

// NewTextureRepository はTextureRepositoryを生成する。
func NewTextureRepository() *TextureRepository {
	return &TextureRepository{}
}

// EncodeTextures は参照名の元画像を出力形式へ符号化する。
func (r *TextureRepository) EncodeTextures(
	sources []model.TextureSource,
	names []string,
) ([]model.EncodedTexture, model.ConversionWarnings, error) {
	result, err := EncodeTextures(sources, names)
	if err != nil {
		return nil, nil, err
	}
	return result.Textures, result.Warnings, nil
}

// EncodeToonTexture は既定トゥーン画像を符号化する。
func (r *TextureRepository) EncodeToonTexture() ([]byte, error) {
	return EncodeToonTexture()
}
