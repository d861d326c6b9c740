// 指示: miu200521358
package moutput

import (
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/motion"
)

// IAssetReader は外部リーダーが出力したアセットの読み込み契約を表す。
type IAssetReader interface {
	// LoadAvatar は骨格を読み込む。
	LoadAvatar(name string) (*model.Avatar, error)
	// LoadMeshBundle はメッシュ群とテクスチャ元画像一覧を読み込む。
	LoadMeshBundle(name string) (*model.MeshBundle, error)
	// LoadMotions はモーション群を読み込む。
	LoadMotions(name string) ([]*motion.MotionAsset, error)
}

// ITextureExporter はテクスチャ符号化契約を表す。書き込みは呼び出し側が行う。
type ITextureExporter interface {
	// EncodeTextures は参照名の元画像を読み込んで出力形式へ符号化し、警告と合わせて返す。
	EncodeTextures(sources []model.TextureSource, names []string) ([]model.EncodedTexture, model.ConversionWarnings, error)
	// EncodeToonTexture は既定トゥーン画像を符号化する。
	EncodeToonTexture() ([]byte, error)
}
