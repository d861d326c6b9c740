// 指示: miu200521358
package io_asset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/motion"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// AssetKind はダンプファイルの種別を表す。
type AssetKind string

const (
	// ASSET_KIND_AVATAR は骨格ダンプを表す。
	ASSET_KIND_AVATAR AssetKind = "avatar"
	// ASSET_KIND_MESH はメッシュダンプを表す。
	ASSET_KIND_MESH AssetKind = "mesh"
	// ASSET_KIND_MOTION はモーションダンプを表す。
	ASSET_KIND_MOTION AssetKind = "motion"
)

const (
	extJSON = ".json"
	extCBOR = ".cbor"
)

// LoadProgressEvent はダンプ読込の進捗を表す。
type LoadProgressEvent struct {
	Kind      AssetKind
	Name      string
	Path      string
	ReadBytes int
	Records   int
}

// AssetRepository はダンプディレクトリからアセットを読み込む。
type AssetRepository struct {
	dir                  string
	loadProgressReporter func(LoadProgressEvent)
}

// NewAssetRepository はAssetRepositoryを生成する。
func NewAssetRepository(dir string) *AssetRepository {
	return &AssetRepository{dir: dir}
}

// Dir はダンプディレクトリを返す。
func (r *AssetRepository) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *AssetRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad はダンプとして読める拡張子か判定する。
func (r *AssetRepository) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == extJSON || ext == extCBOR
}

// InferName はダンプファイルのパスからアセット名を推定する。
func (r *AssetRepository) InferName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, kind := range []AssetKind{ASSET_KIND_AVATAR, ASSET_KIND_MESH, ASSET_KIND_MOTION} {
		suffix := "." + string(kind)
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// ResolvePath はアセット名と種別からダンプファイルのパスを解決する。
// JSONを優先し、無ければCBORを探す。
func (r *AssetRepository) ResolvePath(name string, kind AssetKind) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", merr.NewMissingAsset("アセット名が未指定です: kind=%s", nil, kind)
	}
	for _, ext := range []string{extJSON, extCBOR} {
		path := filepath.Join(r.dir, name+"."+string(kind)+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	missing := filepath.Join(r.dir, name+"."+string(kind)+extJSON)
	return "", merr.NewMissingAsset(
		"アセットが見つかりません: kind=%s name=%s dir=%s", merr.NewIoFileNotFound(missing, nil), kind, name, r.dir,
	)
}

// Exists はアセットのダンプが存在するか判定する。
func (r *AssetRepository) Exists(name string, kind AssetKind) bool {
	_, err := r.ResolvePath(name, kind)
	return err == nil
}

// LoadAvatar は骨格ダンプを読み込む。
func (r *AssetRepository) LoadAvatar(name string) (*model.Avatar, error) {
	path, err := r.ResolvePath(name, ASSET_KIND_AVATAR)
	if err != nil {
		return nil, err
	}
	dump := avatarDump{}
	size, err := r.decodeFile(path, &dump)
	if err != nil {
		return nil, err
	}
	avatar, err := toAvatar(name, dump)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{Kind: ASSET_KIND_AVATAR, Name: name, Path: path, ReadBytes: size, Records: avatar.NodeCount()})
	logAssetInfo("骨格読込完了: name=%s nodes=%d", name, avatar.NodeCount())
	return avatar, nil
}

// LoadMeshBundle はメッシュダンプを読み込む。
func (r *AssetRepository) LoadMeshBundle(name string) (*model.MeshBundle, error) {
	path, err := r.ResolvePath(name, ASSET_KIND_MESH)
	if err != nil {
		return nil, err
	}
	dump := meshBundleDump{}
	size, err := r.decodeFile(path, &dump)
	if err != nil {
		return nil, err
	}
	bundle, err := toMeshBundle(name, filepath.Dir(path), dump)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{Kind: ASSET_KIND_MESH, Name: name, Path: path, ReadBytes: size, Records: len(bundle.Meshes)})
	logAssetInfo("メッシュ読込完了: name=%s meshes=%d textures=%d", name, len(bundle.Meshes), len(bundle.Textures))
	return bundle, nil
}

// LoadMeshes はメッシュダンプのメッシュ群のみを返す。
func (r *AssetRepository) LoadMeshes(name string) ([]*model.Mesh, error) {
	bundle, err := r.LoadMeshBundle(name)
	if err != nil {
		return nil, err
	}
	return bundle.Meshes, nil
}

// LoadMotions はモーションダンプを読み込む。
func (r *AssetRepository) LoadMotions(name string) ([]*motion.MotionAsset, error) {
	path, err := r.ResolvePath(name, ASSET_KIND_MOTION)
	if err != nil {
		return nil, err
	}
	dump := motionBundleDump{}
	size, err := r.decodeFile(path, &dump)
	if err != nil {
		return nil, err
	}
	motions := make([]*motion.MotionAsset, 0, len(dump.Motions))
	for i, record := range dump.Motions {
		asset, err := toMotionAsset(record)
		if err != nil {
			return nil, merr.NewUnsupportedFormat("モーションの変換に失敗しました: file=%s motion=%d", err, name, i)
		}
		motions = append(motions, asset)
	}
	r.reportLoadProgress(LoadProgressEvent{Kind: ASSET_KIND_MOTION, Name: name, Path: path, ReadBytes: size, Records: len(motions)})
	logAssetInfo("モーション読込完了: name=%s motions=%d", name, len(motions))
	return motions, nil
}

// decodeFile は拡張子に応じてJSONまたはCBORで復号する。
func (r *AssetRepository) decodeFile(path string, v any) (int, error) {
	if !r.CanLoad(path) {
		return 0, merr.NewIoExtInvalid(path, nil)
	}
	logAssetDebug("ダンプ読込開始: file=%s", filepath.Base(path))
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, merr.NewIoFileNotFound(path, err)
		}
		return 0, merr.NewIoParseFailed("ダンプファイルの読み取りに失敗しました: file=%s", err, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case extCBOR:
		err = cbor.Unmarshal(b, v)
	default:
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return 0, merr.NewIoParseFailed("ダンプファイルの解析に失敗しました: file=%s", err, path)
	}
	return len(b), nil
}

// reportLoadProgress は進捗コールバックへ通知する。
func (r *AssetRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}
