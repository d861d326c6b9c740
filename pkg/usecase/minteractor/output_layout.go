// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
)

const (
	defaultTextureDirName = "tex"
	outputDirFileMode     = 0o755
	outputFileMode        = 0o644
)

var nowFunc = time.Now

// BuildDefaultOutputDir は基準ディレクトリとモデル名から既定の出力ディレクトリを生成する。
func BuildDefaultOutputDir(baseDir string, modelName string) string {
	return buildDefaultOutputDirAt(baseDir, modelName, nowFunc())
}

// buildDefaultOutputDirAt は指定時刻で既定の出力ディレクトリを生成する。
func buildDefaultOutputDirAt(baseDir string, modelName string, now time.Time) string {
	base := strings.TrimSpace(modelName)
	if base == "" {
		return ""
	}
	stamp := now.Format("20060102150405")
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s", base, stamp))
}

// resolveOutputDir は出力ディレクトリを解決する。未指定時は時刻付きの既定ディレクトリ。
func resolveOutputDir(request ConvertRequest) (string, error) {
	resolved := strings.TrimSpace(request.OutputDir)
	if resolved == "" {
		resolved = BuildDefaultOutputDir(request.BaseDir, request.ModelName)
	}
	if resolved == "" {
		return "", fmt.Errorf("出力ディレクトリが未指定です")
	}
	return resolved, nil
}

// textureDirPath は材質が参照するテクスチャルートに対応する出力ディレクトリを返す。
func textureDirPath(outputDir string, textureRoot string) string {
	root := strings.Trim(strings.ReplaceAll(strings.TrimSpace(textureRoot), `\`, "/"), "/")
	if root == "" {
		return outputDir
	}
	return filepath.Join(outputDir, filepath.FromSlash(root))
}

// createOutputDirs は出力ディレクトリとテクスチャディレクトリを作成し、作成した階層を記録する。
func createOutputDirs(tx *outputTransaction, outputDir string, textureRoot string) (string, error) {
	if err := tx.mkdirAll(outputDir); err != nil {
		return "", fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	texDir := textureDirPath(outputDir, textureRoot)
	if err := tx.mkdirAll(texDir); err != nil {
		return "", fmt.Errorf("テクスチャディレクトリの作成に失敗しました: %w", err)
	}
	return texDir, nil
}

// collectTextureNames は材質が参照するテクスチャ名を重複なしで出現順に返す。
func collectTextureNames(mesh *model.CompositeMesh) []string {
	if mesh == nil {
		return nil
	}
	names := make([]string, 0, len(mesh.Submeshes))
	seen := map[string]struct{}{}
	for _, submesh := range mesh.Submeshes {
		name := pmx.SubmeshTextureName(submesh.Submesh)
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// collectTextureSources はメッシュ群の元画像一覧を連結する。
func collectTextureSources(bundles ...*model.MeshBundle) []model.TextureSource {
	sources := []model.TextureSource{}
	for _, bundle := range bundles {
		if bundle == nil {
			continue
		}
		sources = append(sources, bundle.Textures...)
	}
	return sources
}
