// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_motion/vmd"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// Convert は胴体・頭部リグを統合し、PMXと(ダンス指定時は)VMDを保存する。
// PMX/VMD/テクスチャはメモリ上ですべて符号化してから保存し、保存途中の失敗は作成済みの出力を取り消す。
func (uc *Mltd2MmdUsecase) Convert(request ConvertRequest) (*ConvertResult, error) {
	if err := validateRequest(request); err != nil {
		return nil, err
	}
	reporter := request.ProgressReporter
	reportConvertProgress(reporter, ConvertProgressEvent{Type: ConvertProgressEventTypeInputValidated})

	inputs, err := uc.loadInputs(request)
	if err != nil {
		return nil, err
	}
	reportConvertProgress(reporter, ConvertProgressEvent{Type: ConvertProgressEventTypeAssetsLoaded})

	rig, err := mergeRig(inputs, request.AttachmentBone, reporter)
	if err != nil {
		return nil, err
	}

	warnings := model.ConversionWarnings{}
	pmxWriter := pmx.NewPmxWriter(pmx.Options{
		ModelName:   request.ModelName,
		EnglishName: request.ModelName,
		TextureRoot: request.TextureRoot,
		Scale:       request.Scale,
	})
	modelBytes, err := pmxWriter.Encode(rig.avatar, rig.mesh)
	if err != nil {
		return nil, fmt.Errorf("PMXの符号化に失敗しました: %w", err)
	}
	warnings.Merge(pmxWriter.Warnings())
	reportConvertProgress(reporter, ConvertProgressEvent{
		Type:        ConvertProgressEventTypeModelEncoded,
		BoneCount:   rig.avatar.BoneCount(),
		VertexCount: rig.mesh.VertexCount,
		ByteCount:   len(modelBytes),
	})

	var motionBytes []byte
	if inputs.dance != nil {
		vmdWriter := vmd.NewVmdWriter(vmd.Options{
			ModelName: request.ModelName,
			FrameRate: request.FrameRate,
			Scale:     request.Scale,
		})
		motionBytes, err = vmdWriter.Encode(inputs.dance, inputs.camera, rig.avatar)
		if err != nil {
			return nil, fmt.Errorf("VMDの符号化に失敗しました: %w", err)
		}
		warnings.Merge(vmdWriter.Warnings())
	}
	reportConvertProgress(reporter, ConvertProgressEvent{
		Type:      ConvertProgressEventTypeMotionEncoded,
		ByteCount: len(motionBytes),
	})

	var textures []model.EncodedTexture
	var toonBytes []byte
	if uc.textureExporter != nil {
		var textureWarnings model.ConversionWarnings
		textures, textureWarnings, err = uc.textureExporter.EncodeTextures(
			collectTextureSources(inputs.bodyBundle, inputs.headBundle),
			collectTextureNames(rig.mesh),
		)
		if err != nil {
			return nil, fmt.Errorf("テクスチャ出力に失敗しました: %w", err)
		}
		warnings.Merge(textureWarnings)
		toonBytes, err = uc.textureExporter.EncodeToonTexture()
		if err != nil {
			return nil, fmt.Errorf("トゥーン出力に失敗しました: %w", err)
		}
	}

	outputDir, err := resolveOutputDir(request)
	if err != nil {
		return nil, err
	}
	tx := &outputTransaction{}
	result, err := writeOutputs(tx, request, outputs{
		outputDir: outputDir,
		pmxData:   modelBytes,
		vmdData:   motionBytes,
		textures:  textures,
		toon:      toonBytes,
	}, reporter)
	if err != nil {
		tx.rollback()
		return nil, err
	}
	result.Warnings = warnings
	result.BoneCount = rig.avatar.BoneCount()
	result.VertexCount = rig.mesh.VertexCount
	result.DuplicateCount = rig.avatar.DuplicateCount
	result.ExtraMotions = inputs.extraMotions

	for id, count := range warnings {
		logUsecaseWarn("変換警告: id=%s count=%d", id, count)
	}
	return result, nil
}

// outputs は保存前の符号化済み出力一式を表す。
type outputs struct {
	outputDir string
	pmxData   []byte
	vmdData   []byte
	textures  []model.EncodedTexture
	toon      []byte
}

// writeOutputs は出力一式を保存する。失敗時の取り消しは呼び出し側が行う。
func writeOutputs(
	tx *outputTransaction,
	request ConvertRequest,
	out outputs,
	reporter IConvertProgressReporter,
) (*ConvertResult, error) {
	texDir, err := createOutputDirs(tx, out.outputDir, request.TextureRoot)
	if err != nil {
		return nil, err
	}
	reportConvertProgress(reporter, ConvertProgressEvent{Type: ConvertProgressEventTypeLayoutPrepared})

	result := &ConvertResult{OutputDir: out.outputDir}
	result.Model, err = tx.write(filepath.Join(out.outputDir, resolveModelFileName(request)), out.pmxData)
	if err != nil {
		return nil, err
	}
	if out.vmdData != nil {
		result.Motion, err = tx.write(filepath.Join(out.outputDir, resolveMotionFileName(request)), out.vmdData)
		if err != nil {
			return nil, err
		}
	}
	reportConvertProgress(reporter, ConvertProgressEvent{Type: ConvertProgressEventTypeFilesWritten})

	if out.toon != nil {
		for _, texture := range out.textures {
			path := filepath.Join(texDir, texture.Name)
			if _, err := tx.write(path, texture.Data); err != nil {
				return nil, fmt.Errorf("テクスチャ出力に失敗しました: %w", err)
			}
			result.Textures = append(result.Textures, path)
		}
		toonPath := filepath.Join(texDir, pmx.DEFAULT_TOON_TEXTURE_NAME)
		if _, err := tx.write(toonPath, out.toon); err != nil {
			return nil, fmt.Errorf("トゥーン出力に失敗しました: %w", err)
		}
		result.Textures = append(result.Textures, toonPath)
	}
	reportConvertProgress(reporter, ConvertProgressEvent{
		Type:         ConvertProgressEventTypeTexturesExported,
		TextureCount: len(result.Textures),
	})
	return result, nil
}

// validateRequest は変換要求の必須項目を検証する。
func validateRequest(request ConvertRequest) error {
	if strings.TrimSpace(request.ModelName) == "" {
		return merr.NewMissingAsset("モデル名が未指定です", nil)
	}
	if strings.TrimSpace(request.BodyAssetName) == "" {
		return merr.NewMissingAsset("胴体アセット名が未指定です", nil)
	}
	if strings.TrimSpace(request.HeadAssetName) == "" {
		return merr.NewMissingAsset("頭部アセット名が未指定です", nil)
	}
	if strings.TrimSpace(request.AttachmentBone) == "" {
		return merr.NewMissingAsset("接続先ボーンが未指定です", nil)
	}
	return nil
}

// resolveModelFileName はPMX出力ファイル名を解決する。
func resolveModelFileName(request ConvertRequest) string {
	if name := strings.TrimSpace(request.ModelFileName); name != "" {
		return name
	}
	return request.ModelName + ".pmx"
}

// resolveMotionFileName はVMD出力ファイル名を解決する。
func resolveMotionFileName(request ConvertRequest) string {
	if name := strings.TrimSpace(request.MotionFileName); name != "" {
		return name
	}
	return request.ModelName + ".vmd"
}
