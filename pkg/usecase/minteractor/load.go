// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/motion"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

const (
	danceMotionSuffix  = "dan"
	cameraMotionSuffix = "cam"
)

// convertInputs は読込済みの変換入力を表す。
type convertInputs struct {
	bodyAvatar   *model.Avatar
	headAvatar   *model.Avatar
	bodyBundle   *model.MeshBundle
	headBundle   *model.MeshBundle
	dance        *motion.MotionAsset
	camera       *motion.MotionAsset
	extraMotions []string
}

// loadInputs は変換に必要なアセットを読み込み、読込元と共有しない複製を返す。
func (uc *Mltd2MmdUsecase) loadInputs(request ConvertRequest) (*convertInputs, error) {
	if uc.assetReader == nil {
		return nil, fmt.Errorf("アセット読み込みリポジトリが設定されていません")
	}
	loaded := &convertInputs{}

	bodyAvatar, err := uc.assetReader.LoadAvatar(request.BodyAssetName)
	if err != nil {
		return nil, fmt.Errorf("胴体骨格の読み込みに失敗しました: %w", err)
	}
	headAvatar, err := uc.assetReader.LoadAvatar(request.HeadAssetName)
	if err != nil {
		return nil, fmt.Errorf("頭部骨格の読み込みに失敗しました: %w", err)
	}
	bodyBundle, err := uc.assetReader.LoadMeshBundle(request.BodyAssetName)
	if err != nil {
		return nil, fmt.Errorf("胴体メッシュの読み込みに失敗しました: %w", err)
	}
	headBundle, err := uc.assetReader.LoadMeshBundle(request.HeadAssetName)
	if err != nil {
		return nil, fmt.Errorf("頭部メッシュの読み込みに失敗しました: %w", err)
	}

	if request.DanceAssetName != "" {
		motions, err := uc.assetReader.LoadMotions(request.DanceAssetName)
		if err != nil {
			return nil, fmt.Errorf("ダンスモーションの読み込みに失敗しました: %w", err)
		}
		dance := motion.FindMotion(motions, request.DanceAssetName+"_"+danceMotionSuffix, danceMotionSuffix)
		if dance == nil {
			return nil, merr.NewMissingAsset("ダンスモーションがありません: file=%s", nil, request.DanceAssetName)
		}
		if err := deepcopy.Copy(&loaded.dance, dance); err != nil {
			return nil, merr.NewUnsupportedFormat("ダンスモーションの複製に失敗しました: %s", err, dance.Name)
		}
		for _, asset := range motions {
			if asset != nil && asset != dance {
				loaded.extraMotions = append(loaded.extraMotions, asset.Name)
			}
		}
	}

	if request.DanceAssetName != "" && request.CameraAssetName != "" {
		camera, err := uc.loadCamera(request.CameraAssetName)
		if err != nil {
			return nil, err
		}
		if camera != nil {
			if err := deepcopy.Copy(&loaded.camera, camera); err != nil {
				return nil, merr.NewUnsupportedFormat("カメラモーションの複製に失敗しました: %s", err, camera.Name)
			}
		}
	}

	if err := deepcopy.Copy(&loaded.bodyAvatar, bodyAvatar); err != nil {
		return nil, merr.NewUnsupportedFormat("胴体骨格の複製に失敗しました: %s", err, request.BodyAssetName)
	}
	if err := deepcopy.Copy(&loaded.headAvatar, headAvatar); err != nil {
		return nil, merr.NewUnsupportedFormat("頭部骨格の複製に失敗しました: %s", err, request.HeadAssetName)
	}
	if err := deepcopy.Copy(&loaded.bodyBundle, bodyBundle); err != nil {
		return nil, merr.NewUnsupportedFormat("胴体メッシュの複製に失敗しました: %s", err, request.BodyAssetName)
	}
	if err := deepcopy.Copy(&loaded.headBundle, headBundle); err != nil {
		return nil, merr.NewUnsupportedFormat("頭部メッシュの複製に失敗しました: %s", err, request.HeadAssetName)
	}
	return loaded, nil
}

// loadCamera はカメラモーションを読み込む。ダンプが無い場合は nil を返す。
func (uc *Mltd2MmdUsecase) loadCamera(name string) (*motion.MotionAsset, error) {
	motions, err := uc.assetReader.LoadMotions(name)
	if err != nil {
		if merr.IsMissingAsset(err) {
			logUsecaseInfo("カメラモーションが無いためカメラ無しで出力します: file=%s", name)
			return nil, nil
		}
		return nil, fmt.Errorf("カメラモーションの読み込みに失敗しました: %w", err)
	}
	camera := motion.FindMotion(motions, name+"_"+cameraMotionSuffix, cameraMotionSuffix)
	if camera == nil {
		logUsecaseInfo("カメラモーションが見つからないためカメラ無しで出力します: file=%s", name)
	}
	return camera, nil
}
