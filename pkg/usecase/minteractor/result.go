// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"

// ConvertProgressEventType は変換処理の進捗イベント種別を表す。
type ConvertProgressEventType string

const (
	// ConvertProgressEventTypeInputValidated は入力検証完了イベントを表す。
	ConvertProgressEventTypeInputValidated ConvertProgressEventType = "input_validated"
	// ConvertProgressEventTypeAssetsLoaded はアセット読込完了イベントを表す。
	ConvertProgressEventTypeAssetsLoaded ConvertProgressEventType = "assets_loaded"
	// ConvertProgressEventTypeSkeletonMerged は骨格統合完了イベントを表す。
	ConvertProgressEventTypeSkeletonMerged ConvertProgressEventType = "skeleton_merged"
	// ConvertProgressEventTypeMeshMerged はメッシュ統合完了イベントを表す。
	ConvertProgressEventTypeMeshMerged ConvertProgressEventType = "mesh_merged"
	// ConvertProgressEventTypeModelEncoded はPMX符号化完了イベントを表す。
	ConvertProgressEventTypeModelEncoded ConvertProgressEventType = "model_encoded"
	// ConvertProgressEventTypeMotionEncoded はVMD符号化完了イベントを表す。
	ConvertProgressEventTypeMotionEncoded ConvertProgressEventType = "motion_encoded"
	// ConvertProgressEventTypeLayoutPrepared は出力レイアウト準備完了イベントを表す。
	ConvertProgressEventTypeLayoutPrepared ConvertProgressEventType = "layout_prepared"
	// ConvertProgressEventTypeFilesWritten はPMX/VMD保存完了イベントを表す。
	ConvertProgressEventTypeFilesWritten ConvertProgressEventType = "files_written"
	// ConvertProgressEventTypeTexturesExported はテクスチャ出力完了イベントを表す。
	ConvertProgressEventTypeTexturesExported ConvertProgressEventType = "textures_exported"
)

// CONVERT_PROGRESS_STEP_COUNT は1回の変換で通知される進捗イベント数。
const CONVERT_PROGRESS_STEP_COUNT = 9

// ConvertProgressEvent は変換処理の進捗イベントを表す。
type ConvertProgressEvent struct {
	Type         ConvertProgressEventType
	BoneCount    int
	VertexCount  int
	TextureCount int
	ByteCount    int
}

// IConvertProgressReporter は変換処理の進捗通知契約を表す。
type IConvertProgressReporter interface {
	// ReportConvertProgress は変換処理進捗を通知する。
	ReportConvertProgress(event ConvertProgressEvent)
}

// ConvertRequest は変換要求を表す。
// DanceAssetName が空の場合はモーションを出力しない。CameraAssetName が空または未検出の場合はカメラ無しで出力する。
type ConvertRequest struct {
	ModelName        string
	BodyAssetName    string
	HeadAssetName    string
	DanceAssetName   string
	CameraAssetName  string
	AttachmentBone   string
	TextureRoot      string
	FrameRate        float64
	Scale            float64
	BaseDir          string
	OutputDir        string
	ModelFileName    string
	MotionFileName   string
	ProgressReporter IConvertProgressReporter
}

// OutputFile は保存済み出力ファイルを表す。
type OutputFile struct {
	Path   string
	Size   int
	Digest uint64
}

// ConvertResult は変換結果を表す。
type ConvertResult struct {
	OutputDir      string
	Model          *OutputFile
	Motion         *OutputFile
	Textures       []string
	Warnings       model.ConversionWarnings
	BoneCount      int
	VertexCount    int
	DuplicateCount int
	ExtraMotions   []string
}
