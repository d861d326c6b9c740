// 指示: miu200521358
// Package messages はCLI表示とログに使うメッセージキーを提供する。
package messages

// メッセージキー一覧。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "mu_mltd2mmd -config convert.yaml [-avatar 名前] [-song 楽曲] [-position 番号] [-out 出力先]"

	MessageConfigLoadFailed = "設定読み込み失敗"
	MessageConvertFailed    = "変換失敗"
	MessageAvatarRequired   = "アバター名を指定してください"
	MessageSongSkipped      = "楽曲未指定のためモーション出力を省略します"

	LogConvertStart   = "変換開始: avatar=%s song=%s"
	LogModelSaved     = "PMX保存成功: %s (%s)"
	LogMotionSaved    = "VMD保存成功: %s (%s)"
	LogOutputDigest   = "出力ダイジェスト: file=%s xxh64=%016x"
	LogTextureSaved   = "テクスチャ出力: %d件"
	LogWarningSummary = "変換警告: id=%s count=%d"
	LogExtraMotion    = "未変換の付随モーション: %s"
	LogBatchSummary   = "一括変換完了: success=%d failed=%d"
)
