// 指示: miu200521358
package model

const (
	// WarningWeightsTruncated は頂点ウェイト切り捨て警告。
	WarningWeightsTruncated = "WarningWeightsTruncated"
	// WarningVertexWithoutInfluence はボーン影響の無い頂点をルートへ割り当てた警告。
	WarningVertexWithoutInfluence = "WarningVertexWithoutInfluence"
	// WarningMotionTrackUnmatched はモーションのトラックに対応するボーンが無い警告。
	WarningMotionTrackUnmatched = "WarningMotionTrackUnmatched"
	// WarningDuplicateFrameCollapsed は同一フレームのキーを統合した警告。
	WarningDuplicateFrameCollapsed = "WarningDuplicateFrameCollapsed"
	// WarningBoneNameTruncated はボーン名が固定長に収まらず切り詰めた警告。
	WarningBoneNameTruncated = "WarningBoneNameTruncated"
	// WarningTextureSourceMissing はテクスチャ元画像が見つからない警告。
	WarningTextureSourceMissing = "WarningTextureSourceMissing"
)

// ConversionWarnings は警告IDごとの発生件数を保持する。
type ConversionWarnings map[string]int

// Add は警告件数を加算する。
func (w ConversionWarnings) Add(id string, count int) {
	if w == nil || count <= 0 {
		return
	}
	w[id] += count
}

// Merge は別の警告集合を加算する。
func (w ConversionWarnings) Merge(other ConversionWarnings) {
	for id, count := range other {
		w.Add(id, count)
	}
}
