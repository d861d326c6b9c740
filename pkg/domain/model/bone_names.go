// 指示: miu200521358
package model

import (
	"fmt"
	"strings"
)

// BoneNameFitter は名前を reserved バイト分の余白を残した長さへ収める。
// 収めた名前と、切り詰めが起きたかを返す。
type BoneNameFitter func(name string, reserved int) (string, bool, error)

// BoneDisplayNames はボーンindex順の表示名と切り詰めたボーン数を返す。
// 表示名はパス末尾の要素名を fit で収めたもので、重複時は収めた後に "_1" などの連番を付与する。
// fit が nil の場合は長さを制限しない。
func BoneDisplayNames(hierarchy *BoneHierarchy, fit BoneNameFitter) ([]string, int, error) {
	if fit == nil {
		fit = func(name string, _ int) (string, bool, error) { return name, false, nil }
	}
	names := make([]string, hierarchy.Len())
	used := map[string]struct{}{}
	truncatedCount := 0
	for i, bone := range hierarchy.Bones {
		base := resolveBoneDisplayName(i, bone.LeafName())
		name, truncated, err := fit(base, 0)
		if err != nil {
			return nil, 0, err
		}
		for n := 1; ; n++ {
			if _, exists := used[name]; !exists {
				break
			}
			suffix := fmt.Sprintf("_%d", n)
			prefix, cut, err := fit(base, len(suffix))
			if err != nil {
				return nil, 0, err
			}
			name = prefix + suffix
			truncated = truncated || cut
		}
		used[name] = struct{}{}
		if truncated {
			truncatedCount++
		}
		names[i] = name
	}
	return names, truncatedCount, nil
}

// resolveBoneDisplayName は要素名からボーン表示名を決定する。
func resolveBoneDisplayName(index int, leaf string) string {
	trimmed := strings.TrimSpace(leaf)
	if trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("bone_%03d", index)
}
