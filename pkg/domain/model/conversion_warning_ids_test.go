// 指示: miu200521358
package model

import "testing"

func TestConversionWarningIDsAreNonEmptyAndUnique(t *testing.T) {
	warningIDs := []string{
		WarningWeightsTruncated,
		WarningVertexWithoutInfluence,
		WarningMotionTrackUnmatched,
		WarningDuplicateFrameCollapsed,
		WarningBoneNameTruncated,
		WarningTextureSourceMissing,
	}

	seen := map[string]struct{}{}
	for _, warningID := range warningIDs {
		if warningID == "" {
			t.Fatalf("warning id should not be empty")
		}
		if _, exists := seen[warningID]; exists {
			t.Fatalf("warning id should be unique: %s", warningID)
		}
		seen[warningID] = struct{}{}
	}
}

func TestConversionWarningsMerge(t *testing.T) {
	warnings := ConversionWarnings{}
	warnings.Add(WarningWeightsTruncated, 2)
	warnings.Add(WarningWeightsTruncated, 0)
	warnings.Merge(ConversionWarnings{WarningWeightsTruncated: 1, WarningBoneNameTruncated: 3})

	if warnings[WarningWeightsTruncated] != 3 {
		t.Fatalf("truncated count mismatch: %d", warnings[WarningWeightsTruncated])
	}
	if warnings[WarningBoneNameTruncated] != 3 {
		t.Fatalf("name count mismatch: %d", warnings[WarningBoneNameTruncated])
	}
}
