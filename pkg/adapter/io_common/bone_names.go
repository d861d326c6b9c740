// 指示: miu200521358
package io_common

import "github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"

// BONE_NAME_BYTE_SIZE はVMDのボーン名領域のバイト数。PMXのボーン名もこの長さに揃える。
const BONE_NAME_BYTE_SIZE = 15

// BoneNames はPMXとVMDで共通に使うボーン名をボーンindex順に返す。
// 名前はShift-JISで BONE_NAME_BYTE_SIZE バイトに収まり、骨格内で一意になる。
func BoneNames(hierarchy *model.BoneHierarchy) ([]string, int, error) {
	return model.BoneDisplayNames(hierarchy, func(name string, reserved int) (string, bool, error) {
		return FitShiftJIS(name, BONE_NAME_BYTE_SIZE-reserved)
	})
}
