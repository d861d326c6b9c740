// 指示: miu200521358
package io_asset

import "github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/logging"

// logAssetInfo はダンプ読込のINFOログを出力する。
func logAssetInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logAssetDebug はダンプ読込のデバッグログを出力する。
func logAssetDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
