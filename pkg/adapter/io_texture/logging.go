// 指示: miu200521358
package io_texture

import "github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/logging"

// logTextureInfo はテクスチャ出力のINFOログを出力する。
func logTextureInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logTextureDebug はテクスチャ出力のデバッグログを出力する。
func logTextureDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logTextureWarn はテクスチャ出力の警告ログを出力する。
func logTextureWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
