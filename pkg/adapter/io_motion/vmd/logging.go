// 指示: miu200521358
package vmd

import "github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/logging"

// logVmdInfo はVMD処理のINFOログを出力する。
func logVmdInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logVmdDebug はVMD処理のデバッグログを出力する。
func logVmdDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logVmdWarn はVMD処理の警告ログを出力する。
func logVmdWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
