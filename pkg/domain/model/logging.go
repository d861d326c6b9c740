// 指示: miu200521358
package model

import "github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/logging"

// logModelInfo はモデル構築のINFOログを出力する。
func logModelInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logModelDebug はモデル構築のデバッグログを出力する。
func logModelDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logModelWarn はモデル構築の警告ログを出力する。
func logModelWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
