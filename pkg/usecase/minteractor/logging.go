// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/logging"

// logUsecaseInfo は変換処理のINFOログを出力する。
func logUsecaseInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logUsecaseWarn は変換処理の警告ログを出力する。
func logUsecaseWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
