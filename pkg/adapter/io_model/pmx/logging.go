// 指示: miu200521358
package pmx

import "github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/logging"

// logPmxInfo はPMX処理のINFOログを出力する。
func logPmxInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logPmxDebug はPMX処理のデバッグログを出力する。
func logPmxDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logPmxWarn はPMX処理の警告ログを出力する。
func logPmxWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
