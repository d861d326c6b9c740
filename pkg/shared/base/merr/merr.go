// 指示: miu200521358
// Package merr は変換処理で共通に使うエラー種別とエラーIDを提供する。
package merr

import (
	"errors"
	"fmt"
)

// ErrorKind はエラー種別を表す。
type ErrorKind string

const (
	// KindMissingAsset は必要なアセットが存在しない。
	KindMissingAsset ErrorKind = "MissingAsset"
	// KindBoneNotFound はボーンが解決できない。
	KindBoneNotFound ErrorKind = "BoneNotFound"
	// KindIndexConsistency はインデックス整合性が崩れている。
	KindIndexConsistency ErrorKind = "IndexConsistency"
	// KindUnsupportedFormat は構造が出力形式の想定と一致しない。
	KindUnsupportedFormat ErrorKind = "UnsupportedFormat"
	// KindIo はファイル入出力に失敗した。
	KindIo ErrorKind = "Io"
)

// エラーID一覧。
const (
	ErrorIDMissingAsset           = "11001"
	ErrorIDBoneNotFound           = "12001"
	ErrorIDAttachmentBoneNotFound = "12002"
	ErrorIDIndexConsistency       = "13001"
	ErrorIDRemapLookupFailed      = "13002"
	ErrorIDUnsupportedFormat      = "14001"
	ErrorIDIoFileNotFound         = "14101"
	ErrorIDIoExtInvalid           = "14102"
	ErrorIDIoParseFailed          = "14103"
)

// MError はID付きエラーを表す。
type MError struct {
	ID      string
	Kind    ErrorKind
	Message string
	Err     error
}

// Error はエラーメッセージを返す。
func (e *MError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.ID, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.ID, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *MError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newError はID付きエラーを生成する。
func newError(id string, kind ErrorKind, format string, cause error, params ...any) *MError {
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	return &MError{ID: id, Kind: kind, Message: message, Err: cause}
}

// NewMissingAsset はアセット欠落エラーを生成する。
func NewMissingAsset(format string, cause error, params ...any) error {
	return newError(ErrorIDMissingAsset, KindMissingAsset, format, cause, params...)
}

// NewBoneNotFound はボーン未解決エラーを生成する。
func NewBoneNotFound(format string, cause error, params ...any) error {
	return newError(ErrorIDBoneNotFound, KindBoneNotFound, format, cause, params...)
}

// NewAttachmentBoneNotFound は接続先ボーン未解決エラーを生成する。
func NewAttachmentBoneNotFound(format string, cause error, params ...any) error {
	return newError(ErrorIDAttachmentBoneNotFound, KindBoneNotFound, format, cause, params...)
}

// NewIndexConsistency はインデックス不整合エラーを生成する。
func NewIndexConsistency(format string, cause error, params ...any) error {
	return newError(ErrorIDIndexConsistency, KindIndexConsistency, format, cause, params...)
}

// NewRemapLookupFailed はリマップ表の参照失敗エラーを生成する。
func NewRemapLookupFailed(format string, cause error, params ...any) error {
	return newError(ErrorIDRemapLookupFailed, KindIndexConsistency, format, cause, params...)
}

// NewUnsupportedFormat は形式未対応エラーを生成する。
func NewUnsupportedFormat(format string, cause error, params ...any) error {
	return newError(ErrorIDUnsupportedFormat, KindUnsupportedFormat, format, cause, params...)
}

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return newError(ErrorIDIoFileNotFound, KindIo, "ファイルが見つかりません: %s", cause, path)
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return newError(ErrorIDIoExtInvalid, KindIo, "拡張子が不正です: %s", cause, path)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) error {
	return newError(ErrorIDIoParseFailed, KindIo, format, cause, params...)
}

// ExtractErrorID はエラー連鎖から最初に見つかったエラーIDを返す。
func ExtractErrorID(err error) string {
	var mErr *MError
	if errors.As(err, &mErr) {
		return mErr.ID
	}
	return ""
}

// ExtractErrorKind はエラー連鎖から最初に見つかったエラー種別を返す。
func ExtractErrorKind(err error) ErrorKind {
	var mErr *MError
	if errors.As(err, &mErr) {
		return mErr.Kind
	}
	return ""
}

// IsMissingAsset はアセット欠落エラーか判定する。
func IsMissingAsset(err error) bool {
	return ExtractErrorKind(err) == KindMissingAsset
}

// IsBoneNotFound はボーン未解決エラーか判定する。
func IsBoneNotFound(err error) bool {
	return ExtractErrorKind(err) == KindBoneNotFound
}

// IsIndexConsistency はインデックス不整合エラーか判定する。
func IsIndexConsistency(err error) bool {
	return ExtractErrorKind(err) == KindIndexConsistency
}

// IsUnsupportedFormat は形式未対応エラーか判定する。
func IsUnsupportedFormat(err error) bool {
	return ExtractErrorKind(err) == KindUnsupportedFormat
}
