// 指示: miu200521358
package io_common

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeUTF16LE は文字列をBOM無しUTF-16LEへ変換する。
func EncodeUTF16LE(value string) ([]byte, error) {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(value))
	if err != nil {
		return nil, merr.NewUnsupportedFormat("UTF-16LEへの変換に失敗しました: text=%s", err, value)
	}
	return encoded, nil
}

// DecodeUTF16LE はUTF-16LEのバイト列を文字列へ変換する。
func DecodeUTF16LE(value []byte) (string, error) {
	decoded, err := utf16le.NewDecoder().Bytes(value)
	if err != nil {
		return "", merr.NewIoParseFailed("UTF-16LEの解析に失敗しました", err)
	}
	return string(decoded), nil
}

// EncodeShiftJIS は文字列をShift-JISへ変換し、size バイト以内に文字境界で切り詰める。
// 表現できない文字は置換文字になる。切り詰めた場合は truncated が true になる。
func EncodeShiftJIS(value string, size int) (encoded []byte, truncated bool, err error) {
	encoder := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	full, err := encoder.Bytes([]byte(value))
	if err != nil {
		return nil, false, merr.NewUnsupportedFormat("Shift-JISへの変換に失敗しました: text=%s", err, value)
	}
	if len(full) <= size {
		return full, false, nil
	}
	return full[:shiftJISBoundary(full, size)], true, nil
}

// DecodeShiftJIS は固定長領域のShift-JISをNUL終端までで文字列へ変換する。
func DecodeShiftJIS(value []byte) (string, error) {
	if end := bytes.IndexByte(value, 0); end >= 0 {
		value = value[:end]
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(value)
	if err != nil {
		return "", merr.NewIoParseFailed("Shift-JISの解析に失敗しました", err)
	}
	return string(decoded), nil
}

// shiftJISBoundary は limit 以内で最後の文字境界の位置を返す。
func shiftJISBoundary(encoded []byte, limit int) int {
	pos := 0
	for pos < len(encoded) {
		width := 1
		if isShiftJISLeadByte(encoded[pos]) {
			width = 2
		}
		if pos+width > limit {
			break
		}
		pos += width
	}
	return pos
}

// isShiftJISLeadByte は2バイト文字の先行バイトか判定する。
func isShiftJISLeadByte(c byte) bool {
	return (c >= 0x81 && c <= 0x9F) || (c >= 0xE0 && c <= 0xFC)
}

// FitShiftJIS は Shift-JIS で size バイトに収まるよう文字境界で切り詰めた文字列を返す。
// 戻り値はShift-JISを往復させた文字列で、再度符号化すると同じバイト列になる。
func FitShiftJIS(value string, size int) (string, bool, error) {
	encoded, truncated, err := EncodeShiftJIS(value, size)
	if err != nil {
		return "", false, err
	}
	fitted, err := DecodeShiftJIS(encoded)
	if err != nil {
		return "", false, err
	}
	return fitted, truncated, nil
}
