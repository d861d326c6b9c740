// 指示: miu200521358
// Package io_common はPMX/VMDの入出力で共通に使うバイナリ・文字列処理を提供する。
package io_common

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// BinaryWriter はリトルエンディアンで書き込み、最初のエラーを保持する。
type BinaryWriter struct {
	w       io.Writer
	err     error
	written int64
	buf     [8]byte
}

// NewBinaryWriter はBinaryWriterを生成する。
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w}
}

// Err は最初に発生した書き込みエラーを返す。
func (b *BinaryWriter) Err() error {
	return b.err
}

// Written は書き込み済みバイト数を返す。
func (b *BinaryWriter) Written() int64 {
	return b.written
}

// WriteBytes はバイト列をそのまま書き込む。
func (b *BinaryWriter) WriteBytes(p []byte) {
	if b.err != nil {
		return
	}
	n, err := b.w.Write(p)
	b.written += int64(n)
	if err != nil {
		b.err = err
	}
}

// WriteFixedBytes は固定長領域へ書き込む。不足分は0で埋め、超過分は切り捨てる。
func (b *BinaryWriter) WriteFixedBytes(p []byte, size int) {
	fixed := make([]byte, size)
	copy(fixed, p)
	b.WriteBytes(fixed)
}

// WriteUint8 は1バイト符号無し整数を書き込む。
func (b *BinaryWriter) WriteUint8(v uint8) {
	b.buf[0] = v
	b.WriteBytes(b.buf[:1])
}

// WriteInt8 は1バイト符号付き整数を書き込む。
func (b *BinaryWriter) WriteInt8(v int8) {
	b.WriteUint8(uint8(v))
}

// WriteUint16 は2バイト符号無し整数を書き込む。
func (b *BinaryWriter) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(b.buf[:2], v)
	b.WriteBytes(b.buf[:2])
}

// WriteInt16 は2バイト符号付き整数を書き込む。
func (b *BinaryWriter) WriteInt16(v int16) {
	b.WriteUint16(uint16(v))
}

// WriteUint32 は4バイト符号無し整数を書き込む。
func (b *BinaryWriter) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(b.buf[:4], v)
	b.WriteBytes(b.buf[:4])
}

// WriteInt32 は4バイト符号付き整数を書き込む。
func (b *BinaryWriter) WriteInt32(v int32) {
	b.WriteUint32(uint32(v))
}

// WriteFloat32 は単精度浮動小数を書き込む。
func (b *BinaryWriter) WriteFloat32(v float32) {
	b.WriteUint32(math.Float32bits(v))
}

// WriteVec2 は2要素ベクトルを書き込む。
func (b *BinaryWriter) WriteVec2(v mgl32.Vec2) {
	b.WriteFloat32(v[0])
	b.WriteFloat32(v[1])
}

// WriteVec3 は3要素ベクトルを書き込む。
func (b *BinaryWriter) WriteVec3(v mgl32.Vec3) {
	b.WriteFloat32(v[0])
	b.WriteFloat32(v[1])
	b.WriteFloat32(v[2])
}

// WriteVec4 は4要素ベクトルを書き込む。
func (b *BinaryWriter) WriteVec4(v mgl32.Vec4) {
	b.WriteFloat32(v[0])
	b.WriteFloat32(v[1])
	b.WriteFloat32(v[2])
	b.WriteFloat32(v[3])
}

// WriteIndex はサイズ指定でindexを書き込む。unsigned は1/2バイト時に符号無しで扱う。
func (b *BinaryWriter) WriteIndex(size int, index int, unsigned bool) {
	if b.err != nil {
		return
	}
	switch size {
	case 1:
		if unsigned {
			b.WriteUint8(uint8(index))
		} else {
			b.WriteInt8(int8(index))
		}
	case 2:
		if unsigned {
			b.WriteUint16(uint16(index))
		} else {
			b.WriteInt16(int16(index))
		}
	case 4:
		b.WriteInt32(int32(index))
	default:
		b.err = merr.NewUnsupportedFormat("indexサイズが不正です: size=%d", nil, size)
	}
}

// BinaryReader はリトルエンディアンで読み込み、最初のエラーを保持する。
type BinaryReader struct {
	r   io.Reader
	err error
	buf [8]byte
}

// NewBinaryReader はBinaryReaderを生成する。
func NewBinaryReader(r io.Reader) *BinaryReader {
	return &BinaryReader{r: r}
}

// Err は最初に発生した読み込みエラーを返す。
func (b *BinaryReader) Err() error {
	return b.err
}

// ReadBytes は指定バイト数を読み込む。
func (b *BinaryReader) ReadBytes(size int) []byte {
	if b.err != nil {
		return nil
	}
	if size < 0 {
		b.err = merr.NewIoParseFailed("読み込みサイズが不正です: size=%d", nil, size)
		return nil
	}
	p := make([]byte, size)
	if _, err := io.ReadFull(b.r, p); err != nil {
		b.err = merr.NewIoParseFailed("バイナリの読み込みに失敗しました: size=%d", err, size)
		return nil
	}
	return p
}

// read は内部バッファへ指定バイト数を読み込む。
func (b *BinaryReader) read(size int) []byte {
	if b.err != nil {
		return b.buf[:size]
	}
	if _, err := io.ReadFull(b.r, b.buf[:size]); err != nil {
		b.err = merr.NewIoParseFailed("バイナリの読み込みに失敗しました: size=%d", err, size)
		clear(b.buf[:size])
	}
	return b.buf[:size]
}

// ReadUint8 は1バイト符号無し整数を読み込む。
func (b *BinaryReader) ReadUint8() uint8 {
	return b.read(1)[0]
}

// ReadInt8 は1バイト符号付き整数を読み込む。
func (b *BinaryReader) ReadInt8() int8 {
	return int8(b.ReadUint8())
}

// ReadUint16 は2バイト符号無し整数を読み込む。
func (b *BinaryReader) ReadUint16() uint16 {
	return binary.LittleEndian.Uint16(b.read(2))
}

// ReadInt16 は2バイト符号付き整数を読み込む。
func (b *BinaryReader) ReadInt16() int16 {
	return int16(b.ReadUint16())
}

// ReadUint32 は4バイト符号無し整数を読み込む。
func (b *BinaryReader) ReadUint32() uint32 {
	return binary.LittleEndian.Uint32(b.read(4))
}

// ReadInt32 は4バイト符号付き整数を読み込む。
func (b *BinaryReader) ReadInt32() int32 {
	return int32(b.ReadUint32())
}

// ReadFloat32 は単精度浮動小数を読み込む。
func (b *BinaryReader) ReadFloat32() float32 {
	return math.Float32frombits(b.ReadUint32())
}

// ReadVec2 は2要素ベクトルを読み込む。
func (b *BinaryReader) ReadVec2() mgl32.Vec2 {
	return mgl32.Vec2{b.ReadFloat32(), b.ReadFloat32()}
}

// ReadVec3 は3要素ベクトルを読み込む。
func (b *BinaryReader) ReadVec3() mgl32.Vec3 {
	return mgl32.Vec3{b.ReadFloat32(), b.ReadFloat32(), b.ReadFloat32()}
}

// ReadVec4 は4要素ベクトルを読み込む。
func (b *BinaryReader) ReadVec4() mgl32.Vec4 {
	return mgl32.Vec4{b.ReadFloat32(), b.ReadFloat32(), b.ReadFloat32(), b.ReadFloat32()}
}

// ReadIndex はサイズ指定でindexを読み込む。
func (b *BinaryReader) ReadIndex(size int, unsigned bool) int {
	switch size {
	case 1:
		if unsigned {
			return int(b.ReadUint8())
		}
		return int(b.ReadInt8())
	case 2:
		if unsigned {
			return int(b.ReadUint16())
		}
		return int(b.ReadInt16())
	case 4:
		return int(b.ReadInt32())
	}
	if b.err == nil {
		b.err = merr.NewUnsupportedFormat("indexサイズが不正です: size=%d", nil, size)
	}
	return 0
}

// ReadCount は件数フィールドを読み込み、負数ならエラーにする。
func (b *BinaryReader) ReadCount(label string) int {
	count := b.ReadInt32()
	if b.err == nil && count < 0 {
		b.err = merr.NewIoParseFailed("%s件数が不正です: count=%d", nil, label, count)
		return 0
	}
	return int(count)
}
