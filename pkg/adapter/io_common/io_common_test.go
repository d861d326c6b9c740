// 指示: miu200521358
package io_common

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBinaryWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	w.WriteUint8(200)
	w.WriteInt16(-2)
	w.WriteUint32(70000)
	w.WriteFloat32(1.5)
	w.WriteVec3(mgl32.Vec3{1, 2, 3})
	w.WriteIndex(1, -1, false)
	w.WriteIndex(1, 255, true)
	w.WriteIndex(2, 65535, true)
	w.WriteIndex(4, 123456, false)
	w.WriteFixedBytes([]byte("abc"), 5)
	if w.Err() != nil {
		t.Fatalf("write failed: %v", w.Err())
	}
	if w.Written() != int64(buf.Len()) {
		t.Fatalf("written mismatch: %d %d", w.Written(), buf.Len())
	}

	r := NewBinaryReader(bytes.NewReader(buf.Bytes()))
	if r.ReadUint8() != 200 || r.ReadInt16() != -2 || r.ReadUint32() != 70000 || r.ReadFloat32() != 1.5 {
		t.Fatalf("scalar mismatch")
	}
	if r.ReadVec3() != (mgl32.Vec3{1, 2, 3}) {
		t.Fatalf("vec mismatch")
	}
	if r.ReadIndex(1, false) != -1 || r.ReadIndex(1, true) != 255 || r.ReadIndex(2, true) != 65535 || r.ReadIndex(4, false) != 123456 {
		t.Fatalf("index mismatch")
	}
	if got := r.ReadBytes(5); !bytes.Equal(got, []byte{'a', 'b', 'c', 0, 0}) {
		t.Fatalf("fixed bytes mismatch: %v", got)
	}
	if r.Err() != nil {
		t.Fatalf("read failed: %v", r.Err())
	}
	r.ReadUint32()
	if r.Err() == nil {
		t.Fatalf("expected eof error")
	}
}

func TestBinaryWriterRejectsInvalidIndexSize(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	w.WriteIndex(3, 0, false)
	if w.Err() == nil {
		t.Fatalf("expected error")
	}
}

func TestUTF16LERoundTrip(t *testing.T) {
	encoded, err := EncodeUTF16LE("表情A")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(encoded) != 6 || encoded[4] != 'A' || encoded[5] != 0 {
		t.Fatalf("encoded mismatch: %v", encoded)
	}
	decoded, err := DecodeUTF16LE(encoded)
	if err != nil || decoded != "表情A" {
		t.Fatalf("decode mismatch: %s %v", decoded, err)
	}
}

func TestEncodeShiftJISTruncatesOnCharacterBoundary(t *testing.T) {
	// 全角8文字は16バイトになり、15バイト枠では7文字で切れる。
	encoded, truncated, err := EncodeShiftJIS("あいうえおかきく", 15)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !truncated || len(encoded) != 14 {
		t.Fatalf("truncation mismatch: truncated=%v len=%d", truncated, len(encoded))
	}
	decoded, err := DecodeShiftJIS(encoded)
	if err != nil || decoded != "あいうえおかき" {
		t.Fatalf("decode mismatch: %s %v", decoded, err)
	}

	encoded, truncated, err = EncodeShiftJIS("aあいうえおかき", 15)
	if err != nil || truncated || len(encoded) != 15 {
		t.Fatalf("mixed width mismatch: truncated=%v len=%d err=%v", truncated, len(encoded), err)
	}
}

func TestDecodeShiftJISStopsAtNul(t *testing.T) {
	decoded, err := DecodeShiftJIS([]byte{'K', 'U', 'B', 'I', 0, 'x', 'y'})
	if err != nil || decoded != "KUBI" {
		t.Fatalf("decode mismatch: %s %v", decoded, err)
	}
}

func TestFitShiftJISRoundTrips(t *testing.T) {
	fitted, truncated, err := FitShiftJIS("あいうえおかきく", 15)
	if err != nil || !truncated || fitted != "あいうえおかき" {
		t.Fatalf("fit mismatch: %s truncated=%v err=%v", fitted, truncated, err)
	}
	encoded, cut, err := EncodeShiftJIS(fitted, 15)
	if err != nil || cut || len(encoded) != 14 {
		t.Fatalf("re-encode mismatch: len=%d cut=%v err=%v", len(encoded), cut, err)
	}

	fitted, truncated, err = FitShiftJIS("KUBI", 15)
	if err != nil || truncated || fitted != "KUBI" {
		t.Fatalf("short name changed: %s truncated=%v err=%v", fitted, truncated, err)
	}
}
