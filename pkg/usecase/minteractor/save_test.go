// 指示: miu200521358
package minteractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteOutputFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pmx")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	output, err := writeOutputFile(path, []byte("new data"))
	if err != nil {
		t.Fatalf("writeOutputFile failed: %v", err)
	}
	ok, err := VerifyOutputFile(output)
	if err != nil || !ok {
		t.Fatalf("digest mismatch: ok=%t err=%v", ok, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files should not remain: %v", entries)
	}
}

func TestWriteOutputFileFailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "b.vmd")
	if err := os.MkdirAll(filepath.Join(target, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := writeOutputFile(target, []byte("data")); err == nil {
		t.Fatalf("expected failure when target is a directory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "b.vmd" {
		t.Fatalf("temporary files should be removed: %v", entries)
	}
}

func TestOutputTransactionRollback(t *testing.T) {
	root := t.TempDir()
	texDir := filepath.Join(root, "out", "tex")
	tx := &outputTransaction{}
	if err := tx.mkdirAll(texDir); err != nil {
		t.Fatalf("mkdirAll failed: %v", err)
	}
	if _, err := tx.write(filepath.Join(texDir, "skin.png"), []byte("png")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	tx.rollback()
	if _, err := os.Stat(filepath.Join(root, "out")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("created dirs should be removed: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("existing root should be kept: %v", err)
	}
}
