// 指示: miu200521358
package minteractor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
)

// outputTransaction は変換中に作成したディレクトリとファイルを記録し、失敗時に取り消す。
type outputTransaction struct {
	createdDirs  []string
	writtenFiles []string
}

// mkdirAll はディレクトリを作成し、新たに作成した階層を記録する。
func (tx *outputTransaction) mkdirAll(dir string) error {
	missing := []string{}
	for current := filepath.Clean(dir); ; {
		if _, err := os.Stat(current); err == nil {
			break
		}
		missing = append(missing, current)
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	if err := os.MkdirAll(dir, outputDirFileMode); err != nil {
		return err
	}
	// 親から順に記録し、取り消しは逆順に行う
	for i := len(missing) - 1; i >= 0; i-- {
		tx.createdDirs = append(tx.createdDirs, missing[i])
	}
	return nil
}

// write は出力ファイルを保存し、取り消し対象として記録する。
func (tx *outputTransaction) write(path string, data []byte) (*OutputFile, error) {
	output, err := writeOutputFile(path, data)
	if err != nil {
		return nil, err
	}
	tx.writtenFiles = append(tx.writtenFiles, path)
	return output, nil
}

// rollback は保存済みファイルと作成したディレクトリを逆順に削除する。
func (tx *outputTransaction) rollback() {
	for i := len(tx.writtenFiles) - 1; i >= 0; i-- {
		if err := os.Remove(tx.writtenFiles[i]); err != nil && !os.IsNotExist(err) {
			logUsecaseWarn("出力ファイルの削除に失敗しました: file=%s err=%v", tx.writtenFiles[i], err)
		}
	}
	for i := len(tx.createdDirs) - 1; i >= 0; i-- {
		if err := os.Remove(tx.createdDirs[i]); err != nil && !os.IsNotExist(err) {
			logUsecaseWarn("出力ディレクトリの削除に失敗しました: dir=%s err=%v", tx.createdDirs[i], err)
		}
	}
	if len(tx.writtenFiles) > 0 || len(tx.createdDirs) > 0 {
		logUsecaseInfo("出力取り消し: files=%d dirs=%d", len(tx.writtenFiles), len(tx.createdDirs))
	}
	tx.writtenFiles = nil
	tx.createdDirs = nil
}

// writeOutputFile は符号化済みバイト列を一時ファイルへ書いてから置き換え、サイズとダイジェストを返す。
func writeOutputFile(path string, data []byte) (*OutputFile, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	temp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("出力ファイルの保存に失敗しました: %s: %w", path, err)
	}
	tempPath := temp.Name()
	if err := writeTempFile(temp, data); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("出力ファイルの保存に失敗しました: %s: %w", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("出力ファイルの保存に失敗しました: %s: %w", path, err)
	}
	output := &OutputFile{Path: path, Size: len(data), Digest: xxhash.Sum64(data)}
	logUsecaseInfo(
		"出力保存: file=%s size=%s xxh64=%016x",
		filepath.Base(path), humanize.Bytes(uint64(len(data))), output.Digest,
	)
	return output, nil
}

// writeTempFile は一時ファイルへ書き込んで閉じる。
func writeTempFile(file *os.File, data []byte) error {
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Chmod(outputFileMode); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// VerifyOutputFile は保存済みファイルの内容が記録したダイジェストと一致するか検証する。
func VerifyOutputFile(output *OutputFile) (bool, error) {
	if output == nil {
		return false, fmt.Errorf("検証対象の出力がありません")
	}
	data, err := os.ReadFile(output.Path)
	if err != nil {
		return false, fmt.Errorf("出力ファイルの読み取りに失敗しました: %s: %w", output.Path, err)
	}
	return len(data) == output.Size && xxhash.Sum64(data) == output.Digest, nil
}
