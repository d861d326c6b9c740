// 指示: miu200521358
// Package io_texture はテクスチャ元画像の変換出力とトゥーン画像の生成を扱う。
package io_texture

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

const (
	// TOON_TEXTURE_SIZE はトゥーン画像の一辺の画素数。
	TOON_TEXTURE_SIZE = 32
	// toonShadeStartRow は影色で塗り始める行。
	toonShadeStartRow = 24
	jpegQuality       = 95
)

var toonShadeRGBA = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// EncodeResult はテクスチャ符号化結果を表す。
type EncodeResult struct {
	Textures []model.EncodedTexture
	Missing  []string
	Warnings model.ConversionWarnings
}

// EncodeTextures は参照名の付いた元画像を読み込み、参照名の拡張子に応じた形式でメモリ上に符号化する。
// 元画像が見つからない参照は警告として数え、処理は継続する。読み込めない元画像はエラーにする。
func EncodeTextures(sources []model.TextureSource, names []string) (*EncodeResult, error) {
	result := &EncodeResult{Warnings: model.ConversionWarnings{}}

	sourceByName := make(map[string]string, len(sources))
	for _, source := range sources {
		key := strings.ToLower(source.Name)
		if _, exists := sourceByName[key]; exists {
			continue
		}
		sourceByName[key] = source.SourcePath
	}

	encoded := map[string]struct{}{}
	for _, name := range names {
		fileName := sanitizeFileName(filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))))
		if fileName == "" {
			continue
		}
		key := strings.ToLower(fileName)
		if _, exists := encoded[key]; exists {
			continue
		}
		sourcePath, ok := sourceByName[strings.ToLower(name)]
		if !ok {
			sourcePath, ok = sourceByName[key]
		}
		if !ok || sourcePath == "" || !fileExists(sourcePath) {
			result.Missing = append(result.Missing, name)
			result.Warnings.Add(model.WarningTextureSourceMissing, 1)
			logTextureWarn("テクスチャ元画像が見つかりません: name=%s source=%s", name, sourcePath)
			continue
		}

		img, err := DecodeImageFile(sourcePath)
		if err != nil {
			return nil, err
		}
		data, err := EncodeImage(img, filepath.Ext(fileName))
		if err != nil {
			return nil, merr.NewIoParseFailed("テクスチャの符号化に失敗しました: name=%s", err, fileName)
		}
		encoded[key] = struct{}{}
		result.Textures = append(result.Textures, model.EncodedTexture{Name: fileName, Data: data})
		logTextureDebug("テクスチャ符号化: name=%s source=%s", fileName, sourcePath)
	}
	logTextureInfo("テクスチャ符号化完了: encoded=%d missing=%d", len(result.Textures), len(result.Missing))
	return result, nil
}

// DecodeImageFile は拡張子とシグネチャから形式を判定して画像を読み込む。
func DecodeImageFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, merr.NewIoFileNotFound(path, err)
		}
		return nil, merr.NewIoParseFailed("テクスチャ元画像の読み取りに失敗しました: file=%s", err, path)
	}
	ext := detectImageExt(data)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(path))
	}

	img, err := decodeImageBytes(data, ext)
	if err != nil {
		if merr.ExtractErrorID(err) != "" {
			return nil, err
		}
		return nil, merr.NewIoParseFailed("テクスチャ元画像の解析に失敗しました: file=%s", err, path)
	}
	return img, nil
}

// decodeImageBytes は拡張子指定で画像バイト列をデコードする。
func decodeImageBytes(data []byte, ext string) (image.Image, error) {
	reader := bytes.NewReader(data)
	switch ext {
	case ".png":
		return png.Decode(reader)
	case ".jpg", ".jpeg":
		return jpeg.Decode(reader)
	case ".gif":
		return gif.Decode(reader)
	case ".bmp":
		return bmp.Decode(reader)
	case ".webp":
		return webp.Decode(reader)
	case ".tga":
		return tga.Decode(reader)
	default:
		return nil, merr.NewIoExtInvalid(ext, nil)
	}
}

// EncodeImage は拡張子に応じた形式で画像を符号化する。未知の拡張子はPNGにする。
func EncodeImage(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(ext) {
	case ".bmp":
		err = bmp.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case ".webp":
		err = nativewebp.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewToonImage は上側が白、下側が灰色の2段トゥーン画像を生成する。
func NewToonImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, TOON_TEXTURE_SIZE, TOON_TEXTURE_SIZE))
	upperColor := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	for y := 0; y < TOON_TEXTURE_SIZE; y++ {
		lineColor := upperColor
		if y >= toonShadeStartRow {
			lineColor = toonShadeRGBA
		}
		for x := 0; x < TOON_TEXTURE_SIZE; x++ {
			img.SetRGBA(x, y, lineColor)
		}
	}
	return img
}

// EncodeToonTexture は既定トゥーン画像をBMPへ符号化する。
func EncodeToonTexture() ([]byte, error) {
	data, err := EncodeImage(NewToonImage(), ".bmp")
	if err != nil {
		return nil, merr.NewIoParseFailed("トゥーンの符号化に失敗しました", err)
	}
	return data, nil
}

// detectImageExt はシグネチャから画像拡張子を推定する。TGAはシグネチャが無いため判定しない。
func detectImageExt(data []byte) string {
	if len(data) >= 8 &&
		data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 &&
		data[4] == 0x0D && data[5] == 0x0A && data[6] == 0x1A && data[7] == 0x0A {
		return ".png"
	}
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return ".jpg"
	}
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return ".webp"
	}
	if len(data) >= 2 && data[0] == 'B' && data[1] == 'M' {
		return ".bmp"
	}
	if len(data) >= 6 && (string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a") {
		return ".gif"
	}
	return ""
}

// sanitizeFileName はファイル名に使えない文字を置換する。
func sanitizeFileName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return strings.Trim(strings.TrimSpace(replacer.Replace(trimmed)), ".")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
