// 指示: miu200521358
// Package config は変換設定ファイルの読込と既定値補完を扱う。
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

const (
	// DEFAULT_ASSET_DIR はダンプディレクトリの既定値。
	DEFAULT_ASSET_DIR = "Resources"
	// DEFAULT_ATTACHMENT_BONE は頭部を接続する胴体ボーンの既定パス。
	DEFAULT_ATTACHMENT_BONE = "MODEL_00/BASE/MUNE1/MUNE2/KUBI"
	// DEFAULT_TEXTURE_ROOT は材質が参照するテクスチャディレクトリの既定値。
	DEFAULT_TEXTURE_ROOT = "tex"
	// DEFAULT_FRAME_RATE は出力モーションの既定フレームレート。
	DEFAULT_FRAME_RATE = 30.0
	// DEFAULT_SCALE は長さ単位の既定倍率。
	DEFAULT_SCALE = 12.5
	// DEFAULT_SONG_POSITION は既定の立ち位置番号。
	DEFAULT_SONG_POSITION = 1
)

// Config は1件の変換設定を表す。
type Config struct {
	AssetDir       string  `yaml:"asset_dir"`
	AvatarName     string  `yaml:"avatar_name"`
	SongName       string  `yaml:"song_name"`
	SongPosition   int     `yaml:"song_position"`
	AttachmentBone string  `yaml:"attachment_bone"`
	TextureRoot    string  `yaml:"texture_root"`
	FrameRate      float64 `yaml:"frame_rate"`
	Scale          float64 `yaml:"scale"`
	OutputDir      string  `yaml:"output_dir"`
	LogLevel       string  `yaml:"log_level"`
}

// Flags は設定ファイルより優先するCLI指定値を表す。空値・0は未指定として扱う。
type Flags struct {
	AssetDir       string
	AvatarName     string
	SongName       string
	SongPosition   int
	AttachmentBone string
	TextureRoot    string
	FrameRate      float64
	Scale          float64
	OutputDir      string
	LogLevel       string
}

// Load はYAML設定ファイルを読み込む。未知のキーは解析エラーとする。
// 相対パスの asset_dir / output_dir は設定ファイルの位置を基準に解決する。
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, merr.NewIoFileNotFound(path, err)
		}
		return Config{}, merr.NewIoParseFailed("設定ファイルの読み取りに失敗しました: file=%s", err, path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, merr.NewIoParseFailed("設定ファイルの解析に失敗しました: file=%s", err, path)
	}
	baseDir := filepath.Dir(path)
	cfg.AssetDir = resolveRelative(baseDir, cfg.AssetDir)
	cfg.OutputDir = resolveRelative(baseDir, cfg.OutputDir)
	return cfg, nil
}

// Parse はYAMLバイト列から設定を復元する。
func Parse(data []byte) (Config, error) {
	cfg := Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if strings.TrimSpace(string(data)) == "" {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// Marshal は設定をYAMLへ変換する。
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Resolve はCLI指定値で上書きし、未設定項目へ既定値を補う。
func (c *Config) Resolve(flags Flags) {
	if flags.AssetDir != "" {
		c.AssetDir = flags.AssetDir
	}
	if flags.AvatarName != "" {
		c.AvatarName = flags.AvatarName
	}
	if flags.SongName != "" {
		c.SongName = flags.SongName
	}
	if flags.SongPosition > 0 {
		c.SongPosition = flags.SongPosition
	}
	if flags.AttachmentBone != "" {
		c.AttachmentBone = flags.AttachmentBone
	}
	if flags.TextureRoot != "" {
		c.TextureRoot = flags.TextureRoot
	}
	if flags.FrameRate > 0 {
		c.FrameRate = flags.FrameRate
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.AssetDir == "" {
		c.AssetDir = DEFAULT_ASSET_DIR
	}
	if c.SongPosition <= 0 {
		c.SongPosition = DEFAULT_SONG_POSITION
	}
	if c.AttachmentBone == "" {
		c.AttachmentBone = DEFAULT_ATTACHMENT_BONE
	}
	if c.TextureRoot == "" {
		c.TextureRoot = DEFAULT_TEXTURE_ROOT
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DEFAULT_FRAME_RATE
	}
	if c.Scale <= 0 {
		c.Scale = DEFAULT_SCALE
	}
}

// Validate は変換に必須の項目を検証する。
func (c Config) Validate() error {
	if strings.TrimSpace(c.AvatarName) == "" {
		return merr.NewMissingAsset("アバター名が未指定です", nil)
	}
	if strings.TrimSpace(c.AttachmentBone) == "" {
		return merr.NewMissingAsset("接続先ボーンが未指定です", nil)
	}
	return nil
}

// HasSong は楽曲指定があるか判定する。
func (c Config) HasSong() bool {
	return strings.TrimSpace(c.SongName) != ""
}

// BodyAssetName は胴体ダンプ名を返す。
func (c Config) BodyAssetName() string {
	return "cb_" + c.AvatarName
}

// HeadAssetName は頭部ダンプ名を返す。
func (c Config) HeadAssetName() string {
	return "ch_" + c.AvatarName
}

// DanceAssetName はダンスダンプ名を返す。
func (c Config) DanceAssetName() string {
	return fmt.Sprintf("dan_%s_%02d", c.SongName, c.SongPosition)
}

// CameraAssetName はカメラダンプ名を返す。
func (c Config) CameraAssetName() string {
	return "cam_" + c.SongName
}

// ModelFileName はPMX出力ファイル名を返す。
func (c Config) ModelFileName() string {
	return c.AvatarName + ".pmx"
}

// MotionFileName はVMD出力ファイル名を返す。
func (c Config) MotionFileName() string {
	return fmt.Sprintf("%s_%s.vmd", c.AvatarName, c.SongName)
}

func resolveRelative(baseDir string, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" || baseDir == "." {
		return path
	}
	return filepath.Join(baseDir, path)
}
