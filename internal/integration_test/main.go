// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_asset"
	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_texture"
	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_mltd2mmd/pkg/infra/config"
	"github.com/miu200521358/mu_mltd2mmd/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
)

var targetConfigPaths = []string{
	"E:/MMD_E/mltd/configs/ss001_015siz_hmt001.yaml",
	// "E:/MMD_E/mltd/configs/ss001_015siz_brs001.yaml",
	// "E:/MMD_E/mltd/configs/ss013_010ami_hmt001.yaml",
}

// batchConfig はバッチ変換の実行設定を表す。
type batchConfig struct {
	OutputRoot  string
	ConfigPaths []string
	DryRun      bool
	FailFast    bool
}

// conversionEntry は1設定分の変換入力情報を表す。
type conversionEntry struct {
	Index      int
	ConfigPath string
	CaseName   string
	CaseDir    string
}

// conversionResult は1設定分の変換結果を表す。
type conversionResult struct {
	Entry            conversionEntry
	Status           string
	Duration         time.Duration
	Err              error
	Converted        *minteractor.ConvertResult
	ConvertStageInfo string
}

// convertProgressCollector は Convert の進捗イベントを収集する。
type convertProgressCollector struct {
	eventCounts map[minteractor.ConvertProgressEventType]int
	boneMax     int
	vertexMax   int
	textureMax  int
	byteTotal   int
}

// main は設定ファイル群を順に読み込み、PMX/VMDを一括変換する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括変換を実行し、終了コードを返す。
func run() int {
	batch, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries := buildConversionEntries(batch.OutputRoot, batch.ConfigPaths)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "変換対象の設定がありません")
		return 2
	}

	results := executeBatchConversion(batch, entries)
	printBatchSummary(results)

	hasFailed := false
	for _, result := range results {
		if result.Status == "failed" {
			hasFailed = true
			break
		}
	}
	if hasFailed {
		return 1
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "変換結果の出力ルートディレクトリ")
	configDir := flag.String("config-dir", "", "変換設定YAMLを一括で読み込むディレクトリ")
	dryRun := flag.Bool("dry-run", false, "実変換せず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	configPaths, err := resolveConfigPaths(*configDir, flag.Args())
	if err != nil {
		return batchConfig{}, err
	}
	return batchConfig{
		OutputRoot:  filepath.Clean(trimmedOutputRoot),
		ConfigPaths: configPaths,
		DryRun:      *dryRun,
		FailFast:    *failFast,
	}, nil
}

// resolveConfigPaths は設定ファイル一覧を解決する。指定が無い場合は既定一覧を使う。
func resolveConfigPaths(configDir string, args []string) ([]string, error) {
	paths := append([]string(nil), args...)
	if trimmed := strings.TrimSpace(configDir); trimmed != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(normalizeInputPath(trimmed), pattern))
			if err != nil {
				return nil, fmt.Errorf("設定ディレクトリの走査に失敗しました: %w", err)
			}
			paths = append(paths, matches...)
		}
		sort.Strings(paths)
	}
	if len(paths) == 0 {
		paths = append(paths, targetConfigPaths...)
	}
	return paths, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// buildConversionEntries は設定パス一覧から変換対象エントリを生成する。
func buildConversionEntries(outputRoot string, configPaths []string) []conversionEntry {
	entries := make([]conversionEntry, 0, len(configPaths))
	for i, rawPath := range configPaths {
		caseName := sanitizePathComponent(resolveModelName(rawPath))
		entries = append(entries, conversionEntry{
			Index:      i + 1,
			ConfigPath: normalizeInputPath(rawPath),
			CaseName:   caseName,
			CaseDir:    filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", i+1, caseName)),
		})
	}
	return entries
}

// executeBatchConversion は全設定の変換処理を順次実行する。
func executeBatchConversion(batch batchConfig, entries []conversionEntry) []conversionResult {
	results := make([]conversionResult, 0, len(entries))
	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 変換開始: case=%s config=%s\n", entry.Index, total, entry.CaseName, entry.ConfigPath)
		result := convertConfigEntry(batch, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 変換成功: case=%s output=%s elapsed=%s\n", entry.Index, total, entry.CaseName, entry.CaseDir, result.Duration.Round(time.Millisecond))
			printOutputDigests(entry, total, result.Converted)
			if strings.TrimSpace(result.ConvertStageInfo) != "" {
				fmt.Printf("[%d/%d] Convert進捗: %s\n", entry.Index, total, result.ConvertStageInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: case=%s config=%s output=%s\n", entry.Index, total, entry.CaseName, entry.ConfigPath, entry.CaseDir)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: case=%s config=%s reason=%v\n", entry.Index, total, entry.CaseName, entry.ConfigPath, result.Err)
		default:
			fmt.Printf("[%d/%d] 変換失敗: case=%s reason=%v\n", entry.Index, total, entry.CaseName, result.Err)
			if batch.FailFast {
				return results
			}
		}
	}
	return results
}

// convertConfigEntry は1設定分の変換を実行する。
func convertConfigEntry(batch batchConfig, entry conversionEntry) conversionResult {
	result := conversionResult{
		Entry:  entry,
		Status: "failed",
	}
	if _, err := os.Stat(entry.ConfigPath); err != nil {
		result.Status = "skipped_missing"
		result.Err = err
		return result
	}
	cfg, err := loadEntryConfig(entry)
	if err != nil {
		result.Err = err
		return result
	}
	if batch.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	usecase := minteractor.NewMltd2MmdUsecase(minteractor.Mltd2MmdUsecaseDeps{
		AssetReader:     io_asset.NewAssetRepository(cfg.AssetDir),
		TextureExporter: io_texture.NewTextureRepository(),
	})
	progressCollector := newConvertProgressCollector()
	request := cfg.ConvertRequest()
	request.ProgressReporter = progressCollector
	converted, err := usecase.Convert(request)
	if err != nil {
		result.Err = fmt.Errorf("Convertに失敗しました: %w", err)
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.Converted = converted
	result.ConvertStageInfo = progressCollector.Summary()
	return result
}

// loadEntryConfig は設定ファイルを読み込み、出力先をケースディレクトリへ固定する。
func loadEntryConfig(entry conversionEntry) (config.Config, error) {
	cfg, err := config.Load(entry.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("設定読み込みに失敗しました: %w", err)
	}
	cfg.Resolve(config.Flags{OutputDir: entry.CaseDir})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// printOutputDigests は出力ファイルのダイジェストを表示する。
func printOutputDigests(entry conversionEntry, total int, converted *minteractor.ConvertResult) {
	if converted == nil {
		return
	}
	for _, output := range []*minteractor.OutputFile{converted.Model, converted.Motion} {
		if output == nil {
			continue
		}
		fmt.Printf("[%d/%d] "+messages.LogOutputDigest+"\n", entry.Index, total, filepath.Base(output.Path), output.Digest)
		if ok, err := minteractor.VerifyOutputFile(output); err != nil || !ok {
			fmt.Printf("[%d/%d] 出力検証失敗: file=%s err=%v\n", entry.Index, total, output.Path, err)
		}
	}
}

// printBatchSummary は変換結果の集計を標準出力へ表示する。
func printBatchSummary(results []conversionResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ変換サマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
	)
	fmt.Printf(messages.LogBatchSummary+"\n", succeeded, failed)
}

// resolveModelName は入力パスから拡張子を除いたモデル名を返す。
func resolveModelName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return "model"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(path))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "model"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}

// newConvertProgressCollector は Convert 進捗収集器を生成する。
func newConvertProgressCollector() *convertProgressCollector {
	return &convertProgressCollector{
		eventCounts: map[minteractor.ConvertProgressEventType]int{},
	}
}

// ReportConvertProgress は Convert の進捗イベントを収集する。
func (collector *convertProgressCollector) ReportConvertProgress(event minteractor.ConvertProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.ConvertProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	if event.BoneCount > collector.boneMax {
		collector.boneMax = event.BoneCount
	}
	if event.VertexCount > collector.vertexMax {
		collector.vertexMax = event.VertexCount
	}
	if event.TextureCount > collector.textureMax {
		collector.textureMax = event.TextureCount
	}
	collector.byteTotal += event.ByteCount
}

// Summary は収集した Convert 進捗の要約文字列を返す。
func (collector *convertProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d bones=%d vertices=%d textures=%d bytes=%d stages=%s",
		len(collector.eventCounts),
		collector.boneMax,
		collector.vertexMax,
		collector.textureMax,
		collector.byteTotal,
		strings.Join(types, ","),
	)
}
