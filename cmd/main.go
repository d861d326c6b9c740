// 指示: miu200521358
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_asset"
	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_texture"
	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_mltd2mmd/pkg/infra/config"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/logging"
	"github.com/miu200521358/mu_mltd2mmd/pkg/usecase/minteractor"
)

// options はCLI引数を保持する。
type options struct {
	configPath string
	flags      config.Flags
	noProgress bool
}

// main は胴体・頭部リグの統合とPMX/VMD変換を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.SetDefaultLogger(logging.NewLogger(errOut, level))

	assets := io_asset.NewAssetRepository(cfg.AssetDir)
	assets.SetLoadProgressReporter(logAssetLoaded)
	uc := minteractor.NewMltd2MmdUsecase(minteractor.Mltd2MmdUsecaseDeps{
		AssetReader:     assets,
		TextureExporter: io_texture.NewTextureRepository(),
	})
	request := cfg.ConvertRequest()

	fmt.Fprintf(out, "[mu_mltd2mmd] "+messages.LogConvertStart+"\n", cfg.AvatarName, cfg.SongName)
	if !cfg.HasSong() {
		fmt.Fprintf(out, "[mu_mltd2mmd] %s\n", messages.MessageSongSkipped)
	}

	var bar *progressBarReporter
	if !opts.noProgress && isTerminal(errOut) {
		bar = newProgressBarReporter(errOut)
		request.ProgressReporter = bar
	}
	result, err := uc.Convert(request)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageConvertFailed, err)
	}
	printResult(out, result)
	return nil
}

// logAssetLoaded はダンプ読み込みをデバッグログへ出力する。
func logAssetLoaded(event io_asset.LoadProgressEvent) {
	logging.DefaultLogger().Debug(
		"ダンプ読み込み: kind=%s name=%s size=%s records=%d",
		event.Kind, event.Name, humanize.Bytes(uint64(event.ReadBytes)), event.Records,
	)
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_mltd2mmd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "%s: %s\n", messages.HelpUsageTitle, messages.HelpUsage)
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.configPath, "config", "", "設定YAMLファイルパス")
	fs.StringVar(&opts.flags.AssetDir, "asset-dir", "", "アセットダンプのディレクトリ")
	fs.StringVar(&opts.flags.AvatarName, "avatar", "", "アバター名 (例: ss001_015siz)")
	fs.StringVar(&opts.flags.SongName, "song", "", "楽曲名 (例: hmt001)")
	fs.IntVar(&opts.flags.SongPosition, "position", 0, "立ち位置番号")
	fs.StringVar(&opts.flags.AttachmentBone, "attachment", "", "頭部を接続する胴体ボーンのパス")
	fs.StringVar(&opts.flags.TextureRoot, "texture-root", "", "材質が参照するテクスチャディレクトリ")
	fs.Float64Var(&opts.flags.FrameRate, "fps", 0, "出力モーションのフレームレート")
	fs.Float64Var(&opts.flags.Scale, "scale", 0, "長さ単位の倍率")
	fs.StringVar(&opts.flags.OutputDir, "out", "", "出力ディレクトリ")
	fs.StringVar(&opts.flags.LogLevel, "log-level", "", "ログレベル (debug/info/warn/error)")
	fs.BoolVar(&opts.noProgress, "no-progress", false, "進捗バーを表示しない")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.configPath == "" && opts.flags.AvatarName == "" && fs.NArg() > 0 {
		if strings.HasSuffix(strings.ToLower(fs.Arg(0)), ".yaml") || strings.HasSuffix(strings.ToLower(fs.Arg(0)), ".yml") {
			opts.configPath = fs.Arg(0)
		} else {
			opts.flags.AvatarName = fs.Arg(0)
		}
	}
	if opts.configPath == "" && opts.flags.AvatarName == "" {
		return options{}, fmt.Errorf("%s (-avatar または -config)", messages.MessageAvatarRequired)
	}
	return opts, nil
}

// loadConfig は設定ファイルとCLI指定値から変換設定を解決する。
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Config{}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("%s: %w", messages.MessageConfigLoadFailed, err)
		}
		cfg = loaded
	}
	cfg.Resolve(opts.flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// printResult は変換結果を出力する。
func printResult(out io.Writer, result *minteractor.ConvertResult) {
	if result == nil {
		return
	}
	if result.Model != nil {
		fmt.Fprintf(out, "[mu_mltd2mmd] "+messages.LogModelSaved+"\n", result.Model.Path, humanize.Bytes(uint64(result.Model.Size)))
	}
	if result.Motion != nil {
		fmt.Fprintf(out, "[mu_mltd2mmd] "+messages.LogMotionSaved+"\n", result.Motion.Path, humanize.Bytes(uint64(result.Motion.Size)))
	}
	fmt.Fprintf(out, "[mu_mltd2mmd] "+messages.LogTextureSaved+"\n", len(result.Textures))

	ids := make([]string, 0, len(result.Warnings))
	for id := range result.Warnings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(out, "[mu_mltd2mmd] "+messages.LogWarningSummary+"\n", id, result.Warnings[id])
	}
	for _, name := range result.ExtraMotions {
		fmt.Fprintf(out, "[mu_mltd2mmd] "+messages.LogExtraMotion+"\n", name)
	}
}

// progressBarReporter は変換進捗を端末の進捗バーへ表示する。
type progressBarReporter struct {
	bar *pb.ProgressBar
}

// newProgressBarReporter は進捗バーを開始する。
func newProgressBarReporter(w io.Writer) *progressBarReporter {
	bar := pb.New(minteractor.CONVERT_PROGRESS_STEP_COUNT)
	bar.SetWriter(w)
	bar.Start()
	return &progressBarReporter{bar: bar}
}

// ReportConvertProgress は進捗イベントごとにバーを進める。
func (p *progressBarReporter) ReportConvertProgress(event minteractor.ConvertProgressEvent) {
	p.bar.Increment()
}

// finish は進捗バーを終了する。
func (p *progressBarReporter) finish() {
	p.bar.Finish()
}

// isTerminal は出力先が端末か判定する。
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
