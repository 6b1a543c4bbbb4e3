package commands

import (
	"bufio"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/eokit/stacforge/classify"
	"github.com/eokit/stacforge/config"
	"github.com/eokit/stacforge/container"
	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/pipeline"
	"github.com/eokit/stacforge/registry"
	"github.com/eokit/stacforge/scene"
)

// ExtractCmd processes scenes into STAC items.
var ExtractCmd = &cobra.Command{
	Use:   "extract [scenes...]",
	Short: "Extract metadata from products and render STAC items",
	Long: `Process one or more Earth observation products into STAC items.

Each scene is a local product path (directory, zip, tar or gzip archive)
or an s3:// URL. Items are written one file per scene using the output
pattern, or as newline-delimited JSON when --ndjson is given. Failed
scenes are appended to the failure log for later retry.`,
	RunE: runExtract,
}

func init() {
	ExtractCmd.Flags().String("from-file", "", "Read additional scene paths from a file, one per line")
	ExtractCmd.Flags().StringP("out", "o", "", "Output file pattern, {} is replaced with the item id")
	ExtractCmd.Flags().String("ndjson", "", "Write items as newline-delimited JSON to this file")
	ExtractCmd.Flags().Bool("strict", false, "Fail a scene on any rule failure")
	ExtractCmd.Flags().Bool("minify", false, "Write compact JSON")
	ExtractCmd.Flags().Bool("overwrite", false, "Overwrite existing output files")
	ExtractCmd.Flags().Int("workers", 0, "Maximum number of workers (default from configuration)")
	ExtractCmd.Flags().Int("concurrency", 0, "Concurrent scenes per worker (default from configuration)")
	ExtractCmd.Flags().Float64("timeout", 0, "Per-scene timeout in seconds (default from configuration)")
	ExtractCmd.Flags().String("template", "", "Force a rendering template instead of detecting one per scene")
	ExtractCmd.Flags().String("fail-log", "", "Failure log path, \"off\" disables (default from configuration)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	scenes, err := collectScenes(cmd, args)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		return errors.New("no scenes given")
	}

	reg, err := registry.Default()
	if err != nil {
		return err
	}
	var remote *container.S3
	for _, sc := range scenes {
		if sc.IsRemote() {
			if remote, err = container.NewS3(cfg.Storage); err != nil {
				return err
			}
			break
		}
	}

	sink, err := buildSink(cmd, cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	var failLog *pipeline.FailLog
	if cfg.Output.FailLog != "" && cfg.Output.FailLog != "off" {
		if failLog, err = pipeline.OpenFailLog(cfg.Output.FailLog); err != nil {
			return err
		}
		defer failLog.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := pipeline.New(reg, remote)
	opts := pipeline.Options{
		MaxWorkers:           cfg.Batch.MaxWorkers,
		ConcurrencyPerWorker: cfg.Batch.ConcurrencyPerWorker,
		TaskTimeout:          time.Duration(cfg.Batch.TaskTimeoutSeconds * float64(time.Second)),
		Strict:               cfg.Batch.Strict,
	}
	if v, _ := cmd.Flags().GetString("template"); v != "" {
		opts.Template = classify.TemplateID(v)
	}

	started := time.Now()
	var ok, failed, ruleFailures int
	for outcome := range processor.Process(ctx, scenes, opts) {
		if outcome.Err != nil {
			failed++
			if failLog != nil {
				if werr := failLog.Write(outcome.Scene, outcome.Err); werr != nil {
					return werr
				}
			}
			continue
		}
		ruleFailures += outcome.RuleFailures
		if err := sink.Write(outcome.Document); err != nil {
			return err
		}
		ok++
	}

	printSummary(ok, failed, ruleFailures, time.Since(started), cfg.Output.FailLog)
	if failed > 0 {
		return errors.Newf("%d of %d scenes failed", failed, len(scenes))
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Batch.MaxWorkers = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Batch.ConcurrencyPerWorker = v
	}
	if v, _ := cmd.Flags().GetFloat64("timeout"); v > 0 {
		cfg.Batch.TaskTimeoutSeconds = v
	}
	if v, _ := cmd.Flags().GetBool("strict"); v {
		cfg.Batch.Strict = true
	}
	if v, _ := cmd.Flags().GetBool("minify"); v {
		cfg.Output.Minify = true
	}
	if v, _ := cmd.Flags().GetBool("overwrite"); v {
		cfg.Output.Overwrite = true
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.Output.Pattern = v
	}
	if v, _ := cmd.Flags().GetString("fail-log"); v != "" {
		cfg.Output.FailLog = v
	}
}

func collectScenes(cmd *cobra.Command, args []string) ([]scene.Scene, error) {
	scenes := make([]scene.Scene, 0, len(args))
	for _, a := range args {
		scenes = append(scenes, scene.New(a))
	}
	path, _ := cmd.Flags().GetString("from-file")
	if path == "" {
		return scenes, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scene list %s", path)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		scenes = append(scenes, scene.New(line))
	}
	return scenes, scanner.Err()
}

func buildSink(cmd *cobra.Command, cfg *config.Config) (pipeline.Sink, error) {
	if path, _ := cmd.Flags().GetString("ndjson"); path != "" {
		return pipeline.NewNDJSONSink(path, cfg.Output.NDJSON), nil
	}
	pattern := cfg.Output.Pattern
	if pattern == "" {
		pattern = "{}.json"
	}
	return pipeline.NewFileSink(pattern, cfg.Output.Minify, cfg.Output.Overwrite)
}

func printSummary(ok, failed, ruleFailures int, elapsed time.Duration, failLogPath string) {
	pterm.DefaultSection.Println("Processing summary")
	data := pterm.TableData{
		{"Scenes processed", pterm.Sprintf("%d", ok)},
		{"Scenes failed", pterm.Sprintf("%d", failed)},
		{"Rule failures", pterm.Sprintf("%d", ruleFailures)},
		{"Elapsed", elapsed.Round(time.Millisecond).String()},
	}
	_ = pterm.DefaultTable.WithData(data).Render()
	if failed > 0 && failLogPath != "" {
		pterm.Warning.Printfln("Failed scenes recorded in %s", failLogPath)
	} else if failed == 0 && ok > 0 {
		pterm.Success.Println("All scenes processed")
	}
}
