package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/compare"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/config"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/logger"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/report"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/server"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/store"
)

const usage = `Usage: baseball-analyzer [-config file] <command> [flags]

Commands:
  serve     start the HTTP API
  analyze   analyze one video and print the result as JSON
  compare   compare two videos and print the comparison as JSON
`

const barTemplate = `{{ string . "prefix" }} {{counters . "%s/%s" "%s/?"}} {{bar . }} {{percent . "%.03f%%" "?"}} {{etime . "%s elapsed"}} {{rtime . "%s remain" "%s total" "???"}}`

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "serve":
		err = runServe(cfg, args)
	case "analyze":
		err = runAnalyze(ctx, cfg, args)
	case "compare":
		err = runCompare(ctx, cfg, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("%s: %v", flag.Arg(0), err)
	}
}

// newAnalyzer builds an analyzer from cfg. st may be nil.
func newAnalyzer(cfg *config.Config, st *store.Store) (*analysis.Analyzer, error) {
	swing, err := cfg.Analysis.Swing.Motion()
	if err != nil {
		return nil, fmt.Errorf("analysis.swing: %w", err)
	}
	pitch, err := cfg.Analysis.Pitch.Motion()
	if err != nil {
		return nil, fmt.Errorf("analysis.pitch: %w", err)
	}
	return analysis.New(analysis.Config{
		Store:        st,
		Detector:     cfg.DetectorConfig(),
		Swing:        swing,
		Pitch:        pitch,
		ImageScaling: cfg.Analysis.ImageScaling,
	}), nil
}

// openStore opens the history cache, creating its directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath := cfg.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return store.New(dbPath)
}

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	fs.Parse(args)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := newAnalyzer(cfg, st)
	if err != nil {
		return err
	}
	lm, err := compare.ParseLandmark(cfg.Analysis.SyncLandmark)
	if err != nil {
		return fmt.Errorf("analysis.sync_landmark: %w", err)
	}

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		logger.Info("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Analyzer:  a,
		Landmark:  lm,
	})

	logger.Info("Starting server on %s", *addr)
	return srv.ListenAndServe(*addr)
}

func runAnalyze(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	kindFlag := fs.String("kind", "batting", "motion kind: batting or pitching")
	armFlag := fs.String("arm", cfg.Analysis.ThrowingArm, "throwing arm: right or left")
	save := fs.Bool("save", false, "cache the joint history in the store")
	chartPath := fs.String("chart", "", "write the speed chart PNG to this file")
	pdfPath := fs.String("pdf", "", "write the evaluation report PDF to this file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("expected one video path")
	}
	path := fs.Arg(0)

	kind, err := analysis.ParseKind(*kindFlag)
	if err != nil {
		return err
	}
	arm, err := kinematics.ParseArm(*armFlag)
	if err != nil {
		return err
	}

	var st *store.Store
	if *save {
		if st, err = openStore(cfg); err != nil {
			return err
		}
		defer st.Close()
	}
	a, err := newAnalyzer(cfg, st)
	if err != nil {
		return err
	}

	bar := newBar(filepath.Base(path))
	bar.Start()
	var result *analysis.Result
	if *save {
		var v *store.Video
		v, err = a.Register(ctx, path, "", kind, arm, progress(bar))
		if err == nil {
			logger.Info("cached %s as %s (%d frames with a person)", path, v.ID, v.Detected)
			result, err = a.AnalyzeStored(v.ID)
		}
	} else {
		result, err = a.AnalyzeFile(ctx, path, kind, arm, progress(bar))
	}
	bar.Finish()
	if err != nil {
		return err
	}

	if err := writeReports(result, *chartPath, *pdfPath); err != nil {
		return err
	}
	return printJSON(result)
}

func runCompare(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	kindFlag := fs.String("kind", "batting", "motion kind: batting or pitching")
	armFlag := fs.String("arm", cfg.Analysis.ThrowingArm, "throwing arm: right or left")
	landmarkFlag := fs.String("landmark", cfg.Analysis.SyncLandmark, "sync landmark: start, peak or end")
	offset := fs.Int("offset", 0, "manual frame offset applied to the second video")
	chartPath := fs.String("chart", "", "write the comparison chart PNG to this file")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("expected two video paths")
	}
	pathA, pathB := fs.Arg(0), fs.Arg(1)

	kind, err := analysis.ParseKind(*kindFlag)
	if err != nil {
		return err
	}
	arm, err := kinematics.ParseArm(*armFlag)
	if err != nil {
		return err
	}
	lm, err := compare.ParseLandmark(*landmarkFlag)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cfg, nil)
	if err != nil {
		return err
	}

	barA, barB := newBar("A "+filepath.Base(pathA)), newBar("B "+filepath.Base(pathB))
	pool, err := pb.StartPool(barA, barB)
	if err != nil {
		return fmt.Errorf("start progress bars: %w", err)
	}
	c, err := a.CompareFiles(ctx, pathA, pathB, kind, arm, lm, *offset, progress(barA), progress(barB))
	barA.Finish()
	barB.Finish()
	if perr := pool.Stop(); perr != nil {
		logger.Debug("stop progress bars: %v", perr)
	}
	if err != nil {
		return err
	}

	if *chartPath != "" {
		png, err := report.ComparisonChart(c)
		if err != nil {
			return fmt.Errorf("comparison chart: %w", err)
		}
		if err := os.WriteFile(*chartPath, png, 0644); err != nil {
			return err
		}
	}
	return printJSON(c)
}

func newBar(prefix string) *pb.ProgressBar {
	bar := pb.ProgressBarTemplate(barTemplate).New(0)
	bar.Set("prefix", prefix)
	bar.SetWriter(os.Stderr)
	return bar
}

// progress adapts a progress bar to an extraction callback. The frame count
// reported by the container is only an estimate, so the total is refreshed
// on every call.
func progress(bar *pb.ProgressBar) analysis.ProgressFunc {
	return func(done, total int) {
		if total > 0 {
			bar.SetTotal(int64(total))
		}
		bar.SetCurrent(int64(done))
	}
}

// writeReports writes the optional chart and PDF outputs.
func writeReports(r *analysis.Result, chartPath, pdfPath string) error {
	if chartPath == "" && pdfPath == "" {
		return nil
	}

	chart, err := report.SpeedChart(r)
	if err != nil {
		logger.Warn("speed chart: %v", err)
		chart = nil
	}
	if chartPath != "" && chart != nil {
		if err := os.WriteFile(chartPath, chart, 0644); err != nil {
			return err
		}
	}

	if pdfPath != "" {
		f, err := os.Create(pdfPath)
		if err != nil {
			return err
		}
		if err := report.EvaluationPDF(f, r, chart); err != nil {
			f.Close()
			return fmt.Errorf("evaluation report: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web" and "../../web".
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
