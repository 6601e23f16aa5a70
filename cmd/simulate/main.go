// Command simulate runs a Monte Carlo J-curve simulation and prints the
// percentile bands, scenario schedules and performance metrics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"jcurve-lab/internal/config"
	"jcurve-lab/internal/logger"
	"jcurve-lab/internal/montecarlo"
	"jcurve-lab/internal/orchestrator"
	"jcurve-lab/internal/reporting"
	"jcurve-lab/internal/verification"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file (yaml, json or toml)")
	trials := flag.Int("trials", 0, "Number of simulations (overrides config)")
	seed := flag.Int64("seed", 0, "Random seed (overrides config)")
	workers := flag.Int("workers", 0, "Parallel workers (overrides config)")
	mode := flag.String("mode", "", "Schedule mode: linear, accumulating (overrides config)")
	outputDir := flag.String("output-dir", "", "Write CSV and markdown files to this directory")
	outputJSON := flag.Bool("json", false, "Output result as JSON")
	verify := flag.Bool("verify", false, "Replay every trial and check the run reproduces")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override config only when set
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trials":
			cfg.Simulation.NSimulations = *trials
		case "seed":
			cfg.Simulation.Seed = seed
		case "workers":
			cfg.Runtime.Workers = *workers
		case "mode":
			cfg.Schedule.Mode = *mode
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Runtime.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Runtime.Timeout)
		defer cancel()
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, cancelling run", zap.String("signal", sig.String()))
		cancel()
	}()

	params := cfg.Parameters()
	engine := montecarlo.NewEngine(montecarlo.Options{Workers: cfg.Runtime.Workers, Logger: log})
	orch := orchestrator.New(orchestrator.Options{
		Engine:      engine,
		Solver:      cfg.IRRSolver(),
		Logger:      log,
		Mode:        cfg.Mode(),
		Percentiles: cfg.Percentiles(),
	})

	result, err := orch.Run(ctx, params)
	if err != nil {
		log.Fatal("simulation failed", zap.Error(err))
	}

	if *verify {
		if err := verifyRun(ctx, engine, result, log); err != nil {
			log.Fatal("verification failed", zap.Error(err))
		}
	}

	report, err := reporting.NewGenerator(nil).Generate(result)
	if err != nil {
		log.Fatal("report failed", zap.Error(err))
	}

	if *outputDir != "" {
		if err := writeOutputs(*outputDir, result, report); err != nil {
			log.Fatal("write outputs failed", zap.Error(err))
		}
		log.Info("outputs written", zap.String("dir", *outputDir))
	}

	// Output result
	if *outputJSON {
		if err := writeJSON(os.Stdout, result); err != nil {
			log.Fatal("encode result", zap.Error(err))
		}
	} else {
		fmt.Print(reporting.RenderMarkdown(report))
	}
}

// verifyRun replays every trial from its seed and, for seeded runs, checks
// that a second run reproduces the first bit for bit.
func verifyRun(ctx context.Context, engine *montecarlo.Engine, result *orchestrator.Result, log *zap.Logger) error {
	replay, err := verification.NewReplayVerifier(result.Params).VerifyAll(ctx, result.Trials)
	if err != nil {
		return err
	}
	log.Info("replay verification",
		zap.Int("trials", replay.TotalTrials),
		zap.Int("matched", replay.MatchedTrials),
		zap.Int("divergent", replay.DivergentTrials),
	)
	if !replay.OK() {
		return fmt.Errorf("%d of %d trials diverged on replay", replay.DivergentTrials, replay.TotalTrials)
	}

	if !result.Params.Seeded() {
		log.Warn("run is unseeded, skipping reproducibility check")
		return nil
	}
	rerun, err := verification.VerifyReproducible(ctx, engine, result.Params)
	if err != nil {
		return err
	}
	if !rerun.OK() {
		return fmt.Errorf("%d of %d trials differ between seeded runs", rerun.DivergentTrials, rerun.TotalTrials)
	}
	log.Info("seeded run is reproducible", zap.Int("trials", rerun.TotalTrials))
	return nil
}

// writeJSON writes v as indented JSON. Nothing is written when encoding
// fails, e.g. on a NaN metric.
func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	output = append(output, '\n')
	_, err = w.Write(output)
	return err
}

func writeOutputs(dir string, result *orchestrator.Result, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"monte_carlo.csv":   reporting.RenderAggregateCSV(result.Aggregate),
		"schedules.csv":     reporting.RenderScheduleCSV(result.Scenarios),
		"trial_metrics.csv": reporting.RenderTrialMetricsCSV(result.TrialMetrics),
		"REPORT.md":         reporting.RenderMarkdown(report),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
