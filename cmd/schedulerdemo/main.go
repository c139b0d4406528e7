// Command schedulerdemo is a reference worker-loop driver for the
// scheduler package: it builds a synthetic tiled-Cholesky task graph,
// installs one of the five built-in strategies, and runs it to
// completion with one goroutine per execution unit, reporting simple
// throughput metrics at the end.
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	scheduler "github.com/abouteiller/parsec"
	"github.com/abouteiller/parsec/strategies"
)

var (
	cfgFile    string
	strategyFl string
	vpsFl      int
	eusFl      int
	tilesFl    int
)

func main() {
	root := &cobra.Command{
		Use:   "schedulerdemo",
		Short: "Run a synthetic tiled-Cholesky workload over a scheduler strategy",
		Long:  "schedulerdemo drives the scheduler package's worker-loop protocol end to end: it submits a Potrf/Trsm/Herk/Gemm task graph, selects a strategy, and reports completion throughput.",
		RunE:  run,
	}

	root.Flags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (flags below override its fields)")
	root.Flags().StringVarP(&strategyFl, "strategy", "s", "", "scheduler strategy: gd, ip, ap, ll, lfq, or pbq")
	root.Flags().IntVar(&vpsFl, "vps", 0, "number of virtual processes")
	root.Flags().IntVar(&eusFl, "eus", 0, "execution units per virtual process")
	root.Flags().IntVarP(&tilesFl, "tiles", "n", 0, "tiled-Cholesky matrix side, in tiles")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := DefaultConfig()
	if cfgFile != "" {
		loaded, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if strategyFl != "" {
		cfg.Strategy = strategyFl
	}
	if vpsFl > 0 {
		cfg.VPs = vpsFl
	}
	if eusFl > 0 {
		cfg.EUsPerVP = eusFl
	}
	if tilesFl > 0 {
		cfg.Tiles = tilesFl
	}
	cfg.applyEnvOverride()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	registry := scheduler.NewRegistry()
	strategies.Register(registry)

	module, err := registry.Create(cfg.Strategy)
	if err != nil {
		logger.Warn("falling back to a default strategy", zap.Error(err), zap.String("requested", cfg.Strategy))
	}
	if module == nil {
		return fmt.Errorf("no scheduler strategy available (requested %q)", cfg.Strategy)
	}

	ctx := scheduler.NewContext(cfg.VPs, cfg.EUsPerVP, logger)
	if err := ctx.InstallModule(module); err != nil {
		return fmt.Errorf("installing module: %w", err)
	}
	if err := ctx.FlowInitAll(); err != nil {
		return fmt.Errorf("initializing execution units: %w", err)
	}
	defer ctx.RemoveModule()

	dag := BuildCholeskyDAG(cfg.Tiles)
	logger.Info("built tiled-Cholesky task graph",
		zap.Int("tiles", cfg.Tiles),
		zap.Int("tasks", dag.TotalTasks()),
		zap.String("strategy", module.Name()),
		zap.Int("vps", cfg.VPs),
		zap.Int("eus_per_vp", cfg.EUsPerVP),
	)

	allEUs := flattenEUs(ctx)
	if err := submitRoundRobin(ctx, allEUs, dag.InitialTasks()); err != nil {
		return fmt.Errorf("submitting initial tasks: %w", err)
	}

	hist := newDistanceHistogram()
	start := time.Now()
	processed := runWorkers(ctx, allEUs, dag, hist)
	elapsed := time.Since(start)

	throughput := float64(processed) / elapsed.Seconds()
	logger.Info("run complete",
		zap.Int64("tasks_processed", processed),
		zap.Duration("elapsed", elapsed),
		zap.Float64("tasks_per_second", throughput),
	)
	for d, n := range hist.snapshot() {
		logger.Info("distance histogram",
			zap.Uint32("distance", uint32(d)),
			zap.Int64("selects", n),
		)
	}
	fmt.Printf("%s: %d tasks in %s (%.0f tasks/sec)\n", module.Name(), processed, elapsed, throughput)
	return nil
}

// distanceHistogram counts Select results by the Distance they were pulled
// at, a lightweight stand-in for a full profiling subsystem: it tells a
// reader how often a strategy served a task locally versus from a peer EU.
type distanceHistogram struct {
	mu     sync.Mutex
	counts map[scheduler.Distance]int64
}

func newDistanceHistogram() *distanceHistogram {
	return &distanceHistogram{counts: make(map[scheduler.Distance]int64)}
}

func (h *distanceHistogram) record(d scheduler.Distance) {
	h.mu.Lock()
	h.counts[d]++
	h.mu.Unlock()
}

func (h *distanceHistogram) snapshot() map[scheduler.Distance]int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[scheduler.Distance]int64, len(h.counts))
	for d, n := range h.counts {
		out[d] = n
	}
	return out
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}

func flattenEUs(ctx *scheduler.Context) []*scheduler.ExecutionUnit {
	var eus []*scheduler.ExecutionUnit
	for _, vp := range ctx.VirtualProcesses {
		eus = append(eus, vp.ExecutionUnits...)
	}
	return eus
}

// submitRoundRobin hands the initial ready tasks to the EUs round-robin,
// one Chain per EU, at DistanceLocal — the scheduler itself decides
// whether that means a private queue or a shared one.
func submitRoundRobin(ctx *scheduler.Context, eus []*scheduler.ExecutionUnit, tasks []*scheduler.Task) error {
	buckets := make([][]*scheduler.Task, len(eus))
	for i, t := range tasks {
		idx := i % len(eus)
		buckets[idx] = append(buckets[idx], t)
	}
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		chain := scheduler.ChainFromSlice(bucket)
		if err := ctx.Module.Schedule(eus[i], chain, scheduler.DistanceLocal); err != nil {
			return err
		}
	}
	return nil
}

// runWorkers runs one worker goroutine per execution unit until every
// task in dag has been processed, and returns the total processed count.
func runWorkers(ctx *scheduler.Context, eus []*scheduler.ExecutionUnit, dag *CholeskyDAG, hist *distanceHistogram) int64 {
	var processed int64
	remaining := int64(dag.TotalTasks())

	var wg sync.WaitGroup
	for _, eu := range eus {
		eu := eu
		wg.Add(1)
		go func() {
			defer wg.Done()
			for atomic.LoadInt64(&remaining) > 0 {
				task, dist := ctx.Module.Select(eu)
				if task == nil {
					time.Sleep(time.Millisecond)
					continue
				}
				hist.record(dist)

				executeTask(task)
				atomic.AddInt64(&processed, 1)
				atomic.AddInt64(&remaining, -1)

				ready := dag.Complete(task)
				if len(ready) == 0 {
					continue
				}
				chain := scheduler.ChainFromSlice(ready)
				if err := ctx.Module.Schedule(eu, chain, scheduler.DistanceLocal); err != nil {
					ctx.Logger.Error("schedule failed", zap.Error(err))
				}
			}
		}()
	}
	wg.Wait()
	return processed
}

// executeTask stands in for a real tile kernel (core_potrf/trsm/herk/gemm
// in the original). Cost scales with the tile's role so the demo's
// reported throughput reflects a plausible load shape rather than a flat
// no-op.
func executeTask(t *scheduler.Task) {
	switch t.FunctionID {
	case "Potrf":
		time.Sleep(400 * time.Microsecond)
	case "Trsm":
		time.Sleep(200 * time.Microsecond)
	default: // Herk, Gemm
		time.Sleep(100 * time.Microsecond)
	}
}
