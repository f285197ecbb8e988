package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/internal/config"
	"github.com/oskinner-dev/orbrya-student-workbench/internal/logging"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	capacityKB := flag.Int("capacity-kb", 4096, "Budget capacity in KB. Small values keep the budget near full.")
	spawnRatio := flag.Float64("spawn-ratio", 0.6, "Fraction of operations that are spawns.")
	clearRatio := flag.Float64("clear-ratio", 0.0005, "Fraction of operations that clear the scene.")
	seed := flag.Uint64("seed", 0, "Random seed; 0 picks one.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log, err := logging.New(config.Default().Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	log.Info("starting workbench stress test", zap.Uint64("seed", *seed), zap.Int("capacityKB", *capacityKB))

	s := scene.New(scene.Config{CapacityKB: *capacityKB}, log.Named("scene").WithOptions(zap.IncreaseLevel(zap.ErrorLevel)))
	b := bridge.New(s, log)
	loop := bridge.NewLoop(b, nil)

	churn := newChurner(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), s.Costs().Types(), *spawnRatio, *clearRatio)
	sync := render.NewSync(render.NewVisualSet(nil, nil, nil), 0, nil)
	loop.Register(churn)
	loop.Register(sync)

	report := &Report{
		Duration:   *duration,
		CapacityKB: *capacityKB,
		Seed:       *seed,
		GCPause:    *gcPauseMetrics,
	}

	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)

	log.Info("running churn", zap.Duration("duration", *duration))
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			loop.Once(deltaTime.Seconds())
			report.Updates.add(time.Since(updateStart))
		}
	}

	report.Counts = churn.counts
	report.FinalEntities = b.GetEntityCount()
	report.FinalVisuals = sync.Visuals().Len()
	report.FinalKB = b.EntityMemoryCost()
	report.Loop = loop.GetStats()
	runtime.ReadMemStats(&memEnd)
	report.Memory = newMemoryDelta(&memStart, &memEnd)

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")

	if churn.counts.Violations > 0 {
		return fmt.Errorf("%d invariant violations, last: %w", churn.counts.Violations, churn.lastErr)
	}
	log.Info("stress test complete")
	return nil
}
