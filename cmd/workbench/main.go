package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/internal/config"
	"github.com/oskinner-dev/orbrya-student-workbench/internal/logging"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"github.com/oskinner-dev/orbrya-student-workbench/render/view"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"github.com/oskinner-dev/orbrya-student-workbench/script"
	"github.com/oskinner-dev/orbrya-student-workbench/wsapi"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/workbench.toml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	headless   bool
	listen     string
	script     string
	connect    string
	profile    string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to the TOML config (default "+defaultConfigPath+" when present).")
	flag.BoolVar(&f.headless, "headless", false, "Run without a window.")
	flag.StringVar(&f.listen, "listen", "", "Serve the boundary API over websocket on this address.")
	flag.StringVar(&f.script, "script", "", "Lua script to run at startup.")
	flag.StringVar(&f.connect, "connect", "", "Observe a remote workbench at this websocket URL instead of hosting a scene.")
	flag.StringVar(&f.profile, "profile", "", "Write a cpu or mem profile to the working directory.")
	flag.Parse()
	return f
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = defaultConfigPath
		if p := os.Getenv("ORBRYA_CONFIG"); p != "" {
			path = p
		} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func run() error {
	f := parseFlags()

	// 1. Load config
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.listen != "" {
		cfg.Server.Listen = f.listen
	}
	if f.script != "" {
		cfg.Script.Path = f.script
	}

	// 2. Init logger
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch f.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", f.profile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.connect != "" {
		printBanner("observer", 0, 0)
		return observe(ctx, f.connect, cfg, log.Named("observer"))
	}

	// 3. Build the scene
	costs := scene.BuiltinCostTable(cfg.Budget.DefaultCostKB)
	if cfg.Budget.CostTable != "" {
		if costs, err = scene.LoadCostTable(cfg.Budget.CostTable, cfg.Budget.DefaultCostKB); err != nil {
			return fmt.Errorf("cost table: %w", err)
		}
	}
	s := scene.New(scene.Config{CapacityKB: cfg.Budget.CapacityKB, Costs: costs}, log.Named("scene"))
	printBanner("host", s.HeapKB(), cfg.Budget.CapacityKB)
	printStat("entity types", len(costs.Types()))

	// 4. Boundary, transport and loop
	queue := bridge.NewQueue()
	var (
		srv  *wsapi.Server
		opts []bridge.Option
	)
	if cfg.Server.Listen != "" {
		srv = wsapi.NewServer(queue, cfg.Server.WriteTimeout, log.Named("wsapi"))
		if cfg.Sync.PushNotifications {
			opts = append(opts, bridge.WithNotifier(srv))
		}
	}
	b := bridge.New(s, log.Named("bridge"), opts...)

	loop := bridge.NewLoop(b, queue)
	sync := render.NewSync(render.NewVisualSet(nil, nil, log.Named("visuals")), cfg.Sync.PollInterval, log.Named("sync"))
	loop.Register(sync)

	// 5. Optional student script
	if cfg.Script.Path != "" {
		engine := script.NewEngine(b, log.Named("script"))
		defer engine.Close()
		if err := engine.RunFile(cfg.Script.Path); err != nil {
			return fmt.Errorf("script: %w", err)
		}
		if engine.HasTickHook() {
			loop.Register(engine)
		}
		printStat("entities after script", b.GetEntityCount())
	}

	// 6. Websocket server
	if srv != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Server.Path, srv)
		httpSrv := &http.Server{Addr: cfg.Server.Listen, Handler: mux}

		errCh := make(chan error, 1)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("websocket server: %w", err)
		case <-time.After(50 * time.Millisecond):
		}
		printReady(fmt.Sprintf("websocket API on ws://%s%s", cfg.Server.Listen, cfg.Server.Path))
	}

	// 7. Run
	if f.headless {
		printReady("headless loop running, Ctrl+C to stop")
		loop.Run(ctx, cfg.Sync.TickRate)
	} else {
		game := view.New(loop, sync, view.Options{
			Width:  cfg.View.Width,
			Height: cfg.View.Height,
			Title:  cfg.View.Title,
			Zoom:   cfg.View.Zoom,
		}, log.Named("view"))
		if err := game.Run(); err != nil {
			return fmt.Errorf("view: %w", err)
		}
	}

	stats := loop.GetStats()
	log.Info("workbench stopped",
		zap.Int64("iterations", stats.Iterations),
		zap.Int64("commands", stats.CommandsFlushed),
		zap.Int("entities", b.GetEntityCount()),
		zap.String("committed", scene.FormatKB(b.EntityMemoryCost())))
	return nil
}

// observe mirrors a remote scene into a local visual set and logs changes.
// A pushed budgetChanged event triggers an immediate poll.
func observe(ctx context.Context, url string, cfg *config.Config, log *zap.Logger) error {
	client, err := wsapi.Dial(ctx, url, log)
	if err != nil {
		return err
	}
	defer client.Close()
	printReady("connected to " + url)

	sync := render.NewSync(render.NewVisualSet(nil, nil, log), 0, log)
	ticker := time.NewTicker(cfg.Sync.ObserverInterval())
	defer ticker.Stop()

	poll := func() error {
		res, err := sync.Reconcile(client)
		if err != nil {
			return err
		}
		if !res.Changed() {
			return nil
		}
		snap, err := client.Snapshot()
		if err != nil {
			return err
		}
		usage := render.UsageFrom(snap)
		log.Info("scene changed",
			zap.Int("created", res.Created),
			zap.Int("removed", res.Removed),
			zap.Bool("reset", res.Reset),
			zap.Int("visuals", sync.Visuals().Len()),
			zap.Stringer("usage", usage),
			zap.Stringer("level", usage.Level))
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-client.Done():
			return errors.New("connection closed by server")
		case <-client.Events():
			if err := poll(); err != nil {
				return err
			}
		case <-ticker.C:
			if err := poll(); err != nil {
				return err
			}
		}
	}
}

func printBanner(mode string, heapKB, limitKB int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m         Orbrya Student Workbench          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mMode:\033[0m %s \033[90m(%s)\033[0m\n", mode, runtime.Version())
	if limitKB > 0 {
		fmt.Printf("  \033[1mHeap:\033[0m %s  \033[1mLimit:\033[0m %s\n", scene.FormatKB(heapKB), scene.FormatKB(limitKB))
	}
	fmt.Println()
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}
