package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amalg/go-snake/internal/api"
	"github.com/amalg/go-snake/internal/autopilot"
	"github.com/amalg/go-snake/internal/game"
	"github.com/amalg/go-snake/internal/ledgrid"
	"github.com/amalg/go-snake/internal/metrics"
	"github.com/amalg/go-snake/internal/sound"
	"github.com/amalg/go-snake/internal/ui"
)

// options are the command-line settings.
type options struct {
	frontend string
	tick     int
	seed     int64
	pilot    bool
	httpAddr string
	mute     bool
	logFile  string
}

func main() {
	var opts options
	flag.StringVar(&opts.frontend, "frontend", "tea", "Display: tea (bubbletea) or tcell (LED grid)")
	flag.IntVar(&opts.tick, "tick", game.DefaultConfig().TickRate, "Ticks per second")
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed (0 seeds from the clock)")
	flag.BoolVar(&opts.pilot, "autopilot", false, "Let the autopilot steer when no key is pressed")
	flag.StringVar(&opts.httpAddr, "http", "", "Serve the HTTP API on this address (e.g. :8080)")
	flag.BoolVar(&opts.mute, "mute", false, "Disable sound")
	flag.StringVar(&opts.logFile, "log", "", "Log file path (default: discard logs)")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run plays until the player quits. Every deferred cleanup runs before it
// returns, so main may exit on the result.
func run(opts options) error {
	if opts.frontend != "tea" && opts.frontend != "tcell" {
		return fmt.Errorf("unknown frontend %q (want tea or tcell)", opts.frontend)
	}

	// Redirect log output before anything runs.
	// Any stderr output corrupts the full-screen display.
	closeLog, err := setupLog(opts.logFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closeLog()

	config := game.DefaultConfig()
	config.TickRate = opts.tick
	config.Seed = opts.seed

	engine := game.NewEngine(config)
	if opts.pilot {
		engine.SetSource(autopilot.New())
	}

	reg := prometheus.NewRegistry()
	engine.Observe(metrics.NewRecorder(reg))

	if !opts.mute {
		player, err := sound.NewPlayer()
		if err != nil {
			log.Printf("[SOUND] Audio unavailable: %v", err)
		} else {
			defer player.Close()
			engine.Observe(player)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.httpAddr != "" {
		go func() {
			if err := api.Serve(ctx, opts.httpAddr, api.NewRouter(engine, reg)); err != nil {
				log.Printf("[API] %v", err)
			}
		}()
	}

	local := ui.NewLocal(engine)
	defer local.Close()

	go func() {
		if err := engine.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("[ENGINE] Stopped: %v", err)
		}
	}()
	defer engine.Stop()

	if opts.frontend == "tcell" {
		return runGrid(ctx, local)
	}
	return runTea(ctx, local)
}

func runTea(ctx context.Context, ctrl ui.Controller) error {
	p := tea.NewProgram(ui.NewModel(ctrl, "SNAKE"), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && err != tea.ErrProgramKilled {
		return err
	}
	return nil
}

func runGrid(ctx context.Context, ctrl ledgrid.Controller) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	if err := ledgrid.New(screen).Run(ctx, ctrl); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func setupLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() { f.Close() }, nil
}
