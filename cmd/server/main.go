package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amalg/go-snake/internal/api"
	"github.com/amalg/go-snake/internal/autopilot"
	"github.com/amalg/go-snake/internal/discovery"
	"github.com/amalg/go-snake/internal/game"
	"github.com/amalg/go-snake/internal/metrics"
	"github.com/amalg/go-snake/internal/network"
)

func main() {
	port := flag.Int("port", 9999, "Port to listen on")
	name := flag.String("name", "Snake", "Panel name advertised on the LAN")
	beacon := flag.Bool("beacon", true, "Advertise the server for client discovery")
	tick := flag.Int("tick", game.DefaultConfig().TickRate, "Ticks per second")
	seed := flag.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	pilot := flag.Bool("autopilot", false, "Let the autopilot steer when the panel is idle")
	httpAddr := flag.String("http", "", "Serve the HTTP API on this address (e.g. :8080)")
	logFile := flag.String("log", "", "Log file path (default: stderr)")
	flag.Parse()

	// Headless: logs go to stderr unless a file is given
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	config := game.DefaultConfig()
	config.TickRate = *tick
	config.Seed = *seed

	engine := game.NewEngine(config)
	if *pilot {
		engine.SetSource(autopilot.New())
	}

	reg := prometheus.NewRegistry()
	engine.Observe(metrics.NewRecorder(reg))

	addr := fmt.Sprintf("0.0.0.0:%d", *port)
	server := network.NewServer(addr, engine)
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
	defer server.Stop()

	fmt.Printf("Snake panel server on port %d\n", *port)

	if *beacon {
		b := discovery.NewBeacon(discovery.BeaconPort, func() discovery.PanelInfo {
			st := engine.Snapshot()
			return discovery.PanelInfo{
				Name:     *name,
				Addr:     addr,
				Attached: server.Attached(),
				Status:   st.Status.String(),
				Length:   st.Length,
			}
		})
		if err := b.Start(); err != nil {
			log.Printf("[DISCOVERY] Beacon disabled: %v", err)
		} else {
			defer b.Stop()
		}
	}

	// Handle OS signals for clean shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *httpAddr != "" {
		go func() {
			if err := api.Serve(ctx, *httpAddr, api.NewRouter(engine, reg)); err != nil {
				log.Printf("[API] %v", err)
				cancel()
			}
		}()
	}

	if err := engine.Run(ctx); err != nil && err != context.Canceled {
		log.Printf("[SERVER] Engine stopped: %v", err)
	}
	log.Printf("[SERVER] Shutting down")
}
