package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-snake/internal/discovery"
	"github.com/amalg/go-snake/internal/network"
	"github.com/amalg/go-snake/internal/ui"
)

func main() {
	addr := flag.String("addr", "", "Server address (e.g., 192.168.1.5:9999); empty to discover one")
	wait := flag.Duration("wait", 5*time.Second, "How long to look for a server when -addr is empty")
	name := flag.String("name", "Panel", "Panel name shown in server logs")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	flag.Parse()

	// Client logs would corrupt the TUI
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	if *addr == "" {
		found, err := discover(*wait)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
			fmt.Fprintln(os.Stderr, "Usage: client --addr <host:port> [--name <name>]")
			fmt.Fprintln(os.Stderr, "  Example: client --addr 192.168.1.5:9999 --name kitchen")
			os.Exit(1)
		}
		fmt.Printf("Found %s (%s, length %d)\n", found.Name, found.Status, found.Length)
		*addr = found.Addr
	}

	fmt.Printf("Connecting to %s as %s...\n", *addr, *name)

	client, err := network.NewClient(*addr, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	title := fmt.Sprintf("SNAKE @ %s (%d ticks/s)", *addr, client.Config().TickRate)
	p := tea.NewProgram(ui.NewModel(client, title), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// discover waits for a beacon from a server with no panel attached.
func discover(wait time.Duration) (discovery.PanelInfo, error) {
	b := discovery.NewBrowser()
	if err := b.Start(fmt.Sprintf(":%d", discovery.BeaconPort)); err != nil {
		return discovery.PanelInfo{}, err
	}
	defer b.Stop()

	fmt.Printf("Looking for a server for %s...\n", wait)
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return b.Find(ctx)
}
