// Command dashboard polls every device and renders a console status table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lightorchestra-go/pkg/orchestra"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	picosPath := flag.String("picos", "", "path to file with one device address per line")
	hosts := flag.String("hosts", "", "comma-separated device addresses (overrides -picos)")
	interval := flag.Duration("interval", time.Second, "poll interval")
	timeout := flag.Duration("timeout", 800*time.Millisecond, "per-device request timeout")
	once := flag.Bool("once", false, "poll once and exit")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	roster, err := loadHosts(*hosts, *picosPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		statuses := orchestra.CollectStatuses(ctx, roster, *timeout)
		if !*once {
			fmt.Print("\033[H\033[J") // clear console
			fmt.Println("--- Pico Light Orchestra Dashboard --- (Press Ctrl+C to exit)")
		}
		orchestra.RenderStatuses(os.Stdout, statuses)
		if *once {
			return nil
		}

		select {
		case <-ctx.Done():
			fmt.Println("\nDashboard stopped.")
			return nil
		case <-time.After(*interval):
		}
	}
}

func loadHosts(hostsFlag, picosPath string) ([]string, error) {
	if hostsFlag != "" {
		var out []string
		for _, h := range strings.Split(hostsFlag, ",") {
			if h = strings.TrimSpace(h); h != "" {
				out = append(out, h)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("-hosts given but empty")
		}
		return out, nil
	}
	if picosPath == "" {
		return nil, fmt.Errorf("provide -picos FILE or -hosts a,b,c")
	}
	return orchestra.LoadRoster(picosPath)
}
